package handlers

import (
	"net/http"
	"strings"

	"mapshare/internal/auth"
	"mapshare/internal/db"
	"mapshare/internal/models"
	"mapshare/internal/store"
	"mapshare/internal/validator"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type signupRequest struct {
	Email       string `json:"email" validate:"required"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"display_name" validate:"max=80"`
	IsCompany   bool   `json:"is_company"`
	CompanyName string `json:"company_name" validate:"required_if=IsCompany true,max=120"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validator.ValidateEmail(req.Email); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.ValidatePassword(req.Password); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to secure password")
		return
	}
	user := models.User{
		ID:           uuid.NewString(),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: passwordHash,
		IsCompany:    req.IsCompany,
	}
	if req.IsCompany {
		name := strings.TrimSpace(req.CompanyName)
		user.CompanyName = &name
	}
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = strings.SplitN(user.Email, "@", 2)[0]
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.users.Create(r.Context(), tx, user); err != nil {
			return err
		}
		return h.profiles.Upsert(r.Context(), tx, models.Profile{UserID: user.ID, DisplayName: displayName})
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			respondError(w, http.StatusConflict, "email already registered")
			return
		}
		h.logger.Error("signup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	h.respondToken(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.users.GetByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if store.IsNotFound(err) {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error("login lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	h.respondToken(w, http.StatusOK, user)
}

func (h *Handler) respondToken(w http.ResponseWriter, status int, user models.User) {
	session := auth.Session{UserID: user.ID, Email: user.Email, IsCompany: user.IsCompany}
	if user.CompanyName != nil {
		session.CompanyName = *user.CompanyName
	}
	token, err := auth.GenerateToken(h.cfg.JWTSecret, session, h.cfg.TokenTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respondJSON(w, status, map[string]any{
		"token":      token,
		"token_type": "bearer",
		"expires_in": int(h.cfg.TokenTTL.Seconds()),
		"user":       session,
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	user, err := h.users.GetByID(r.Context(), session.UserID)
	if err != nil {
		if store.IsNotFound(err) {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}
