package handlers

import (
	"net/http"
	"strings"

	"mapshare/internal/models"
	"mapshare/internal/store"
)

// GetProfile returns the public part of a user: display name and account kind.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if store.IsNotFound(err) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	payload := map[string]any{
		"id":           user.ID,
		"is_company":   user.IsCompany,
		"company_name": user.CompanyName,
	}
	profile, err := h.profiles.Get(r.Context(), userID)
	switch {
	case err == nil:
		payload["display_name"] = profile.DisplayName
		payload["avatar_url"] = profile.AvatarURL
	case !store.IsNotFound(err):
		respondError(w, http.StatusInternalServerError, "unable to load profile")
		return
	}
	respondJSON(w, http.StatusOK, payload)
}

type profileRequest struct {
	DisplayName string  `json:"display_name" validate:"required,max=80"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,url"`
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req profileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	profile := models.Profile{
		UserID:      session.UserID,
		DisplayName: strings.TrimSpace(req.DisplayName),
		AvatarURL:   req.AvatarURL,
	}
	if err := h.profiles.Upsert(r.Context(), nil, profile); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}
