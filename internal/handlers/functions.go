package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"mapshare/internal/auth"
	"mapshare/internal/middleware"
	"mapshare/internal/money"
	"mapshare/internal/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type distributePaymentRequest struct {
	SenderID   string          `json:"sender_id" validate:"required"`
	ReceiverID string          `json:"receiver_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount"`
}

// DistributePayment moves funds between two wallets and answers a bare JSON
// boolean. Business failures such as insufficient funds answer false.
func (h *Handler) DistributePayment(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req distributePaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SenderID != session.UserID {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}
	if _, err := uuid.Parse(req.ReceiverID); err != nil {
		respondJSON(w, http.StatusOK, false)
		return
	}
	amount, err := decimalMinor(req.Amount)
	if err != nil || amount <= 0 {
		respondJSON(w, http.StatusOK, false)
		return
	}
	_, err = h.wallet.Transfer(r.Context(), req.SenderID, req.ReceiverID, amount)
	h.respondProcedure(w, r, err)
}

type updateWalletBalanceRequest struct {
	UserID      string          `json:"user_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"max=200"`
}

// UpdateWalletBalance applies a signed amount to the caller's wallet and logs
// the transaction.
func (h *Handler) UpdateWalletBalance(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req updateWalletBalanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID != session.UserID {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}
	amount, err := decimalMinor(req.Amount)
	if err != nil || amount == 0 {
		respondJSON(w, http.StatusOK, false)
		return
	}
	description := strings.TrimSpace(req.Description)
	if amount > 0 {
		if description == "" {
			description = "Wallet credit"
		}
		_, err = h.wallet.Credit(r.Context(), req.UserID, amount, description)
	} else {
		if description == "" {
			description = "Wallet debit"
		}
		_, err = h.wallet.Debit(r.Context(), req.UserID, -amount, description)
	}
	h.respondProcedure(w, r, err)
}

func (h *Handler) respondProcedure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, true)
	case errors.Is(err, services.ErrInsufficientFunds),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrSelfPayment):
		respondJSON(w, http.StatusOK, false)
	default:
		h.logger.Error("procedure failed", "path", r.URL.Path, "error", err)
		respondJSON(w, http.StatusOK, false)
	}
}

func setFunctionCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
}

func (h *Handler) AddToWalletPreflight(w http.ResponseWriter, r *http.Request) {
	setFunctionCORS(w)
	w.WriteHeader(http.StatusOK)
}

type addToWalletRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// AddToWallet is a standalone function endpoint. It checks the bearer token
// itself and always answers {success, data} or {error}.
func (h *Handler) AddToWallet(w http.ResponseWriter, r *http.Request) {
	setFunctionCORS(w)
	raw, ok := middleware.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		respondError(w, http.StatusUnauthorized, "Missing authorization header")
		return
	}
	claims, err := auth.ParseToken(h.cfg.JWTSecret, raw)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	var req addToWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	amount, err := decimalMinor(req.Amount)
	if err != nil || amount <= 0 {
		respondError(w, http.StatusBadRequest, "Amount must be a positive number")
		return
	}
	entry, err := h.wallet.Credit(r.Context(), claims.Session().UserID, amount, "Wallet top-up")
	if err != nil {
		h.logger.Error("add to wallet failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to add funds")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"balance":        money.FormatMinor(entry.Balance),
			"transaction_id": entry.TransactionID,
		},
	})
}
