package handlers

import (
	"net/http"

	"mapshare/internal/money"
)

func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	balance, err := h.wallet.Balance(r.Context(), session.UserID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"user_id":     session.UserID,
		"balance":     money.FormatMinor(balance),
		"message_fee": money.FormatMinor(h.messages.Fee()),
	})
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	rows, err := h.wallet.History(r.Context(), session.UserID, queryInt(r, "limit", 50), queryInt(r, "offset", 0))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	out := make([]map[string]any, 0, len(rows))
	for _, tx := range rows {
		out = append(out, map[string]any{
			"id":          tx.ID,
			"amount":      money.FormatMinor(tx.Amount),
			"description": tx.Description,
			"created_at":  tx.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, out)
}
