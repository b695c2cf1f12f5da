package handlers

import (
	"net/http"

	"mapshare/internal/money"
	"mapshare/internal/services"
)

type createTreasureRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
	Reward    string   `json:"reward_amount" validate:"required"`
	Hint      string   `json:"hint" validate:"max=280"`
}

func (h *Handler) CreateTreasure(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req createTreasureRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	reward, err := parseAmountMinor(req.Reward)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	treasure, err := h.treasures.Create(r.Context(), session, services.CreateTreasureInput{
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
		RewardAmount: reward,
		Hint:         req.Hint,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, treasure)
}

func (h *Handler) ListTreasures(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	rows, err := h.treasures.List(r.Context(), session.UserID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// FindTreasure answers 200 for both a first claim and a repeated one; the
// status field tells them apart.
func (h *Handler) FindTreasure(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.treasures.Find(r.Context(), session, id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  result.Status,
		"reward":  money.FormatMinor(result.Reward),
		"balance": money.FormatMinor(result.Balance),
	})
}

func (h *Handler) TreasureQRCode(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	png, err := h.treasures.QRCode(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
