package handlers

import (
	"errors"
	"net/http"
	"strings"

	"mapshare/internal/money"
	"mapshare/internal/services"
)

// SendMessage takes a multipart form with a "file" part and one or more
// "recipient_ids". The client request id comes from the Idempotency-Key
// header or the "request_id" field.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	if !parseMultipart(w, r, h.cfg.MaxUploadBytes) {
		return
	}
	file, err := formFile(r, "file")
	if errors.Is(err, errMissingFile) {
		respondError(w, http.StatusBadRequest, "missing_file")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}
	requestID := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if requestID == "" {
		requestID = strings.TrimSpace(r.FormValue("request_id"))
	}
	result, err := h.messages.Send(r.Context(), services.SendRequest{
		Sender:          session,
		RecipientIDs:    formList(r, "recipient_ids"),
		File:            *file,
		ClientRequestID: requestID,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	respondJSON(w, status, map[string]any{
		"payment_request_id": result.PaymentRequestID,
		"transaction_id":     result.TransactionID,
		"messages":           result.Messages,
		"cost":               money.FormatMinor(result.Cost),
		"balance":            money.FormatMinor(result.Balance),
		"replayed":           result.Replayed,
	})
}

func (h *Handler) Inbox(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	rows, err := h.messages.Inbox(r.Context(), session.UserID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) SentMessages(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	rows, err := h.messages.Sent(r.Context(), session.UserID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) OpenMessage(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	view, err := h.messages.Open(r.Context(), session.UserID, id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

type feedbackRequest struct {
	Feedback string `json:"feedback" validate:"required,oneof=interested not_interested"`
}

func (h *Handler) RateMessage(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req feedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	view, err := h.messages.Rate(r.Context(), session.UserID, id, req.Feedback)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}
