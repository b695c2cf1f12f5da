package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"mapshare/internal/auth"
	"mapshare/internal/db"
	"mapshare/internal/middleware"
	"mapshare/internal/models"
	"mapshare/internal/money"
	"mapshare/internal/services"
	"mapshare/internal/validator"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{services.ErrInsufficientFunds, http.StatusBadRequest, "insufficient_funds"},
	{validator.ErrInvalidFileType, http.StatusBadRequest, "invalid_file_type"},
	{validator.ErrFileTooLarge, http.StatusBadRequest, "file_too_large"},
	{validator.ErrEmptyFile, http.StatusBadRequest, "empty_file"},
	{validator.ErrInvalidCoordinates, http.StatusBadRequest, "invalid_coordinates"},
	{services.ErrNoRecipients, http.StatusBadRequest, "no_recipients"},
	{services.ErrInvalidRecipient, http.StatusBadRequest, "invalid_recipient"},
	{services.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{money.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{money.ErrTooManyDecimals, http.StatusBadRequest, "invalid_amount"},
	{services.ErrSelfPayment, http.StatusBadRequest, "self_payment"},
	{services.ErrInvalidFeedback, http.StatusBadRequest, "invalid_feedback"},
	{services.ErrInvalidDeal, http.StatusBadRequest, "invalid_hot_deal"},
	{services.ErrInvalidTreasure, http.StatusBadRequest, "invalid_treasure"},
	{services.ErrInvalidProfile, http.StatusBadRequest, "invalid_profile"},
	{services.ErrInvalidImage, http.StatusBadRequest, "invalid_image"},
	{services.ErrForbidden, http.StatusForbidden, "forbidden"},
	{services.ErrNotCompany, http.StatusForbidden, "business_account_required"},
	{services.ErrOwnTreasure, http.StatusForbidden, "own_treasure"},
	{services.ErrNotFound, http.StatusNotFound, "not_found"},
	{services.ErrFeedbackRecorded, http.StatusConflict, "feedback_already_recorded"},
	{services.ErrDuplicateRequest, http.StatusConflict, "duplicate_request"},
}

// respondServiceError maps domain errors to status codes. Anything unknown is
// logged and reported as a generic retryable failure.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			respondError(w, m.status, m.code)
			return
		}
	}
	if db.IsUniqueViolation(err) {
		respondError(w, http.StatusConflict, "duplicate")
		return
	}
	if db.IsForeignKeyViolation(err) {
		respondError(w, http.StatusBadRequest, "invalid_reference")
		return
	}
	h.logger.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", chimiddleware.GetReqID(r.Context()),
		"error", err,
	)
	respondError(w, http.StatusInternalServerError, "try_again")
}

// decodeJSON decodes the body into dst and runs its validate tags.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return false
	}
	if err := validator.Struct(dst); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// pathID returns the {id} route parameter. Anything that is not a UUID
// cannot name a row, so it is answered with 404 before reaching storage.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		respondError(w, http.StatusNotFound, "not_found")
		return "", false
	}
	return id, true
}

func requireSession(w http.ResponseWriter, r *http.Request) (auth.Session, bool) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return auth.Session{}, false
	}
	return session, true
}

// visibilityFilter reads ?users= and ?businesses=; both default to true.
func visibilityFilter(r *http.Request) models.VisibilityFilter {
	return models.VisibilityFilter{
		ShowUsers:      queryBool(r, "users", true),
		ShowBusinesses: queryBool(r, "businesses", true),
	}
}

func queryBool(r *http.Request, key string, fallback bool) bool {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func queryInt(r *http.Request, key string, fallback int) int {
	parsed, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return fallback
	}
	return parsed
}
