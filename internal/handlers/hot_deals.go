package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"mapshare/internal/services"
)

// CreateHotDeal takes a multipart form: title, description, start_time
// (RFC 3339 with offset), duration_hours and an optional "image" part.
func (h *Handler) CreateHotDeal(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	if !parseMultipart(w, r, h.cfg.MaxUploadBytes) {
		return
	}
	start, err := time.Parse(time.RFC3339, r.FormValue("start_time"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_start_time")
		return
	}
	hours, err := strconv.Atoi(r.FormValue("duration_hours"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_duration")
		return
	}
	input := services.CreateDealInput{
		Title:         r.FormValue("title"),
		Description:   r.FormValue("description"),
		StartTime:     start,
		DurationHours: hours,
	}
	image, err := formFile(r, "image")
	switch {
	case err == nil:
		input.Image = image
	case !errors.Is(err, errMissingFile):
		respondError(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}
	deal, err := h.deals.Create(r.Context(), session, input, h.now())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, deal)
}

// ListHotDeals returns every deal with its computed status, or only active
// ones with ?active=true.
func (h *Handler) ListHotDeals(w http.ResponseWriter, r *http.Request) {
	var (
		deals []services.DealView
		err   error
	)
	if queryBool(r, "active", false) {
		deals, err = h.deals.ListActive(r.Context(), h.now())
	} else {
		deals, err = h.deals.List(r.Context(), h.now())
	}
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, deals)
}

func (h *Handler) DeleteHotDeal(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.deals.Delete(r.Context(), session, id); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
