package handlers

import (
	"errors"
	"net/http"
	"strings"

	"mapshare/internal/services"
)

func (h *Handler) ListBusinesses(w http.ResponseWriter, r *http.Request) {
	rows, err := h.businesses.List(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) GetBusiness(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	profile, err := h.businesses.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// UpsertBusiness takes a multipart form: name, description, website and an
// optional "image" part.
func (h *Handler) UpsertBusiness(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	if !parseMultipart(w, r, h.cfg.MaxUploadBytes) {
		return
	}
	input := services.BusinessProfileInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
	}
	if website := strings.TrimSpace(r.FormValue("website")); website != "" {
		input.Website = &website
	}
	image, err := formFile(r, "image")
	switch {
	case err == nil:
		input.Image = image
	case !errors.Is(err, errMissingFile):
		respondError(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}
	profile, err := h.businesses.Upsert(r.Context(), session, input)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}
