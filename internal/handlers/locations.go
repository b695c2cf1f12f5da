package handlers

import (
	"net/http"

	"mapshare/internal/mapsync"

	"github.com/paulmach/orb/geojson"
)

type shareLocationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
}

func (h *Handler) ShareLocation(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req shareLocationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	loc, err := h.locations.Share(r.Context(), session, *req.Latitude, *req.Longitude)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, loc)
}

func (h *Handler) RemoveLocation(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	if err := h.locations.Remove(r.Context(), session); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	rows, err := h.locations.List(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) NearbyLocations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, okLat := parseFloatParam(q.Get("lat"))
	lng, okLng := parseFloatParam(q.Get("lng"))
	if !okLat || !okLng {
		respondError(w, http.StatusBadRequest, "invalid_coordinates")
		return
	}
	radius, _ := parseFloatParam(q.Get("radius"))
	rows, err := h.locations.Nearby(r.Context(), lat, lng, radius, visibilityFilter(r))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// MapFeatures serves the cached snapshot; toggling filters never refetches.
func (h *Handler) MapFeatures(w http.ResponseWriter, r *http.Request) {
	if at := h.mapSource.RefreshedAt(); !at.IsZero() {
		w.Header().Set("Last-Modified", at.UTC().Format(http.TimeFormat))
	}
	respondJSON(w, http.StatusOK, h.mapSource.Features(visibilityFilter(r)))
}

func (h *Handler) MapConfig(w http.ResponseWriter, r *http.Request) {
	if h.cfg.MapAccessToken == "" {
		h.logger.Warn("map access token is not configured")
		respondError(w, http.StatusServiceUnavailable, "map token unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"access_token": h.cfg.MapAccessToken,
		"cluster":      h.mapConfig(),
	})
}

type mapClickRequest struct {
	Properties geojson.Properties `json:"properties" validate:"required"`
}

func (h *Handler) MapClick(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req mapClickRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	action, err := mapsync.Route(req.Properties, session.UserID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_feature")
		return
	}
	respondJSON(w, http.StatusOK, action)
}
