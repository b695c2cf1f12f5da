package handlers

import (
	"errors"
	"net/http"
	"strings"

	"mapshare/internal/auth"
	"mapshare/internal/middleware"
	"mapshare/internal/realtime"
	"mapshare/internal/storage"

	"github.com/go-chi/chi/v5"
)

// WSChanges streams change events for ?tables=. Browsers cannot set headers
// on websocket upgrades, so the token may also come from ?token=.
func (h *Handler) WSChanges(w http.ResponseWriter, r *http.Request) {
	raw, ok := middleware.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		raw = r.URL.Query().Get("token")
	}
	if raw == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	claims, err := auth.ParseToken(h.cfg.JWTSecret, raw)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var tables []string
	for _, table := range strings.Split(r.URL.Query().Get("tables"), ",") {
		table = strings.TrimSpace(table)
		if table == "" {
			continue
		}
		if !realtime.KnownTable(table) {
			respondError(w, http.StatusBadRequest, "unknown table: "+table)
			return
		}
		tables = append(tables, table)
	}
	if len(tables) == 0 {
		respondError(w, http.StatusBadRequest, "tables required")
		return
	}
	realtime.ServeWS(w, r, h.hub, claims.Session().UserID, tables)
}

// ServeObject serves public bucket objects under /storage/{bucket}/{path}.
func (h *Handler) ServeObject(w http.ResponseWriter, r *http.Request) {
	bucket := storage.Bucket(chi.URLParam(r, "bucket"))
	path := chi.URLParam(r, "*")
	if !bucket.Valid() || path == "" {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	data, contentType, err := h.files.Read(r.Context(), bucket, path)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		h.logger.Error("read object failed", "bucket", bucket, "path", path, "error", err)
		respondError(w, http.StatusInternalServerError, "try_again")
		return
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
