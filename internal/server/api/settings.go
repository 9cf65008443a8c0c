// Package api provides the REST API handlers for the Mudra gesture control system.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/mudra/internal/store"
)

// SettingsHandler handles requests to /api/settings.
type SettingsHandler struct {
	store   *store.Store
	onApply func(store.Settings)
}

// NewSettingsHandler creates a new SettingsHandler. onApply, if non-nil, is
// invoked with the persisted settings after a successful update.
func NewSettingsHandler(s *store.Store, onApply func(store.Settings)) *SettingsHandler {
	return &SettingsHandler{store: s, onApply: onApply}
}

// ServeHTTP routes settings requests by method.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodPut:
		h.handlePut(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGet returns the stored settings merged over the defaults.
func (h *SettingsHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.Settings().Load()
	if err != nil {
		http.Error(w, "Failed to load settings", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

// handlePut replaces the settings. The body is decoded over the current
// stored settings, so partial updates keep unmentioned fields.
func (h *SettingsHandler) handlePut(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.Settings().Load()
	if err != nil {
		http.Error(w, "Failed to load settings", http.StatusInternalServerError)
		return
	}

	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.store.Settings().Save(settings); err != nil {
		http.Error(w, "Failed to save settings", http.StatusInternalServerError)
		return
	}

	if h.onApply != nil {
		h.onApply(settings)
	}

	writeJSON(w, http.StatusOK, settings)
}

// writeJSON encodes v as the JSON response body.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
