package http

import (
	"net/http"
)

// RootHandler serves the health endpoint.
type RootHandler struct {
	version string
}

// NewRootHandler creates a new root handler
func NewRootHandler(version string) *RootHandler {
	return &RootHandler{version: version}
}

// RegisterRoutes registers the root routes
func (h *RootHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.handleHealth)
}

func (h *RootHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": h.version,
	})
}
