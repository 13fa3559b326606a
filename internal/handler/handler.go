// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/userhub/userhub/internal/handler/dto"
)

// Handler wraps application metadata for the plain endpoints.
type Handler struct {
	service string
	version string
}

// New creates a new Handler instance.
func New(service, version string) *Handler {
	return &Handler{service: service, version: version}
}

// Root is a simple info endpoint.
// GET /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"service": h.service,
		"version": h.version,
	}
	writeJSON(w, http.StatusOK, response)
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		_ = err
	}
}

// writeError writes a single-cause error envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message})
}

// writeValidationError writes the multi-field 422 envelope.
func writeValidationError(w http.ResponseWriter, details []string) {
	writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{
		Error:   "Validation failed",
		Details: details,
	})
}
