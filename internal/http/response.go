package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/teamgrid/teamgrid/internal/domain"
	"github.com/teamgrid/teamgrid/pkg/logger"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// WriteJSONError writes a JSON error response.
func WriteJSONError(w http.ResponseWriter, message string, statusCode int) {
	WriteJSON(w, statusCode, map[string]string{"error": message})
}

// writeDomainError maps domain errors to responses. Schema-consistency and
// identifier faults are operational bugs: they get logged at error severity
// and surface as a generic failure so schema internals never reach clients.
func writeDomainError(w http.ResponseWriter, log logger.Logger, err error) {
	var notFound *domain.ErrNotFound
	var validation domain.ValidationError
	var schemaMissing *domain.ErrTenantSchemaMissing
	var identifierRejected *domain.ErrIdentifierRejected

	switch {
	case errors.As(err, &notFound):
		WriteJSONError(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &validation):
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrTenantNotFound):
		WriteJSONError(w, "workspace not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrTenantInactive):
		WriteJSONError(w, "workspace is deactivated", http.StatusForbidden)
	case errors.Is(err, domain.ErrMissingTenant):
		WriteJSONError(w, "workspace required", http.StatusBadRequest)
	case errors.As(err, &schemaMissing):
		log.WithField("error", err.Error()).Error("Workspace schema missing")
		WriteJSONError(w, "internal error", http.StatusInternalServerError)
	case errors.As(err, &identifierRejected):
		log.WithField("error", err.Error()).Error("Identifier rejected")
		WriteJSONError(w, "internal error", http.StatusInternalServerError)
	default:
		log.WithField("error", err.Error()).Error("Request failed")
		WriteJSONError(w, "internal error", http.StatusInternalServerError)
	}
}
