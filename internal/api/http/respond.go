package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"dresshire-backend/internal/domain"
	"dresshire-backend/internal/logger"
)

type errorResponse struct {
	Error         string           `json:"error"`
	Kind          string           `json:"kind,omitempty"`
	NextAvailable *domain.Interval `json:"next_available,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps the engine's error taxonomy onto HTTP statuses:
// validation 400, not found 404, conflict 409 (with the next-available
// hint), invalid transition 422, lost race 409, busy 503.
func writeError(w http.ResponseWriter, err error) {
	var (
		validationErr *domain.ValidationError
		conflictErr   *domain.ConflictError
		transitionErr *domain.InvalidTransitionError
		concurrentErr *domain.ConcurrentModificationError
	)
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: "validation"})
	case errors.As(err, &conflictErr):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:         err.Error(),
			Kind:          "conflict",
			NextAvailable: conflictErr.NextAvailable,
		})
	case errors.As(err, &transitionErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Kind: "invalid_transition"})
	case errors.As(err, &concurrentErr):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Kind: "concurrent_modification"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found", Kind: "not_found"})
	case errors.Is(err, domain.ErrBusy):
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error(), Kind: "busy"})
	default:
		logger.Error("Unhandled error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
