package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"dresshire-backend/internal/domain"
)

func TestWriteError(t *testing.T) {
	next := domain.Interval{
		Start: time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 9, 19, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{"Validation", domain.NewValidationError("start", "bad"), http.StatusBadRequest, "validation"},
		{"Conflict", &domain.ConflictError{ProductID: 7, NextAvailable: &next}, http.StatusConflict, "conflict"},
		{"InvalidTransition", &domain.InvalidTransitionError{RentalID: uuid.New(), From: domain.RentalStatusActive, Event: domain.EventCancel}, http.StatusUnprocessableEntity, "invalid_transition"},
		{"ConcurrentModification", &domain.ConcurrentModificationError{RentalID: uuid.New()}, http.StatusConflict, "concurrent_modification"},
		{"NotFound", domain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"Busy", domain.ErrBusy, http.StatusServiceUnavailable, "busy"},
		{"Unknown", errors.New("boom"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body errorResponse
			assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantKind, body.Kind)
		})
	}

	t.Run("ConflictCarriesNextAvailable", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeError(rec, &domain.ConflictError{ProductID: 7, NextAvailable: &next})

		var body errorResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		if assert.NotNil(t, body.NextAvailable) {
			assert.Equal(t, next.Start, body.NextAvailable.Start)
		}
	})

	t.Run("BusySetsRetryAfter", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeError(rec, domain.ErrBusy)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	})
}
