package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrBusy is returned when a lock could not be acquired within the
	// configured wait; the caller may retry with backoff.
	ErrBusy = errors.New("resource busy")
)

// ValidationError reports malformed input. No state was changed.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError reports a date-range collision on a product. It is an
// expected outcome of booking; NextAvailable, when set, is the earliest
// interval of the same duration the caller could book instead.
type ConflictError struct {
	ProductID     int32
	Requested     Interval
	NextAvailable *Interval
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("product %d is not available for %s", e.ProductID, e.Requested)
}

// InvalidTransitionError reports a lifecycle event that is not legal from
// the rental's current status.
type InvalidTransitionError struct {
	RentalID uuid.UUID
	From     RentalStatus
	Event    Event
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("rental %s: event %s is not valid from status %s", e.RentalID, e.Event, e.From)
}

// ConcurrentModificationError reports a lost race: the rental changed
// between the caller's read and the attempted write. The caller should
// reload and retry the whole operation.
type ConcurrentModificationError struct {
	RentalID uuid.UUID
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("rental %s was modified concurrently", e.RentalID)
}
