package domain

import (
	"time"

	"github.com/google/uuid"
)

type ReservationState string

const (
	// ReservationHeld counts toward conflict checks.
	ReservationHeld ReservationState = "HELD"
	// ReservationReleased is the logical delete used on rejection and
	// cancellation; the window becomes bookable again.
	ReservationReleased ReservationState = "RELEASED"
	// ReservationArchived marks a completed rental's claim, kept as a
	// historical record but excluded from conflict checks.
	ReservationArchived ReservationState = "ARCHIVED"
)

// AvailabilityReservation is a committed claim on a product for a date
// interval, tied to exactly one rental order. For any product the HELD
// set must be pairwise non-overlapping.
type AvailabilityReservation struct {
	ID        int64            `json:"id"`
	ProductID int32            `json:"product_id"`
	RentalID  uuid.UUID        `json:"rental_id"`
	StartDate time.Time        `json:"start_date"`
	EndDate   time.Time        `json:"end_date"`
	State     ReservationState `json:"state"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Interval returns the reserved window as a half-open date interval.
func (r *AvailabilityReservation) Interval() Interval {
	return Interval{Start: r.StartDate, End: r.EndDate}
}
