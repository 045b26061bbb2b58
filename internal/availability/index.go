// Package availability maintains the per-product reservation set and
// answers date-overlap queries. The overlap re-check and the insert run
// against the same transactional repositories, so callers that hold the
// product row lock get check-and-insert atomicity.
package availability

import (
	"context"
	"time"

	"github.com/google/uuid"

	"dresshire-backend/internal/domain"
	"dresshire-backend/internal/repository"
)

// Index answers "is [start, end) free for this product?" and owns the
// reservation rows. Methods take the repository bundle of the caller's
// transaction; outside a transaction they read committed state only.
type Index struct{}

func NewIndex() *Index {
	return &Index{}
}

// Query reports whether the interval is free of HELD reservations.
func (ix *Index) Query(ctx context.Context, r *repository.Repositories, productID int32, iv domain.Interval) (bool, error) {
	if err := iv.Validate(); err != nil {
		return false, err
	}
	overlap, err := r.Reservations.AnyHeldOverlapping(ctx, productID, iv)
	if err != nil {
		return false, err
	}
	return !overlap, nil
}

// Reserve re-checks the interval and inserts the claim. The caller must
// hold the product row lock for the check-then-insert to be race-free;
// the booking engine takes that lock before calling here. A collision
// yields a ConflictError carrying the next bookable window of the same
// length as a hint.
func (ix *Index) Reserve(ctx context.Context, r *repository.Repositories, productID int32, rentalID uuid.UUID, iv domain.Interval) error {
	if err := iv.Validate(); err != nil {
		return err
	}
	overlap, err := r.Reservations.AnyHeldOverlapping(ctx, productID, iv)
	if err != nil {
		return err
	}
	if overlap {
		conflict := &domain.ConflictError{ProductID: productID, Requested: iv}
		if next, err := ix.NextAvailable(ctx, r, productID, iv.Days(), iv.Start); err == nil {
			conflict.NextAvailable = next
		}
		return conflict
	}
	return r.Reservations.Insert(ctx, &domain.AvailabilityReservation{
		ProductID: productID,
		RentalID:  rentalID,
		StartDate: iv.Start,
		EndDate:   iv.End,
		State:     domain.ReservationHeld,
	})
}

// Release logically removes the rental's claim. Idempotent: releasing an
// already-released reservation is a no-op, not an error.
func (ix *Index) Release(ctx context.Context, r *repository.Repositories, rentalID uuid.UUID) error {
	return r.Reservations.ReleaseByRental(ctx, rentalID)
}

// Archive retires a completed rental's claim from conflict checks while
// keeping it on record.
func (ix *Index) Archive(ctx context.Context, r *repository.Repositories, rentalID uuid.UUID) error {
	return r.Reservations.ArchiveByRental(ctx, rentalID)
}

// NextAvailable walks the HELD reservations in start order and returns
// the first gap of at least durationDays on or after from. The walk is
// O(N) in the product's outstanding reservations; dresses carry a
// handful of bookings at a time, so a sorted-scan is fine. If N ever
// grows large this is the place to move to an interval tree.
func (ix *Index) NextAvailable(ctx context.Context, r *repository.Repositories, productID int32, durationDays int32, from time.Time) (*domain.Interval, error) {
	if durationDays <= 0 {
		return nil, domain.NewValidationError("duration_days", "must be positive")
	}
	held, err := r.Reservations.ListHeldByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	cursor := domain.Midnight(from)
	for _, res := range held {
		candidate := domain.Interval{Start: cursor, End: cursor.AddDate(0, 0, int(durationDays))}
		if !candidate.End.After(res.StartDate) {
			// The gap before this reservation fits the whole window.
			break
		}
		if res.EndDate.After(cursor) {
			cursor = res.EndDate
		}
	}
	return &domain.Interval{Start: cursor, End: cursor.AddDate(0, 0, int(durationDays))}, nil
}
