package jobs

import (
	"context"
	"errors"
	"time"

	"dresshire-backend/internal/domain"
	"dresshire-backend/internal/logger"
)

// ExpireUnpaidRentals cancels approved rentals whose window opened more
// than the payment grace period ago with no completed payment. Each
// cancellation goes through the state machine, so reservations are
// released and deposits settled the same way a manual cancel would.
func (jr *JobRunner) ExpireUnpaidRentals() {
	jr.runWithRecovery("ExpireUnpaidRentals", func() {
		ctx := context.Background()
		cutoff := jr.clk.Now().Add(-time.Duration(jr.config.Booking.PaymentGraceHours) * time.Hour)

		candidates, err := jr.store.Repos().Rentals.ListApprovedUnpaidStartedBefore(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to list unpaid rentals", "error", err)
			return
		}

		expired := 0
		for _, rental := range candidates {
			if _, err := jr.machine.Transition(ctx, rental.ID, domain.EventExpireUnpaid, domain.SystemActor); err != nil {
				// A payment or cancellation may have landed since the
				// candidate list was read; losing that race is fine.
				if isLostRace(err) {
					logger.Debug("Skipping rental changed since scan", "rental_id", rental.ID, "error", err)
					continue
				}
				logger.Error("Failed to expire rental", "rental_id", rental.ID, "error", err)
				continue
			}
			expired++
		}
		logger.Info("Expired unpaid rentals", "candidates", len(candidates), "expired", expired)
	})
}

// CompleteOverdueRentals completes active rentals whose window has
// closed. The default return condition is GOOD; staff adjust through
// the return endpoint when an item comes back damaged before the sweep.
func (jr *JobRunner) CompleteOverdueRentals() {
	jr.runWithRecovery("CompleteOverdueRentals", func() {
		ctx := context.Background()
		today := domain.Midnight(jr.clk.Now())

		candidates, err := jr.store.Repos().Rentals.ListActiveEndedBefore(ctx, today)
		if err != nil {
			logger.Error("Failed to list ended rentals", "error", err)
			return
		}

		completed := 0
		for _, rental := range candidates {
			if _, err := jr.machine.Transition(ctx, rental.ID, domain.EventMarkReturned, domain.SystemActor); err != nil {
				if isLostRace(err) {
					logger.Debug("Skipping rental changed since scan", "rental_id", rental.ID, "error", err)
					continue
				}
				logger.Error("Failed to complete rental", "rental_id", rental.ID, "error", err)
				continue
			}
			completed++
		}
		logger.Info("Completed overdue rentals", "candidates", len(candidates), "completed", completed)
	})
}

func isLostRace(err error) bool {
	var transitionErr *domain.InvalidTransitionError
	var concurrentErr *domain.ConcurrentModificationError
	return errors.As(err, &transitionErr) ||
		errors.As(err, &concurrentErr) ||
		errors.Is(err, domain.ErrBusy) ||
		errors.Is(err, domain.ErrNotFound)
}
