// Package payments translates asynchronous gateway outcomes into
// lifecycle events without letting payment state and rental state
// diverge.
package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"dresshire-backend/internal/clock"
	"dresshire-backend/internal/domain"
	"dresshire-backend/internal/lifecycle"
	"dresshire-backend/internal/logger"
	"dresshire-backend/internal/notify"
	"dresshire-backend/internal/repository"
)

// Reconciler maps gateway callbacks onto lifecycle transitions.
type Reconciler struct {
	store              repository.Store
	machine            *lifecycle.Machine
	clk                clock.Clock
	notifier           notify.Notifier
	retryFlagThreshold int32
}

func NewReconciler(store repository.Store, machine *lifecycle.Machine, clk clock.Clock, notifier notify.Notifier, retryFlagThreshold int32) *Reconciler {
	return &Reconciler{
		store:              store,
		machine:            machine,
		clk:                clk,
		notifier:           notifier,
		retryFlagThreshold: retryFlagThreshold,
	}
}

// RecordAttempt registers a pending payment attempt for an approved
// rental. A renter may only pay for their own rental; staff may open an
// attempt on anyone's. The gateway later reports the outcome through
// the callbacks below.
func (rc *Reconciler) RecordAttempt(ctx context.Context, actor domain.Actor, rentalID uuid.UUID, amountCents int32, method string) (*domain.PaymentRecord, error) {
	if amountCents <= 0 {
		return nil, domain.NewValidationError("amount_cents", "must be positive")
	}
	if method == "" {
		return nil, domain.NewValidationError("method", "is required")
	}

	payment := &domain.PaymentRecord{
		ID:          uuid.New(),
		RentalID:    rentalID,
		AmountCents: amountCents,
		Method:      method,
		Status:      domain.PaymentStatusPending,
	}
	err := rc.store.WithinTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
		rental, err := r.Rentals.GetByID(ctx, rentalID)
		if err != nil {
			return fmt.Errorf("load rental %s: %w", rentalID, err)
		}
		if actor.Role == domain.RoleRenter && actor.UserID != rental.UserID {
			return domain.NewValidationError("actor", "renters may only pay for their own rentals")
		}
		if rental.Status != domain.RentalStatusApproved {
			return domain.NewValidationError("rental_id",
				fmt.Sprintf("payments may only be taken for approved rentals, rental is %s", rental.Status))
		}
		return r.Payments.Create(ctx, payment)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// OnPaymentCompleted settles the payment attempt and activates the
// rental in one transaction. It is idempotent: a callback already
// processed for this payment, or one arriving while the rental is not
// awaiting payment, is dropped with a logged, non-fatal mismatch.
func (rc *Reconciler) OnPaymentCompleted(ctx context.Context, rentalID, paymentID uuid.UUID) error {
	var events []domain.LifecycleEvent
	err := rc.store.WithinTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
		// Locking the rental first serializes concurrent callbacks for
		// the same rental; the loser re-reads a non-APPROVED status and
		// drops out below.
		rental, err := r.Rentals.GetByIDForUpdate(ctx, rentalID)
		if err != nil {
			return fmt.Errorf("load rental %s: %w", rentalID, err)
		}
		payment, err := r.Payments.GetByID(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("load payment %s: %w", paymentID, err)
		}
		if payment.RentalID != rentalID {
			return domain.NewValidationError("payment_id", "payment does not belong to this rental")
		}

		if rental.Status != domain.RentalStatusApproved {
			logger.WarnContext(ctx, "Dropping stale payment callback",
				"rental_id", rentalID, "payment_id", paymentID, "rental_status", rental.Status)
			return nil
		}
		claimed, err := r.Payments.MarkCompleted(ctx, paymentID)
		if err != nil {
			return err
		}
		if !claimed {
			logger.WarnContext(ctx, "Dropping duplicate payment callback",
				"rental_id", rentalID, "payment_id", paymentID, "payment_status", payment.Status)
			return nil
		}

		_, events, err = rc.machine.Apply(ctx, r, rentalID, domain.EventPaymentCompleted, domain.SystemActor)
		return err
	})
	if err != nil {
		return err
	}
	notify.Dispatch(ctx, rc.notifier, events)
	return nil
}

// OnPaymentFailed records a failed attempt. Failure never cancels the
// rental (the renter may retry); once failures reach the configured
// threshold the rental is flagged for review.
func (rc *Reconciler) OnPaymentFailed(ctx context.Context, rentalID, paymentID uuid.UUID) error {
	var events []domain.LifecycleEvent
	err := rc.store.WithinTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
		rental, err := r.Rentals.GetByID(ctx, rentalID)
		if err != nil {
			return fmt.Errorf("load rental %s: %w", rentalID, err)
		}
		payment, err := r.Payments.GetByID(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("load payment %s: %w", paymentID, err)
		}
		if payment.RentalID != rentalID {
			return domain.NewValidationError("payment_id", "payment does not belong to this rental")
		}

		claimed, err := r.Payments.MarkFailed(ctx, paymentID)
		if err != nil {
			return err
		}
		if !claimed {
			logger.WarnContext(ctx, "Dropping duplicate payment failure callback",
				"rental_id", rentalID, "payment_id", paymentID, "payment_status", payment.Status)
			return nil
		}

		failed, err := r.Payments.CountFailed(ctx, rentalID)
		if err != nil {
			return err
		}
		if failed >= rc.retryFlagThreshold {
			events = append(events, domain.LifecycleEvent{
				Type:      domain.EventTypePaymentFlagged,
				RentalID:  rentalID,
				UserID:    rental.UserID,
				ProductID: rental.ProductID,
				Attributes: map[string]string{
					"failed_attempts": fmt.Sprintf("%d", failed),
				},
				OccurredAt: rc.clk.Now(),
			})
		}
		return nil
	})
	if err != nil {
		return err
	}
	notify.Dispatch(ctx, rc.notifier, events)
	return nil
}
