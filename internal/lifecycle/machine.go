// Package lifecycle owns the rental status state machine. Every status
// change in the system flows through Transition; nothing else writes
// rental status.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"dresshire-backend/internal/availability"
	"dresshire-backend/internal/clock"
	"dresshire-backend/internal/deposit"
	"dresshire-backend/internal/domain"
	"dresshire-backend/internal/notify"
	"dresshire-backend/internal/repository"
)

// transitions is the closed table of legal (status, event) pairs. Any
// pair absent here fails with InvalidTransitionError; in particular an
// ACTIVE rental can only be returned, never cancelled, and terminal
// states accept nothing.
var transitions = map[domain.RentalStatus]map[domain.Event]domain.RentalStatus{
	domain.RentalStatusPending: {
		domain.EventApprove: domain.RentalStatusApproved,
		domain.EventReject:  domain.RentalStatusRejected,
		domain.EventCancel:  domain.RentalStatusCancelled,
	},
	domain.RentalStatusApproved: {
		domain.EventPaymentCompleted: domain.RentalStatusActive,
		domain.EventCancel:           domain.RentalStatusCancelled,
		domain.EventExpireUnpaid:     domain.RentalStatusCancelled,
	},
	domain.RentalStatusActive: {
		domain.EventMarkReturned: domain.RentalStatusCompleted,
	},
}

// Machine executes lifecycle transitions as single atomic
// read-modify-write operations against current status.
type Machine struct {
	store    repository.Store
	index    *availability.Index
	policy   deposit.Policy
	clk      clock.Clock
	notifier notify.Notifier
}

func NewMachine(store repository.Store, index *availability.Index, policy deposit.Policy, clk clock.Clock, notifier notify.Notifier) *Machine {
	return &Machine{
		store:    store,
		index:    index,
		policy:   policy,
		clk:      clk,
		notifier: notifier,
	}
}

type options struct {
	returnCondition domain.ReturnCondition
	expectedVersion *int32
}

type Option func(*options)

// WithReturnCondition records the inspected condition on a MARK_RETURNED
// transition; it feeds the deposit policy. Defaults to GOOD.
func WithReturnCondition(c domain.ReturnCondition) Option {
	return func(o *options) { o.returnCondition = c }
}

// WithExpectedVersion makes the transition fail with a
// ConcurrentModificationError if the rental changed since the caller
// read the given version.
func WithExpectedVersion(v int32) Option {
	return func(o *options) { o.expectedVersion = &v }
}

// Transition applies one lifecycle event to a rental inside its own
// transaction and publishes the resulting events after commit.
func (m *Machine) Transition(ctx context.Context, rentalID uuid.UUID, event domain.Event, actor domain.Actor, opts ...Option) (*domain.RentalOrder, error) {
	var (
		rental *domain.RentalOrder
		events []domain.LifecycleEvent
	)
	err := m.store.WithinTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
		var err error
		rental, events, err = m.Apply(ctx, r, rentalID, event, actor, opts...)
		return err
	})
	if err != nil {
		return nil, err
	}
	notify.Dispatch(ctx, m.notifier, events)
	return rental, nil
}

// Apply runs one transition against the caller's transaction and returns
// the events to publish once that transaction commits. The payment
// reconciler uses this to settle a payment and activate the rental in
// the same atomic unit.
func (m *Machine) Apply(ctx context.Context, r *repository.Repositories, rentalID uuid.UUID, event domain.Event, actor domain.Actor, opts ...Option) (*domain.RentalOrder, []domain.LifecycleEvent, error) {
	o := &options{returnCondition: domain.ReturnConditionGood}
	for _, opt := range opts {
		opt(o)
	}

	rental, err := r.Rentals.GetByIDForUpdate(ctx, rentalID)
	if err != nil {
		return nil, nil, fmt.Errorf("load rental %s: %w", rentalID, err)
	}
	if o.expectedVersion != nil && rental.Version != *o.expectedVersion {
		return nil, nil, &domain.ConcurrentModificationError{RentalID: rentalID}
	}

	next, ok := transitions[rental.Status][event]
	if !ok {
		return nil, nil, &domain.InvalidTransitionError{RentalID: rentalID, From: rental.Status, Event: event}
	}
	if err := checkActor(rental, event, actor); err != nil {
		return nil, nil, err
	}

	events := []domain.LifecycleEvent{m.event(rental, statusEventType(event))}

	switch event {
	case domain.EventApprove:
		// Status and timestamp only; the reservation stays held.

	case domain.EventReject:
		// No charge has occurred at PENDING, so the deposit record is
		// left untouched; only the reserved window is given back.
		if err := m.index.Release(ctx, r, rentalID); err != nil {
			return nil, nil, fmt.Errorf("release reservation: %w", err)
		}

	case domain.EventCancel, domain.EventExpireUnpaid:
		if err := m.index.Release(ctx, r, rentalID); err != nil {
			return nil, nil, fmt.Errorf("release reservation: %w", err)
		}
		charged, err := r.Payments.HasCompleted(ctx, rentalID)
		if err != nil {
			return nil, nil, err
		}
		if charged {
			disposed, err := r.Deposits.Dispose(ctx, rentalID, domain.DepositStatusRefunded)
			if err != nil {
				return nil, nil, fmt.Errorf("settle deposit: %w", err)
			}
			if disposed {
				events = append(events, m.event(rental, domain.EventTypeDepositRefunded))
			}
		}

	case domain.EventPaymentCompleted:
		// A rental must never go ACTIVE without a completed payment on
		// record; the reconciler settles the payment in this same
		// transaction before applying the event.
		charged, err := r.Payments.HasCompleted(ctx, rentalID)
		if err != nil {
			return nil, nil, err
		}
		if !charged {
			return nil, nil, &domain.InvalidTransitionError{RentalID: rentalID, From: rental.Status, Event: event}
		}

	case domain.EventMarkReturned:
		rental.ReturnCondition = o.returnCondition
		if err := m.index.Archive(ctx, r, rentalID); err != nil {
			return nil, nil, fmt.Errorf("archive reservation: %w", err)
		}
		disposition := m.policy.Dispose(rental, o.returnCondition)
		disposed, err := r.Deposits.Dispose(ctx, rentalID, disposition)
		if err != nil {
			return nil, nil, fmt.Errorf("settle deposit: %w", err)
		}
		if disposed {
			if disposition == domain.DepositStatusForfeited {
				events = append(events, m.event(rental, domain.EventTypeDepositForfeited))
			} else {
				events = append(events, m.event(rental, domain.EventTypeDepositRefunded))
			}
		}
	}

	rental.Status = next
	if err := r.Rentals.UpdateStatus(ctx, rental); err != nil {
		return nil, nil, err
	}
	return rental, events, nil
}

// checkActor enforces who may trigger which event. Approvals and
// rejections are staff decisions; a renter may only cancel their own
// order; expiry is the system's alone.
func checkActor(rental *domain.RentalOrder, event domain.Event, actor domain.Actor) error {
	switch event {
	case domain.EventApprove, domain.EventReject, domain.EventMarkReturned:
		if actor.Role != domain.RoleStaff && actor.Role != domain.RoleSystem {
			return domain.NewValidationError("actor", "staff role required")
		}
	case domain.EventCancel:
		if actor.Role == domain.RoleRenter && actor.UserID != rental.UserID {
			return domain.NewValidationError("actor", "renters may only cancel their own rentals")
		}
	case domain.EventExpireUnpaid, domain.EventPaymentCompleted:
		if actor.Role != domain.RoleSystem {
			return domain.NewValidationError("actor", "system role required")
		}
	}
	return nil
}

func statusEventType(event domain.Event) domain.EventType {
	switch event {
	case domain.EventApprove:
		return domain.EventTypeRentalApproved
	case domain.EventReject:
		return domain.EventTypeRentalRejected
	case domain.EventCancel, domain.EventExpireUnpaid:
		return domain.EventTypeRentalCancelled
	case domain.EventPaymentCompleted:
		return domain.EventTypeRentalStarted
	case domain.EventMarkReturned:
		return domain.EventTypeRentalCompleted
	}
	return ""
}

func (m *Machine) event(rental *domain.RentalOrder, t domain.EventType) domain.LifecycleEvent {
	return domain.LifecycleEvent{
		Type:       t,
		RentalID:   rental.ID,
		UserID:     rental.UserID,
		ProductID:  rental.ProductID,
		OccurredAt: m.clk.Now(),
	}
}
