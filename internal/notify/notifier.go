// Package notify carries lifecycle events out of the engine. The core
// only emits events after its transaction commits; delivery mechanics
// and delivery idempotency belong to the channel implementations.
package notify

import (
	"context"

	"dresshire-backend/internal/domain"
	"dresshire-backend/internal/logger"
)

// Notifier receives lifecycle events for dispatch. Fire-and-forget with
// at-least-once delivery is acceptable.
type Notifier interface {
	Publish(ctx context.Context, ev domain.LifecycleEvent) error
}

// Dispatch fans events out after a commit, logging failures instead of
// surfacing them; a slow or broken channel must never fail a committed
// transition.
func Dispatch(ctx context.Context, n Notifier, events []domain.LifecycleEvent) {
	if n == nil {
		return
	}
	for _, ev := range events {
		if err := n.Publish(ctx, ev); err != nil {
			logger.WarnContext(ctx, "Failed to publish lifecycle event",
				"type", ev.Type, "rental_id", ev.RentalID, "error", err)
		}
	}
}

// Multi fans a single event out to several channels.
type Multi []Notifier

func (m Multi) Publish(ctx context.Context, ev domain.LifecycleEvent) error {
	for _, n := range m {
		if err := n.Publish(ctx, ev); err != nil {
			logger.WarnContext(ctx, "Notification channel failed", "type", ev.Type, "error", err)
		}
	}
	return nil
}

// Nop drops every event; used when no channels are configured.
type Nop struct{}

func (Nop) Publish(context.Context, domain.LifecycleEvent) error { return nil }

// Log writes events to the application log, the default channel in dev.
type Log struct{}

func (Log) Publish(ctx context.Context, ev domain.LifecycleEvent) error {
	logger.Get().InfoContext(ctx, "Lifecycle event",
		"type", ev.Type, "rental_id", ev.RentalID, "user_id", ev.UserID, "product_id", ev.ProductID)
	return nil
}
