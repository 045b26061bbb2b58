package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTypeRentalRequested  EventType = "rental.requested"
	EventTypeRentalApproved   EventType = "rental.approved"
	EventTypeRentalRejected   EventType = "rental.rejected"
	EventTypeRentalCancelled  EventType = "rental.cancelled"
	EventTypeRentalStarted    EventType = "rental.started"
	EventTypeRentalCompleted  EventType = "rental.completed"
	EventTypeDepositRefunded  EventType = "deposit.refunded"
	EventTypeDepositForfeited EventType = "deposit.forfeited"
	EventTypePaymentFlagged   EventType = "payment.flagged"
)

// LifecycleEvent is what the core hands to the Notifier after a
// transaction commits. Delivery mechanics are the Notifier's concern.
type LifecycleEvent struct {
	Type       EventType         `json:"type"`
	RentalID   uuid.UUID         `json:"rental_id"`
	UserID     int32             `json:"user_id"`
	ProductID  int32             `json:"product_id"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}
