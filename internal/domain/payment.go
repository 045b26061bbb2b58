package domain

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// PaymentRecord is one payment attempt against a rental. A rental may
// accumulate any number of attempts, but at most one COMPLETED payment
// counts toward activation.
type PaymentRecord struct {
	ID          uuid.UUID     `json:"id"`
	RentalID    uuid.UUID     `json:"rental_id"`
	AmountCents int32         `json:"amount_cents"`
	Method      string        `json:"method"`
	Status      PaymentStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
