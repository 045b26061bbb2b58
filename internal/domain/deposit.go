package domain

import (
	"time"

	"github.com/google/uuid"
)

type DepositStatus string

const (
	DepositStatusPending   DepositStatus = "PENDING"
	DepositStatusRefunded  DepositStatus = "REFUNDED"
	DepositStatusForfeited DepositStatus = "FORFEITED"
)

// DepositRecord tracks the security deposit held for one rental.
// REFUNDED and FORFEITED are reachable only once the rental itself is in
// a terminal state, and a deposit is never disposed twice.
type DepositRecord struct {
	RentalID    uuid.UUID     `json:"rental_id"`
	AmountCents int32         `json:"amount_cents"`
	Status      DepositStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	DisposedAt  *time.Time    `json:"disposed_at,omitempty"`
}
