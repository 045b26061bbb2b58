package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type RentalStatus string

const (
	RentalStatusPending   RentalStatus = "PENDING"
	RentalStatusApproved  RentalStatus = "APPROVED"
	RentalStatusRejected  RentalStatus = "REJECTED"
	RentalStatusActive    RentalStatus = "ACTIVE"
	RentalStatusCompleted RentalStatus = "COMPLETED"
	RentalStatusCancelled RentalStatus = "CANCELLED"
)

// ParseRentalStatus converts a raw string into a RentalStatus, rejecting
// values outside the closed set.
func ParseRentalStatus(s string) (RentalStatus, error) {
	switch RentalStatus(s) {
	case RentalStatusPending, RentalStatusApproved, RentalStatusRejected,
		RentalStatusActive, RentalStatusCompleted, RentalStatusCancelled:
		return RentalStatus(s), nil
	}
	return "", fmt.Errorf("unknown rental status %q", s)
}

// Terminal reports whether no further lifecycle transitions are possible.
func (s RentalStatus) Terminal() bool {
	return s == RentalStatusRejected || s == RentalStatusCompleted || s == RentalStatusCancelled
}

// Event names a lifecycle transition trigger. The state machine never
// guesses a transition from data; callers always supply an explicit event.
type Event string

const (
	EventApprove          Event = "APPROVE"
	EventReject           Event = "REJECT"
	EventCancel           Event = "CANCEL"
	EventPaymentCompleted Event = "PAYMENT_COMPLETED"
	EventMarkReturned     Event = "MARK_RETURNED"
	EventExpireUnpaid     Event = "EXPIRE_UNPAID"
)

type ActorRole string

const (
	RoleRenter ActorRole = "RENTER"
	RoleStaff  ActorRole = "STAFF"
	RoleSystem ActorRole = "SYSTEM"
)

// Actor identifies who requested a transition.
type Actor struct {
	UserID int32     `json:"user_id"`
	Role   ActorRole `json:"role"`
}

// SystemActor is used by scheduled jobs and gateway callbacks.
var SystemActor = Actor{Role: RoleSystem}

type ReturnCondition string

const (
	ReturnConditionGood    ReturnCondition = "GOOD"
	ReturnConditionDamaged ReturnCondition = "DAMAGED"
)

// RentalOrder is the aggregate the lifecycle engine owns. Once created it
// is mutated only through lifecycle transitions, never by direct field
// assignment from callers.
type RentalOrder struct {
	ID        uuid.UUID `json:"id"`
	UserID    int32     `json:"user_id"`
	ProductID int32     `json:"product_id"`
	// Rental window, half-open: the item is free again on RentalEnd.
	RentalStart time.Time    `json:"rental_start"`
	RentalEnd   time.Time    `json:"rental_end"`
	Status      RentalStatus `json:"status"`
	// Price snapshot fields, fixed at creation time.
	TotalPriceCents      int32           `json:"total_price_cents"`
	SecurityDepositCents int32           `json:"security_deposit_cents"`
	ReturnCondition      ReturnCondition `json:"return_condition,omitempty"`
	// Version guards read-modify-write cycles (optimistic concurrency).
	Version   int32     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Interval returns the rental window as a half-open date interval.
func (r *RentalOrder) Interval() Interval {
	return Interval{Start: r.RentalStart, End: r.RentalEnd}
}
