// Package deposit holds the security-deposit disposition policy. The
// exact damage rule is a business decision that changes without code
// changes elsewhere, so it is a pluggable hook rather than logic baked
// into the state machine.
package deposit

import "dresshire-backend/internal/domain"

// Policy decides what happens to a held deposit when a rental reaches a
// terminal state via return.
type Policy interface {
	Dispose(rental *domain.RentalOrder, condition domain.ReturnCondition) domain.DepositStatus
}

// PolicyFunc adapts a function to the Policy interface.
type PolicyFunc func(rental *domain.RentalOrder, condition domain.ReturnCondition) domain.DepositStatus

func (f PolicyFunc) Dispose(rental *domain.RentalOrder, condition domain.ReturnCondition) domain.DepositStatus {
	return f(rental, condition)
}

// DefaultPolicy refunds unless the return was flagged damaged.
func DefaultPolicy() Policy {
	return PolicyFunc(func(_ *domain.RentalOrder, condition domain.ReturnCondition) domain.DepositStatus {
		if condition == domain.ReturnConditionDamaged {
			return domain.DepositStatusForfeited
		}
		return domain.DepositStatusRefunded
	})
}
