package notify

import (
	"context"
	"fmt"

	"dresshire-backend/internal/domain"
	"dresshire-backend/internal/repository"
)

// StoreNotifier writes lifecycle events as in-app notification rows for
// the renter. Rows are written outside the originating transaction; a
// retried publish at worst duplicates a notice, never a state change.
type StoreNotifier struct {
	notes repository.NotificationRepository
}

func NewStoreNotifier(notes repository.NotificationRepository) *StoreNotifier {
	return &StoreNotifier{notes: notes}
}

func (s *StoreNotifier) Publish(ctx context.Context, ev domain.LifecycleEvent) error {
	if ev.UserID == 0 {
		return nil
	}
	title, message := renterCopy(ev)
	if title == "" {
		return nil
	}
	attrs := map[string]string{
		"type":      string(ev.Type),
		"rental_id": ev.RentalID.String(),
	}
	for k, v := range ev.Attributes {
		attrs[k] = v
	}
	return s.notes.Create(ctx, &domain.Notification{
		UserID:     ev.UserID,
		Title:      title,
		Message:    message,
		Attributes: attrs,
	})
}

func renterCopy(ev domain.LifecycleEvent) (title, message string) {
	switch ev.Type {
	case domain.EventTypeRentalRequested:
		return "Booking received", "Your rental request is in and waiting for review."
	case domain.EventTypeRentalApproved:
		return "Booking approved", "Your rental was approved. Complete payment to confirm it."
	case domain.EventTypeRentalRejected:
		return "Booking declined", "Your rental request was declined. The dates are free to book again."
	case domain.EventTypeRentalCancelled:
		return "Booking cancelled", "Your rental was cancelled."
	case domain.EventTypeRentalStarted:
		return "Rental confirmed", "Payment received - your rental is confirmed."
	case domain.EventTypeRentalCompleted:
		return "Rental completed", "Thanks for returning your rental."
	case domain.EventTypeDepositRefunded:
		return "Deposit refunded", "Your security deposit refund is on its way."
	case domain.EventTypeDepositForfeited:
		return "Deposit withheld", "Your security deposit was withheld due to the item's return condition."
	case domain.EventTypePaymentFlagged:
		return "Payment problem", fmt.Sprintf("We could not process your payment after %s attempts. Please try a different method.", ev.Attributes["failed_attempts"])
	}
	return "", ""
}
