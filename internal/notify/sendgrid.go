package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"dresshire-backend/internal/domain"
)

// staffFacing lists the event types the operations inbox cares about.
var staffFacing = map[domain.EventType]bool{
	domain.EventTypeRentalRequested:  true,
	domain.EventTypeRentalCancelled:  true,
	domain.EventTypeRentalCompleted:  true,
	domain.EventTypeDepositForfeited: true,
	domain.EventTypePaymentFlagged:   true,
}

// EmailNotifier sends staff-facing lifecycle notices to the operations
// inbox through SendGrid.
type EmailNotifier struct {
	apiKey    string
	fromEmail string
	fromName  string
	opsEmail  string
}

func NewEmailNotifier(apiKey, fromEmail, fromName, opsEmail string) *EmailNotifier {
	return &EmailNotifier{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		opsEmail:  opsEmail,
	}
}

func (e *EmailNotifier) Publish(_ context.Context, ev domain.LifecycleEvent) error {
	if !staffFacing[ev.Type] {
		return nil
	}

	from := mail.NewEmail(e.fromName, e.fromEmail)
	to := mail.NewEmail("Operations", e.opsEmail)
	subject := fmt.Sprintf("[%s] rental %s", ev.Type, ev.RentalID)
	body := fmt.Sprintf(
		"Event: %s\nRental: %s\nRenter: %d\nProduct: %d\nOccurred: %s\n",
		ev.Type, ev.RentalID, ev.UserID, ev.ProductID, ev.OccurredAt.Format("2006-01-02 15:04:05 MST"))
	for k, v := range ev.Attributes {
		body += fmt.Sprintf("%s: %s\n", k, v)
	}

	message := mail.NewSingleEmail(from, subject, to, body, "")
	client := sendgrid.NewSendClient(e.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}
