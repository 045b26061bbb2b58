package http

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"dresshire-backend/internal/availability"
	"dresshire-backend/internal/clock"
	"dresshire-backend/internal/deposit"
	"dresshire-backend/internal/domain"
	"dresshire-backend/internal/lifecycle"
	"dresshire-backend/internal/notify"
	"dresshire-backend/internal/payments"
	"dresshire-backend/internal/repository/repotest"
)

const webhookSecret = "hook-secret"

func newWebhookHandler(store *repotest.FakeStore) *PaymentWebhookHandler {
	clk := clock.Fixed{T: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)}
	machine := lifecycle.NewMachine(store, availability.NewIndex(), deposit.DefaultPolicy(), clk, notify.Nop{})
	reconciler := payments.NewReconciler(store, machine, clk, notify.Nop{}, 3)
	return NewPaymentWebhookHandler(reconciler, webhookSecret)
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func post(handler *PaymentWebhookHandler, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	req.Header.Set("X-Gateway-Signature", signature)
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)
	return rec
}

func TestPaymentWebhook(t *testing.T) {
	rentalID := uuid.New()
	paymentID := uuid.New()
	payload := func(status string) []byte {
		return []byte(fmt.Sprintf(`{"rental_id":%q,"payment_id":%q,"status":%q}`, rentalID, paymentID, status))
	}

	t.Run("RejectsMissingSignature", func(t *testing.T) {
		store := repotest.NewFakeStore()
		rec := post(newWebhookHandler(store), payload("completed"), "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		store.Rentals.AssertNotCalled(t, "GetByIDForUpdate", mock.Anything, mock.Anything)
	})

	t.Run("RejectsTamperedBody", func(t *testing.T) {
		store := repotest.NewFakeStore()
		body := payload("completed")
		tampered := bytes.Replace(body, []byte("completed"), []byte("failed"), 1)
		rec := post(newWebhookHandler(store), tampered, sign(body))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("RejectsUnknownStatus", func(t *testing.T) {
		store := repotest.NewFakeStore()
		body := payload("refunded")
		rec := post(newWebhookHandler(store), body, sign(body))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("CompletedActivatesRental", func(t *testing.T) {
		store := repotest.NewFakeStore()
		rental := &domain.RentalOrder{ID: rentalID, UserID: 42, ProductID: 7, Status: domain.RentalStatusApproved, Version: 2}
		payment := &domain.PaymentRecord{ID: paymentID, RentalID: rentalID, Status: domain.PaymentStatusPending}

		store.Rentals.On("GetByIDForUpdate", mock.Anything, rentalID).Return(rental, nil)
		store.Payments.On("GetByID", mock.Anything, paymentID).Return(payment, nil)
		store.Payments.On("MarkCompleted", mock.Anything, paymentID).Return(true, nil)
		store.Payments.On("HasCompleted", mock.Anything, rentalID).Return(true, nil)
		store.Rentals.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(rt *domain.RentalOrder) bool {
			return rt.Status == domain.RentalStatusActive
		})).Return(nil)

		body := payload("completed")
		rec := post(newWebhookHandler(store), body, sign(body))
		assert.Equal(t, http.StatusOK, rec.Code)
		store.Rentals.AssertExpectations(t)
	})

	t.Run("FailedRecordsAttempt", func(t *testing.T) {
		store := repotest.NewFakeStore()
		rental := &domain.RentalOrder{ID: rentalID, UserID: 42, ProductID: 7, Status: domain.RentalStatusApproved}
		payment := &domain.PaymentRecord{ID: paymentID, RentalID: rentalID, Status: domain.PaymentStatusPending}

		store.Rentals.On("GetByID", mock.Anything, rentalID).Return(rental, nil)
		store.Payments.On("GetByID", mock.Anything, paymentID).Return(payment, nil)
		store.Payments.On("MarkFailed", mock.Anything, paymentID).Return(true, nil)
		store.Payments.On("CountFailed", mock.Anything, rentalID).Return(int32(1), nil)

		body := payload("failed")
		rec := post(newWebhookHandler(store), body, sign(body))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
