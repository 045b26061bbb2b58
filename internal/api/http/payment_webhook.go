package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"

	"dresshire-backend/internal/payments"
)

// PaymentWebhookHandler receives payment gateway callbacks. Callbacks
// are authenticated by an HMAC-SHA256 signature over the raw body, not
// by user tokens.
type PaymentWebhookHandler struct {
	reconciler *payments.Reconciler
	secret     []byte
}

func NewPaymentWebhookHandler(reconciler *payments.Reconciler, secret string) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{reconciler: reconciler, secret: []byte(secret)}
}

type webhookPayload struct {
	RentalID  string `json:"rental_id"`
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"` // "completed" or "failed"
}

func (h *PaymentWebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "unreadable body")
		return
	}
	if !h.verifySignature(body, r.Header.Get("X-Gateway-Signature")) {
		writeErrorMessage(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid payload")
		return
	}
	rentalID, err := uuid.Parse(payload.RentalID)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid rental_id")
		return
	}
	paymentID, err := uuid.Parse(payload.PaymentID)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid payment_id")
		return
	}

	switch payload.Status {
	case "completed":
		err = h.reconciler.OnPaymentCompleted(r.Context(), rentalID, paymentID)
	case "failed":
		err = h.reconciler.OnPaymentFailed(r.Context(), rentalID, paymentID)
	default:
		writeErrorMessage(w, http.StatusBadRequest, "status must be completed or failed")
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": "ok"})
}

func (h *PaymentWebhookHandler) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
