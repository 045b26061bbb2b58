package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"dresshire-backend/internal/payments"
)

// PaymentHandler lets a renter open a payment attempt for an approved
// rental; the gateway reports the outcome through the webhook.
type PaymentHandler struct {
	reconciler *payments.Reconciler
}

func NewPaymentHandler(reconciler *payments.Reconciler) *PaymentHandler {
	return &PaymentHandler{reconciler: reconciler}
}

type recordAttemptRequest struct {
	AmountCents int32  `json:"amount_cents"`
	Method      string `json:"method"`
}

func (h *PaymentHandler) RecordAttempt(w http.ResponseWriter, r *http.Request) {
	rentalID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid rental id")
		return
	}
	var req recordAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payment, err := h.reconciler.RecordAttempt(r.Context(), claimsFrom(r).Actor(), rentalID, req.AmountCents, req.Method)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}
