package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"dresshire-backend/internal/security"
)

// NewRouter wires all HTTP routes. The payment webhook sits outside the
// token middleware; it authenticates with a gateway signature instead.
func NewRouter(rentals *RentalHandler, products *ProductHandler, notifications *NotificationHandler, paymentAttempts *PaymentHandler, webhook *PaymentWebhookHandler, tm security.TokenManager) *mux.Router {
	root := mux.NewRouter()

	root.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	root.HandleFunc("/api/v1/payments/webhook", webhook.Handle).Methods(http.MethodPost)

	api := root.PathPrefix("/api/v1").Subrouter()
	api.Use(Authenticate(tm))

	api.HandleFunc("/rentals", rentals.Create).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}", rentals.Get).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id}/approve", RequireStaff(rentals.Approve)).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}/reject", RequireStaff(rentals.Reject)).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}/cancel", rentals.Cancel).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}/return", RequireStaff(rentals.Return)).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}/payments", paymentAttempts.RecordAttempt).Methods(http.MethodPost)

	api.HandleFunc("/products", RequireStaff(products.Create)).Methods(http.MethodPost)
	api.HandleFunc("/products/{id}", products.Get).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}/status", RequireStaff(products.UpdateStatus)).Methods(http.MethodPost)
	api.HandleFunc("/products/{id}/rentals", rentals.ListForProduct).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}/availability", rentals.Availability).Methods(http.MethodGet)

	api.HandleFunc("/notifications", notifications.List).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id}/read", notifications.MarkRead).Methods(http.MethodPost)

	return root
}
