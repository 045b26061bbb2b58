package http

import (
	"encoding/json"
	"net/http"

	"dresshire-backend/internal/domain"
	"dresshire-backend/internal/repository"
)

// ProductHandler exposes the minimal catalog surface: staff maintain
// products, renters read them.
type ProductHandler struct {
	products repository.ProductRepository
}

func NewProductHandler(products repository.ProductRepository) *ProductHandler {
	return &ProductHandler{products: products}
}

type createProductRequest struct {
	Name             string `json:"name"`
	PricePerDayCents int32  `json:"price_per_day_cents"`
	DepositCents     int32  `json:"deposit_cents"`
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, domain.NewValidationError("name", "is required"))
		return
	}
	if req.PricePerDayCents < 0 || req.DepositCents < 0 {
		writeError(w, domain.NewValidationError("pricing", "amounts must not be negative"))
		return
	}

	product := &domain.Product{
		Name:             req.Name,
		PricePerDayCents: req.PricePerDayCents,
		DepositCents:     req.DepositCents,
		Status:           domain.ProductStatusActive,
	}
	if err := h.products.Create(r.Context(), product); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid product id")
		return
	}
	product, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

type updateProductStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus takes a product in or out of rotation. Existing bookings
// are untouched; only new reservations see the change.
func (h *ProductHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var req updateProductStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, err := domain.ParseProductStatus(req.Status)
	if err != nil {
		writeError(w, domain.NewValidationError("status", err.Error()))
		return
	}

	if err := h.products.UpdateStatus(r.Context(), id, status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}
