package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"dresshire-backend/internal/domain"
	"dresshire-backend/internal/repository/repotest"
)

func TestProductCreate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		products := new(repotest.MockProductRepo)
		products.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
			return p.Name == "Silk gown" &&
				p.PricePerDayCents == 4500 &&
				p.DepositCents == 20000 &&
				p.Status == domain.ProductStatusActive
		})).Return(nil)
		handler := NewProductHandler(products)

		body := bytes.NewBufferString(`{"name":"Silk gown","price_per_day_cents":4500,"deposit_cents":20000}`)
		req := httptest.NewRequest(http.MethodPost, "/products", body)
		rec := httptest.NewRecorder()
		handler.Create(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		products.AssertExpectations(t)
	})

	t.Run("RejectsMissingName", func(t *testing.T) {
		products := new(repotest.MockProductRepo)
		handler := NewProductHandler(products)

		body := bytes.NewBufferString(`{"price_per_day_cents":4500}`)
		req := httptest.NewRequest(http.MethodPost, "/products", body)
		rec := httptest.NewRecorder()
		handler.Create(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("RejectsNegativeAmounts", func(t *testing.T) {
		products := new(repotest.MockProductRepo)
		handler := NewProductHandler(products)

		body := bytes.NewBufferString(`{"name":"Silk gown","price_per_day_cents":-1}`)
		req := httptest.NewRequest(http.MethodPost, "/products", body)
		rec := httptest.NewRecorder()
		handler.Create(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestProductGet(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		products := new(repotest.MockProductRepo)
		products.On("GetByID", mock.Anything, int32(7)).Return(&domain.Product{
			ID:     7,
			Name:   "Silk gown",
			Status: domain.ProductStatusActive,
		}, nil)
		handler := NewProductHandler(products)

		req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/products/7", nil), map[string]string{"id": "7"})
		rec := httptest.NewRecorder()
		handler.Get(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Silk gown")
	})

	t.Run("NotFound", func(t *testing.T) {
		products := new(repotest.MockProductRepo)
		products.On("GetByID", mock.Anything, int32(99)).Return(nil, domain.ErrNotFound)
		handler := NewProductHandler(products)

		req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/products/99", nil), map[string]string{"id": "99"})
		rec := httptest.NewRecorder()
		handler.Get(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestProductUpdateStatus(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		products := new(repotest.MockProductRepo)
		products.On("UpdateStatus", mock.Anything, int32(7), domain.ProductStatusInactive).Return(nil)
		handler := NewProductHandler(products)

		body := bytes.NewBufferString(`{"status":"INACTIVE"}`)
		req := mux.SetURLVars(httptest.NewRequest(http.MethodPost, "/products/7/status", body), map[string]string{"id": "7"})
		rec := httptest.NewRecorder()
		handler.UpdateStatus(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		products.AssertExpectations(t)
	})

	t.Run("RejectsUnknownStatus", func(t *testing.T) {
		products := new(repotest.MockProductRepo)
		handler := NewProductHandler(products)

		body := bytes.NewBufferString(`{"status":"RETIRED"}`)
		req := mux.SetURLVars(httptest.NewRequest(http.MethodPost, "/products/7/status", body), map[string]string{"id": "7"})
		rec := httptest.NewRecorder()
		handler.UpdateStatus(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		products.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}
