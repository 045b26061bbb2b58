// Package booking turns rental requests into committed pending orders.
package booking

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"dresshire-backend/internal/availability"
	"dresshire-backend/internal/clock"
	"dresshire-backend/internal/domain"
	"dresshire-backend/internal/notify"
	"dresshire-backend/internal/repository"
)

// PriceQuote is the monetary snapshot fixed onto the order at creation.
type PriceQuote struct {
	TotalCents   int32
	DepositCents int32
}

// Engine validates booking requests and commits them against the
// availability index.
type Engine struct {
	store       repository.Store
	index       *availability.Index
	clk         clock.Clock
	notifier    notify.Notifier
	minLeadDays int
}

func NewEngine(store repository.Store, index *availability.Index, clk clock.Clock, notifier notify.Notifier, minLeadDays int) *Engine {
	return &Engine{
		store:       store,
		index:       index,
		clk:         clk,
		notifier:    notifier,
		minLeadDays: minLeadDays,
	}
}

// CreateRental validates the request and, in one transaction, re-checks
// availability, inserts the reservation, and creates the order and its
// deposit record at PENDING. All four writes commit together or not at
// all. A date collision returns a ConflictError with a next-available
// hint so the caller can offer alternatives.
func (e *Engine) CreateRental(ctx context.Context, userID int32, productID int32, iv domain.Interval, quote PriceQuote) (*domain.RentalOrder, error) {
	if err := iv.Validate(); err != nil {
		return nil, err
	}
	earliest := domain.Midnight(e.clk.Now()).AddDate(0, 0, e.minLeadDays)
	if iv.Start.Before(earliest) {
		return nil, domain.NewValidationError("start",
			fmt.Sprintf("rentals must start on or after %s", earliest.Format(domain.DateLayout)))
	}
	if quote.TotalCents < 0 || quote.DepositCents < 0 {
		return nil, domain.NewValidationError("price_quote", "amounts must not be negative")
	}

	rental := &domain.RentalOrder{
		ID:                   uuid.New(),
		UserID:               userID,
		ProductID:            productID,
		RentalStart:          iv.Start,
		RentalEnd:            iv.End,
		Status:               domain.RentalStatusPending,
		TotalPriceCents:      quote.TotalCents,
		SecurityDepositCents: quote.DepositCents,
	}

	err := e.store.WithinTx(ctx, func(ctx context.Context, r *repository.Repositories) error {
		// The product row lock serializes concurrent bookings for the
		// same product; of two racing overlapping requests exactly one
		// survives the re-check below.
		product, err := r.Products.GetByIDForUpdate(ctx, productID)
		if err != nil {
			return fmt.Errorf("load product %d: %w", productID, err)
		}
		if !product.Status.Rentable() {
			return domain.NewValidationError("product_id",
				fmt.Sprintf("product is %s and cannot be booked", product.Status))
		}
		if err := e.index.Reserve(ctx, r, productID, rental.ID, iv); err != nil {
			return err
		}
		if err := r.Rentals.Create(ctx, rental); err != nil {
			return fmt.Errorf("create rental: %w", err)
		}
		if err := r.Deposits.Create(ctx, &domain.DepositRecord{
			RentalID:    rental.ID,
			AmountCents: quote.DepositCents,
			Status:      domain.DepositStatusPending,
		}); err != nil {
			return fmt.Errorf("create deposit: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	notify.Dispatch(ctx, e.notifier, []domain.LifecycleEvent{{
		Type:       domain.EventTypeRentalRequested,
		RentalID:   rental.ID,
		UserID:     userID,
		ProductID:  productID,
		Attributes: map[string]string{"interval": iv.String()},
		OccurredAt: e.clk.Now(),
	}})
	return rental, nil
}

// QueryAvailability reports whether the interval is currently free. The
// answer is advisory; CreateRental re-checks under the product lock.
func (e *Engine) QueryAvailability(ctx context.Context, productID int32, iv domain.Interval) (bool, error) {
	return e.index.Query(ctx, e.store.Repos(), productID, iv)
}

// NextAvailable returns the earliest bookable window of the given length,
// starting no earlier than the booking lead policy allows.
func (e *Engine) NextAvailable(ctx context.Context, productID int32, durationDays int32) (*domain.Interval, error) {
	from := domain.Midnight(e.clk.Now()).AddDate(0, 0, e.minLeadDays)
	return e.index.NextAvailable(ctx, e.store.Repos(), productID, durationDays, from)
}

func (e *Engine) GetRental(ctx context.Context, id uuid.UUID) (*domain.RentalOrder, error) {
	return e.store.Repos().Rentals.GetByID(ctx, id)
}

// ListRentalsForProduct returns the product's rentals, optionally
// filtered by status.
func (e *Engine) ListRentalsForProduct(ctx context.Context, productID int32, status domain.RentalStatus) ([]domain.RentalOrder, error) {
	if status != "" {
		if _, err := domain.ParseRentalStatus(string(status)); err != nil {
			return nil, domain.NewValidationError("status", err.Error())
		}
	}
	return e.store.Repos().Rentals.ListByProduct(ctx, productID, status)
}
