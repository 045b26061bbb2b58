package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"dresshire-backend/internal/domain"
)

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.RentalOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RentalOrder, error)
	// GetByIDForUpdate locks the rental row for the remainder of the
	// transaction. Only valid inside a unit of work.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.RentalOrder, error)
	// UpdateStatus persists status, return condition and updated_at,
	// guarded by the rental's version. A stale version yields a
	// ConcurrentModificationError.
	UpdateStatus(ctx context.Context, rental *domain.RentalOrder) error
	ListByProduct(ctx context.Context, productID int32, status domain.RentalStatus) ([]domain.RentalOrder, error)
	// ListApprovedUnpaidStartedBefore finds approved rentals whose window
	// opened before the cutoff and that still have no completed payment.
	ListApprovedUnpaidStartedBefore(ctx context.Context, cutoff time.Time) ([]domain.RentalOrder, error)
	// ListActiveEndedBefore finds active rentals whose window closed
	// before the cutoff.
	ListActiveEndedBefore(ctx context.Context, cutoff time.Time) ([]domain.RentalOrder, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.PaymentRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentRecord, error)
	// MarkCompleted moves a payment from PENDING to COMPLETED and reports
	// whether this call made the change. A false return means another
	// caller already settled the attempt.
	MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error)
	// MarkFailed moves a payment from PENDING to FAILED, same claim
	// semantics as MarkCompleted.
	MarkFailed(ctx context.Context, id uuid.UUID) (bool, error)
	HasCompleted(ctx context.Context, rentalID uuid.UUID) (bool, error)
	CountFailed(ctx context.Context, rentalID uuid.UUID) (int32, error)
}

type DepositRepository interface {
	Create(ctx context.Context, deposit *domain.DepositRecord) error
	GetByRental(ctx context.Context, rentalID uuid.UUID) (*domain.DepositRecord, error)
	// Dispose settles a PENDING deposit as REFUNDED or FORFEITED and
	// reports whether this call made the change; an already-disposed
	// deposit is left untouched.
	Dispose(ctx context.Context, rentalID uuid.UUID, to domain.DepositStatus) (bool, error)
}

type ReservationRepository interface {
	Insert(ctx context.Context, res *domain.AvailabilityReservation) error
	// AnyHeldOverlapping reports whether a HELD reservation for the
	// product intersects the half-open interval.
	AnyHeldOverlapping(ctx context.Context, productID int32, iv domain.Interval) (bool, error)
	// ListHeldByProduct returns HELD reservations ordered by start date.
	ListHeldByProduct(ctx context.Context, productID int32) ([]domain.AvailabilityReservation, error)
	// ReleaseByRental logically deletes the rental's claim. Releasing an
	// already-released reservation is a no-op.
	ReleaseByRental(ctx context.Context, rentalID uuid.UUID) error
	// ArchiveByRental retires a completed rental's claim from conflict
	// checks while keeping the row as a historical record.
	ArchiveByRental(ctx context.Context, rentalID uuid.UUID) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id int32) (*domain.Product, error)
	// GetByIDForUpdate locks the product row, serializing concurrent
	// reservation attempts for the same product. Only valid inside a
	// unit of work.
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.Product, error)
	UpdateStatus(ctx context.Context, id int32, status domain.ProductStatus) error
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}

// Repositories bundles every repository bound to one querier, either the
// bare connection pool or a single transaction.
type Repositories struct {
	Rentals       RentalRepository
	Payments      PaymentRepository
	Deposits      DepositRepository
	Reservations  ReservationRepository
	Products      ProductRepository
	Notifications NotificationRepository
}

// Store is the persistence gateway the engine components depend on. The
// booking commit protocol and every lifecycle transition run inside
// WithinTx: all writes in fn commit together or not at all, and row
// locks taken in fn are held until commit.
type Store interface {
	// Repos returns auto-commit repositories for plain reads.
	Repos() *Repositories
	// WithinTx runs fn inside one transaction and commits if fn returns
	// nil, rolling back otherwise. A lock wait that exceeds the
	// configured bound surfaces as domain.ErrBusy.
	WithinTx(ctx context.Context, fn func(ctx context.Context, r *Repositories) error) error
}
