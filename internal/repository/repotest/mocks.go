// Package repotest provides mock.Mock implementations of the repository
// interfaces and an in-memory Store for engine tests.
package repotest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"dresshire-backend/internal/domain"
	"dresshire-backend/internal/repository"
)

// MockRentalRepo
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) Create(ctx context.Context, rental *domain.RentalOrder) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}
func (m *MockRentalRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RentalOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalOrder), args.Error(1)
}
func (m *MockRentalRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.RentalOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalOrder), args.Error(1)
}
func (m *MockRentalRepo) UpdateStatus(ctx context.Context, rental *domain.RentalOrder) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}
func (m *MockRentalRepo) ListByProduct(ctx context.Context, productID int32, status domain.RentalStatus) ([]domain.RentalOrder, error) {
	args := m.Called(ctx, productID, status)
	return args.Get(0).([]domain.RentalOrder), args.Error(1)
}
func (m *MockRentalRepo) ListApprovedUnpaidStartedBefore(ctx context.Context, cutoff time.Time) ([]domain.RentalOrder, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]domain.RentalOrder), args.Error(1)
}
func (m *MockRentalRepo) ListActiveEndedBefore(ctx context.Context, cutoff time.Time) ([]domain.RentalOrder, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]domain.RentalOrder), args.Error(1)
}

// MockPaymentRepo
type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) Create(ctx context.Context, payment *domain.PaymentRecord) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}
func (m *MockPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentRecord), args.Error(1)
}
func (m *MockPaymentRepo) MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockPaymentRepo) MarkFailed(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockPaymentRepo) HasCompleted(ctx context.Context, rentalID uuid.UUID) (bool, error) {
	args := m.Called(ctx, rentalID)
	return args.Bool(0), args.Error(1)
}
func (m *MockPaymentRepo) CountFailed(ctx context.Context, rentalID uuid.UUID) (int32, error) {
	args := m.Called(ctx, rentalID)
	return args.Get(0).(int32), args.Error(1)
}

// MockDepositRepo
type MockDepositRepo struct {
	mock.Mock
}

func (m *MockDepositRepo) Create(ctx context.Context, deposit *domain.DepositRecord) error {
	args := m.Called(ctx, deposit)
	return args.Error(0)
}
func (m *MockDepositRepo) GetByRental(ctx context.Context, rentalID uuid.UUID) (*domain.DepositRecord, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DepositRecord), args.Error(1)
}
func (m *MockDepositRepo) Dispose(ctx context.Context, rentalID uuid.UUID, to domain.DepositStatus) (bool, error) {
	args := m.Called(ctx, rentalID, to)
	return args.Bool(0), args.Error(1)
}

// MockReservationRepo
type MockReservationRepo struct {
	mock.Mock
}

func (m *MockReservationRepo) Insert(ctx context.Context, res *domain.AvailabilityReservation) error {
	args := m.Called(ctx, res)
	return args.Error(0)
}
func (m *MockReservationRepo) AnyHeldOverlapping(ctx context.Context, productID int32, iv domain.Interval) (bool, error) {
	args := m.Called(ctx, productID, iv)
	return args.Bool(0), args.Error(1)
}
func (m *MockReservationRepo) ListHeldByProduct(ctx context.Context, productID int32) ([]domain.AvailabilityReservation, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]domain.AvailabilityReservation), args.Error(1)
}
func (m *MockReservationRepo) ReleaseByRental(ctx context.Context, rentalID uuid.UUID) error {
	args := m.Called(ctx, rentalID)
	return args.Error(0)
}
func (m *MockReservationRepo) ArchiveByRental(ctx context.Context, rentalID uuid.UUID) error {
	args := m.Called(ctx, rentalID)
	return args.Error(0)
}

// MockProductRepo
type MockProductRepo struct {
	mock.Mock
}

func (m *MockProductRepo) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}
func (m *MockProductRepo) GetByID(ctx context.Context, id int32) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}
func (m *MockProductRepo) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}
func (m *MockProductRepo) UpdateStatus(ctx context.Context, id int32, status domain.ProductStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// FakeStore hands the same mock repositories to auto-commit reads and to
// WithinTx callbacks, so a test can script one set of expectations.
type FakeStore struct {
	Rentals       *MockRentalRepo
	Payments      *MockPaymentRepo
	Deposits      *MockDepositRepo
	Reservations  *MockReservationRepo
	Products      *MockProductRepo
	Notifications *MockNotificationRepo
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		Rentals:       &MockRentalRepo{},
		Payments:      &MockPaymentRepo{},
		Deposits:      &MockDepositRepo{},
		Reservations:  &MockReservationRepo{},
		Products:      &MockProductRepo{},
		Notifications: &MockNotificationRepo{},
	}
}

func (s *FakeStore) Repos() *repository.Repositories {
	return &repository.Repositories{
		Rentals:       s.Rentals,
		Payments:      s.Payments,
		Deposits:      s.Deposits,
		Reservations:  s.Reservations,
		Products:      s.Products,
		Notifications: s.Notifications,
	}
}

func (s *FakeStore) WithinTx(ctx context.Context, fn func(ctx context.Context, r *repository.Repositories) error) error {
	return fn(ctx, s.Repos())
}
