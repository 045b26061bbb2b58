package jobs_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"dresshire-backend/internal/availability"
	"dresshire-backend/internal/clock"
	"dresshire-backend/internal/config"
	"dresshire-backend/internal/deposit"
	"dresshire-backend/internal/domain"
	"dresshire-backend/internal/jobs"
	"dresshire-backend/internal/lifecycle"
	"dresshire-backend/internal/notify"
	"dresshire-backend/internal/repository/repotest"
)

var now = time.Date(2026, 9, 5, 3, 0, 0, 0, time.UTC)

func newRunner(store *repotest.FakeStore) *jobs.JobRunner {
	clk := clock.Fixed{T: now}
	machine := lifecycle.NewMachine(store, availability.NewIndex(), deposit.DefaultPolicy(), clk, notify.Nop{})
	cfg := &config.Config{}
	cfg.Booking.PaymentGraceHours = 24
	return jobs.NewJobRunner(store, machine, clk, cfg)
}

func TestExpireUnpaidRentals(t *testing.T) {
	store := repotest.NewFakeStore()
	runner := newRunner(store)

	rental := &domain.RentalOrder{
		ID:          uuid.New(),
		UserID:      42,
		ProductID:   7,
		RentalStart: time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC),
		RentalEnd:   time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC),
		Status:      domain.RentalStatusApproved,
		Version:     2,
	}
	cutoff := now.Add(-24 * time.Hour)

	store.Rentals.On("ListApprovedUnpaidStartedBefore", mock.Anything, cutoff).
		Return([]domain.RentalOrder{*rental}, nil)
	store.Rentals.On("GetByIDForUpdate", mock.Anything, rental.ID).Return(rental, nil)
	store.Reservations.On("ReleaseByRental", mock.Anything, rental.ID).Return(nil)
	store.Payments.On("HasCompleted", mock.Anything, rental.ID).Return(false, nil)
	store.Rentals.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(rt *domain.RentalOrder) bool {
		return rt.Status == domain.RentalStatusCancelled
	})).Return(nil)

	runner.ExpireUnpaidRentals()

	store.Rentals.AssertExpectations(t)
	store.Reservations.AssertExpectations(t)
}

func TestExpireUnpaidRentalsToleratesLostRace(t *testing.T) {
	store := repotest.NewFakeStore()
	runner := newRunner(store)

	// The rental was paid between the scan and the lock; the transition
	// fails and the job moves on without touching it.
	rental := &domain.RentalOrder{
		ID:     uuid.New(),
		Status: domain.RentalStatusActive,
	}
	store.Rentals.On("ListApprovedUnpaidStartedBefore", mock.Anything, mock.Anything).
		Return([]domain.RentalOrder{{ID: rental.ID, Status: domain.RentalStatusApproved}}, nil)
	store.Rentals.On("GetByIDForUpdate", mock.Anything, rental.ID).Return(rental, nil)

	runner.ExpireUnpaidRentals()

	store.Rentals.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestCompleteOverdueRentals(t *testing.T) {
	store := repotest.NewFakeStore()
	runner := newRunner(store)

	rental := &domain.RentalOrder{
		ID:          uuid.New(),
		UserID:      42,
		ProductID:   7,
		RentalStart: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		RentalEnd:   time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC),
		Status:      domain.RentalStatusActive,
		Version:     3,
	}
	today := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)

	store.Rentals.On("ListActiveEndedBefore", mock.Anything, today).
		Return([]domain.RentalOrder{*rental}, nil)
	store.Rentals.On("GetByIDForUpdate", mock.Anything, rental.ID).Return(rental, nil)
	store.Reservations.On("ArchiveByRental", mock.Anything, rental.ID).Return(nil)
	store.Deposits.On("Dispose", mock.Anything, rental.ID, domain.DepositStatusRefunded).Return(true, nil)
	store.Rentals.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(rt *domain.RentalOrder) bool {
		return rt.Status == domain.RentalStatusCompleted && rt.ReturnCondition == domain.ReturnConditionGood
	})).Return(nil)

	runner.CompleteOverdueRentals()

	store.Rentals.AssertExpectations(t)
	store.Deposits.AssertExpectations(t)
}
