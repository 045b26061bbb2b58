package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"dresshire-backend/internal/domain"
	"dresshire-backend/internal/repository/postgres"
)

var rentalCols = []string{"id", "user_id", "product_id", "rental_start", "rental_end", "status",
	"total_price_cents", "security_deposit_cents", "return_condition", "version", "created_at", "updated_at"}

func TestRentalRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rental := &domain.RentalOrder{
			ID:                   uuid.New(),
			UserID:               42,
			ProductID:            7,
			RentalStart:          time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
			RentalEnd:            time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
			Status:               domain.RentalStatusPending,
			TotalPriceCents:      18000,
			SecurityDepositCents: 10000,
		}

		mock.ExpectExec("INSERT INTO rentals").
			WithArgs(rental.ID, rental.UserID, rental.ProductID, rental.RentalStart, rental.RentalEnd,
				rental.Status, rental.TotalPriceCents, rental.SecurityDepositCents, rental.Version,
				sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Create(ctx, rental)
		assert.NoError(t, err)
		assert.False(t, rental.CreatedAt.IsZero())
	})
}

func TestRentalRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		id := uuid.New()
		rows := sqlmock.NewRows(rentalCols).
			AddRow(id.String(), 42, 7, time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
				time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC), "APPROVED", 18000, 10000, nil, 2,
				time.Now(), time.Now())

		mock.ExpectQuery("SELECT (.+) FROM rentals WHERE id = \\$1").
			WithArgs(id).
			WillReturnRows(rows)

		rental, err := repo.GetByID(ctx, id)
		assert.NoError(t, err)
		assert.Equal(t, id, rental.ID)
		assert.Equal(t, domain.RentalStatusApproved, rental.Status)
		assert.Equal(t, int32(2), rental.Version)
		assert.Empty(t, rental.ReturnCondition)
	})

	t.Run("NotFound", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectQuery("SELECT (.+) FROM rentals WHERE id = \\$1").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(rentalCols))

		_, err := repo.GetByID(ctx, id)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRentalRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rental := &domain.RentalOrder{ID: uuid.New(), Status: domain.RentalStatusApproved, Version: 2}

		mock.ExpectExec("UPDATE rentals").
			WithArgs(rental.Status, "", sqlmock.AnyArg(), rental.ID, int32(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatus(ctx, rental)
		assert.NoError(t, err)
		assert.Equal(t, int32(3), rental.Version)
	})

	t.Run("StaleVersion", func(t *testing.T) {
		rental := &domain.RentalOrder{ID: uuid.New(), Status: domain.RentalStatusApproved, Version: 2}

		mock.ExpectExec("UPDATE rentals").
			WithArgs(rental.Status, "", sqlmock.AnyArg(), rental.ID, int32(2)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(ctx, rental)
		var concurrentErr *domain.ConcurrentModificationError
		assert.ErrorAs(t, err, &concurrentErr)
		assert.Equal(t, int32(2), rental.Version, "version is not bumped on a lost race")
	})
}

func TestRentalRepository_ListApprovedUnpaidStartedBefore(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()
	cutoff := time.Date(2026, 9, 4, 3, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(rentalCols).
		AddRow(uuid.New().String(), 42, 7, time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC), "APPROVED", 18000, 10000, nil, 2,
			time.Now(), time.Now())

	mock.ExpectQuery("SELECT (.+) FROM rentals rt").
		WithArgs(domain.RentalStatusApproved, cutoff, domain.PaymentStatusCompleted).
		WillReturnRows(rows)

	rentals, err := repo.ListApprovedUnpaidStartedBefore(ctx, cutoff)
	assert.NoError(t, err)
	assert.Len(t, rentals, 1)
	assert.Equal(t, domain.RentalStatusApproved, rentals[0].Status)
}
