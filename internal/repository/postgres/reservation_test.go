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

func TestReservationRepository_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewReservationRepository(db)
	ctx := context.Background()

	res := &domain.AvailabilityReservation{
		ProductID: 7,
		RentalID:  uuid.New(),
		StartDate: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
		State:     domain.ReservationHeld,
	}

	mock.ExpectQuery("INSERT INTO availability_reservations").
		WithArgs(res.ProductID, res.RentalID, res.StartDate, res.EndDate, res.State,
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	err = repo.Insert(ctx, res)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), res.ID)
}

func TestReservationRepository_AnyHeldOverlapping(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewReservationRepository(db)
	ctx := context.Background()
	iv := domain.Interval{
		Start: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
	}

	// The half-open rule binds the interval's End to start_date and its
	// Start to end_date, so the argument order is (end, start).
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int32(7), domain.ReservationHeld, iv.End, iv.Start).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	overlap, err := repo.AnyHeldOverlapping(ctx, 7, iv)
	assert.NoError(t, err)
	assert.True(t, overlap)
}

func TestReservationRepository_Retire(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewReservationRepository(db)
	ctx := context.Background()
	rentalID := uuid.New()

	t.Run("Release", func(t *testing.T) {
		mock.ExpectExec("UPDATE availability_reservations").
			WithArgs(domain.ReservationReleased, sqlmock.AnyArg(), rentalID, domain.ReservationHeld).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.ReleaseByRental(ctx, rentalID))
	})

	t.Run("ReleaseAgainIsNoOp", func(t *testing.T) {
		// The HELD filter matches nothing the second time; zero rows is
		// still success.
		mock.ExpectExec("UPDATE availability_reservations").
			WithArgs(domain.ReservationReleased, sqlmock.AnyArg(), rentalID, domain.ReservationHeld).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.ReleaseByRental(ctx, rentalID))
	})

	t.Run("Archive", func(t *testing.T) {
		mock.ExpectExec("UPDATE availability_reservations").
			WithArgs(domain.ReservationArchived, sqlmock.AnyArg(), rentalID, domain.ReservationHeld).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.ArchiveByRental(ctx, rentalID))
	})
}

func TestReservationRepository_ListHeldByProduct(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewReservationRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"id", "product_id", "rental_id", "start_date", "end_date", "state", "created_at", "updated_at"}).
		AddRow(int64(1), 7, uuid.New().String(), time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC), "HELD", time.Now(), time.Now())

	mock.ExpectQuery("SELECT (.+) FROM availability_reservations").
		WithArgs(int32(7), domain.ReservationHeld).
		WillReturnRows(rows)

	reservations, err := repo.ListHeldByProduct(ctx, 7)
	assert.NoError(t, err)
	assert.Len(t, reservations, 1)
	assert.Equal(t, domain.ReservationHeld, reservations[0].State)
}
