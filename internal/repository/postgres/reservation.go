package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"dresshire-backend/internal/domain"
	"dresshire-backend/internal/repository"
)

type reservationRepository struct {
	q querier
}

func NewReservationRepository(q querier) repository.ReservationRepository {
	return &reservationRepository{q: q}
}

func (r *reservationRepository) Insert(ctx context.Context, res *domain.AvailabilityReservation) error {
	query := `INSERT INTO availability_reservations (product_id, rental_id, start_date, end_date, state, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	now := time.Now().UTC()
	err := r.q.QueryRowContext(ctx, query,
		res.ProductID, res.RentalID, res.StartDate, res.EndDate, res.State, now, now).Scan(&res.ID)
	if err != nil {
		return err
	}
	res.CreatedAt = now
	res.UpdatedAt = now
	return nil
}

// AnyHeldOverlapping applies the half-open overlap rule in SQL:
// [a,b) and [c,d) intersect iff a < d AND c < b.
func (r *reservationRepository) AnyHeldOverlapping(ctx context.Context, productID int32, iv domain.Interval) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (
	              SELECT 1 FROM availability_reservations
	              WHERE product_id = $1 AND state = $2
	                AND start_date < $3 AND $4 < end_date
	          )`
	err := r.q.QueryRowContext(ctx, query, productID, domain.ReservationHeld, iv.End, iv.Start).Scan(&exists)
	return exists, err
}

func (r *reservationRepository) ListHeldByProduct(ctx context.Context, productID int32) ([]domain.AvailabilityReservation, error) {
	query := `SELECT id, product_id, rental_id, start_date, end_date, state, created_at, updated_at
	          FROM availability_reservations
	          WHERE product_id = $1 AND state = $2
	          ORDER BY start_date`
	rows, err := r.q.QueryContext(ctx, query, productID, domain.ReservationHeld)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []domain.AvailabilityReservation
	for rows.Next() {
		var res domain.AvailabilityReservation
		if err := rows.Scan(&res.ID, &res.ProductID, &res.RentalID, &res.StartDate, &res.EndDate,
			&res.State, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

func (r *reservationRepository) ReleaseByRental(ctx context.Context, rentalID uuid.UUID) error {
	return r.retire(ctx, rentalID, domain.ReservationReleased)
}

func (r *reservationRepository) ArchiveByRental(ctx context.Context, rentalID uuid.UUID) error {
	return r.retire(ctx, rentalID, domain.ReservationArchived)
}

// retire is idempotent: the HELD filter makes a second call a no-op.
func (r *reservationRepository) retire(ctx context.Context, rentalID uuid.UUID, to domain.ReservationState) error {
	query := `UPDATE availability_reservations SET state = $1, updated_at = $2
	          WHERE rental_id = $3 AND state = $4`
	_, err := r.q.ExecContext(ctx, query, to, time.Now().UTC(), rentalID, domain.ReservationHeld)
	return err
}
