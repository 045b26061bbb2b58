package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"dresshire-backend/internal/domain"
	"dresshire-backend/internal/repository"
)

type depositRepository struct {
	q querier
}

func NewDepositRepository(q querier) repository.DepositRepository {
	return &depositRepository{q: q}
}

func (r *depositRepository) Create(ctx context.Context, d *domain.DepositRecord) error {
	query := `INSERT INTO deposits (rental_id, amount_cents, status, created_at)
	          VALUES ($1, $2, $3, $4)`
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx, query, d.RentalID, d.AmountCents, d.Status, now)
	if err != nil {
		return err
	}
	d.CreatedAt = now
	return nil
}

func (r *depositRepository) GetByRental(ctx context.Context, rentalID uuid.UUID) (*domain.DepositRecord, error) {
	d := &domain.DepositRecord{}
	query := `SELECT rental_id, amount_cents, status, created_at, disposed_at
	          FROM deposits WHERE rental_id = $1`
	err := r.q.QueryRowContext(ctx, query, rentalID).Scan(
		&d.RentalID, &d.AmountCents, &d.Status, &d.CreatedAt, &d.DisposedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Dispose settles the deposit exactly once; the PENDING filter is what
// keeps a deposit from being refunded twice.
func (r *depositRepository) Dispose(ctx context.Context, rentalID uuid.UUID, to domain.DepositStatus) (bool, error) {
	query := `UPDATE deposits SET status = $1, disposed_at = $2 WHERE rental_id = $3 AND status = $4`
	result, err := r.q.ExecContext(ctx, query, to, time.Now().UTC(), rentalID, domain.DepositStatusPending)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
