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

type rentalRepository struct {
	q querier
}

func NewRentalRepository(q querier) repository.RentalRepository {
	return &rentalRepository{q: q}
}

const rentalColumns = `id, user_id, product_id, rental_start, rental_end, status, total_price_cents, security_deposit_cents, return_condition, version, created_at, updated_at`

func (r *rentalRepository) Create(ctx context.Context, rt *domain.RentalOrder) error {
	query := `INSERT INTO rentals (id, user_id, product_id, rental_start, rental_end, status, total_price_cents, security_deposit_cents, version, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx, query,
		rt.ID, rt.UserID, rt.ProductID, rt.RentalStart, rt.RentalEnd, rt.Status,
		rt.TotalPriceCents, rt.SecurityDepositCents, rt.Version, now, now)
	if err != nil {
		return err
	}
	rt.CreatedAt = now
	rt.UpdatedAt = now
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RentalOrder, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

func (r *rentalRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.RentalOrder, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

func (r *rentalRepository) scanOne(row *sql.Row) (*domain.RentalOrder, error) {
	rt := &domain.RentalOrder{}
	var condition sql.NullString
	err := row.Scan(&rt.ID, &rt.UserID, &rt.ProductID, &rt.RentalStart, &rt.RentalEnd,
		&rt.Status, &rt.TotalPriceCents, &rt.SecurityDepositCents, &condition,
		&rt.Version, &rt.CreatedAt, &rt.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rt.ReturnCondition = domain.ReturnCondition(condition.String)
	return rt, nil
}

// UpdateStatus writes the new status guarded by the version the caller
// read. Zero rows affected means another writer got there first.
func (r *rentalRepository) UpdateStatus(ctx context.Context, rt *domain.RentalOrder) error {
	query := `UPDATE rentals
	          SET status = $1, return_condition = NULLIF($2, ''), version = version + 1, updated_at = $3
	          WHERE id = $4 AND version = $5`
	now := time.Now().UTC()
	result, err := r.q.ExecContext(ctx, query, rt.Status, string(rt.ReturnCondition), now, rt.ID, rt.Version)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &domain.ConcurrentModificationError{RentalID: rt.ID}
	}
	rt.Version++
	rt.UpdatedAt = now
	return nil
}

func (r *rentalRepository) ListByProduct(ctx context.Context, productID int32, status domain.RentalStatus) ([]domain.RentalOrder, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE product_id = $1`
	args := []interface{}{productID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY rental_start`
	return r.list(ctx, query, args...)
}

func (r *rentalRepository) ListApprovedUnpaidStartedBefore(ctx context.Context, cutoff time.Time) ([]domain.RentalOrder, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals rt
	          WHERE rt.status = $1 AND rt.rental_start < $2
	            AND NOT EXISTS (
	                SELECT 1 FROM payments p
	                WHERE p.rental_id = rt.id AND p.status = $3
	            )
	          ORDER BY rt.rental_start`
	return r.list(ctx, query, domain.RentalStatusApproved, cutoff, domain.PaymentStatusCompleted)
}

func (r *rentalRepository) ListActiveEndedBefore(ctx context.Context, cutoff time.Time) ([]domain.RentalOrder, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals
	          WHERE status = $1 AND rental_end <= $2
	          ORDER BY rental_end`
	return r.list(ctx, query, domain.RentalStatusActive, cutoff)
}

func (r *rentalRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.RentalOrder, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rentals []domain.RentalOrder
	for rows.Next() {
		var rt domain.RentalOrder
		var condition sql.NullString
		if err := rows.Scan(&rt.ID, &rt.UserID, &rt.ProductID, &rt.RentalStart, &rt.RentalEnd,
			&rt.Status, &rt.TotalPriceCents, &rt.SecurityDepositCents, &condition,
			&rt.Version, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
			return nil, err
		}
		rt.ReturnCondition = domain.ReturnCondition(condition.String)
		rentals = append(rentals, rt)
	}
	return rentals, rows.Err()
}
