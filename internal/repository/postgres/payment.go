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

type paymentRepository struct {
	q querier
}

func NewPaymentRepository(q querier) repository.PaymentRepository {
	return &paymentRepository{q: q}
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.PaymentRecord) error {
	query := `INSERT INTO payments (id, rental_id, amount_cents, method, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx, query, p.ID, p.RentalID, p.AmountCents, p.Method, p.Status, now, now)
	if err != nil {
		return err
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentRecord, error) {
	p := &domain.PaymentRecord{}
	query := `SELECT id, rental_id, amount_cents, method, status, created_at, updated_at
	          FROM payments WHERE id = $1`
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.RentalID, &p.AmountCents, &p.Method, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// MarkCompleted claims the attempt: the status filter makes concurrent
// settlements race on the row and exactly one caller sees true.
func (r *paymentRepository) MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.settle(ctx, id, domain.PaymentStatusCompleted)
}

func (r *paymentRepository) MarkFailed(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.settle(ctx, id, domain.PaymentStatusFailed)
}

func (r *paymentRepository) settle(ctx context.Context, id uuid.UUID, to domain.PaymentStatus) (bool, error) {
	query := `UPDATE payments SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := r.q.ExecContext(ctx, query, to, time.Now().UTC(), id, domain.PaymentStatusPending)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *paymentRepository) HasCompleted(ctx context.Context, rentalID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM payments WHERE rental_id = $1 AND status = $2)`
	err := r.q.QueryRowContext(ctx, query, rentalID, domain.PaymentStatusCompleted).Scan(&exists)
	return exists, err
}

func (r *paymentRepository) CountFailed(ctx context.Context, rentalID uuid.UUID) (int32, error) {
	var count int32
	query := `SELECT count(*) FROM payments WHERE rental_id = $1 AND status = $2`
	err := r.q.QueryRowContext(ctx, query, rentalID, domain.PaymentStatusFailed).Scan(&count)
	return count, err
}
