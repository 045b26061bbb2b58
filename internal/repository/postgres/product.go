package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dresshire-backend/internal/domain"
	"dresshire-backend/internal/repository"
)

type productRepository struct {
	q querier
}

func NewProductRepository(q querier) repository.ProductRepository {
	return &productRepository{q: q}
}

func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `INSERT INTO products (name, price_per_day_cents, deposit_cents, status, created_at)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	return r.q.QueryRowContext(ctx, query,
		p.Name, p.PricePerDayCents, p.DepositCents, p.Status, time.Now().UTC()).Scan(&p.ID)
}

func (r *productRepository) GetByID(ctx context.Context, id int32) (*domain.Product, error) {
	query := `SELECT id, name, price_per_day_cents, deposit_cents, status, created_at
	          FROM products WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

func (r *productRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Product, error) {
	query := `SELECT id, name, price_per_day_cents, deposit_cents, status, created_at
	          FROM products WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

func (r *productRepository) scanOne(row *sql.Row) (*domain.Product, error) {
	p := &domain.Product{}
	var createdAt time.Time
	err := row.Scan(&p.ID, &p.Name, &p.PricePerDayCents, &p.DepositCents, &p.Status, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt = createdAt.Format("2006-01-02")
	return p, nil
}

func (r *productRepository) UpdateStatus(ctx context.Context, id int32, status domain.ProductStatus) error {
	result, err := r.q.ExecContext(ctx, `UPDATE products SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
