package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"dresshire-backend/internal/domain"
	"dresshire-backend/internal/repository"
)

// querier is satisfied by both *sql.DB and *sql.Tx so every repository
// works in auto-commit and transactional mode alike.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Store implements repository.Store on PostgreSQL.
type Store struct {
	db            *sql.DB
	lockTimeoutMS int
	repos         *repository.Repositories
}

// NewStore wires all repositories over one connection pool. lockTimeoutMS
// bounds row-lock waits inside WithinTx.
func NewStore(db *sql.DB, lockTimeoutMS int) *Store {
	return &Store{
		db:            db,
		lockTimeoutMS: lockTimeoutMS,
		repos:         newRepositories(db),
	}
}

func newRepositories(q querier) *repository.Repositories {
	return &repository.Repositories{
		Rentals:       NewRentalRepository(q),
		Payments:      NewPaymentRepository(q),
		Deposits:      NewDepositRepository(q),
		Reservations:  NewReservationRepository(q),
		Products:      NewProductRepository(q),
		Notifications: NewNotificationRepository(q),
	}
}

// Repos returns auto-commit repositories for plain reads.
func (s *Store) Repos() *repository.Repositories {
	return s.repos
}

// WithinTx runs fn inside a single transaction with a bounded lock wait.
// Lock timeouts and deadlocks surface as domain.ErrBusy so callers can
// retry instead of blocking indefinitely.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, r *repository.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// SET does not take bind parameters; the value is a config int.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeoutMS)); err != nil {
		return fmt.Errorf("set lock timeout: %w", err)
	}

	if err := fn(ctx, newRepositories(tx)); err != nil {
		return mapError(err)
	}

	if err := tx.Commit(); err != nil {
		return mapError(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// Postgres error codes that mean "lost a race, safe to retry".
const (
	codeLockNotAvailable    = "55P03"
	codeDeadlockDetected    = "40P01"
	codeSerializationFailed = "40001"
)

func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case codeLockNotAvailable, codeDeadlockDetected, codeSerializationFailed:
			return fmt.Errorf("%w: %s", domain.ErrBusy, pqErr.Message)
		}
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}
