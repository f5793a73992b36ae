package earnings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ErrNotFound indicates the adjustment does not exist.
var ErrNotFound = errors.New("adjustment not found")

// Repository stores manual earnings adjustments.
type Repository struct {
	db querier
}

// NewRepository initializes a repo backed by pgxpool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("earnings: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithQuerier allows injecting mocks for tests.
func NewRepositoryWithQuerier(q querier) *Repository {
	return &Repository{db: q}
}

// List returns all adjustments, newest first.
func (r *Repository) List(ctx context.Context) ([]*Adjustment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, description, amount, date, created_at
		FROM earnings_adjustments ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("earnings: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Adjustment
	for rows.Next() {
		var a Adjustment
		if err := rows.Scan(&a.ID, &a.Description, &a.Amount, &a.Date, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("earnings: scan failed: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// Create records a new adjustment.
func (r *Repository) Create(ctx context.Context, description string, amount float64, date time.Time) (*Adjustment, error) {
	a := &Adjustment{
		ID:          uuid.NewString(),
		Description: description,
		Amount:      amount,
		Date:        date,
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO earnings_adjustments (id, description, amount, date)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		a.ID, a.Description, a.Amount, a.Date).Scan(&a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("earnings: insert failed: %w", err)
	}
	return a, nil
}

// Delete removes an adjustment.
func (r *Repository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM earnings_adjustments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("earnings: delete failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
