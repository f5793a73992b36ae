package availability

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

// Repository stores per-date schedule overrides.
type Repository struct {
	db querier
}

// NewRepository initializes a repo backed by pgxpool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("availability: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithQuerier allows injecting mocks for tests.
func NewRepositoryWithQuerier(q querier) *Repository {
	return &Repository{db: q}
}

// ListFrom returns all configured days on or after the given date,
// soonest first.
func (r *Repository) ListFrom(ctx context.Context, from time.Time) ([]*DayConfig, error) {
	query := `
		SELECT id, date, is_blocked, slots
		FROM availability
		WHERE date >= $1
		ORDER BY date ASC`
	rows, err := r.db.Query(ctx, query, from)
	if err != nil {
		return nil, fmt.Errorf("availability: list failed: %w", err)
	}
	defer rows.Close()

	var out []*DayConfig
	for rows.Next() {
		var c DayConfig
		if err := rows.Scan(&c.ID, &c.Date, &c.IsBlocked, &c.Slots); err != nil {
			return nil, fmt.Errorf("availability: scan failed: %w", err)
		}
		if c.Slots == nil {
			c.Slots = []string{}
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// GetByDate returns the config for one date, or nil when none is saved.
func (r *Repository) GetByDate(ctx context.Context, date time.Time) (*DayConfig, error) {
	var c DayConfig
	query := `SELECT id, date, is_blocked, slots FROM availability WHERE date = $1`
	err := r.db.QueryRow(ctx, query, date).Scan(&c.ID, &c.Date, &c.IsBlocked, &c.Slots)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("availability: select failed: %w", err)
	}
	if c.Slots == nil {
		c.Slots = []string{}
	}
	return &c, nil
}

// Upsert saves the schedule for a date, replacing any previous config.
func (r *Repository) Upsert(ctx context.Context, date time.Time, isBlocked bool, slots []string) (*DayConfig, error) {
	if slots == nil || isBlocked {
		slots = []string{}
	}
	var c DayConfig
	query := `
		INSERT INTO availability (id, date, is_blocked, slots)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (date) DO UPDATE SET is_blocked = EXCLUDED.is_blocked, slots = EXCLUDED.slots
		RETURNING id, date, is_blocked, slots`
	err := r.db.QueryRow(ctx, query, uuid.NewString(), date, isBlocked, slots).
		Scan(&c.ID, &c.Date, &c.IsBlocked, &c.Slots)
	if err != nil {
		return nil, fmt.Errorf("availability: upsert failed: %w", err)
	}
	if c.Slots == nil {
		c.Slots = []string{}
	}
	return &c, nil
}
