package services

import (
	"context"
	"errors"
	"fmt"

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

// Repository stores the service catalog and its categories.
type Repository struct {
	db querier
}

// NewRepository initializes a repo backed by pgxpool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("services: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithQuerier allows injecting mocks for tests.
func NewRepositoryWithQuerier(q querier) *Repository {
	return &Repository{db: q}
}

const serviceColumns = `s.id, s.name, s.description, s.price, s.duration_min, s.deposit,
	s.removal_price_own, s.removal_price_foreign, s.images, s.category_id, s.created_at,
	c.id, c.name`

func scanService(row pgx.Row) (*Service, error) {
	var (
		s   Service
		cat Category
	)
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Description,
		&s.Price,
		&s.DurationMin,
		&s.Deposit,
		&s.RemovalPriceOwn,
		&s.RemovalPriceForeign,
		&s.Images,
		&s.CategoryID,
		&s.CreatedAt,
		&cat.ID,
		&cat.Name,
	)
	if err != nil {
		return nil, err
	}
	if s.Images == nil {
		s.Images = []string{}
	}
	s.Category = &cat
	return &s, nil
}

// List returns the full catalog with categories attached.
func (r *Repository) List(ctx context.Context) ([]*Service, error) {
	query := `
		SELECT ` + serviceColumns + `
		FROM services s
		JOIN categories c ON c.id = s.category_id
		ORDER BY c.name, s.name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("services: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("services: scan failed: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetByID fetches a single service with its category.
func (r *Repository) GetByID(ctx context.Context, id string) (*Service, error) {
	query := `
		SELECT ` + serviceColumns + `
		FROM services s
		JOIN categories c ON c.id = s.category_id
		WHERE s.id = $1`
	s, err := scanService(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("services: select failed: %w", err)
	}
	return s, nil
}

// ListCategories returns all categories.
func (r *Repository) ListCategories(ctx context.Context) ([]*Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("services: list categories failed: %w", err)
	}
	defer rows.Close()

	var out []*Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("services: scan category failed: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// EnsureCategory returns the id of the category with the given name,
// creating it if it does not exist yet.
func (r *Repository) EnsureCategory(ctx context.Context, name string) (string, error) {
	var id string
	query := `
		INSERT INTO categories (id, name)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`
	if err := r.db.QueryRow(ctx, query, uuid.NewString(), name).Scan(&id); err != nil {
		return "", fmt.Errorf("services: ensure category failed: %w", err)
	}
	return id, nil
}

// Create inserts a new service.
func (r *Repository) Create(ctx context.Context, s *Service) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	query := `
		INSERT INTO services (id, name, description, price, duration_min, deposit,
			removal_price_own, removal_price_foreign, images, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`
	err := r.db.QueryRow(ctx, query,
		s.ID, s.Name, s.Description, s.Price, s.DurationMin, s.Deposit,
		s.RemovalPriceOwn, s.RemovalPriceForeign, s.Images, s.CategoryID,
	).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("services: insert failed: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of a service.
func (r *Repository) Update(ctx context.Context, s *Service) error {
	query := `
		UPDATE services
		SET name = $2, description = $3, price = $4, duration_min = $5, deposit = $6,
			removal_price_own = $7, removal_price_foreign = $8, images = $9, category_id = $10
		WHERE id = $1`
	ct, err := r.db.Exec(ctx, query,
		s.ID, s.Name, s.Description, s.Price, s.DurationMin, s.Deposit,
		s.RemovalPriceOwn, s.RemovalPriceForeign, s.Images, s.CategoryID,
	)
	if err != nil {
		return fmt.Errorf("services: update failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a service.
func (r *Repository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("services: delete failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
