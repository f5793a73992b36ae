package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository stores users in the relational database.
type Repository struct {
	db querier
}

// NewRepository initializes a repo backed by pgxpool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("users: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithQuerier allows injecting mocks for tests.
func NewRepositoryWithQuerier(q querier) *Repository {
	return &Repository{db: q}
}

const userColumns = `id, email, password_hash, name, phone, role, is_blocked, debt, credit_amount, credit_expiry, created_at, deleted_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Phone,
		&u.Role,
		&u.IsBlocked,
		&u.Debt,
		&u.CreditAmount,
		&u.CreditExpiry,
		&u.CreatedAt,
		&u.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new client account. The email is normalized before the
// insert; a duplicate maps to ErrEmailTaken.
func (r *Repository) Create(ctx context.Context, email, passwordHash, name, phone string) (*User, error) {
	id := uuid.NewString()
	query := `
		INSERT INTO users (id, email, password_hash, name, phone, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns
	row := r.db.QueryRow(ctx, query, id, NormalizeEmail(email), passwordHash, name, phone, RoleClient)
	u, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("users: insert failed: %w", err)
	}
	return u, nil
}

// GetByID fetches a user, including soft-deleted rows so callers can
// distinguish a deleted account from a missing one.
func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("users: select by id failed: %w", err)
	}
	return u, nil
}

// GetByEmail fetches an active user by normalized email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND deleted_at IS NULL`
	row := r.db.QueryRow(ctx, query, NormalizeEmail(email))
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("users: select by email failed: %w", err)
	}
	return u, nil
}

// ListClients returns all client-role accounts, newest first.
func (r *Repository) ListClients(ctx context.Context) ([]*User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, RoleClient)
	if err != nil {
		return nil, fmt.Errorf("users: list clients failed: %w", err)
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("users: scan client failed: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Delete removes a user row entirely (explicit admin delete).
func (r *Repository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("users: delete failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleBlock flips the blocked flag and returns the new state.
func (r *Repository) ToggleBlock(ctx context.Context, id string) (bool, error) {
	var blocked bool
	query := `UPDATE users SET is_blocked = NOT is_blocked WHERE id = $1 RETURNING is_blocked`
	if err := r.db.QueryRow(ctx, query, id).Scan(&blocked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("users: toggle block failed: %w", err)
	}
	return blocked, nil
}

// ToggleRole promotes a client to admin or demotes an admin to client,
// returning the new role.
func (r *Repository) ToggleRole(ctx context.Context, id string) (string, error) {
	var role string
	query := `
		UPDATE users
		SET role = CASE WHEN role = $2 THEN $3 ELSE $2 END
		WHERE id = $1
		RETURNING role`
	if err := r.db.QueryRow(ctx, query, id, RoleAdmin, RoleClient).Scan(&role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("users: toggle role failed: %w", err)
	}
	return role, nil
}

// UpdatePassword replaces the stored password hash.
func (r *Repository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	ct, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("users: update password failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearDebt zeroes the user's outstanding debt.
func (r *Repository) ClearDebt(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `UPDATE users SET debt = 0 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("users: clear debt failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
