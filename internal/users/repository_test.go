package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func userRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "email", "password_hash", "name", "phone", "role",
		"is_blocked", "debt", "credit_amount", "credit_expiry", "created_at", "deleted_at",
	})
}

func TestCreateNormalizesEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := NewRepositoryWithQuerier(mock)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), "ana@example.com", "hash", "Ana", "+54911", RoleClient).
		WillReturnRows(userRows().AddRow(
			"u1", "ana@example.com", "hash", "Ana", "+54911", RoleClient,
			false, 0.0, 0.0, nil, time.Now(), nil,
		))

	u, err := repo.Create(context.Background(), "  Ana@Example.COM ", "hash", "Ana", "+54911")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Email != "ana@example.com" {
		t.Errorf("expected normalized email, got %s", u.Email)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := NewRepositoryWithQuerier(mock)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), "ana@example.com", "hash", "Ana", "", RoleClient).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err = repo.Create(context.Background(), "ana@example.com", "hash", "Ana", "")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := NewRepositoryWithQuerier(mock)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestToggleBlock(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := NewRepositoryWithQuerier(mock)

	mock.ExpectQuery("UPDATE users SET is_blocked").
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"is_blocked"}).AddRow(true))

	blocked, err := repo.ToggleBlock(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !blocked {
		t.Error("expected user to be blocked after toggle")
	}
}

func TestClearDebtMissingUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := NewRepositoryWithQuerier(mock)

	mock.ExpectExec("UPDATE users SET debt = 0").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.ClearDebt(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
