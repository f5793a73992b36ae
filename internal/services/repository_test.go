package services

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func serviceRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "description", "price", "duration_min", "deposit",
		"removal_price_own", "removal_price_foreign", "images", "category_id", "created_at",
		"cat_id", "cat_name",
	})
}

func TestListAttachesCategory(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := NewRepositoryWithQuerier(mock)

	mock.ExpectQuery("SELECT (.+) FROM services s").
		WillReturnRows(serviceRows().AddRow(
			"s1", "Kapping Gel", "Refuerzo de uña natural", 12000.0, 90, 5000.0,
			0.0, 3000.0, []string{"https://img.example/kapping.jpg"}, "c1", time.Now(),
			"c1", "Kapping",
		))

	catalog, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(catalog) != 1 {
		t.Fatalf("expected 1 service, got %d", len(catalog))
	}
	if catalog[0].Category == nil || catalog[0].Category.Name != "Kapping" {
		t.Errorf("expected category attached, got %+v", catalog[0].Category)
	}
	if catalog[0].PrimaryImage() != "https://img.example/kapping.jpg" {
		t.Errorf("unexpected primary image: %s", catalog[0].PrimaryImage())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEnsureCategoryReturnsExistingID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := NewRepositoryWithQuerier(mock)

	mock.ExpectQuery("INSERT INTO categories").
		WithArgs(pgxmock.AnyArg(), "Soft Gel").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("c9"))

	id, err := repo.EnsureCategory(context.Background(), "Soft Gel")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "c9" {
		t.Errorf("expected existing category id, got %s", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateMissingService(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := NewRepositoryWithQuerier(mock)

	mock.ExpectExec("UPDATE services").
		WithArgs("ghost", "X", "", 1000.0, 30, 0.0, 0.0, 0.0, []string{}, "c1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.Update(context.Background(), &Service{
		ID: "ghost", Name: "X", Price: 1000, DurationMin: 30,
		Images: []string{}, CategoryID: "c1",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteService(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := NewRepositoryWithQuerier(mock)

	mock.ExpectExec("DELETE FROM services").
		WithArgs("s1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	if err := repo.Delete(context.Background(), "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
