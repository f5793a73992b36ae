package availability

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestUpsertBlockedDayClearsSlots(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := NewRepositoryWithQuerier(mock)
	day := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO availability").
		WithArgs(pgxmock.AnyArg(), day, true, []string{}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "date", "is_blocked", "slots"}).
			AddRow("a1", day, true, []string{}))

	cfg, err := repo.Upsert(context.Background(), day, true, []string{"08:00", "11:00"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.IsBlocked || len(cfg.Slots) != 0 {
		t.Errorf("expected blocked day with no slots, got %+v", cfg)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetByDateMissingReturnsNil(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := NewRepositoryWithQuerier(mock)
	day := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, date, is_blocked, slots FROM availability").
		WithArgs(day).
		WillReturnRows(pgxmock.NewRows([]string{"id", "date", "is_blocked", "slots"}))

	cfg, err := repo.GetByDate(context.Background(), day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config for unsaved date, got %+v", cfg)
	}
}
