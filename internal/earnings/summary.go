package earnings

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SummaryReader aggregates monthly revenue with plain SQL over
// database/sql, keeping the reporting path separate from the pgx write
// path.
type SummaryReader struct {
	db *sql.DB
}

// NewSummaryReader wraps an open database handle.
func NewSummaryReader(db *sql.DB) *SummaryReader {
	return &SummaryReader{db: db}
}

// MonthSummary sums approved deposits and adjustments for the calendar
// month containing ref.
func (s *SummaryReader) MonthSummary(ctx context.Context, ref time.Time) (*Summary, error) {
	start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var deposits float64
	depositQuery := `
		SELECT COALESCE(SUM(p.amount), 0)
		FROM payments p
		JOIN appointments a ON a.id = p.appointment_id
		WHERE p.mp_status = 'approved' AND a.date >= $1 AND a.date < $2`
	if err := s.db.QueryRowContext(ctx, depositQuery, start, end).Scan(&deposits); err != nil {
		return nil, fmt.Errorf("earnings: deposit sum failed: %w", err)
	}

	var adjustments float64
	adjustQuery := `
		SELECT COALESCE(SUM(amount), 0)
		FROM earnings_adjustments
		WHERE date >= $1 AND date < $2`
	if err := s.db.QueryRowContext(ctx, adjustQuery, start, end).Scan(&adjustments); err != nil {
		return nil, fmt.Errorf("earnings: adjustment sum failed: %w", err)
	}

	return &Summary{
		Month:       start.Format("2006-01"),
		Deposits:    deposits,
		Adjustments: adjustments,
		Total:       deposits + adjustments,
	}, nil
}
