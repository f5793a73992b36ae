package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Record is one gateway payment persisted locally. mp_payment_id carries
// a UNIQUE constraint, making webhook replays harmless.
type Record struct {
	ID            string    `json:"id"`
	MPPaymentID   string    `json:"mpPaymentId"`
	MPStatus      string    `json:"mpStatus"`
	Amount        float64   `json:"amount"`
	AppointmentID string    `json:"appointmentId"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Repository stores payment records. Confirming the appointment a
// payment belongs to is a separate step, so a failed confirm never
// takes the payment row down with it.
type Repository struct {
	db db
}

// NewRepository initializes a repo backed by pgxpool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("payments: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting mocks for tests.
func NewRepositoryWithDB(d db) *Repository {
	return &Repository{d}
}

// RecordApproved inserts the approved payment, keyed on mp_payment_id
// with ON CONFLICT DO NOTHING so a replayed webhook inserts nothing.
// The row commits on its own: even when the appointment can no longer
// be confirmed, the money stays on the books for manual reconciliation.
// It reports whether a row was inserted.
func (r *Repository) RecordApproved(ctx context.Context, mpPaymentID string, amount float64, appointmentID string) (bool, error) {
	ct, err := r.db.Exec(ctx, `
		INSERT INTO payments (id, mp_payment_id, mp_status, amount, appointment_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (mp_payment_id) DO NOTHING`,
		uuid.NewString(), mpPaymentID, "approved", amount, appointmentID)
	if err != nil {
		return false, fmt.Errorf("payments: insert failed: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

// RecordRejected stores a rejected payment for the books. The
// appointment is left untouched; the sweeper releases the hold later if
// no approved payment ever lands.
func (r *Repository) RecordRejected(ctx context.Context, mpPaymentID string, amount float64, appointmentID string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO payments (id, mp_payment_id, mp_status, amount, appointment_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (mp_payment_id) DO NOTHING`,
		uuid.NewString(), mpPaymentID, "rejected", amount, appointmentID)
	if err != nil {
		return fmt.Errorf("payments: insert failed: %w", err)
	}
	return nil
}

// ListByAppointment returns the payments recorded for an appointment.
func (r *Repository) ListByAppointment(ctx context.Context, appointmentID string) ([]*Record, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, mp_payment_id, mp_status, amount, appointment_id, created_at
		FROM payments WHERE appointment_id = $1 ORDER BY created_at ASC`,
		appointmentID)
	if err != nil {
		return nil, fmt.Errorf("payments: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var p Record
		if err := rows.Scan(&p.ID, &p.MPPaymentID, &p.MPStatus, &p.Amount, &p.AppointmentID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("payments: scan failed: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
