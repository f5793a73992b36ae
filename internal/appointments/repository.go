package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nailsxoxi/salon-platform/internal/services"
	"github.com/nailsxoxi/salon-platform/internal/users"
)

const uniqueViolation = "23505"

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository stores appointments and applies the booking invariants that
// live in the database: the debt gate, the slot-conflict check and the
// balance mutations, each inside one transaction.
type Repository struct {
	db db
}

// NewRepository initializes a repo backed by pgxpool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting mocks for tests.
func NewRepositoryWithDB(d db) *Repository {
	return &Repository{d}
}

const apptColumns = `a.id, a.user_id, a.service_id, a.date, a.status, a.cancellation_reason, a.created_at`
const svcColumns = `s.id, s.name, s.price, s.deposit, s.duration_min`
const userColumns = `u.id, u.email, u.name, u.phone, u.debt, u.credit_amount`

func scanFull(row pgx.Row) (*Appointment, error) {
	var (
		a   Appointment
		svc services.Service
		usr users.User
	)
	err := row.Scan(
		&a.ID, &a.UserID, &a.ServiceID, &a.Date, &a.Status, &a.CancellationReason, &a.CreatedAt,
		&svc.ID, &svc.Name, &svc.Price, &svc.Deposit, &svc.DurationMin,
		&usr.ID, &usr.Email, &usr.Name, &usr.Phone, &usr.Debt, &usr.CreditAmount,
	)
	if err != nil {
		return nil, err
	}
	a.Service = &svc
	a.User = &usr
	return &a, nil
}

// Create books a PENDING appointment. Inside one transaction it rejects
// users with outstanding debt and timestamps already held by a live
// (neither CANCELLED nor PENDING) appointment, then inserts the row.
func (r *Repository) Create(ctx context.Context, userID, serviceID string, date time.Time) (*Appointment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("appointments: begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	var debt float64
	if err := tx.QueryRow(ctx, `SELECT debt FROM users WHERE id = $1`, userID).Scan(&debt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("appointments: debt check failed: %w", err)
	}
	if debt > 0 {
		return nil, ErrDebtOutstanding
	}

	var taken bool
	conflictQuery := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE date = $1 AND status NOT IN ($2, $3)
		)`
	if err := tx.QueryRow(ctx, conflictQuery, date, StatusCancelled, StatusPending).Scan(&taken); err != nil {
		return nil, fmt.Errorf("appointments: conflict check failed: %w", err)
	}
	if taken {
		return nil, ErrSlotTaken
	}

	a := &Appointment{
		ID:        uuid.NewString(),
		UserID:    userID,
		ServiceID: serviceID,
		Date:      date,
		Status:    StatusPending,
	}
	insert := `
		INSERT INTO appointments (id, user_id, service_id, date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`
	if err := tx.QueryRow(ctx, insert, a.ID, a.UserID, a.ServiceID, a.Date, a.Status).Scan(&a.CreatedAt); err != nil {
		return nil, fmt.Errorf("appointments: insert failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("appointments: commit failed: %w", err)
	}
	return a, nil
}

// GetByID fetches an appointment with its service and user attached.
func (r *Repository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	query := `
		SELECT ` + apptColumns + `, ` + svcColumns + `, ` + userColumns + `
		FROM appointments a
		JOIN services s ON s.id = a.service_id
		JOIN users u ON u.id = a.user_id
		WHERE a.id = $1`
	a, err := scanFull(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appointments: select failed: %w", err)
	}
	return a, nil
}

// ListAll returns every appointment with service and user, for the admin
// agenda.
func (r *Repository) ListAll(ctx context.Context) ([]*Appointment, error) {
	query := `
		SELECT ` + apptColumns + `, ` + svcColumns + `, ` + userColumns + `
		FROM appointments a
		JOIN services s ON s.id = a.service_id
		JOIN users u ON u.id = a.user_id
		ORDER BY a.date ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		a, err := scanFull(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListByUser returns the user's appointments newest first. PENDING rows
// are hidden: they are bookings whose deposit never arrived.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]*Appointment, error) {
	query := `
		SELECT ` + apptColumns + `, ` + svcColumns + `
		FROM appointments a
		JOIN services s ON s.id = a.service_id
		WHERE a.user_id = $1 AND a.status <> $2
		ORDER BY a.date DESC`
	rows, err := r.db.Query(ctx, query, userID, StatusPending)
	if err != nil {
		return nil, fmt.Errorf("appointments: list by user failed: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		var (
			a   Appointment
			svc services.Service
		)
		err := rows.Scan(
			&a.ID, &a.UserID, &a.ServiceID, &a.Date, &a.Status, &a.CancellationReason, &a.CreatedAt,
			&svc.ID, &svc.Name, &svc.Price, &svc.Deposit, &svc.DurationMin,
		)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		a.Service = &svc
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *Repository) cancelRow(ctx context.Context, tx pgx.Tx, id, reason string) error {
	ct, err := tx.Exec(ctx, `
		UPDATE appointments SET status = $2, cancellation_reason = $3
		WHERE id = $1 AND status <> $2`,
		id, StatusCancelled, reason)
	if err != nil {
		return fmt.Errorf("appointments: cancel failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrAlreadyCancelled
	}
	return nil
}

// CancelWithCredit cancels the appointment and grants the user a credit
// with a fresh expiry, atomically.
func (r *Repository) CancelWithCredit(ctx context.Context, id, userID, reason string, credit float64, expiry time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("appointments: begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := r.cancelRow(ctx, tx, id, reason); err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		UPDATE users SET credit_amount = credit_amount + $2, credit_expiry = $3
		WHERE id = $1`,
		userID, credit, expiry)
	if err != nil {
		return fmt.Errorf("appointments: credit grant failed: %w", err)
	}
	return tx.Commit(ctx)
}

// CancelWithDebt cancels the appointment and adds the penalty to the
// user's debt, atomically.
func (r *Repository) CancelWithDebt(ctx context.Context, id, userID, reason string, debt float64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("appointments: begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := r.cancelRow(ctx, tx, id, reason); err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `UPDATE users SET debt = debt + $2 WHERE id = $1`, userID, debt)
	if err != nil {
		return fmt.Errorf("appointments: debt charge failed: %w", err)
	}
	return tx.Commit(ctx)
}

// CancelOnly cancels without touching any balance (admin cancellation).
func (r *Repository) CancelOnly(ctx context.Context, id, reason string) error {
	ct, err := r.db.Exec(ctx, `
		UPDATE appointments SET status = $2, cancellation_reason = $3
		WHERE id = $1 AND status <> $2`,
		id, StatusCancelled, reason)
	if err != nil {
		return fmt.Errorf("appointments: cancel failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrAlreadyCancelled
	}
	return nil
}

// ConfirmIfPending flips a PENDING appointment to CONFIRMED and reports
// whether this call made the transition. A unique-index violation means
// another CONFIRMED appointment already holds the timestamp.
func (r *Repository) ConfirmIfPending(ctx context.Context, id string) (bool, error) {
	ct, err := r.db.Exec(ctx, `
		UPDATE appointments SET status = $2 WHERE id = $1 AND status = $3`,
		id, StatusConfirmed, StatusPending)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return false, ErrSlotTaken
		}
		return false, fmt.Errorf("appointments: confirm failed: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

// Delete removes the appointment row entirely (admin hard delete).
func (r *Repository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("appointments: delete failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ExpiredBooking is a PENDING appointment swept after its TTL, with
// enough contact data to notify the client.
type ExpiredBooking struct {
	ID    string
	Date  time.Time
	Email string
	Name  string
}

// ExpirePending cancels PENDING appointments created before the cutoff
// and returns them for notification. No penalty applies.
func (r *Repository) ExpirePending(ctx context.Context, cutoff time.Time, reason string) ([]ExpiredBooking, error) {
	query := `
		WITH expired AS (
			UPDATE appointments SET status = $2, cancellation_reason = $3
			WHERE status = $4 AND created_at < $1
			RETURNING id, user_id, date
		)
		SELECT e.id, e.date, u.email, u.name
		FROM expired e
		JOIN users u ON u.id = e.user_id`
	rows, err := r.db.Query(ctx, query, cutoff, StatusCancelled, reason, StatusPending)
	if err != nil {
		return nil, fmt.Errorf("appointments: expire pending failed: %w", err)
	}
	defer rows.Close()

	var out []ExpiredBooking
	for rows.Next() {
		var e ExpiredBooking
		if err := rows.Scan(&e.ID, &e.Date, &e.Email, &e.Name); err != nil {
			return nil, fmt.Errorf("appointments: scan expired failed: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// TakenTimes returns the timestamps of non-cancelled appointments in
// [from, to), used to mark slots unavailable.
func (r *Repository) TakenTimes(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	query := `
		SELECT date FROM appointments
		WHERE date >= $1 AND date < $2 AND status <> $3`
	rows, err := r.db.Query(ctx, query, from, to, StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("appointments: taken times failed: %w", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("appointments: scan time failed: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
