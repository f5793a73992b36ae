package appointments

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nailsxoxi/salon-platform/internal/clock"
	"github.com/nailsxoxi/salon-platform/internal/notify"
)

// captureSender records outgoing mails for assertions.
type captureSender struct {
	mu   sync.Mutex
	sent []notify.EmailMessage
}

func (c *captureSender) Send(_ context.Context, msg notify.EmailMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return nil
}

func (c *captureSender) messages() []notify.EmailMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]notify.EmailMessage(nil), c.sent...)
}

func fullApptRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "user_id", "service_id", "date", "status", "cancellation_reason", "created_at",
		"s_id", "s_name", "s_price", "s_deposit", "s_duration",
		"u_id", "u_email", "u_name", "u_phone", "u_debt", "u_credit",
	})
}

type engineFixture struct {
	mock    pgxmock.PgxPoolIface
	service *Service
	mails   *captureSender
}

func newEngine(t *testing.T, now time.Time) *engineFixture {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	mails := &captureSender{}
	notifier := notify.NewService(mails, "owner@salon.example", "https://salon.example", nil)

	svc := NewService(NewRepositoryWithDB(mock), notifier, clock.At(now), nil, nil)
	svc.dispatch = func(f func()) { f() }

	return &engineFixture{mock: mock, service: svc, mails: mails}
}

func expectLoad(f *engineFixture, apptID string, date time.Time, status string, price, deposit float64) {
	f.mock.ExpectQuery("SELECT (.+) FROM appointments a").
		WithArgs(apptID).
		WillReturnRows(fullApptRows().AddRow(
			apptID, "u1", "s1", date, status, nil, date.Add(-48*time.Hour),
			"s1", "Kapping Gel", price, deposit, 90,
			"u1", "ana@example.com", "Ana", "+54911", 0.0, 0.0,
		))
}

func TestCancelByClientEarlyGrantsCredit(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f := newEngine(t, now)

	// 100 hours out: the deposit becomes store credit for 30 days.
	date := now.Add(100 * time.Hour)
	expectLoad(f, "a1", date, StatusConfirmed, 10000, 0)
	f.mock.ExpectBegin()
	f.mock.ExpectExec("UPDATE appointments").
		WithArgs("a1", StatusCancelled, ReasonEarlyCancel).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	f.mock.ExpectExec("UPDATE users").
		WithArgs("u1", 5000.0, now.Add(30*24*time.Hour)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	f.mock.ExpectCommit()

	res, err := f.service.CancelByClient(context.Background(), "u1", "a1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCredited, res.Outcome)
	assert.Equal(t, 5000.0, res.Amount)

	mails := f.mails.messages()
	require.Len(t, mails, 1)
	assert.Equal(t, "ana@example.com", mails[0].To)
	assert.Contains(t, mails[0].Subject, "Saldo a Favor")
	assert.Contains(t, mails[0].Body, "$5000")

	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCancelByClientLateChargesDebt(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f := newEngine(t, now)

	// 10 hours out: price minus deposit becomes debt.
	date := now.Add(10 * time.Hour)
	expectLoad(f, "a1", date, StatusConfirmed, 10000, 0)
	f.mock.ExpectBegin()
	f.mock.ExpectExec("UPDATE appointments").
		WithArgs("a1", StatusCancelled, ReasonLateCancel).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	f.mock.ExpectExec("UPDATE users").
		WithArgs("u1", 5000.0).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	f.mock.ExpectCommit()

	res, err := f.service.CancelByClient(context.Background(), "u1", "a1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDebted, res.Outcome)
	assert.Equal(t, 5000.0, res.Amount)

	mails := f.mails.messages()
	require.Len(t, mails, 1)
	assert.Contains(t, mails[0].Subject, "Deuda Generada")

	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCancelByClientUsesConfiguredDeposit(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f := newEngine(t, now)

	// Configured deposit of 3000 beats the 50% fallback.
	date := now.Add(10 * time.Hour)
	expectLoad(f, "a1", date, StatusConfirmed, 10000, 3000)
	f.mock.ExpectBegin()
	f.mock.ExpectExec("UPDATE appointments").
		WithArgs("a1", StatusCancelled, ReasonLateCancel).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	f.mock.ExpectExec("UPDATE users").
		WithArgs("u1", 7000.0).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	f.mock.ExpectCommit()

	res, err := f.service.CancelByClient(context.Background(), "u1", "a1")
	require.NoError(t, err)
	assert.Equal(t, 7000.0, res.Amount)
}

func TestCancelByClientExactWindowBoundaryCredits(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f := newEngine(t, now)

	// Exactly 72 hours out still counts as early.
	date := now.Add(72 * time.Hour)
	expectLoad(f, "a1", date, StatusConfirmed, 8000, 0)
	f.mock.ExpectBegin()
	f.mock.ExpectExec("UPDATE appointments").
		WithArgs("a1", StatusCancelled, ReasonEarlyCancel).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	f.mock.ExpectExec("UPDATE users").
		WithArgs("u1", 4000.0, now.Add(30*24*time.Hour)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	f.mock.ExpectCommit()

	res, err := f.service.CancelByClient(context.Background(), "u1", "a1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCredited, res.Outcome)
}

func TestCancelByClientGuards(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("not owner", func(t *testing.T) {
		f := newEngine(t, now)
		expectLoad(f, "a1", now.Add(100*time.Hour), StatusConfirmed, 10000, 0)

		_, err := f.service.CancelByClient(context.Background(), "someone-else", "a1")
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Empty(t, f.mails.messages())
	})

	t.Run("already cancelled", func(t *testing.T) {
		f := newEngine(t, now)
		expectLoad(f, "a1", now.Add(100*time.Hour), StatusCancelled, 10000, 0)

		_, err := f.service.CancelByClient(context.Background(), "u1", "a1")
		assert.ErrorIs(t, err, ErrAlreadyCancelled)
		assert.Empty(t, f.mails.messages())
	})

	t.Run("not found", func(t *testing.T) {
		f := newEngine(t, now)
		f.mock.ExpectQuery("SELECT (.+) FROM appointments a").
			WithArgs("ghost").
			WillReturnRows(fullApptRows())

		_, err := f.service.CancelByClient(context.Background(), "u1", "ghost")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMarkNoShowAlwaysChargesLateFormula(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f := newEngine(t, now)

	// Even 200 hours out, a no-show charges price minus deposit.
	date := now.Add(200 * time.Hour)
	expectLoad(f, "a1", date, StatusConfirmed, 10000, 0)
	f.mock.ExpectBegin()
	f.mock.ExpectExec("UPDATE appointments").
		WithArgs("a1", StatusCancelled, ReasonNoShow).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	f.mock.ExpectExec("UPDATE users").
		WithArgs("u1", 5000.0).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	f.mock.ExpectCommit()

	res, err := f.service.MarkNoShow(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDebted, res.Outcome)
	assert.Equal(t, 5000.0, res.Amount)

	// Both the client and the owner hear about it.
	mails := f.mails.messages()
	require.Len(t, mails, 2)
	recipients := []string{mails[0].To, mails[1].To}
	assert.Contains(t, recipients, "ana@example.com")
	assert.Contains(t, recipients, "owner@salon.example")
}

func TestCancelByAdminLeavesBalanceAlone(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f := newEngine(t, now)

	date := now.Add(10 * time.Hour)
	expectLoad(f, "a1", date, StatusConfirmed, 10000, 0)
	// A single status update, no user mutation, no transaction needed.
	f.mock.ExpectExec("UPDATE appointments").
		WithArgs("a1", StatusCancelled, "La manicura está enferma").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	a, err := f.service.CancelByAdmin(context.Background(), "a1", "La manicura está enferma")
	require.NoError(t, err)
	assert.Equal(t, "Ana", a.User.Name)

	mails := f.mails.messages()
	require.Len(t, mails, 1)
	assert.Contains(t, mails[0].Body, "La manicura está enferma")
	// Inside the window the non-refundable policy text applies.
	assert.Contains(t, mails[0].Body, "menos de 72 horas")

	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestExpireStaleSweepsAndNotifies(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	f := newEngine(t, now)

	date := now.Add(48 * time.Hour)
	f.mock.ExpectQuery("WITH expired AS").
		WithArgs(now.Add(-24*time.Hour), StatusCancelled, ReasonExpired, StatusPending).
		WillReturnRows(pgxmock.NewRows([]string{"id", "date", "email", "name"}).
			AddRow("a1", date, "ana@example.com", "Ana"))

	n, err := f.service.ExpireStale(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	mails := f.mails.messages()
	require.Len(t, mails, 1)
	assert.Equal(t, "ana@example.com", mails[0].To)
}

func TestCreateMapsRepositoryErrors(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f := newEngine(t, now)

	date := now.Add(96 * time.Hour)
	f.mock.ExpectBegin()
	f.mock.ExpectQuery("SELECT debt FROM users").
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"debt"}).AddRow(2500.0))
	f.mock.ExpectRollback()

	_, err := f.service.Create(context.Background(), "u1", "s1", date)
	assert.True(t, errors.Is(err, ErrDebtOutstanding))
}
