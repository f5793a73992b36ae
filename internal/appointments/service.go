package appointments

import (
	"context"
	"fmt"
	"time"

	"github.com/nailsxoxi/salon-platform/internal/clock"
	"github.com/nailsxoxi/salon-platform/internal/notify"
	"github.com/nailsxoxi/salon-platform/internal/observability/metrics"
	"github.com/nailsxoxi/salon-platform/pkg/logging"
)

// Cancellation policy constants. A cancellation at or beyond the window
// converts the deposit into store credit; inside the window it generates
// debt for the unpaid remainder.
const (
	cancellationWindow = 72 * time.Hour
	creditValidity     = 30 * 24 * time.Hour
)

// Cancellation reasons persisted on the appointment row.
const (
	ReasonEarlyCancel = "Cancelación Anticipada (Usuario)"
	ReasonLateCancel  = "Cancelación Tardía (Usuario)"
	ReasonNoShow      = "Inasistencia"
	ReasonExpired     = "Reserva Expirada"
)

// CancelResult reports what a cancellation did to the client's balance.
type CancelResult struct {
	Outcome string  `json:"outcome"`
	Amount  float64 `json:"amount"`
}

// Service implements the booking and cancellation flows on top of the
// repository, the notifier and the clock.
type Service struct {
	repo    *Repository
	notify  *notify.Service
	clock   clock.Clock
	metrics *metrics.BookingMetrics
	logger  *logging.Logger

	// dispatch runs post-commit notifications; tests replace it with a
	// synchronous call.
	dispatch func(func())
}

// NewService wires the booking engine.
func NewService(repo *Repository, notifier *notify.Service, clk clock.Clock, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:     repo,
		notify:   notifier,
		clock:    clk,
		metrics:  m,
		logger:   logger,
		dispatch: func(f func()) { go f() },
	}
}

// Create books a PENDING appointment for the user.
func (s *Service) Create(ctx context.Context, userID, serviceID string, date time.Time) (*Appointment, error) {
	a, err := s.repo.Create(ctx, userID, serviceID, date)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveBookingCreated()
	s.logger.Info("appointment created", "appointment_id", a.ID, "user_id", userID, "date", date)
	return a, nil
}

func recipientOf(a *Appointment) notify.Recipient {
	return notify.Recipient{Email: a.User.Email, Name: a.User.Name, Phone: a.User.Phone}
}

// CancelByClient applies the 72-hour policy for the appointment's owner:
// early cancellations convert the deposit into a 30-day credit, late ones
// charge the unpaid remainder as debt.
func (s *Service) CancelByClient(ctx context.Context, actorID, apptID string) (*CancelResult, error) {
	a, err := s.repo.GetByID(ctx, apptID)
	if err != nil {
		return nil, err
	}
	if a.UserID != actorID {
		return nil, ErrForbidden
	}
	if a.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	now := s.clock.Now()
	deposit := DepositFor(a.Service)

	if a.Date.Sub(now) >= cancellationWindow {
		credit := deposit
		expiry := now.Add(creditValidity)
		if err := s.repo.CancelWithCredit(ctx, a.ID, a.UserID, ReasonEarlyCancel, credit, expiry); err != nil {
			return nil, err
		}
		s.metrics.ObserveCancellation(OutcomeCredited)
		to := recipientOf(a)
		s.dispatch(func() {
			if err := s.notify.EarlyCancellation(context.Background(), to, credit); err != nil {
				s.logger.Error("early cancellation email failed", "error", err, "appointment_id", a.ID)
			}
		})
		return &CancelResult{Outcome: OutcomeCredited, Amount: credit}, nil
	}

	debt := a.Service.Price - deposit
	if err := s.repo.CancelWithDebt(ctx, a.ID, a.UserID, ReasonLateCancel, debt); err != nil {
		return nil, err
	}
	s.metrics.ObserveCancellation(OutcomeDebted)
	to := recipientOf(a)
	date := a.Date
	s.dispatch(func() {
		if err := s.notify.LateCancellation(context.Background(), to, date, debt); err != nil {
			s.logger.Error("late cancellation email failed", "error", err, "appointment_id", a.ID)
		}
	})
	return &CancelResult{Outcome: OutcomeDebted, Amount: debt}, nil
}

// CancelByAdmin cancels without touching the client's balance and mails
// the client the policy text matching how far out the appointment was.
// It returns the appointment so the handler can surface contact data.
func (s *Service) CancelByAdmin(ctx context.Context, apptID, reason string) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, apptID)
	if err != nil {
		return nil, err
	}
	if a.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	if err := s.repo.CancelOnly(ctx, a.ID, reason); err != nil {
		return nil, err
	}
	s.metrics.ObserveCancellation(OutcomeNone)

	early := a.Date.Sub(s.clock.Now()) >= cancellationWindow
	to := recipientOf(a)
	date := a.Date
	s.dispatch(func() {
		if err := s.notify.AdminCancellation(context.Background(), to, date, reason, early); err != nil {
			s.logger.Error("admin cancellation email failed", "error", err, "appointment_id", a.ID)
		}
	})
	return a, nil
}

// MarkNoShow cancels the appointment and charges the late-cancellation
// penalty regardless of how far out the appointment is, then notifies
// the client and the owner.
func (s *Service) MarkNoShow(ctx context.Context, apptID string) (*CancelResult, error) {
	a, err := s.repo.GetByID(ctx, apptID)
	if err != nil {
		return nil, err
	}
	if a.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	deposit := DepositFor(a.Service)
	debt := a.Service.Price - deposit
	if err := s.repo.CancelWithDebt(ctx, a.ID, a.UserID, ReasonNoShow, debt); err != nil {
		return nil, err
	}
	s.metrics.ObserveCancellation(OutcomeDebted)

	to := recipientOf(a)
	date := a.Date
	serviceName := a.Service.Name
	s.dispatch(func() {
		if err := s.notify.NoShow(context.Background(), to, date, serviceName, debt); err != nil {
			s.logger.Error("no-show email failed", "error", err, "appointment_id", a.ID)
		}
	})
	return &CancelResult{Outcome: OutcomeDebted, Amount: debt}, nil
}

// Delete hard-removes an appointment (admin tool).
func (s *Service) Delete(ctx context.Context, apptID string) error {
	return s.repo.Delete(ctx, apptID)
}

// ExpireStale sweeps PENDING appointments older than ttl. The clients are
// told the hold lapsed; no penalty applies.
func (s *Service) ExpireStale(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := s.clock.Now().Add(-ttl)
	expired, err := s.repo.ExpirePending(ctx, cutoff, ReasonExpired)
	if err != nil {
		return 0, fmt.Errorf("sweeping pending appointments: %w", err)
	}
	for _, e := range expired {
		to := notify.Recipient{Email: e.Email, Name: e.Name}
		date := e.Date
		s.dispatch(func() {
			if err := s.notify.BookingExpired(context.Background(), to, date); err != nil {
				s.logger.Error("expiry email failed", "error", err)
			}
		})
	}
	return len(expired), nil
}
