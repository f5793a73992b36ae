package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/nailsxoxi/salon-platform/internal/appointments"
	"github.com/nailsxoxi/salon-platform/internal/notify"
	"github.com/nailsxoxi/salon-platform/internal/observability/metrics"
	"github.com/nailsxoxi/salon-platform/pkg/logging"
)

// gateway fetches payments referenced by webhook notifications.
type gateway interface {
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
}

// bookingLookup loads an appointment with user and service attached.
type bookingLookup interface {
	GetByID(ctx context.Context, id string) (*appointments.Appointment, error)
}

// bookingLedger is the appointment surface the reconciler needs: load
// for notifications, plus the PENDING→CONFIRMED transition.
type bookingLedger interface {
	bookingLookup
	ConfirmIfPending(ctx context.Context, id string) (bool, error)
}

// Reconciler ingests MercadoPago webhook events and converts approved
// payments into confirmed appointments, idempotently.
type Reconciler struct {
	repo     *Repository
	gateway  gateway
	bookings bookingLedger
	notify   *notify.Service
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger

	// dispatch runs post-commit notifications; tests replace it with a
	// synchronous call.
	dispatch func(func())
}

// NewReconciler wires the webhook reconciler.
func NewReconciler(repo *Repository, gw gateway, bookings bookingLedger, notifier *notify.Service, m *metrics.BookingMetrics, logger *logging.Logger) *Reconciler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Reconciler{
		repo:     repo,
		gateway:  gw,
		bookings: bookings,
		notify:   notifier,
		metrics:  m,
		logger:   logger,
		dispatch: func(f func()) { go f() },
	}
}

type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

// HandleWebhook handles POST /payments/webhook. The gateway retries on
// anything but 200, so every outcome acks: failures are logged and show
// up in metrics instead.
func (r *Reconciler) HandleWebhook(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	defer w.WriteHeader(http.StatusOK)

	var event webhookEvent
	if err := json.NewDecoder(req.Body).Decode(&event); err != nil {
		r.logger.Warn("webhook: undecodable body", "error", err)
		r.metrics.ObserveWebhook("unknown", "bad_body")
		return
	}
	if event.Type != "payment" {
		r.metrics.ObserveWebhook(event.Type, "ignored")
		return
	}

	status := r.process(req.Context(), event.Data.ID.String())
	r.metrics.ObserveWebhookLatency(status, time.Since(start).Seconds())
}

// process resolves one payment notification and returns the gateway
// status label for metrics.
func (r *Reconciler) process(ctx context.Context, paymentID string) string {
	payment, err := r.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		r.logger.Error("webhook: payment fetch failed", "error", err, "mp_payment_id", paymentID)
		r.metrics.ObserveWebhook("unknown", "fetch_failed")
		return "unknown"
	}

	apptID := payment.Metadata.AppointmentID
	mpID := strconv.FormatInt(payment.ID, 10)

	switch payment.Status {
	case "approved":
		if apptID == "" {
			r.logger.Warn("webhook: approved payment without appointment metadata", "mp_payment_id", mpID)
			r.metrics.ObserveWebhook("approved", "missing_metadata")
			return "approved"
		}
		inserted, err := r.repo.RecordApproved(ctx, mpID, payment.TransactionAmount, apptID)
		if err != nil {
			r.logger.Error("webhook: recording approved payment failed", "error", err, "mp_payment_id", mpID)
			r.metrics.ObserveWebhook("approved", "error")
			return "approved"
		}
		result := "duplicate"
		if inserted {
			result = "recorded"
		}

		// The payment row is already committed. If another CONFIRMED
		// appointment holds the slot, the money stays on the books for
		// manual reconciliation.
		confirmed, err := r.bookings.ConfirmIfPending(ctx, apptID)
		switch {
		case errors.Is(err, appointments.ErrSlotTaken):
			r.logger.Error("webhook: slot already confirmed, payment kept for reconciliation",
				"mp_payment_id", mpID, "appointment_id", apptID)
			result = "slot_collision"
		case err != nil:
			r.logger.Error("webhook: confirming appointment failed", "error", err, "mp_payment_id", mpID)
			result = "error"
		}
		r.metrics.ObserveWebhook("approved", result)
		if confirmed {
			r.notifyConfirmed(ctx, apptID, payment.TransactionAmount)
		}
	case "rejected":
		if apptID != "" {
			if err := r.repo.RecordRejected(ctx, mpID, payment.TransactionAmount, apptID); err != nil {
				r.logger.Error("webhook: recording rejected payment failed", "error", err, "mp_payment_id", mpID)
			}
		}
		r.metrics.ObserveWebhook("rejected", "recorded")
	default:
		// in_process and anything else: wait for the next notification.
		r.metrics.ObserveWebhook(payment.Status, "ignored")
	}
	return payment.Status
}

// notifyConfirmed mails the client and the owner after the first
// PENDING→CONFIRMED transition.
func (r *Reconciler) notifyConfirmed(ctx context.Context, apptID string, amountPaid float64) {
	a, err := r.bookings.GetByID(ctx, apptID)
	if err != nil {
		r.logger.Error("webhook: loading confirmed appointment failed", "error", err, "appointment_id", apptID)
		return
	}

	client := notify.Recipient{Email: a.User.Email, Name: a.User.Name, Phone: a.User.Phone}
	date := a.Date
	serviceName := a.Service.Name
	amountDue := a.Service.Price - amountPaid
	r.dispatch(func() {
		if err := r.notify.BookingConfirmed(context.Background(), client, date, serviceName, amountPaid, amountDue); err != nil {
			r.logger.Error("webhook: confirmation email failed", "error", err, "appointment_id", apptID)
		}
	})
}
