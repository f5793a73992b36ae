package appointments

import (
	"time"

	"github.com/nailsxoxi/salon-platform/internal/services"
	"github.com/nailsxoxi/salon-platform/internal/users"
)

// Appointment statuses. PENDING rows hold no slot: they exist between
// booking and deposit payment and expire if never paid.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
)

// Cancellation outcomes, used for responses and metrics.
const (
	OutcomeCredited = "CREDITED"
	OutcomeDebted   = "DEBTED"
	OutcomeNone     = "NONE"
)

// Appointment is one booking of a service at an exact timestamp.
type Appointment struct {
	ID                 string             `json:"id"`
	UserID             string             `json:"userId"`
	ServiceID          string             `json:"serviceId"`
	Date               time.Time          `json:"date"`
	Status             string             `json:"status"`
	CancellationReason *string            `json:"cancellationReason,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
	Service            *services.Service  `json:"service,omitempty"`
	User               *users.User        `json:"user,omitempty"`
}

// DepositFor returns the deposit owed for a service: the configured
// deposit when set, otherwise half the price.
func DepositFor(svc *services.Service) float64 {
	if svc.Deposit > 0 {
		return svc.Deposit
	}
	return svc.Price * 0.5
}
