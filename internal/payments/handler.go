package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nailsxoxi/salon-platform/internal/appointments"
	"github.com/nailsxoxi/salon-platform/pkg/logging"
)

// preferenceCreator is the slice of the gateway client the handler uses.
type preferenceCreator interface {
	CreatePreference(ctx context.Context, params PreferenceParams) (string, error)
}

// recordLister reads the payments stored for an appointment.
type recordLister interface {
	ListByAppointment(ctx context.Context, appointmentID string) ([]*Record, error)
}

// Handler exposes the checkout endpoint and the admin payments view.
type Handler struct {
	gateway  preferenceCreator
	bookings bookingLookup
	records  recordLister
	logger   *logging.Logger
}

// NewHandler creates a payments handler.
func NewHandler(gw preferenceCreator, bookings bookingLookup, records recordLister, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{gateway: gw, bookings: bookings, records: records, logger: logger}
}

type preferencePayload struct {
	AppointmentID string  `json:"appointmentId"`
	Title         string  `json:"title"`
	Price         float64 `json:"price"`
}

// CreatePreference handles POST /payments/create-preference: a checkout
// for the appointment's deposit.
func (h *Handler) CreatePreference(w http.ResponseWriter, r *http.Request) {
	var p preferencePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if p.AppointmentID == "" {
		http.Error(w, "appointmentId requerido", http.StatusBadRequest)
		return
	}

	a, err := h.bookings.GetByID(r.Context(), p.AppointmentID)
	if err != nil {
		if errors.Is(err, appointments.ErrNotFound) {
			http.Error(w, "Turno no encontrado", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load appointment for checkout", "error", err, "appointment_id", p.AppointmentID)
		http.Error(w, "Error creando preferencia de pago", http.StatusInternalServerError)
		return
	}

	title := p.Title
	if title == "" {
		title = a.Service.Name
	}

	id, err := h.gateway.CreatePreference(r.Context(), PreferenceParams{
		AppointmentID: a.ID,
		Title:         title,
		Amount:        appointments.DepositFor(a.Service),
	})
	if err != nil {
		h.logger.Error("failed to create preference", "error", err, "appointment_id", a.ID)
		http.Error(w, "Error creando preferencia de pago", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}

// ListForAppointment handles GET /payments/appointment/{id}: every
// payment the gateway reported for the appointment, approved or not.
func (h *Handler) ListForAppointment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	records, err := h.records.ListByAppointment(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list payments", "error", err, "appointment_id", id)
		http.Error(w, "Error al listar pagos", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []*Record{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}
