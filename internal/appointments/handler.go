package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nailsxoxi/salon-platform/internal/http/middleware"
	"github.com/nailsxoxi/salon-platform/pkg/logging"
)

// Handler exposes the booking endpoints.
type Handler struct {
	service *Service
	repo    *Repository
	logger  *logging.Logger
}

// NewHandler creates a booking handler.
func NewHandler(service *Service, repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, repo: repo, logger: logger}
}

// List handles GET /appointments: the full agenda, for the admin view.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.repo.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err)
		http.Error(w, "Error obteniendo turnos", http.StatusInternalServerError)
		return
	}
	if all == nil {
		all = []*Appointment{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(all)
}

// ListMine handles GET /appointments/my-appointments.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	mine, err := h.repo.ListByUser(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to list user appointments", "error", err, "user_id", user.ID)
		http.Error(w, "Error obteniendo turnos", http.StatusInternalServerError)
		return
	}
	if mine == nil {
		mine = []*Appointment{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(mine)
}

type createPayload struct {
	ServiceID string `json:"serviceId"`
	Date      string `json:"date"`
}

// Create handles POST /appointments: book a PENDING slot hold.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var p createPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	date, err := time.Parse(time.RFC3339, p.Date)
	if err != nil {
		http.Error(w, "Fecha inválida", http.StatusBadRequest)
		return
	}

	a, err := h.service.Create(r.Context(), user.ID, p.ServiceID, date.UTC())
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotTaken):
			http.Error(w, "Turno no disponible en este horario.", http.StatusConflict)
		case errors.Is(err, ErrDebtOutstanding):
			http.Error(w, "Tienes una deuda pendiente. No puedes reservar hasta regularizar tu situación.", http.StatusForbidden)
		default:
			h.logger.Error("failed to create appointment", "error", err, "user_id", user.ID)
			http.Error(w, "Error creando turno", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(a)
}

// CancelOwn handles POST /appointments/{id}/cancel.
func (h *Handler) CancelOwn(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")

	res, err := h.service.CancelByClient(r.Context(), user.ID, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, "Turno no encontrado", http.StatusNotFound)
		case errors.Is(err, ErrForbidden):
			http.Error(w, "No autorizado", http.StatusForbidden)
		case errors.Is(err, ErrAlreadyCancelled):
			http.Error(w, "Ya está cancelado", http.StatusConflict)
		default:
			h.logger.Error("failed to cancel appointment", "error", err, "appointment_id", id)
			http.Error(w, "Error al cancelar turno", http.StatusInternalServerError)
		}
		return
	}

	msg := "Cancelación exitosa. Crédito generado."
	if res.Outcome == OutcomeDebted {
		msg = "Cancelación tardía. Deuda generada."
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"message": msg,
		"outcome": res.Outcome,
		"amount":  res.Amount,
	})
}

type adminActionPayload struct {
	AppointmentID string `json:"appointmentId"`
	Reason        string `json:"reason"`
}

// AdminCancel handles POST /appointments/admin/cancel.
func (h *Handler) AdminCancel(w http.ResponseWriter, r *http.Request) {
	var p adminActionPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	a, err := h.service.CancelByAdmin(r.Context(), p.AppointmentID, p.Reason)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, "Turno no encontrado", http.StatusNotFound)
		case errors.Is(err, ErrAlreadyCancelled):
			http.Error(w, "Ya está cancelado", http.StatusConflict)
		default:
			h.logger.Error("failed to admin-cancel", "error", err, "appointment_id", p.AppointmentID)
			http.Error(w, "Error al cancelar turno", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success":     true,
		"clientName":  a.User.Name,
		"clientPhone": a.User.Phone,
	})
}

// MarkNoShow handles POST /appointments/admin/mark-noshow.
func (h *Handler) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	var p adminActionPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := h.service.MarkNoShow(r.Context(), p.AppointmentID); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, "Turno no encontrado", http.StatusNotFound)
		case errors.Is(err, ErrAlreadyCancelled):
			http.Error(w, "Ya está cancelado", http.StatusConflict)
		default:
			h.logger.Error("failed to mark no-show", "error", err, "appointment_id", p.AppointmentID)
			http.Error(w, "Error al marcar inasistencia", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"message": "Inasistencia registrada y deuda generada.",
	})
}

// AdminDelete handles POST /appointments/admin/delete.
func (h *Handler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	var p adminActionPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), p.AppointmentID); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Turno no encontrado", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete appointment", "error", err, "appointment_id", p.AppointmentID)
		http.Error(w, "Error eliminando turno", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}
