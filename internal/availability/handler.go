package availability

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/nailsxoxi/salon-platform/internal/clock"
	"github.com/nailsxoxi/salon-platform/pkg/logging"
)

// occupancy reports appointment times already holding a slot in a range.
type occupancy interface {
	TakenTimes(ctx context.Context, from, to time.Time) ([]time.Time, error)
}

// Handler exposes the schedule endpoints.
type Handler struct {
	repo   *Repository
	booked occupancy
	clock  clock.Clock
	logger *logging.Logger
}

// NewHandler creates an availability handler.
func NewHandler(repo *Repository, booked occupancy, clk clock.Clock, logger *logging.Logger) *Handler {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, booked: booked, clock: clk, logger: logger}
}

// List handles GET /availability: every configured day from today on.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	now := h.clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	days, err := h.repo.ListFrom(r.Context(), today)
	if err != nil {
		h.logger.Error("failed to list availability", "error", err)
		http.Error(w, "Error obteniendo disponibilidad", http.StatusInternalServerError)
		return
	}
	if days == nil {
		days = []*DayConfig{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(days)
}

// Slots handles GET /availability/slots?date=YYYY-MM-DD: the resolved
// bookable slots for that date, with occupancy applied.
func (h *Handler) Slots(w http.ResponseWriter, r *http.Request) {
	date, err := time.ParseInLocation("2006-01-02", r.URL.Query().Get("date"), time.UTC)
	if err != nil {
		http.Error(w, "Fecha inválida", http.StatusBadRequest)
		return
	}

	cfg, err := h.repo.GetByDate(r.Context(), date)
	if err != nil {
		h.logger.Error("failed to load day config", "error", err)
		http.Error(w, "Error obteniendo disponibilidad", http.StatusInternalServerError)
		return
	}

	dayEnd := date.Add(24 * time.Hour)
	times, err := h.booked.TakenTimes(r.Context(), date, dayEnd)
	if err != nil {
		h.logger.Error("failed to load occupancy", "error", err)
		http.Error(w, "Error obteniendo disponibilidad", http.StatusInternalServerError)
		return
	}
	taken := make(map[string]bool, len(times))
	for _, t := range times {
		taken[t.UTC().Format("15:04")] = true
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ResolveSlots(date, cfg, taken, h.clock.Now()))
}

type upsertPayload struct {
	Date      string   `json:"date"`
	IsBlocked bool     `json:"isBlocked"`
	Slots     []string `json:"slots"`
}

// Upsert handles POST /availability (admin): save one day's schedule.
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	var p upsertPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	date, err := time.ParseInLocation("2006-01-02", p.Date, time.UTC)
	if err != nil {
		http.Error(w, "Fecha inválida", http.StatusBadRequest)
		return
	}

	cfg, err := h.repo.Upsert(r.Context(), date, p.IsBlocked, p.Slots)
	if err != nil {
		h.logger.Error("failed to save availability", "error", err, "date", p.Date)
		http.Error(w, "Error actualizando disponibilidad", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cfg)
}
