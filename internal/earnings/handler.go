package earnings

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nailsxoxi/salon-platform/internal/clock"
	"github.com/nailsxoxi/salon-platform/pkg/logging"
)

// Handler exposes the admin earnings endpoints.
type Handler struct {
	repo    *Repository
	summary *SummaryReader
	clock   clock.Clock
	logger  *logging.Logger
}

// NewHandler creates an earnings handler. summary may be nil when the
// reporting database handle is not configured.
func NewHandler(repo *Repository, summary *SummaryReader, clk clock.Clock, logger *logging.Logger) *Handler {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, summary: summary, clock: clk, logger: logger}
}

// List handles GET /earnings.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	adjustments, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list adjustments", "error", err)
		http.Error(w, "Error obteniendo ajustes", http.StatusInternalServerError)
		return
	}
	if adjustments == nil {
		adjustments = []*Adjustment{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(adjustments)
}

type adjustmentPayload struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
}

// Create handles POST /earnings.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var p adjustmentPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	date, err := time.ParseInLocation("2006-01-02", p.Date, time.UTC)
	if err != nil {
		http.Error(w, "Fecha inválida", http.StatusBadRequest)
		return
	}

	a, err := h.repo.Create(r.Context(), p.Description, p.Amount, date)
	if err != nil {
		h.logger.Error("failed to create adjustment", "error", err)
		http.Error(w, "Error creando ajuste", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(a)
}

// Delete handles DELETE /earnings/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Ajuste no encontrado", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete adjustment", "error", err, "adjustment_id", id)
		http.Error(w, "Error eliminando ajuste", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Ajuste eliminado"})
}

// Summary handles GET /earnings/summary?month=YYYY-MM, defaulting to the
// current month.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	if h.summary == nil {
		http.Error(w, "resumen no disponible", http.StatusServiceUnavailable)
		return
	}

	ref := h.clock.Now()
	if month := r.URL.Query().Get("month"); month != "" {
		parsed, err := time.ParseInLocation("2006-01", month, time.UTC)
		if err != nil {
			http.Error(w, "Mes inválido", http.StatusBadRequest)
			return
		}
		ref = parsed
	}

	s, err := h.summary.MonthSummary(r.Context(), ref)
	if err != nil {
		h.logger.Error("failed to build earnings summary", "error", err)
		http.Error(w, "Error obteniendo resumen", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s)
}
