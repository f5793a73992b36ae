package services

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nailsxoxi/salon-platform/pkg/logging"
)

// Handler exposes the service catalog endpoints.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates a catalog handler.
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

type servicePayload struct {
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	Price               float64  `json:"price"`
	DurationMin         int      `json:"durationMin"`
	Deposit             float64  `json:"deposit"`
	RemovalPriceOwn     float64  `json:"removalPriceOwn"`
	RemovalPriceForeign float64  `json:"removalPriceForeign"`
	Images              []string `json:"images"`
	ImageURL            string   `json:"imageUrl"`
	CategoryID          string   `json:"categoryId"`
	CategoryName        string   `json:"categoryName"`
}

func (p *servicePayload) gallery() []string {
	if len(p.Images) > 0 {
		return p.Images
	}
	// Legacy clients send a single imageUrl instead of the gallery.
	if p.ImageURL != "" {
		return []string{p.ImageURL}
	}
	return []string{}
}

// resolveCategory picks the explicit category id, or finds/creates one by
// name when the client sent a new category inline.
func (h *Handler) resolveCategory(r *http.Request, p *servicePayload) (string, error) {
	if name := strings.TrimSpace(p.CategoryName); name != "" {
		return h.repo.EnsureCategory(r.Context(), name)
	}
	return p.CategoryID, nil
}

// List handles GET /services.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list services", "error", err)
		http.Error(w, "Error obteniendo servicios", http.StatusInternalServerError)
		return
	}
	if catalog == nil {
		catalog = []*Service{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(catalog)
}

// ListCategories handles GET /services/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("failed to list categories", "error", err)
		http.Error(w, "Error obteniendo categorías", http.StatusInternalServerError)
		return
	}
	if categories == nil {
		categories = []*Category{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(categories)
}

// Create handles POST /services.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var p servicePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if p.Name == "" || p.Price <= 0 || p.DurationMin <= 0 {
		http.Error(w, "Nombre, precio y duración son obligatorios", http.StatusBadRequest)
		return
	}

	categoryID, err := h.resolveCategory(r, &p)
	if err != nil {
		h.logger.Error("failed to resolve category", "error", err)
		http.Error(w, "Error creando servicio", http.StatusInternalServerError)
		return
	}

	svc := &Service{
		Name:                p.Name,
		Description:         p.Description,
		Price:               p.Price,
		DurationMin:         p.DurationMin,
		Deposit:             p.Deposit,
		RemovalPriceOwn:     p.RemovalPriceOwn,
		RemovalPriceForeign: p.RemovalPriceForeign,
		Images:              p.gallery(),
		CategoryID:          categoryID,
	}
	if err := h.repo.Create(r.Context(), svc); err != nil {
		h.logger.Error("failed to create service", "error", err)
		http.Error(w, "Error creando servicio", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(svc)
}

// Update handles PUT /services/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var p servicePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	categoryID, err := h.resolveCategory(r, &p)
	if err != nil {
		h.logger.Error("failed to resolve category", "error", err)
		http.Error(w, "Error actualizando servicio", http.StatusInternalServerError)
		return
	}

	svc := &Service{
		ID:                  id,
		Name:                p.Name,
		Description:         p.Description,
		Price:               p.Price,
		DurationMin:         p.DurationMin,
		Deposit:             p.Deposit,
		RemovalPriceOwn:     p.RemovalPriceOwn,
		RemovalPriceForeign: p.RemovalPriceForeign,
		Images:              p.gallery(),
		CategoryID:          categoryID,
	}
	if err := h.repo.Update(r.Context(), svc); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Servicio no encontrado", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update service", "error", err, "service_id", id)
		http.Error(w, "Error actualizando servicio", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(svc)
}

// Delete handles DELETE /services/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Servicio no encontrado", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete service", "error", err, "service_id", id)
		http.Error(w, "Error eliminando servicio", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}
