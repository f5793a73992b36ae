package users

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nailsxoxi/salon-platform/pkg/logging"
)

// Handler exposes the admin client-management endpoints.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates a client-management handler.
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// ListClients handles GET /clients.
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.repo.ListClients(r.Context())
	if err != nil {
		h.logger.Error("failed to list clients", "error", err)
		http.Error(w, "Error obteniendo clientes", http.StatusInternalServerError)
		return
	}
	if clients == nil {
		clients = []*User{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(clients)
}

// DeleteClient handles DELETE /clients/{id}.
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Usuario no encontrado", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete user", "error", err, "user_id", id)
		http.Error(w, "Error eliminando usuario", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Usuario eliminado"})
}

// ToggleBlock handles POST /clients/{id}/toggle-block.
func (h *Handler) ToggleBlock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	blocked, err := h.repo.ToggleBlock(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Usuario no encontrado", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to toggle block", "error", err, "user_id", id)
		http.Error(w, "Error actualizando estado", http.StatusInternalServerError)
		return
	}
	msg := "Usuario desbloqueado"
	if blocked {
		msg = "Usuario bloqueado"
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"message": msg, "isBlocked": blocked})
}

// ToggleAdmin handles POST /clients/{id}/toggle-admin.
func (h *Handler) ToggleAdmin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	role, err := h.repo.ToggleRole(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Usuario no encontrado", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to toggle role", "error", err, "user_id", id)
		http.Error(w, "Error actualizando rol", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Rol actualizado a " + role})
}

// ClearDebt handles POST /clients/{id}/clear-debt.
func (h *Handler) ClearDebt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.ClearDebt(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Usuario no encontrado", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to clear debt", "error", err, "user_id", id)
		http.Error(w, "Error eliminando deuda", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Deuda eliminada"})
}
