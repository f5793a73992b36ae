package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/nailsxoxi/salon-platform/internal/clock"
	"github.com/nailsxoxi/salon-platform/internal/notify"
	"github.com/nailsxoxi/salon-platform/internal/users"
	"github.com/nailsxoxi/salon-platform/pkg/logging"
)

type userStore interface {
	Create(ctx context.Context, email, passwordHash, name, phone string) (*users.User, error)
	GetByEmail(ctx context.Context, email string) (*users.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type resetTokenStore interface {
	Issue(ctx context.Context, userID string) (string, error)
	Consume(ctx context.Context, token string) (string, error)
}

type resetMailer interface {
	PasswordReset(ctx context.Context, to notify.Recipient, token string) error
}

// Handler exposes registration, login and password-reset endpoints.
type Handler struct {
	store  userStore
	tokens *TokenMaker
	resets resetTokenStore
	mailer resetMailer
	clock  clock.Clock
	logger *logging.Logger
}

// NewHandler creates an auth handler.
func NewHandler(store userStore, tokens *TokenMaker, resets resetTokenStore, mailer resetMailer, clk clock.Clock, logger *logging.Logger) *Handler {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		store:  store,
		tokens: tokens,
		resets: resets,
		mailer: mailer,
		clock:  clk,
		logger: logger,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

func toUserResponse(u *users.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// Register handles POST /auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || len(req.Password) < 6 || strings.TrimSpace(req.Name) == "" {
		http.Error(w, "Email, contraseña (mínimo 6 caracteres) y nombre son obligatorios", http.StatusBadRequest)
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		http.Error(w, "Error en registro", http.StatusInternalServerError)
		return
	}

	user, err := h.store.Create(r.Context(), req.Email, hash, req.Name, req.Phone)
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			http.Error(w, "El usuario ya existe", http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to create user", "error", err)
		http.Error(w, "Error en registro", http.StatusInternalServerError)
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Role, h.clock.Now())
	if err != nil {
		h.logger.Error("failed to issue token", "error", err, "user_id", user.ID)
		http.Error(w, "Error en registro", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(authResponse{User: toUserResponse(user), Token: token})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.store.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			http.Error(w, "Credenciales inválidas", http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to load user for login", "error", err)
		http.Error(w, "Error en login", http.StatusInternalServerError)
		return
	}
	if !CheckPassword(user.PasswordHash, req.Password) {
		http.Error(w, "Credenciales inválidas", http.StatusBadRequest)
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Role, h.clock.Now())
	if err != nil {
		h.logger.Error("failed to issue token", "error", err, "user_id", user.ID)
		http.Error(w, "Error en login", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(authResponse{User: toUserResponse(user), Token: token})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword handles POST /auth/forgot-password. It always answers 200
// so the endpoint cannot be used to probe which emails are registered.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if user, err := h.store.GetByEmail(r.Context(), req.Email); err == nil {
		token, terr := h.resets.Issue(r.Context(), user.ID)
		if terr != nil {
			h.logger.Error("failed to issue reset token", "error", terr, "user_id", user.ID)
		} else if h.mailer != nil {
			if merr := h.mailer.PasswordReset(r.Context(), notify.Recipient{Email: user.Email, Name: user.Name}, token); merr != nil {
				h.logger.Error("failed to send reset email", "error", merr, "user_id", user.ID)
			}
		}
	} else if !errors.Is(err, users.ErrNotFound) {
		h.logger.Error("failed to load user for reset", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Si el email está registrado, recibirás un enlace para restablecer tu contraseña"})
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword handles POST /auth/reset-password.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Token == "" || len(req.NewPassword) < 6 {
		http.Error(w, "Token y nueva contraseña (mínimo 6 caracteres) son obligatorios", http.StatusBadRequest)
		return
	}

	userID, err := h.resets.Consume(r.Context(), req.Token)
	if err != nil {
		if errors.Is(err, ErrResetTokenInvalid) {
			http.Error(w, "El enlace es inválido o expiró", http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to consume reset token", "error", err)
		http.Error(w, "Error restableciendo contraseña", http.StatusInternalServerError)
		return
	}

	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		http.Error(w, "Error restableciendo contraseña", http.StatusInternalServerError)
		return
	}
	if err := h.store.UpdatePassword(r.Context(), userID, hash); err != nil {
		h.logger.Error("failed to update password", "error", err, "user_id", userID)
		http.Error(w, "Error restableciendo contraseña", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Contraseña actualizada"})
}
