package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nailsxoxi/salon-platform/internal/appointments"
	"github.com/nailsxoxi/salon-platform/internal/auth"
	"github.com/nailsxoxi/salon-platform/internal/availability"
	"github.com/nailsxoxi/salon-platform/internal/earnings"
	httpmiddleware "github.com/nailsxoxi/salon-platform/internal/http/middleware"
	"github.com/nailsxoxi/salon-platform/internal/payments"
	"github.com/nailsxoxi/salon-platform/internal/services"
	"github.com/nailsxoxi/salon-platform/internal/users"
	"github.com/nailsxoxi/salon-platform/pkg/logging"
)

// UserLoader re-loads the principal on every authenticated request.
type UserLoader = httpmiddleware.UserLoader

// Config holds router configuration.
type Config struct {
	Logger *logging.Logger

	Tokens     *auth.TokenMaker
	UserLoader UserLoader

	AuthHandler         *auth.Handler
	ServicesHandler     *services.Handler
	AvailabilityHandler *availability.Handler
	AppointmentsHandler *appointments.Handler
	PaymentsHandler     *payments.Handler
	Webhook             *payments.Reconciler
	ClientsHandler      *users.Handler
	EarningsHandler     *earnings.Handler

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	RateLimitPerSec    float64
	RateLimitBurst     int
}

// New creates a Chi router with all routes configured. All application
// routes live under /api, matching the paths the gateway and the web
// client are configured with.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitPerSec > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSec, cfg.RateLimitBurst))
	}

	authenticate := httpmiddleware.Authenticate(cfg.Tokens, cfg.UserLoader)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(a chi.Router) {
			a.Post("/register", cfg.AuthHandler.Register)
			a.Post("/login", cfg.AuthHandler.Login)
			a.Post("/forgot-password", cfg.AuthHandler.ForgotPassword)
			a.Post("/reset-password", cfg.AuthHandler.ResetPassword)
		})

		api.Route("/services", func(s chi.Router) {
			s.Get("/", cfg.ServicesHandler.List)
			s.Get("/categories", cfg.ServicesHandler.ListCategories)

			s.Group(func(admin chi.Router) {
				admin.Use(authenticate, httpmiddleware.RequireAdmin)
				admin.Post("/", cfg.ServicesHandler.Create)
				admin.Put("/{id}", cfg.ServicesHandler.Update)
				admin.Delete("/{id}", cfg.ServicesHandler.Delete)
			})
		})

		api.Route("/availability", func(a chi.Router) {
			a.Get("/", cfg.AvailabilityHandler.List)
			a.Get("/slots", cfg.AvailabilityHandler.Slots)
			a.With(authenticate, httpmiddleware.RequireAdmin).Post("/", cfg.AvailabilityHandler.Upsert)
		})

		api.Route("/appointments", func(a chi.Router) {
			a.Use(authenticate)
			a.Get("/my-appointments", cfg.AppointmentsHandler.ListMine)
			a.Post("/", cfg.AppointmentsHandler.Create)
			a.Post("/{id}/cancel", cfg.AppointmentsHandler.CancelOwn)

			a.Group(func(admin chi.Router) {
				admin.Use(httpmiddleware.RequireAdmin)
				admin.Get("/", cfg.AppointmentsHandler.List)
				admin.Post("/admin/cancel", cfg.AppointmentsHandler.AdminCancel)
				admin.Post("/admin/mark-noshow", cfg.AppointmentsHandler.MarkNoShow)
				admin.Post("/admin/delete", cfg.AppointmentsHandler.AdminDelete)
			})
		})

		api.Route("/payments", func(p chi.Router) {
			p.Post("/webhook", cfg.Webhook.HandleWebhook)
			p.With(authenticate).Post("/create-preference", cfg.PaymentsHandler.CreatePreference)
			p.With(authenticate, httpmiddleware.RequireAdmin).Get("/appointment/{id}", cfg.PaymentsHandler.ListForAppointment)
		})

		api.Route("/clients", func(c chi.Router) {
			c.Use(authenticate, httpmiddleware.RequireAdmin)
			c.Get("/", cfg.ClientsHandler.ListClients)
			c.Delete("/{id}", cfg.ClientsHandler.DeleteClient)
			c.Post("/{id}/toggle-block", cfg.ClientsHandler.ToggleBlock)
			c.Post("/{id}/toggle-admin", cfg.ClientsHandler.ToggleAdmin)
			c.Post("/{id}/clear-debt", cfg.ClientsHandler.ClearDebt)
		})

		api.Route("/earnings", func(e chi.Router) {
			e.Use(authenticate, httpmiddleware.RequireAdmin)
			e.Get("/", cfg.EarningsHandler.List)
			e.Get("/summary", cfg.EarningsHandler.Summary)
			e.Post("/", cfg.EarningsHandler.Create)
			e.Delete("/{id}", cfg.EarningsHandler.Delete)
		})
	})

	return r
}
