package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/nailsxoxi/salon-platform/internal/api/router"
	"github.com/nailsxoxi/salon-platform/internal/appointments"
	"github.com/nailsxoxi/salon-platform/internal/auth"
	"github.com/nailsxoxi/salon-platform/internal/availability"
	"github.com/nailsxoxi/salon-platform/internal/clock"
	appconfig "github.com/nailsxoxi/salon-platform/internal/config"
	"github.com/nailsxoxi/salon-platform/internal/earnings"
	"github.com/nailsxoxi/salon-platform/internal/notify"
	"github.com/nailsxoxi/salon-platform/internal/observability/metrics"
	"github.com/nailsxoxi/salon-platform/internal/payments"
	"github.com/nailsxoxi/salon-platform/internal/services"
	"github.com/nailsxoxi/salon-platform/internal/users"
	"github.com/nailsxoxi/salon-platform/pkg/logging"
)

const resetTokenTTL = time.Hour

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting salon-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Postgres
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	// database/sql handle over the same database for the earnings summary
	sqlDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open sql database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = sqlDB.Close() }()

	// Redis backs the single-use password reset tokens
	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() { _ = redisClient.Close() }()

	sender := buildEmailSender(ctx, cfg, logger)
	notifier := notify.NewService(sender, cfg.OwnerEmail, cfg.ClientURL, logger.Named("notify"))

	clk := clock.System{}
	bookingMetrics := metrics.NewBookingMetrics(nil)

	// Repositories
	usersRepo := users.NewRepository(pool)
	servicesRepo := services.NewRepository(pool)
	availabilityRepo := availability.NewRepository(pool)
	appointmentsRepo := appointments.NewRepository(pool)
	paymentsRepo := payments.NewRepository(pool)
	earningsRepo := earnings.NewRepository(pool)

	// Services
	tokens := auth.NewTokenMaker(cfg.JWTSecret, cfg.JWTTTL)
	resets := auth.NewResetTokenStore(redisClient, resetTokenTTL)
	bookingService := appointments.NewService(appointmentsRepo, notifier, clk, bookingMetrics, logger.Named("booking"))

	mpClient := payments.NewMercadoPagoClient(cfg.MPAccessToken, cfg.ClientURL, cfg.ServerURL, logger.Named("mercadopago"))
	if cfg.MPBaseURL != "" {
		mpClient = mpClient.WithBaseURL(cfg.MPBaseURL)
	}
	reconciler := payments.NewReconciler(paymentsRepo, mpClient, appointmentsRepo, notifier, bookingMetrics, logger.Named("webhook"))

	// Handlers
	authHandler := auth.NewHandler(usersRepo, tokens, resets, notifier, clk, logger.Named("auth"))
	servicesHandler := services.NewHandler(servicesRepo, logger.Named("services"))
	availabilityHandler := availability.NewHandler(availabilityRepo, appointmentsRepo, clk, logger.Named("availability"))
	appointmentsHandler := appointments.NewHandler(bookingService, appointmentsRepo, logger.Named("booking"))
	paymentsHandler := payments.NewHandler(mpClient, appointmentsRepo, paymentsRepo, logger.Named("payments"))
	clientsHandler := users.NewHandler(usersRepo, logger.Named("clients"))
	earningsHandler := earnings.NewHandler(earningsRepo, earnings.NewSummaryReader(sqlDB), clk, logger.Named("earnings"))

	// Setup router
	routerCfg := &router.Config{
		Logger:              logger,
		Tokens:              tokens,
		UserLoader:          usersRepo,
		AuthHandler:         authHandler,
		ServicesHandler:     servicesHandler,
		AvailabilityHandler: availabilityHandler,
		AppointmentsHandler: appointmentsHandler,
		PaymentsHandler:     paymentsHandler,
		Webhook:             reconciler,
		ClientsHandler:      clientsHandler,
		EarningsHandler:     earningsHandler,
		MetricsHandler:      promhttp.Handler(),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerSec:     cfg.RateLimitPerSec,
		RateLimitBurst:      cfg.RateLimitBurst,
	}
	r := router.New(routerCfg)

	// Sweep stale pending bookings in the background
	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	sweeper := appointments.NewSweeper(bookingService, cfg.PendingTTL, cfg.SweepInterval, logger.Named("sweeper"))
	go sweeper.Run(sweepCtx)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stopSweeper()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// buildEmailSender picks the configured email provider. Anything that
// fails to initialize falls back to the stub sender so the API keeps
// running in development without credentials.
func buildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Error("failed to load AWS config, using stub email sender", "error", err)
			return notify.NewStubEmailSender(logger)
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.FromEmail,
			FromName:  cfg.FromName,
		}, logger)
		if sender == nil {
			logger.Warn("SES sender not configured, using stub email sender")
			return notify.NewStubEmailSender(logger)
		}
		return sender
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender == nil {
			logger.Warn("SendGrid sender not configured, using stub email sender")
			return notify.NewStubEmailSender(logger)
		}
		return sender
	default:
		logger.Info("email provider not set, using stub email sender", "provider", cfg.EmailProvider)
		return notify.NewStubEmailSender(logger)
	}
}
