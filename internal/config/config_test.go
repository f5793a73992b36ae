package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.JWTTTL != 7*24*time.Hour {
		t.Errorf("expected default JWT TTL of 7 days, got %s", cfg.JWTTTL)
	}
	if cfg.PendingTTL != 24*time.Hour {
		t.Errorf("expected default pending TTL of 24h, got %s", cfg.PendingTTL)
	}
	if cfg.EmailProvider != "ses" {
		t.Errorf("expected default email provider ses, got %s", cfg.EmailProvider)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PENDING_TTL", "30m")
	t.Setenv("RATE_LIMIT_PER_SEC", "2.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("REDIS_TLS", "true")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.PendingTTL != 30*time.Minute {
		t.Errorf("expected pending TTL 30m, got %s", cfg.PendingTTL)
	}
	if cfg.RateLimitPerSec != 2.5 {
		t.Errorf("expected rate 2.5, got %f", cfg.RateLimitPerSec)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.RedisTLS {
		t.Error("expected redis TLS enabled")
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("PENDING_TTL", "not-a-duration")
	t.Setenv("RATE_LIMIT_BURST", "abc")

	cfg := Load()

	if cfg.PendingTTL != 24*time.Hour {
		t.Errorf("expected fallback pending TTL, got %s", cfg.PendingTTL)
	}
	if cfg.RateLimitBurst != 30 {
		t.Errorf("expected fallback burst 30, got %d", cfg.RateLimitBurst)
	}
}
