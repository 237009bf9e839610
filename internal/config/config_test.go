package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("LOW_STOCK_THRESHOLD", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.TokenTTL != 8*time.Hour {
		t.Fatalf("expected default token ttl 8h, got %s", cfg.TokenTTL)
	}
	if cfg.LowStockThreshold != 5 {
		t.Fatalf("expected default low stock threshold 5, got %d", cfg.LowStockThreshold)
	}
	if cfg.JWTSecret != "" {
		t.Fatalf("expected empty JWT_SECRET when unset, got %q", cfg.JWTSecret)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("SUPER_ADMIN_USERNAME", "root")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.Port)
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Fatalf("expected token ttl 30m, got %s", cfg.TokenTTL)
	}
	if cfg.SuperAdminUsername != "root" {
		t.Fatalf("expected super admin username root, got %q", cfg.SuperAdminUsername)
	}
	if cfg.Address() != ":9090" {
		t.Fatalf("expected address :9090, got %q", cfg.Address())
	}
}

func TestValidateRejectsWeakSecrets(t *testing.T) {
	cfg := Config{JWTSecret: "short", TokenTTL: time.Hour}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for short JWT secret")
	}

	cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error for valid config: %v", err)
	}

	cfg.SuperAdminPassword = "123"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for short super admin password")
	}
}
