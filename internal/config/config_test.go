package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/vitaltrack_test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("port = %q, want 8000", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("env = %q, want development", cfg.Env)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("token ttl = %v, want 24h", cfg.TokenTTL)
	}
	if cfg.AIModel != "gemini-1.5-flash" {
		t.Errorf("ai model = %q", cfg.AIModel)
	}
	if cfg.DBMaxConns != 20 || cfg.DBMinConns != 5 {
		t.Errorf("pool bounds = %d/%d, want 20/5", cfg.DBMaxConns, cfg.DBMinConns)
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/vitaltrack_test")
	t.Setenv("PORT", "9999")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("AI_TIMEOUT", "10s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9999" {
		t.Errorf("port = %q, want 9999", cfg.Port)
	}
	if cfg.TokenTTL != time.Hour {
		t.Errorf("token ttl = %v, want 1h", cfg.TokenTTL)
	}
	if cfg.AITimeout != 10*time.Second {
		t.Errorf("ai timeout = %v, want 10s", cfg.AITimeout)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Env:            "development",
			RequestTimeout: 30 * time.Second,
			AITimeout:      45 * time.Second,
		}
	}

	if err := base().Validate(); err != nil {
		t.Errorf("dev config without a secret should validate, got %v", err)
	}

	prod := base()
	prod.Env = "production"
	prod.AIAPIKey = "key"
	err := prod.Validate()
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Errorf("production without a secret should fail on JWT_SECRET, got %v", err)
	}

	prod.JWTSecret = strings.Repeat("s", 32)
	if err := prod.Validate(); err != nil {
		t.Errorf("production with secret and key should validate, got %v", err)
	}

	prod.AIAPIKey = ""
	if err := prod.Validate(); err == nil {
		t.Error("production without AI_API_KEY should fail")
	}

	broken := base()
	broken.RequestTimeout = 0
	if err := broken.Validate(); err == nil {
		t.Error("zero request timeout should fail")
	}
}

func TestEffectiveJWTSecret(t *testing.T) {
	c := &Config{}
	if len(c.EffectiveJWTSecret()) == 0 {
		t.Error("dev fallback secret should be non-empty")
	}
	c.JWTSecret = "configured-secret"
	if string(c.EffectiveJWTSecret()) != "configured-secret" {
		t.Error("configured secret should win")
	}
}
