package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("RESUME_URL_TTL_SECONDS", "")
	t.Setenv("PIPELINE_MODE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.ResumeURLTTL() != 60*time.Second {
		t.Fatalf("resume ttl = %s", cfg.Storage.ResumeURLTTL())
	}
	if cfg.Pipeline.Mode != "free" {
		t.Fatalf("pipeline mode = %q", cfg.Pipeline.Mode)
	}
	if cfg.Auth.CookieName != "ats_session" {
		t.Fatalf("cookie name = %q", cfg.Auth.CookieName)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("RESUME_URL_TTL_SECONDS", "30")
	t.Setenv("INTAKE_RATE_LIMIT", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Addr() != "0.0.0.0:9090" {
		t.Fatalf("addr = %s", cfg.App.Addr())
	}
	if cfg.Storage.ResumeURLTTL() != 30*time.Second {
		t.Fatalf("resume ttl = %s", cfg.Storage.ResumeURLTTL())
	}
	if cfg.Intake.RateLimit != 5 {
		t.Fatalf("invalid int should fall back, got %d", cfg.Intake.RateLimit)
	}
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "x")
	if _, err := Load(); err == nil {
		t.Fatal("expected error")
	}
}
