package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DatabaseDriver != "sqlite3" {
		t.Errorf("DatabaseDriver = %q, want sqlite3", cfg.DatabaseDriver)
	}
	if cfg.JWTExpiry != time.Hour {
		t.Errorf("JWTExpiry = %v, want 1h", cfg.JWTExpiry)
	}
	if !cfg.CSRFEnforce {
		t.Error("CSRFEnforce should default to true")
	}
	if cfg.RateLimitLogin != 5 || cfg.RateLimitRegister != 3 {
		t.Errorf("rate limits = %d/%d, want 5/3", cfg.RateLimitLogin, cfg.RateLimitRegister)
	}
	if len(cfg.CORSAllowOrigins) == 0 {
		t.Error("CORSAllowOrigins should have defaults")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "mysql")
	t.Setenv("JWT_EXPIRE_MIN", "15")
	t.Setenv("CSRF_ENFORCE", "false")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.DatabaseDriver != "mysql" {
		t.Errorf("DatabaseDriver = %q, want mysql", cfg.DatabaseDriver)
	}
	if cfg.JWTExpiry != 15*time.Minute {
		t.Errorf("JWTExpiry = %v, want 15m", cfg.JWTExpiry)
	}
	if cfg.CSRFEnforce {
		t.Error("CSRFEnforce should be overridable to false")
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.CORSAllowOrigins) != 2 || cfg.CORSAllowOrigins[0] != want[0] || cfg.CORSAllowOrigins[1] != want[1] {
		t.Errorf("CORSAllowOrigins = %v, want %v", cfg.CORSAllowOrigins, want)
	}
}

func TestLoadMalformedValuesFallBack(t *testing.T) {
	t.Setenv("JWT_EXPIRE_MIN", "soon")
	t.Setenv("CSRF_ENFORCE", "maybe")
	t.Setenv("RATE_LIMIT_LOGIN", "-2")

	cfg := Load()

	if cfg.JWTExpiry != time.Hour {
		t.Errorf("JWTExpiry = %v, want fallback 1h", cfg.JWTExpiry)
	}
	if !cfg.CSRFEnforce {
		t.Error("CSRFEnforce should fall back to true")
	}
	if cfg.RateLimitLogin != 5 {
		t.Errorf("RateLimitLogin = %d, want fallback 5", cfg.RateLimitLogin)
	}
}
