package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string
	Env  string

	DatabaseDriver string
	DatabaseDSN    string

	JWTSecret string
	JWTExpiry time.Duration

	CSRFSecret     string
	CSRFCookieName string
	CSRFHeaderName string
	CSRFFormField  string
	CSRFTokenTTL   time.Duration
	CSRFEnforce    bool

	CORSAllowOrigins []string

	RedisAddr         string
	RateLimitLogin    int
	RateLimitRegister int
	RateLimitWindow   time.Duration
}

const (
	devJWTSecret  = "dev-secret-change-in-production"
	devCSRFSecret = "dev-csrf-secret-change-in-production"
)

func Load() Config {
	cfg := Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		DatabaseDriver: getEnv("DATABASE_DRIVER", "sqlite3"),
		DatabaseDSN:    getEnv("DATABASE_DSN", "./tasks.db"),

		JWTSecret: getEnv("JWT_SECRET", devJWTSecret),
		JWTExpiry: time.Duration(getEnvInt("JWT_EXPIRE_MIN", 60)) * time.Minute,

		CSRFSecret:     getEnv("CSRF_SECRET", devCSRFSecret),
		CSRFCookieName: getEnv("CSRF_COOKIE_NAME", "csrftoken"),
		CSRFHeaderName: getEnv("CSRF_HEADER_NAME", "X-CSRF-Token"),
		CSRFFormField:  getEnv("CSRF_FORM_FIELD", "csrf_token"),
		CSRFTokenTTL:   time.Duration(getEnvInt("CSRF_TOKEN_TTL", 3600)) * time.Second,
		CSRFEnforce:    getEnvBool("CSRF_ENFORCE", true),

		CORSAllowOrigins: splitList(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:8080,http://127.0.0.1:8080")),

		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RateLimitLogin:    getEnvInt("RATE_LIMIT_LOGIN", 5),
		RateLimitRegister: getEnvInt("RATE_LIMIT_REGISTER", 3),
		RateLimitWindow:   time.Minute,
	}

	if cfg.Env == "production" {
		if cfg.JWTSecret == devJWTSecret {
			slog.Error("JWT_SECRET must be set in production environment")
			os.Exit(1)
		}
		if cfg.CSRFSecret == devCSRFSecret {
			slog.Error("CSRF_SECRET must be set in production environment")
			os.Exit(1)
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt parses an integer env var, falling back on missing or
// malformed values so a bad setting never breaks startup.
func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid integer env var, using fallback", "key", key, "value", v, "fallback", fallback)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid boolean env var, using fallback", "key", key, "value", v, "fallback", fallback)
		return fallback
	}
	return b
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
