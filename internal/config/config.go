package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort     int
	BackendURL     string        // Base URL of the collaboration REST API, including /api
	BackendTimeout time.Duration // Per-call timeout for backend requests
	DatabasePath   string        // SQLite file holding browser session values
	LogLevel       string

	SessionSecret    string
	SessionTTL       time.Duration // Lifetime of a stored token when it carries no exp claim
	SessionSweepCron string        // When expired session rows are purged
	CookieSecure     bool

	AllowedOrigins []string
}

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory is read first when present; real
// environment variables win over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	backendTimeout, err := time.ParseDuration(getEnv("BACKEND_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid BACKEND_TIMEOUT: %w", err)
	}

	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	cookieSecure, err := strconv.ParseBool(getEnv("COOKIE_SECURE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid COOKIE_SECURE: %w", err)
	}

	cfg := &Config{
		ServerPort:       port,
		BackendURL:       strings.TrimRight(getEnv("BACKEND_URL", "http://127.0.0.1:8000/api"), "/"),
		BackendTimeout:   backendTimeout,
		DatabasePath:     getEnv("DATABASE_PATH", "./teamup.db"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		SessionSecret:    getEnv("SESSION_SECRET", ""),
		SessionTTL:       sessionTTL,
		SessionSweepCron: getEnv("SESSION_SWEEP_CRON", "*/15 * * * *"),
		CookieSecure:     cookieSecure,
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
	}

	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}
	return cfg, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
