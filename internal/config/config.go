package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration, loaded from the environment.
type Config struct {
	// HTTP server
	Port           string
	AllowedOrigins string

	// Database
	DatabaseURL string

	// NL-to-SQL service (Vanna)
	VannaBaseURL string
	VannaAPIKey  string
	VannaTimeout time.Duration

	// Runtime
	Environment string // "development" or "production"
	LogLevel    string
	LogFormat   string // "json" or "console"
}

// Load reads configuration from the environment, applying defaults.
// The database URL is normalized before use: the upstream extraction
// pipeline hands out DSNs with a postgresql+psycopg:// scheme, which
// Postgres drivers do not accept.
func Load() *Config {
	return &Config{
		Port:           getEnv("SERVER_PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", ""),
		DatabaseURL:    NormalizeDatabaseURL(os.Getenv("DATABASE_URL")),
		VannaBaseURL:   getEnv("VANNA_API_BASE_URL", "http://localhost:8000"),
		VannaAPIKey:    getEnv("VANNA_API_KEY", ""),
		VannaTimeout:   getEnvDuration("VANNA_TIMEOUT", 30*time.Second),
		Environment:    getEnv("APP_ENV", "production"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
	}
}

// NormalizeDatabaseURL rewrites the postgresql+psycopg:// scheme prefix to
// postgresql://. Any other DSN is returned unchanged.
func NormalizeDatabaseURL(dsn string) string {
	if strings.HasPrefix(dsn, "postgresql+psycopg://") {
		return "postgresql://" + strings.TrimPrefix(dsn, "postgresql+psycopg://")
	}
	return dsn
}

// Validate checks the configuration and returns an error listing every
// invalid field.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port %q: must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL is not set")
	}

	if _, err := url.Parse(c.VannaBaseURL); err != nil {
		problems = append(problems, fmt.Sprintf("invalid VANNA_API_BASE_URL %q: %v", c.VannaBaseURL, err))
	}

	if c.Environment != "development" && c.Environment != "production" {
		problems = append(problems, fmt.Sprintf("invalid APP_ENV %q: must be development or production", c.Environment))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
