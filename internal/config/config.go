// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/neexbeast/tripplanner/internal/upstream"
)

// Config holds all configuration values for the server and the CLI.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required by the server.
	DatabaseURL string

	// RedisURL enables the Redis geocode cache. Empty means in-process cache.
	RedisURL string

	// BearerToken guards plan creation. Required by the server.
	BearerToken string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	GeoapifyKey     string
	GooglePlacesKey string
	OpenTripMapKey  string

	// CatalogPath points to a YAML destination catalog. Empty means the
	// embedded one.
	CatalogPath string

	// ProviderTimeout bounds every outbound provider call.
	ProviderTimeout time.Duration

	// ProviderLanguage is sent to providers that localize names.
	ProviderLanguage string

	// MigrationsDir overrides the embedded migrations when set.
	MigrationsDir string
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding ones already set. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables and returns a Config.
// Required variables are checked separately by RequireServer.
func Load() (Config, error) {
	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		BearerToken:      os.Getenv("BEARER_TOKEN"),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", "info")),
		CORSOrigins:      splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		GeoapifyKey:      os.Getenv("GEOAPIFY_API_KEY"),
		GooglePlacesKey:  os.Getenv("GOOGLE_PLACES_API_KEY"),
		OpenTripMapKey:   os.Getenv("OPENTRIPMAP_API_KEY"),
		CatalogPath:      os.Getenv("CATALOG_PATH"),
		ProviderLanguage: getEnv("PROVIDER_LANGUAGE", "en"),
		MigrationsDir:    os.Getenv("MIGRATIONS_DIR"),
	}

	timeout, err := parseTimeout(getEnv("PROVIDER_TIMEOUT", ""))
	if err != nil {
		return Config{}, err
	}
	cfg.ProviderTimeout = timeout

	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// RequireServer returns an error listing the server's required variables
// that are not set.
func (c Config) RequireServer() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.BearerToken == "" {
		missing = append(missing, "BEARER_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Level returns LogLevel as a slog.Level, defaulting to info.
func (c Config) Level() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
}

// parseTimeout accepts a Go duration ("5s") or whole seconds ("5").
func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return upstream.DefaultTimeout, nil
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid PROVIDER_TIMEOUT %q", s)
	}
	return d, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
