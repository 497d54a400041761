// Package config loads application configuration from a .env file and
// environment variables.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/MattGuil/AppStation/internal/geocode"
	"github.com/MattGuil/AppStation/internal/routing"
	"github.com/MattGuil/AppStation/pkg/api"
)

// Config holds all application configuration.
type Config struct {
	// Opendata fuel price dataset
	OpendataBaseURL string
	Dataset         string
	Rows            int

	// External collaborators
	NominatimServer string
	OSRMBaseURL     string
	OSRMRequestsPS  int

	// Routing fan-out
	RouteWorkers  int
	RouteTimeout  time.Duration
	MaxCandidates int

	// Search history database
	HistoryDB string

	// HTTP server
	HTTPAddr string

	LogLevel string
}

// Load reads the .env file, if any, and returns a populated Config.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using system env vars")
	}

	return &Config{
		OpendataBaseURL: getEnv("OPENDATA_BASE_URL", api.DefaultBaseURL),
		Dataset:         getEnv("OPENDATA_DATASET", api.DefaultDataset),
		Rows:            getEnvInt("OPENDATA_ROWS", api.DefaultRows),

		NominatimServer: getEnv("NOMINATIM_SERVER", geocode.DefaultServer),
		OSRMBaseURL:     getEnv("OSRM_BASE_URL", routing.DefaultBaseURL),
		OSRMRequestsPS:  getEnvInt("OSRM_RPS", 5),

		RouteWorkers:  getEnvInt("ROUTE_WORKERS", 4),
		RouteTimeout:  time.Duration(getEnvInt("ROUTE_TIMEOUT_SECONDS", 10)) * time.Second,
		MaxCandidates: getEnvInt("ROUTE_MAX_CANDIDATES", 15),

		HistoryDB: getEnv("HISTORY_DB", "search_history.db"),

		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// SlogLevel maps the configured level name to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}
