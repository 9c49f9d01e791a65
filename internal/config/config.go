package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	Port     string
	LogLevel string

	// SiteBaseURL is the public catalog site (classification + scrape fallback).
	SiteBaseURL string
	// APIBaseURL is the structured feed API root.
	APIBaseURL string
	// StreamBaseURL is the proxied-stream root used to build playable URLs
	// from internal section identifiers.
	StreamBaseURL string

	UserAgent string
	// PageSize is the limit requested from every listing endpoint.
	PageSize int
	// AllowHLS enables adaptive-streaming sources ahead of the proxied stream.
	AllowHLS bool
	// StatePath is where the serialized cache/dedup state blob is kept.
	StatePath string
	// UpstreamRPS caps requests per second against the upstream catalog.
	UpstreamRPS float64
}

func Load() *Config {
	// A missing .env is fine; real env vars still apply.
	_ = godotenv.Load()

	return &Config{
		Port:          getenv("PORT", "8080"),
		LogLevel:      getenv("LOG_LEVEL", "INFO"),
		SiteBaseURL:   getenv("LIBRIVOX_SITE_URL", "https://librivox.app"),
		APIBaseURL:    getenv("LIBRIVOX_API_URL", "https://librivox.app/api/v1"),
		StreamBaseURL: getenv("LIBRIVOX_STREAM_URL", "https://librivox.app/stream"),
		UserAgent:     getenv("USER_AGENT", "grayjay-plugin-librivox"),
		PageSize:      getenvInt("PAGE_SIZE", 20),
		AllowHLS:      getenvBool("ALLOW_HLS", false),
		StatePath:     getenv("STATE_PATH", "librivox-state.json"),
		UpstreamRPS:   getenvFloat("UPSTREAM_RPS", 4),
	}
}

// SlogLevel maps the configured log level onto slog's levels, defaulting to
// Info for unknown values.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return fallback
}
