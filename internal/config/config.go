// Package config provides the synchronization layer's configuration loaded
// from environment variables with defaults and validation. It centralizes
// the remote API endpoint, request timing, cache TTLs, polling cadence, the
// review-eligibility threshold, and observability settings.
package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all settings for the synchronization layer.
type Config struct {
	// Remote API
	APIBaseURL     string        // base URL of the accountability backend
	RequestTimeout time.Duration // per-request timeout; timeouts classify as unreachable
	RetryDelay     time.Duration // fixed delay before the single rate-limit retry

	// Cache
	CacheTTL         time.Duration // general read TTL
	VolatileCacheTTL time.Duration // TTL for dashboard/stat aggregate reads

	// Outbound throttling (cost protection, process-local)
	OutboundRPS   float64 // tokens per second (>= 0)
	OutboundBurst int     // bucket size (>= 1)

	// Commitment lifecycle
	PollInterval    time.Duration // how often the poller re-fetches
	ReviewThreshold time.Duration // commitment age after which a review is due
	StatsWindowDays int           // rolling window requested from the stats endpoint

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables, applies defaults,
// and validates the result. A .env file is honored when present (local dev);
// its absence is not an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		// Remote API
		APIBaseURL:     getenv("API_BASE_URL", "http://localhost:8000"),
		RequestTimeout: getdur("REQUEST_TIMEOUT", 30*time.Second),
		RetryDelay:     getdur("RETRY_DELAY", 2*time.Second),

		// Cache
		CacheTTL:         getdur("CACHE_TTL", 5*time.Minute),
		VolatileCacheTTL: getdur("VOLATILE_CACHE_TTL", time.Minute),

		// Outbound throttling
		OutboundRPS:   getfloat("OUTBOUND_RPS", 10.0),
		OutboundBurst: getint("OUTBOUND_BURST", 20),

		// Commitment lifecycle
		PollInterval:    getdur("POLL_INTERVAL", 5*time.Minute),
		ReviewThreshold: getdur("REVIEW_THRESHOLD", 8*time.Hour),
		StatsWindowDays: getint("STATS_WINDOW_DAYS", 30),

		// Logging
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-accountability-sync"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if cfg.APIBaseURL == "" {
		return cfg, errors.New("API_BASE_URL must not be empty")
	}
	if u, err := url.Parse(cfg.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return cfg, errors.New("API_BASE_URL must be an absolute URL")
	}
	if cfg.RequestTimeout <= 0 || cfg.RetryDelay <= 0 {
		return cfg, errors.New("request timing values must be positive durations")
	}
	if cfg.CacheTTL <= 0 || cfg.VolatileCacheTTL <= 0 {
		return cfg, errors.New("cache TTLs must be positive durations")
	}
	if cfg.OutboundRPS < 0 {
		return cfg, errors.New("OUTBOUND_RPS must be >= 0")
	}
	if cfg.OutboundBurst < 1 {
		return cfg, errors.New("OUTBOUND_BURST must be >= 1")
	}
	if cfg.PollInterval <= 0 {
		return cfg, errors.New("POLL_INTERVAL must be > 0")
	}
	if cfg.ReviewThreshold <= 0 {
		return cfg, errors.New("REVIEW_THRESHOLD must be > 0")
	}
	if cfg.StatsWindowDays < 1 {
		return cfg, errors.New("STATS_WINDOW_DAYS must be >= 1")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
