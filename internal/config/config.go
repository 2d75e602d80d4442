package config

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	API      APIConfig
	Pipeline PipelineConfig
	Digest   DigestConfig
	Cache    CacheConfig
	Health   HealthConfig
	Logging  LoggingConfig
}

// APIConfig holds backend connection configuration
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
	Mock    bool
}

// PipelineConfig holds run controller tuning
type PipelineConfig struct {
	PollInterval time.Duration
	Dwell        time.Duration
}

// DigestConfig holds digest view defaults
type DigestConfig struct {
	ItemsPerPage int
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	Backend   string // "memory" or "redis"
	TTL       time.Duration
	RedisAddr string
}

// HealthConfig holds source health classification thresholds
type HealthConfig struct {
	ErrorCount   int
	WarningCount int
	StaleAfter   time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// Load parses flags and environment variables to build configuration
func Load() *Config {
	cfg := &Config{}

	// Define flags with defaults
	apiURL := flag.String("api-url", "http://localhost:8000", "Digest backend base URL")
	apiTimeout := flag.Duration("api-timeout", 30*time.Second, "Backend request timeout")
	mockMode := flag.Bool("mock", false, "Use the in-process mock backend instead of HTTP")
	pollInterval := flag.Duration("poll-interval", 2*time.Second, "Pipeline status poll interval")
	dwell := flag.Duration("dwell", 5*time.Second, "How long a completed run stays visible before resetting")
	itemsPerPage := flag.Int("items-per-page", 50, "Digest page size")
	cacheTTL := flag.Duration("cache-ttl", 5*time.Minute, "Cache TTL for category and settings data")
	cacheBackend := flag.String("cache-backend", "memory", "Cache backend: memory or redis")
	redisAddr := flag.String("redis-addr", "localhost:6379", "Redis server address")
	healthErrors := flag.Int("health-error-count", 3, "Consecutive fetch errors before a source is marked error")
	healthWarnings := flag.Int("health-warning-count", 1, "Consecutive fetch errors before a source is marked warning")
	healthStale := flag.Duration("health-stale-after", 48*time.Hour, "Fetch silence before a source is marked stale")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")

	flag.Parse()

	// Apply environment variable overrides
	applyEnvOverrides(apiURL, apiTimeout, mockMode, pollInterval, dwell, itemsPerPage, cacheTTL, cacheBackend, redisAddr, healthErrors, healthWarnings, healthStale, logLevel)

	// Build config struct
	cfg.API = APIConfig{
		BaseURL: *apiURL,
		Timeout: *apiTimeout,
		Mock:    *mockMode,
	}

	cfg.Pipeline = PipelineConfig{
		PollInterval: *pollInterval,
		Dwell:        *dwell,
	}

	cfg.Digest = DigestConfig{
		ItemsPerPage: *itemsPerPage,
	}

	cfg.Cache = CacheConfig{
		Backend:   *cacheBackend,
		TTL:       *cacheTTL,
		RedisAddr: *redisAddr,
	}

	cfg.Health = HealthConfig{
		ErrorCount:   *healthErrors,
		WarningCount: *healthWarnings,
		StaleAfter:   *healthStale,
	}

	cfg.Logging = LoggingConfig{
		Level: *logLevel,
	}

	return cfg
}

func applyEnvOverrides(
	apiURL *string,
	apiTimeout *time.Duration,
	mockMode *bool,
	pollInterval *time.Duration,
	dwell *time.Duration,
	itemsPerPage *int,
	cacheTTL *time.Duration,
	cacheBackend *string,
	redisAddr *string,
	healthErrors *int,
	healthWarnings *int,
	healthStale *time.Duration,
	logLevel *string,
) {
	if v := os.Getenv("API_URL"); v != "" {
		*apiURL = v
	}
	if v := os.Getenv("API_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*apiTimeout = d
		}
	}
	if v := os.Getenv("MOCK_MODE"); v == "true" || v == "1" {
		*mockMode = true
	}
	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*pollInterval = d
		}
	}
	if v := os.Getenv("DWELL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dwell = d
		}
	}
	if v := os.Getenv("ITEMS_PER_PAGE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*itemsPerPage = n
		}
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*cacheTTL = d
		}
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		*cacheBackend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		*redisAddr = v
	}
	if v := os.Getenv("HEALTH_ERROR_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*healthErrors = n
		}
	}
	if v := os.Getenv("HEALTH_WARNING_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*healthWarnings = n
		}
	}
	if v := os.Getenv("HEALTH_STALE_AFTER"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*healthStale = d
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		*logLevel = v
	}
}
