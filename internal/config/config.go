package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	APIBaseURL       string
	RequestTimeout   time.Duration
	StoragePath      string
	LogDir           string
	LogRetentionDays int
	LogLevel         string
	GatewayAddr      string
	CorsOrigins      []string
	SearchDebounce   time.Duration
	BannerDuration   time.Duration
	DefaultPageSize  int
}

var ErrMissingBaseURL = errors.New("missing env var: API_BASE_URL")

func Load() (Config, error) {
	cfg := Config{
		APIBaseURL:       strings.TrimRight(envOr("API_BASE_URL", ""), "/"),
		RequestTimeout:   time.Duration(envOrInt("API_TIMEOUT_SECONDS", 30)) * time.Second,
		StoragePath:      envOr("STORAGE_PATH", "storage/local.db"),
		LogDir:           envOr("LOG_DIR", "storage/logs"),
		LogRetentionDays: clamp(envOrInt("LOG_RETENTION_DAYS", 7), 1, 7),
		LogLevel:         envOr("LOG_LEVEL", "info"),
		GatewayAddr:      gatewayAddr(),
		CorsOrigins:      parseCSV(envOr("CORS_ORIGINS", "")),
		SearchDebounce:   time.Duration(envOrInt("SEARCH_DEBOUNCE_MS", 400)) * time.Millisecond,
		BannerDuration:   bannerDuration(),
		DefaultPageSize:  envOrInt("DEFAULT_PAGE_SIZE", 10),
	}
	if cfg.APIBaseURL == "" {
		return cfg, ErrMissingBaseURL
	}
	if cfg.DefaultPageSize < 1 {
		cfg.DefaultPageSize = 10
	}
	return cfg, nil
}

func gatewayAddr() string {
	if value := envOr("GATEWAY_ADDR", ""); value != "" {
		return value
	}
	if port := envOr("PORT", ""); port != "" {
		return ":" + port
	}
	return ":8080"
}

// BANNER_MS wins over BANNER_SECONDS so sub-second values can be expressed.
func bannerDuration() time.Duration {
	if ms := envOrInt("BANNER_MS", 0); ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	if seconds := envOrInt("BANNER_SECONDS", 0); seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return 2500 * time.Millisecond
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}
