package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	AppEnv   string
	LogLevel slog.Level
	Port     string

	// Upstream endpoints.
	CatalogURL      string
	PageURLTemplate string
	TelemetryURL    string

	// TelemetryAPIKey is the static credential of the telemetry feed; empty
	// disables telemetry stations.
	TelemetryAPIKey string

	// TelemetryJoinTrim is how many trailing characters of a telemetry id are
	// dropped to match it against web catalog ids.
	TelemetryJoinTrim int

	HTTPTimeout      time.Duration
	FetchTimeout     time.Duration
	FetchMaxRetries  int
	FetchParallelism int

	// RefreshInterval controls how often the station directory is rebuilt (0 = never).
	RefreshInterval time.Duration

	GeocoderAPIKey string
}

// TelemetryEnabled reports whether a telemetry credential is configured.
func (c *AppConfig) TelemetryEnabled() bool {
	return c.TelemetryAPIKey != ""
}

// Load reads configuration from environment with sensible defaults. A .env
// file in the working directory is honoured when present.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.AppEnv = strings.TrimSpace(getenvDefault("APP_ENV", "dev"))
	switch cfg.AppEnv {
	case "dev", "prod":
	default:
		return nil, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", cfg.AppEnv)
	}

	level, err := parseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level
	cfg.Port = getenvDefault("PORT", "8080")

	cfg.CatalogURL = getenvDefault("CWA_CATALOG_URL", "https://www.cwa.gov.tw/Data/js/Observe/OSM/C/STMap.json")
	cfg.PageURLTemplate = getenvDefault("CWA_PAGE_URL_TEMPLATE", "https://www.cwa.gov.tw/V8/C/W/Observe/MOD/24hr/{id}.html")
	if !strings.Contains(cfg.PageURLTemplate, "{id}") {
		return nil, fmt.Errorf("invalid CWA_PAGE_URL_TEMPLATE %q: missing {id} placeholder", cfg.PageURLTemplate)
	}
	cfg.TelemetryURL = getenvDefault("CWA_TELEMETRY_URL", "https://opendata.cwa.gov.tw/api/v1/rest/datastore/O-A0002-001")
	cfg.TelemetryAPIKey = strings.TrimSpace(os.Getenv("CWA_API_KEY"))
	if cfg.TelemetryJoinTrim, err = getenvInt("TELEMETRY_JOIN_TRIM", 1, 0); err != nil {
		return nil, err
	}

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = getenvDuration("FETCH_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.FetchMaxRetries, err = getenvInt("FETCH_MAX_RETRIES", 0, 0); err != nil {
		return nil, err
	}
	if cfg.FetchParallelism, err = getenvInt("FETCH_PARALLELISM", 4, 1); err != nil {
		return nil, err
	}

	if cfg.RefreshInterval, err = getenvDuration("DIRECTORY_REFRESH_INTERVAL", "12h"); err != nil {
		return nil, err
	}

	cfg.GeocoderAPIKey = strings.TrimSpace(os.Getenv("GEOCODER_API_KEY"))

	return cfg, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getenvInt reads an integer no smaller than minimum, falling back to def when
// the variable is unset.
func getenvInt(key string, def, minimum int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n < minimum {
		return 0, fmt.Errorf("invalid %s %d (minimum %d)", key, n, minimum)
	}
	return n, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: negative duration", key)
	}
	return d, nil
}
