package app

import (
	"log/slog"
	"net/http"

	"github.com/i474232898/weather-station-grabber/internal/config"
	"github.com/i474232898/weather-station-grabber/internal/store"
	"github.com/i474232898/weather-station-grabber/internal/weather"
	"github.com/i474232898/weather-station-grabber/internal/weather/providers"
)

// NewService wires providers, the directory store and the dispatcher into a
// weather.Service. The directory starts empty; call Refresh to build it.
func NewService(cfg *config.AppConfig, logger *slog.Logger) *weather.Service {
	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	httpCfg := providers.DefaultHTTPConfig(httpClient, cfg.FetchMaxRetries)

	web := providers.NewWebProvider(httpCfg, cfg.CatalogURL, cfg.PageURLTemplate)
	fetchers := map[weather.Source]weather.Fetcher{
		weather.SourceWeb: web,
	}

	// Telemetry stations only exist when a credential is configured.
	var telemetryCatalog weather.StationCatalog
	if cfg.TelemetryEnabled() {
		telemetry := providers.NewTelemetryProvider(httpCfg, cfg.TelemetryURL, cfg.TelemetryAPIKey)
		telemetryCatalog = telemetry
		fetchers[weather.SourceTelemetry] = telemetry
	}

	builder := weather.NewBuilder(web, telemetryCatalog, cfg.TelemetryJoinTrim, logger.With("component", "builder"))
	dispatcher := weather.NewDispatcher(fetchers, cfg.FetchTimeout, logger.With("component", "dispatcher"))

	return weather.NewService(
		store.NewDirectoryStore(nil),
		builder,
		dispatcher,
		cfg.FetchParallelism,
		logger.With("component", "service"),
	)
}
