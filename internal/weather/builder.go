package weather

import (
	"context"
	"log/slog"
)

// DefaultJoinTrim is the number of trailing characters stripped from a
// telemetry id to obtain the id the web catalog uses for the same station.
const DefaultJoinTrim = 1

// JoinKey derives the identifier used to detect that a telemetry station is
// already known from the web catalog.
func JoinKey(telemetryID string, trim int) string {
	if trim <= 0 {
		return telemetryID
	}
	runes := []rune(telemetryID)
	if len(runes) <= trim {
		return ""
	}
	return string(runes[:len(runes)-trim])
}

// Builder assembles a Directory from the web catalog and, when configured,
// the telemetry catalog.
type Builder struct {
	web       StationCatalog
	telemetry StationCatalog
	joinTrim  int
	logger    *slog.Logger
}

// NewBuilder creates a Builder. telemetry may be nil when no credential is
// configured.
func NewBuilder(web, telemetry StationCatalog, joinTrim int, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		web:       web,
		telemetry: telemetry,
		joinTrim:  joinTrim,
		logger:    logger,
	}
}

// Build fetches both catalogs and merges them. Catalog failures are logged and
// leave the directory with whatever was gathered, possibly nothing.
func (b *Builder) Build(ctx context.Context) *Directory {
	dir := newMutableDirectory()

	if b.web != nil {
		stations, err := b.web.Catalog(ctx)
		if err != nil {
			b.logger.Warn("station catalog unavailable", "provider", b.web.Name(), "err", err)
		}
		for _, st := range stations {
			st.Source = SourceWeb
			dir.add(st)
		}
	}

	if b.telemetry == nil {
		b.logger.Info("telemetry catalog disabled; no credential configured")
		return dir
	}

	stations, err := b.telemetry.Catalog(ctx)
	if err != nil {
		b.logger.Warn("telemetry catalog unavailable", "provider", b.telemetry.Name(), "err", err)
	}

	skipped := 0
	for _, st := range stations {
		if dir.has(JoinKey(st.ID, b.joinTrim)) {
			skipped++
			continue
		}
		st.Source = SourceTelemetry
		if !dir.add(st) {
			skipped++
		}
	}

	counts := dir.CountBySource()
	b.logger.Info("station directory built",
		"web", counts[SourceWeb],
		"telemetry", counts[SourceTelemetry],
		"skipped", skipped,
	)
	return dir
}
