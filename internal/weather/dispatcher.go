package weather

import (
	"context"
	"log/slog"
	"time"
)

// Dispatcher routes a station to the fetch strategy of its source and turns
// every failure into missing fields.
type Dispatcher struct {
	fetchers map[Source]Fetcher
	timeout  time.Duration
	logger   *slog.Logger
}

// NewDispatcher creates a Dispatcher. timeout bounds each individual fetch;
// zero means no extra deadline beyond the caller's context.
func NewDispatcher(fetchers map[Source]Fetcher, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		fetchers: fetchers,
		timeout:  timeout,
		logger:   logger,
	}
}

// Fetch never fails. The station's directory coordinate is always attached,
// whether or not any measurement was extracted.
func (d *Dispatcher) Fetch(ctx context.Context, st Station) ObservationRecord {
	var rec ObservationRecord

	f, ok := d.fetchers[st.Source]
	if !ok || f == nil {
		d.logger.Warn("no fetcher for station source", "station", st.ID, "source", st.Source)
	} else {
		if d.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d.timeout)
			defer cancel()
		}

		r, err := f.Fetch(ctx, st)
		if err != nil {
			d.logger.Warn("station fetch failed", "provider", f.Name(), "station", st.ID, "err", err)
		}
		rec = r
	}

	// Response data never carries the coordinate; the directory is authoritative.
	rec.StationName = nil
	rec.Coordinate = ptr(st.Coordinate)
	return rec
}
