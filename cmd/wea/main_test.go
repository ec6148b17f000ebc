package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/i474232898/weather-station-grabber/internal/store"
	"github.com/i474232898/weather-station-grabber/internal/weather"
)

type deadlineFetcher struct {
	remaining []time.Duration
}

func (f *deadlineFetcher) Name() string { return "deadline" }

func (f *deadlineFetcher) Fetch(ctx context.Context, st weather.Station) (weather.ObservationRecord, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		f.remaining = append(f.remaining, 0)
	} else {
		f.remaining = append(f.remaining, time.Until(deadline))
	}
	temp := 20.0
	return weather.ObservationRecord{TemperatureC: &temp}, nil
}

func TestGrabUsesFreshDeadlinePerQuery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fetcher := &deadlineFetcher{}
	dir := weather.NewDirectory(
		weather.Station{ID: "46692", Name: "臺北", Source: weather.SourceWeb},
		weather.Station{ID: "46688", Name: "板橋", Source: weather.SourceWeb},
	)
	dispatcher := weather.NewDispatcher(map[weather.Source]weather.Fetcher{weather.SourceWeb: fetcher}, 0, logger)
	service := weather.NewService(store.NewDirectoryStore(dir), nil, dispatcher, 1, logger)

	for _, site := range []string{"臺北", "板橋"} {
		q, err := weather.NewNameQuery(site)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res := grab(service, q, 1); res.First().IsEmpty() {
			t.Fatalf("%s: expected a reading", site)
		}
	}

	if len(fetcher.remaining) != 2 {
		t.Fatalf("expected 2 fetches, got %d", len(fetcher.remaining))
	}
	for i, left := range fetcher.remaining {
		if left < grabTimeout-5*time.Second || left > grabTimeout {
			t.Fatalf("fetch %d: expected about %v left, got %v", i, grabTimeout, left)
		}
	}
}
