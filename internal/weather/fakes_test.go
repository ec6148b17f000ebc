package weather

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeCatalog struct {
	name     string
	stations []Station
	err      error
}

func (f *fakeCatalog) Name() string { return f.name }

func (f *fakeCatalog) Catalog(ctx context.Context) ([]Station, error) {
	out := make([]Station, len(f.stations))
	copy(out, f.stations)
	return out, f.err
}

type fakeFetcher struct {
	mu      sync.Mutex
	records map[string]ObservationRecord
	errs    map[string]error
	delays  map[string]time.Duration
	calls   []string
}

func (f *fakeFetcher) Name() string { return "fake" }

func (f *fakeFetcher) Fetch(ctx context.Context, st Station) (ObservationRecord, error) {
	f.mu.Lock()
	f.calls = append(f.calls, st.ID)
	delay := f.delays[st.ID]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ObservationRecord{}, ctx.Err()
		}
	}
	return f.records[st.ID], f.errs[st.ID]
}

func (f *fakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeStore struct {
	mu  sync.Mutex
	dir *Directory
}

func (s *fakeStore) Current() *Directory {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dir == nil {
		return NewDirectory()
	}
	return s.dir
}

func (s *fakeStore) Replace(dir *Directory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dir = dir
}

func (s *fakeStore) Station(id string) (Station, error) {
	st, ok := s.Current().Station(id)
	if !ok {
		return Station{}, errors.New("no such station")
	}
	return st, nil
}

func reading(observedAt string, temp, hum, rain float64) ObservationRecord {
	return ObservationRecord{
		ObservedAt:       ptr(observedAt),
		TemperatureC:     ptr(temp),
		HumidityFraction: ptr(hum),
		RainfallMm:       ptr(rain),
	}
}
