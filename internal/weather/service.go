package weather

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// MaxResults is the upper bound on records returned by one Grab.
const MaxResults = 5

// Service resolves queries against the current directory and fetches the
// matching stations.
type Service struct {
	store       DirectoryStore
	builder     *Builder
	dispatcher  *Dispatcher
	parallelism int
	logger      *slog.Logger
}

// NewService creates a new Service. parallelism caps concurrent fetches for
// coordinate queries; values below 1 fetch one station at a time.
func NewService(store DirectoryStore, builder *Builder, dispatcher *Dispatcher, parallelism int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if parallelism < 1 {
		parallelism = 1
	}
	return &Service{
		store:       store,
		builder:     builder,
		dispatcher:  dispatcher,
		parallelism: parallelism,
		logger:      logger,
	}
}

// Refresh rebuilds the directory and swaps it in. An empty rebuild does not
// replace a populated directory unless force is set. It returns the number of
// stations in the directory now in use.
func (s *Service) Refresh(ctx context.Context, force bool) int {
	dir := s.builder.Build(ctx)
	current := s.store.Current()
	if dir.Len() == 0 && current.Len() > 0 && !force {
		s.logger.Warn("directory rebuild returned no stations; keeping current directory", "current", current.Len())
		return current.Len()
	}
	s.store.Replace(dir)
	return dir.Len()
}

// Directory returns the directory currently in use.
func (s *Service) Directory() *Directory {
	return s.store.Current()
}

// Station looks id up in the directory in use.
func (s *Service) Station(id string) (Station, error) {
	return s.store.Station(id)
}

// Nearest ranks the stations closest to c.
func (s *Service) Nearest(c Coordinate, n int) []Ranked {
	return RankNearest(s.store.Current(), c, clamp(n))
}

// Grab resolves q and fetches the matching stations. n is clamped to
// [1, MaxResults]. Unknown query shapes yield an empty result.
func (s *Service) Grab(ctx context.Context, q Query, n int) Result {
	n = clamp(n)
	res := Result{Single: n == 1}
	dir := s.store.Current()
	logger := s.logger.With("grab", uuid.NewString())

	switch q := q.(type) {
	case ByName:
		res.Records = s.grabByName(ctx, dir, q, n)
	case ByCoordinate:
		res.Records = s.grabByCoordinate(ctx, dir, q, n)
	default:
		logger.Debug("unsupported query", "query", q)
		return res
	}

	logger.Debug("grab finished", "query", q, "n", n, "records", len(res.Records))
	return res
}

func (s *Service) grabByName(ctx context.Context, dir *Directory, q ByName, n int) []ObservationRecord {
	var records []ObservationRecord
	for _, id := range LocateByName(dir, q.Name) {
		if len(records) >= n {
			break
		}
		st, _ := dir.Station(id)
		rec := s.dispatcher.Fetch(ctx, st)
		if rec.IsEmpty() {
			continue
		}
		records = append(records, rec)
	}
	return records
}

func (s *Service) grabByCoordinate(ctx context.Context, dir *Directory, q ByCoordinate, n int) []ObservationRecord {
	ids := LocateNearest(dir, q.Coordinate(), n)
	records := make([]ObservationRecord, len(ids))

	// Each goroutine writes its own slot so the nearest-first order holds
	// regardless of completion order.
	var g errgroup.Group
	g.SetLimit(s.parallelism)
	for i, id := range ids {
		i := i
		st, _ := dir.Station(id)
		g.Go(func() error {
			rec := s.dispatcher.Fetch(ctx, st)
			if !rec.IsEmpty() {
				rec.StationName = ptr(st.Name)
			}
			records[i] = rec
			return nil
		})
	}
	_ = g.Wait()

	return records
}

func clamp(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxResults {
		return MaxResults
	}
	return n
}
