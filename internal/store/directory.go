package store

import (
	"errors"
	"sync/atomic"

	"github.com/i474232898/weather-station-grabber/internal/weather"
)

var (
	// ErrNotFound is returned when the current directory has no such station.
	ErrNotFound = errors.New("no such station")
)

// DirectoryStore holds the directory in use. Readers never lock; a refresh
// swaps in a completely new directory so no reader sees a partial rebuild.
type DirectoryStore struct {
	current atomic.Pointer[weather.Directory]
}

// NewDirectoryStore creates a store holding dir, or an empty directory when
// dir is nil.
func NewDirectoryStore(dir *weather.Directory) *DirectoryStore {
	s := &DirectoryStore{}
	s.Replace(dir)
	return s
}

// Current returns the directory in use. It is never nil.
func (s *DirectoryStore) Current() *weather.Directory {
	return s.current.Load()
}

// Replace atomically swaps in dir.
func (s *DirectoryStore) Replace(dir *weather.Directory) {
	if dir == nil {
		dir = weather.NewDirectory()
	}
	s.current.Store(dir)
}

// Station looks id up in the current directory.
func (s *DirectoryStore) Station(id string) (weather.Station, error) {
	st, ok := s.Current().Station(id)
	if !ok {
		return weather.Station{}, ErrNotFound
	}
	return st, nil
}
