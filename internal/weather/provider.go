package weather

import (
	"context"
)

// StationCatalog lists every station an upstream provider knows about.
type StationCatalog interface {
	Name() string
	Catalog(ctx context.Context) ([]Station, error)
}

// Fetcher retrieves the live reading of one station. Implementations return
// whatever fields they managed to extract together with the first transport
// error, if any; callers treat errors as missing data.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, st Station) (ObservationRecord, error)
}

// DirectoryStore is the contract the directory holder must satisfy.
type DirectoryStore interface {
	Current() *Directory
	Replace(dir *Directory)
	Station(id string) (Station, error)
}
