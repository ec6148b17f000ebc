package weather

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var errEmptyName = errors.New("station name must not be empty")

// Query selects stations for Grab. It is either ByName or ByCoordinate.
type Query interface {
	isQuery()
}

// ByName matches stations by exact display name.
type ByName struct {
	Name string
}

// ByCoordinate matches the stations nearest to a point.
type ByCoordinate struct {
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

func (ByName) isQuery()       {}
func (ByCoordinate) isQuery() {}

// Coordinate returns the query point.
func (q ByCoordinate) Coordinate() Coordinate {
	return Coordinate{Lat: q.Lat, Lon: q.Lon}
}

// NewNameQuery validates a station name coming from a host.
func NewNameQuery(name string) (Query, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errEmptyName
	}
	return ByName{Name: name}, nil
}

// NewCoordinateQuery validates a point coming from a host.
func NewCoordinateQuery(lat, lon float64) (Query, error) {
	q := ByCoordinate{Lat: lat, Lon: lon}
	if err := validate.Struct(q); err != nil {
		return nil, err
	}
	return q, nil
}
