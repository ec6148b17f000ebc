package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kelvins/geocoder"
)

var (
	ErrDisabled   = errors.New("geocoding is not configured")
	ErrNoLocation = errors.New("address could not be geocoded")
)

// Geocoder turns a city/country pair into a point.
type Geocoder interface {
	Geocode(ctx context.Context, city, country string) (lat, lon float64, err error)
}

// GoogleGeocoder resolves places through the Google geocoding API.
type GoogleGeocoder struct{}

// NewGoogleGeocoder configures the geocoding client. It returns nil when no
// API key is available so callers can treat geocoding as disabled.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	if apiKey == "" {
		return nil
	}
	// The client library keeps its key in a package variable.
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{}
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, city, country string) (float64, float64, error) {
	if g == nil {
		return 0, 0, ErrDisabled
	}
	city = strings.TrimSpace(city)
	if city == "" {
		return 0, 0, fmt.Errorf("%w: empty city", ErrNoLocation)
	}
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	loc, err := geocoder.Geocoding(geocoder.Address{
		City:    city,
		Country: strings.TrimSpace(country),
	})
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrNoLocation, err)
	}
	return loc.Latitude, loc.Longitude, nil
}
