package geo

import (
	"context"
	"errors"
	"testing"
)

func TestNewGoogleGeocoderWithoutKey(t *testing.T) {
	g := NewGoogleGeocoder("")
	if g != nil {
		t.Fatalf("expected nil geocoder without an API key")
	}

	_, _, err := g.Geocode(context.Background(), "Taipei", "Taiwan")
	if !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

func TestGeocodeEmptyCity(t *testing.T) {
	g := &GoogleGeocoder{}

	_, _, err := g.Geocode(context.Background(), "  ", "Taiwan")
	if !errors.Is(err, ErrNoLocation) {
		t.Fatalf("expected ErrNoLocation, got %v", err)
	}
}

func TestGeocodeCanceledContext(t *testing.T) {
	g := &GoogleGeocoder{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := g.Geocode(ctx, "Taipei", "")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
