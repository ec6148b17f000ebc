package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/i474232898/weather-station-grabber/internal/weather"
	"github.com/sony/gobreaker"
)

// StationIDPlaceholder is replaced by the station id in page URL templates.
const StationIDPlaceholder = "{id}"

var (
	anchorTime        = anchor{attr: "headers", token: "time"}
	anchorTemperature = anchor{attr: "class", token: "tem-C"}
	anchorHumidity    = anchor{attr: "headers", token: "hum"}
	anchorRain        = anchor{attr: "headers", token: "rain"}

	pageAnchors = []anchor{anchorTime, anchorTemperature, anchorHumidity, anchorRain}
)

// StationPageURL builds the per-station page URL from a template containing
// StationIDPlaceholder.
func StationPageURL(template, stationID string) string {
	return strings.ReplaceAll(template, StationIDPlaceholder, url.PathEscape(stationID))
}

// WebProvider reads the station catalog and the rendered per-station
// observation pages of the web portal.
type WebProvider struct {
	name         string
	catalogURL   string
	pageTemplate string
	httpCfg      HTTPClientConfig
	circuit      *gobreaker.CircuitBreaker
}

func NewWebProvider(cfg HTTPClientConfig, catalogURL, pageTemplate string) *WebProvider {
	return &WebProvider{
		name:         "cwa-web",
		catalogURL:   catalogURL,
		pageTemplate: pageTemplate,
		httpCfg:      cfg,
		circuit:      newCircuit("cwa-web"),
	}
}

func (p *WebProvider) Name() string {
	return p.name
}

// catalogEntry is one element of the STMap catalog. Coordinates show up both
// as numbers and as quoted strings.
type catalogEntry struct {
	ID   string    `json:"ID"`
	Name string    `json:"STname"`
	Lat  flexFloat `json:"Lat"`
	Lon  flexFloat `json:"Lon"`
}

type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(bytes.TrimSpace(b), `"`)
	v, ok := parseFloat(string(b))
	if !ok {
		return fmt.Errorf("%w: coordinate %q", errMalformed, b)
	}
	*f = flexFloat(v)
	return nil
}

// Catalog returns every station of the web catalog.
func (p *WebProvider) Catalog(ctx context.Context) ([]weather.Station, error) {
	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, p.catalogURL, nil)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var raw []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}

	stations := make([]weather.Station, 0, len(raw))
	for _, item := range raw {
		// One broken entry must not cost the rest of the catalog.
		var e catalogEntry
		if err := json.Unmarshal(item, &e); err != nil || e.ID == "" {
			continue
		}
		stations = append(stations, weather.Station{
			ID:         e.ID,
			Name:       e.Name,
			Coordinate: weather.Coordinate{Lat: float64(e.Lat), Lon: float64(e.Lon)},
			Source:     weather.SourceWeb,
		})
	}
	return stations, nil
}

// Fetch downloads the station page and extracts the four observation fields.
func (p *WebProvider) Fetch(ctx context.Context, st weather.Station) (weather.ObservationRecord, error) {
	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, StationPageURL(p.pageTemplate, st.ID), nil)
	})
	if err != nil {
		return weather.ObservationRecord{}, err
	}
	defer resp.Body.Close()

	return parseStationPage(resp.Body)
}

// parseStationPage extracts each field on its own; a bad value for one field
// leaves the others untouched.
func parseStationPage(r io.Reader) (weather.ObservationRecord, error) {
	found, err := extractAnchors(r, pageAnchors)

	var rec weather.ObservationRecord
	if v, ok := found[anchorTime]; ok && v != "" {
		rec.ObservedAt = &v
	}
	if v, ok := parseFloat(found[anchorTemperature]); ok {
		rec.TemperatureC = &v
	}
	if v, ok := parseFloat(found[anchorHumidity]); ok && v >= 0 && v <= 100 {
		frac := v / 100
		rec.HumidityFraction = &frac
	}
	if v, ok := parseFloat(found[anchorRain]); ok {
		rec.RainfallMm = &v
	}
	return rec, err
}
