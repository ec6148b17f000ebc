package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/i474232898/weather-station-grabber/internal/weather"
	"github.com/sony/gobreaker"
)

// ObservedAtLayout is the zone-less form observation times are reported in.
const ObservedAtLayout = "2006-01-02 15:04:05"

// TelemetryProvider implements the station catalog and fetch strategy for the
// open-data rainfall telemetry feed.
type TelemetryProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewTelemetryProvider(cfg HTTPClientConfig, baseURL, apiKey string) *TelemetryProvider {
	return &TelemetryProvider{
		name:    "cwa-telemetry",
		apiKey:  apiKey,
		baseURL: baseURL,
		httpCfg: cfg,
		circuit: newCircuit("cwa-telemetry"),
	}
}

func (p *TelemetryProvider) Name() string {
	return p.name
}

type telemetryPayload struct {
	Success string `json:"success"`
	Records struct {
		Station []telemetryStation `json:"Station"`
	} `json:"records"`
}

type telemetryStation struct {
	StationName string `json:"StationName"`
	StationID   string `json:"StationId"`
	ObsTime     struct {
		DateTime string `json:"DateTime"`
	} `json:"ObsTime"`
	GeoInfo struct {
		Coordinates []struct {
			CoordinateName   string    `json:"CoordinateName"`
			StationLatitude  flexFloat `json:"StationLatitude"`
			StationLongitude flexFloat `json:"StationLongitude"`
		} `json:"Coordinates"`
	} `json:"GeoInfo"`
	RainfallElement struct {
		Now struct {
			// Kept raw so a bad reading only loses this field.
			Precipitation json.RawMessage `json:"Precipitation"`
		} `json:"Now"`
	} `json:"RainfallElement"`
}

func (p *TelemetryProvider) query(ctx context.Context, stationID string) ([]telemetryStation, error) {
	if p.apiKey == "" {
		return nil, ErrNoCredential
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("Authorization", p.apiKey)
		values.Set("format", "JSON")
		values.Set("RainfallElement", "Now")
		if stationID != "" {
			values.Set("StationId", stationID)
		}

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload telemetryPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if payload.Success != "" && payload.Success != "true" {
		return nil, fmt.Errorf("%w: success=%q", errMalformed, payload.Success)
	}
	return payload.Records.Station, nil
}

// Catalog lists every telemetry station. The second coordinate pair of each
// entry is the authoritative one; entries without it are skipped.
func (p *TelemetryProvider) Catalog(ctx context.Context) ([]weather.Station, error) {
	entries, err := p.query(ctx, "")
	if err != nil {
		return nil, err
	}

	stations := make([]weather.Station, 0, len(entries))
	for _, e := range entries {
		if e.StationID == "" || len(e.GeoInfo.Coordinates) < 2 {
			continue
		}
		c := e.GeoInfo.Coordinates[1]
		stations = append(stations, weather.Station{
			ID:   e.StationID,
			Name: e.StationName,
			Coordinate: weather.Coordinate{
				Lat: float64(c.StationLatitude),
				Lon: float64(c.StationLongitude),
			},
			Source: weather.SourceTelemetry,
		})
	}
	return stations, nil
}

// Fetch returns observation time and current rainfall. The feed carries no
// temperature or humidity.
func (p *TelemetryProvider) Fetch(ctx context.Context, st weather.Station) (weather.ObservationRecord, error) {
	entries, err := p.query(ctx, st.ID)
	if err != nil {
		return weather.ObservationRecord{}, err
	}

	for _, e := range entries {
		if e.StationID == st.ID {
			return telemetryRecord(e), nil
		}
	}
	return weather.ObservationRecord{}, nil
}

func telemetryRecord(e telemetryStation) weather.ObservationRecord {
	var rec weather.ObservationRecord
	if v, ok := convertObservedAt(e.ObsTime.DateTime); ok {
		rec.ObservedAt = &v
	}
	if v, ok := parsePrecipitation(e.RainfallElement.Now.Precipitation); ok {
		rec.RainfallMm = &v
	}
	return rec
}

// convertObservedAt turns "2024-11-02T11:20:00+08:00" into
// "2024-11-02 11:20:00", keeping the wall clock of the reported offset.
func convertObservedAt(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.Format(ObservedAtLayout), true
		}
	}
	return "", false
}

// parsePrecipitation accepts a number or a quoted number. Negative values are
// the feed's markers for a missing or faulty gauge.
func parsePrecipitation(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	v, ok := parseFloat(strings.Trim(string(raw), `"`))
	if !ok || v < 0 {
		return 0, false
	}
	return v, true
}
