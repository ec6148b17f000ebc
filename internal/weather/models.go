package weather

import "encoding/json"

// Source tells which upstream schema must be used to fetch a station's live data.
type Source string

const (
	SourceWeb       Source = "web"
	SourceTelemetry Source = "telemetry"
)

// Coordinate is a WGS84 point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Station is a physical observation point known to one of the providers.
// ID is unique within a Directory; Name is not.
type Station struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Coordinate Coordinate `json:"coordinate"`
	Source     Source     `json:"source"`
}

// ObservationRecord is the normalized reading for one station. Every field is
// optional and set independently of the others.
type ObservationRecord struct {
	StationName      *string     `json:"stationName,omitempty"`
	ObservedAt       *string     `json:"observedAt,omitempty"`
	TemperatureC     *float64    `json:"temperatureC,omitempty"`
	HumidityFraction *float64    `json:"humidityFraction,omitempty"`
	RainfallMm       *float64    `json:"rainfallMm,omitempty"`
	Coordinate       *Coordinate `json:"coordinate,omitempty"`
}

// HasMeasurements reports whether any observed field is present. The station
// coordinate alone does not count as data.
func (r ObservationRecord) HasMeasurements() bool {
	return r.ObservedAt != nil || r.TemperatureC != nil || r.HumidityFraction != nil || r.RainfallMm != nil
}

// IsEmpty is the "no data available" signal.
func (r ObservationRecord) IsEmpty() bool {
	return !r.HasMeasurements()
}

// Result is what Grab hands back: one record when a single result was asked
// for, an ordered list otherwise.
type Result struct {
	Single  bool
	Records []ObservationRecord
}

// First returns the first record, or an empty one.
func (r Result) First() ObservationRecord {
	if len(r.Records) == 0 {
		return ObservationRecord{}
	}
	return r.Records[0]
}

// MarshalJSON emits an object for single results and an array otherwise.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Single {
		return json.Marshal(r.First())
	}
	if r.Records == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.Records)
}

func ptr[T any](v T) *T {
	return &v
}
