package weather

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultSeparator joins the labelled fields of a formatted record.
	DefaultSeparator = ", "

	// NoSuchStation is what Stringify returns for a record without data.
	NoSuchStation = "查無此站！"
)

// Stringify renders rec as one human-readable line. Fields appear in a fixed
// order and only when present. An empty or non-UTF-8 separator falls back to
// DefaultSeparator.
func Stringify(rec *ObservationRecord, sep string) string {
	if rec == nil || rec.IsEmpty() {
		return NoSuchStation
	}
	if sep == "" || !utf8.ValidString(sep) {
		sep = DefaultSeparator
	}

	parts := make([]string, 0, 5)
	if rec.StationName != nil {
		parts = append(parts, "測站: "+*rec.StationName)
	}
	if rec.ObservedAt != nil {
		parts = append(parts, "觀測時間: "+*rec.ObservedAt)
	}
	if rec.TemperatureC != nil {
		parts = append(parts, fmt.Sprintf("溫度: %.1f°C", *rec.TemperatureC))
	}
	if rec.HumidityFraction != nil {
		parts = append(parts, fmt.Sprintf("濕度: %.0f%%", *rec.HumidityFraction*100))
	}
	if rec.RainfallMm != nil {
		parts = append(parts, fmt.Sprintf("雨量: %.1fmm", *rec.RainfallMm))
	}
	return strings.Join(parts, sep)
}
