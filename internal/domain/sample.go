package domain

import "time"

const (
	// DefaultGridResolution is the grid step in degrees (~1.1 km).
	DefaultGridResolution = 0.01

	// DefaultTimeScale converts one day into degree-equivalent units for
	// spatiotemporal distance.
	DefaultTimeScale = 0.01

	// AnalysisYear is the only calendar year that takes part in linkage.
	AnalysisYear = 2024
)

// Epoch is day zero of the spatiotemporal time axis.
var Epoch = time.Date(AnalysisYear, time.January, 1, 0, 0, 0, 0, time.UTC)

// RawSample is one observation as read from a dataset source.
type RawSample struct {
	Date      time.Time
	Longitude float64
	Latitude  float64
	Value     Value
}

// NormalizedSample is the single representative observation of a
// (date, grid cell) key within one dataset. Value is never Missing.
type NormalizedSample struct {
	Date  time.Time
	Cell  GridCell
	Lon   float64
	Lat   float64
	Value Value
}

// DateOf truncates t to its UTC calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysSince returns the whole number of days between epoch and the date.
func DaysSince(date, epoch time.Time) int {
	return int(DateOf(date).Sub(epoch).Hours() / 24)
}

// FilterYear keeps the samples dated within the given calendar year.
func FilterYear(samples []NormalizedSample, year int) []NormalizedSample {
	out := make([]NormalizedSample, 0, len(samples))
	for _, s := range samples {
		if s.Date.Year() == year {
			out = append(out, s)
		}
	}
	return out
}
