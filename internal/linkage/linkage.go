// Package linkage joins overlay samples onto base samples by tolerance-bounded
// nearest-neighbour search.
//
// Two strategies exist. Annual overlays carry no temporal signal, so they are
// indexed by location only, queried once per distinct base location, and the
// result is broadcast to every base row at that location. Point overlays vary
// by date and are indexed in (longitude, latitude, days * time scale) space;
// each base row is queried on its own with the combined radius
//
//	sqrt(spatial_tolerance² + (temporal_tolerance * time_scale)²)
//
// Absence of a match, including an empty overlay, yields Missing.
package linkage

import (
	"math"
	"time"

	"github.com/couchcryptid/geo-linkage-etl/internal/domain"
)

// Stats summarises one overlay join.
type Stats struct {
	Mode             domain.MatchMode
	OverlayPoints    int // points in the index
	BaseLocations    int // distinct base locations queried (annual only)
	MatchedLocations int // base locations with a match (annual only)
	Rows             int
	MatchedRows      int
}

// MatchRate returns the share of base rows that received a value.
func (s Stats) MatchRate() float64 {
	if s.Rows == 0 {
		return 0
	}
	return float64(s.MatchedRows) / float64(s.Rows)
}

// Strategy links one overlay onto a base sample list. The returned values are
// aligned with base.
type Strategy interface {
	Match(base, overlay []domain.NormalizedSample) ([]domain.Value, Stats, error)
}

// Matcher holds the time axis shared by all strategies.
type Matcher struct {
	TimeScale float64
	Epoch     time.Time
}

// NewMatcher returns a Matcher on the default time axis.
func NewMatcher() Matcher {
	return Matcher{TimeScale: domain.DefaultTimeScale, Epoch: domain.Epoch}
}

// Select returns the strategy the overlay's config calls for.
func (m Matcher) Select(cfg domain.ParameterConfig) Strategy {
	switch cfg.Mode() {
	case domain.ModeAnnual:
		return AnnualStrategy{Config: cfg}
	default:
		return PointStrategy{Config: cfg, TimeScale: m.TimeScale, Epoch: m.Epoch}
	}
}

// PointRadius is the single Euclidean radius bounding the spatial and
// temporal tolerances of a point overlay.
func PointRadius(cfg domain.ParameterConfig, timeScale float64) float64 {
	temporal := float64(cfg.TemporalTolerance) * timeScale
	return math.Sqrt(cfg.SpatialTolerance*cfg.SpatialTolerance + temporal*temporal)
}

func missingColumn(n int) []domain.Value {
	return make([]domain.Value, n)
}

// Link restricts both inputs to the analysis year and runs the strategy
// selected by cfg. Base rows outside the year receive Missing.
func (m Matcher) Link(base, overlay []domain.NormalizedSample, cfg domain.ParameterConfig) ([]domain.Value, Stats, error) {
	overlay = domain.FilterYear(overlay, domain.AnalysisYear)

	inYear := make([]int, 0, len(base))
	for i, b := range base {
		if b.Date.Year() == domain.AnalysisYear {
			inYear = append(inYear, i)
		}
	}
	if len(inYear) == len(base) {
		return m.Select(cfg).Match(base, overlay)
	}

	subset := make([]domain.NormalizedSample, len(inYear))
	for j, i := range inYear {
		subset[j] = base[i]
	}
	vals, stats, err := m.Select(cfg).Match(subset, overlay)
	if err != nil {
		return nil, stats, err
	}
	out := missingColumn(len(base))
	for j, i := range inYear {
		out[i] = vals[j]
	}
	stats.Rows = len(base)
	return out, stats, nil
}
