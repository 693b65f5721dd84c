package linkage

import (
	"fmt"
	"slices"

	"github.com/couchcryptid/geo-linkage-etl/internal/domain"
	"github.com/couchcryptid/geo-linkage-etl/internal/spatial"
)

// AnnualStrategy matches by location only and broadcasts each location's
// value to every base row at that location, regardless of date.
type AnnualStrategy struct {
	Config domain.ParameterConfig
}

type location struct {
	cell  domain.GridCell
	lon   float64
	lat   float64
	value domain.Value
}

func (s AnnualStrategy) Match(base, overlay []domain.NormalizedSample) ([]domain.Value, Stats, error) {
	stats := Stats{Mode: domain.ModeAnnual, Rows: len(base)}
	out := missingColumn(len(base))

	locs := uniqueLocations(overlay, s.Config.Categorical)

	points := make([]spatial.Point, len(locs))
	for i, l := range locs {
		points[i] = spatial.Point2D(l.lon, l.lat)
	}
	idx, err := spatial.NewIndex(points)
	if err != nil {
		return nil, stats, fmt.Errorf("build annual index: %w", err)
	}
	stats.OverlayPoints = idx.Len()

	cache := make(map[domain.GridCell]domain.Value)
	for i, b := range base {
		v, seen := cache[b.Cell]
		if !seen {
			stats.BaseLocations++
			if m, ok := idx.Nearest(spatial.Point2D(b.Lon, b.Lat), s.Config.SpatialTolerance); ok {
				v = locs[m.Index].value
				stats.MatchedLocations++
			}
			cache[b.Cell] = v
		}
		out[i] = v
		if !v.IsMissing() {
			stats.MatchedRows++
		}
	}
	return out, stats, nil
}

// uniqueLocations collapses overlay samples to one entry per grid cell.
// Samples are visited by date, input order breaking ties: continuous overlays
// keep the earliest-dated value and categorical overlays take the mode over
// all dates at the cell.
func uniqueLocations(overlay []domain.NormalizedSample, categorical bool) []location {
	byDate := slices.Clone(overlay)
	slices.SortStableFunc(byDate, func(a, b domain.NormalizedSample) int {
		return a.Date.Compare(b.Date)
	})

	pos := make(map[domain.GridCell]int)
	var locs []location
	var values [][]domain.Value

	for _, o := range byDate {
		i, seen := pos[o.Cell]
		if !seen {
			i = len(locs)
			pos[o.Cell] = i
			locs = append(locs, location{cell: o.Cell, lon: o.Lon, lat: o.Lat, value: o.Value})
			values = append(values, nil)
		}
		if categorical {
			values[i] = append(values[i], o.Value)
		}
	}

	if categorical {
		for i := range locs {
			locs[i].value = domain.Mode(values[i])
		}
	}
	return locs
}
