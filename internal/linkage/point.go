package linkage

import (
	"fmt"
	"time"

	"github.com/couchcryptid/geo-linkage-etl/internal/domain"
	"github.com/couchcryptid/geo-linkage-etl/internal/spatial"
)

// PointStrategy matches every base row independently to the nearest overlay
// sample in (longitude, latitude, scaled days) space.
type PointStrategy struct {
	Config    domain.ParameterConfig
	TimeScale float64
	Epoch     time.Time
}

func (s PointStrategy) Match(base, overlay []domain.NormalizedSample) ([]domain.Value, Stats, error) {
	stats := Stats{Mode: domain.ModePoint, Rows: len(base)}
	out := missingColumn(len(base))

	points := make([]spatial.Point, len(overlay))
	for i, o := range overlay {
		points[i] = s.point(o)
	}
	idx, err := spatial.NewIndex(points)
	if err != nil {
		return nil, stats, fmt.Errorf("build point index: %w", err)
	}
	stats.OverlayPoints = idx.Len()

	radius := PointRadius(s.Config, s.TimeScale)
	for i, b := range base {
		if m, ok := idx.Nearest(s.point(b), radius); ok {
			out[i] = overlay[m.Index].Value
			stats.MatchedRows++
		}
	}
	return out, stats, nil
}

func (s PointStrategy) point(n domain.NormalizedSample) spatial.Point {
	return spatial.Point3D(n.Lon, n.Lat, domain.DaysSince(n.Date, s.Epoch), s.TimeScale)
}
