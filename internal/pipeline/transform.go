package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/geo-linkage-etl/internal/domain"
	"github.com/couchcryptid/geo-linkage-etl/internal/observability"
)

// GridTransformer implements Transformer: it sanitizes raw values and
// collapses them onto the grid.
type GridTransformer struct {
	resolution float64
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewTransformer creates a GridTransformer for the given grid resolution in degrees.
func NewTransformer(resolution float64, logger *slog.Logger, metrics *observability.Metrics) *GridTransformer {
	return &GridTransformer{
		resolution: resolution,
		logger:     logger,
		metrics:    metrics,
	}
}

func (t *GridTransformer) Transform(_ context.Context, ds domain.DatasetSpec, raw []domain.RawSample) ([]domain.NormalizedSample, error) {
	clean, stats := ds.Sanitizer().Sanitize(raw)
	normalized := domain.Normalize(clean, t.resolution, ds.Aggregation())

	t.metrics.SamplesRead.WithLabelValues(ds.Name).Add(float64(len(raw)))
	t.metrics.SamplesInvalidated.WithLabelValues(ds.Name, "fill").Add(float64(stats.Filled))
	t.metrics.SamplesInvalidated.WithLabelValues(ds.Name, "range").Add(float64(stats.OutOfRange))
	t.metrics.SamplesNormalized.WithLabelValues(ds.Name).Add(float64(len(normalized)))

	attrs := []any{
		"dataset", ds.Name,
		"rows_read", len(raw),
		"fill_values", stats.Filled,
		"out_of_range", stats.OutOfRange,
		"normalized", len(normalized),
		"aggregation", ds.Aggregation().String(),
	}
	locations, dates := distinctKeys(normalized)
	attrs = append(attrs, "unique_locations", locations, "unique_dates", dates)
	if first, last, ok := dateRange(normalized); ok {
		attrs = append(attrs, "first_date", first.Format("2006-01-02"), "last_date", last.Format("2006-01-02"))
	}
	t.logger.Info("dataset normalized", attrs...)

	return normalized, nil
}

func distinctKeys(samples []domain.NormalizedSample) (locations, dates int) {
	cells := make(map[domain.GridCell]struct{})
	days := make(map[time.Time]struct{})
	for _, s := range samples {
		cells[s.Cell] = struct{}{}
		days[s.Date] = struct{}{}
	}
	return len(cells), len(days)
}
