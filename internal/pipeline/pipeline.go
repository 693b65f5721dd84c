package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/geo-linkage-etl/internal/domain"
	"github.com/couchcryptid/geo-linkage-etl/internal/linkage"
	"github.com/couchcryptid/geo-linkage-etl/internal/observability"
)

// Extractor reads every raw sample of one dataset.
type Extractor interface {
	Extract(ctx context.Context, ds domain.DatasetSpec) ([]domain.RawSample, error)
}

// Transformer sanitizes and normalizes the raw samples of one dataset.
type Transformer interface {
	Transform(ctx context.Context, ds domain.DatasetSpec, raw []domain.RawSample) ([]domain.NormalizedSample, error)
}

// Loader writes the finished table to a destination.
type Loader interface {
	Load(ctx context.Context, run domain.RunInfo, table domain.Table) error
}

// Loaders fans a table out to several destinations in order, stopping at the first failure.
type Loaders []Loader

func (ls Loaders) Load(ctx context.Context, run domain.RunInfo, table domain.Table) error {
	for _, l := range ls {
		if err := l.Load(ctx, run, table); err != nil {
			return err
		}
	}
	return nil
}

// OverlayResult reports how one overlay column was joined.
type OverlayResult struct {
	Column string
	Stats  linkage.Stats
}

// RunResult describes a finished linkage run.
type RunResult struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	BaseSamples int
	Overlays    []OverlayResult
	RowsDropped int
	Summary     domain.Summary
}

// Pipeline joins every overlay of a registry onto its base dataset.
type Pipeline struct {
	registry    domain.Registry
	extractor   Extractor
	transformer Transformer
	loader      Loader
	matcher     linkage.Matcher
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	lastRun     atomic.Pointer[RunResult]
	workers     int
}

// New creates a Pipeline with the given stages and observability. workers
// bounds how many overlays are prepared and joined at once.
func New(reg domain.Registry, e Extractor, t Transformer, l Loader, m linkage.Matcher, logger *slog.Logger, metrics *observability.Metrics, workers int) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		registry:    reg,
		extractor:   e,
		transformer: t,
		loader:      l,
		matcher:     m,
		logger:      logger,
		metrics:     metrics,
		workers:     workers,
	}
}

// CheckReadiness returns nil once a run has completed, or an error describing
// why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("linkage run has not completed yet")
	}
	return nil
}

// LastRun returns the result of the most recent successful run.
func (p *Pipeline) LastRun() (RunResult, bool) {
	r := p.lastRun.Load()
	if r == nil {
		return RunResult{}, false
	}
	return *r, true
}

// Run executes one linkage run: prepare the base, join each overlay, drop
// rows without overlay information, summarize and load.
func (p *Pipeline) Run(ctx context.Context) (RunResult, error) {
	if err := p.registry.Validate(); err != nil {
		return RunResult{}, err
	}

	run := domain.RunInfo{ID: uuid.NewString(), StartedAt: domain.Now()}
	logger := p.logger.With("run_id", run.ID)
	logger.Info("linkage run started",
		"base", p.registry.Base.Name,
		"overlays", len(p.registry.Overlays),
		"workers", p.workers,
	)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	base, err := p.prepare(ctx, p.registry.Base)
	if err != nil {
		return RunResult{}, err
	}
	base = domain.FilterYear(base, domain.AnalysisYear)
	logger.Info("base extract ready", "dataset", p.registry.Base.Name, "samples", len(base), "year", domain.AnalysisYear)

	table, overlays, err := p.joinOverlays(ctx, logger, base)
	if err != nil {
		return RunResult{}, err
	}

	table, dropped := table.DropEmptyRows()
	p.metrics.RowsDropped.Add(float64(dropped))
	logger.Info("empty rows dropped", "dropped", dropped, "remaining", len(table.Rows))

	summary := domain.Summarize(table)
	logSummary(logger, summary)

	loadStart := time.Now()
	if err := p.loader.Load(ctx, run, table); err != nil {
		return RunResult{}, fmt.Errorf("load: %w", err)
	}
	p.metrics.StageDuration.WithLabelValues("load").Observe(time.Since(loadStart).Seconds())
	p.metrics.RowsLoaded.Add(float64(len(table.Rows)))
	p.ready.Store(true)

	result := RunResult{
		RunID:       run.ID,
		StartedAt:   run.StartedAt,
		FinishedAt:  domain.Now(),
		BaseSamples: len(base),
		Overlays:    overlays,
		RowsDropped: dropped,
		Summary:     summary,
	}
	p.lastRun.Store(&result)
	logger.Info("linkage run finished", "rows", len(table.Rows), "duration", result.FinishedAt.Sub(result.StartedAt).String())
	return result, nil
}

// prepare extracts, sanitizes and normalizes one dataset.
func (p *Pipeline) prepare(ctx context.Context, ds domain.DatasetSpec) ([]domain.NormalizedSample, error) {
	start := time.Now()
	raw, err := p.extractor.Extract(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", ds.Name, err)
	}
	normalized, err := p.transformer.Transform(ctx, ds, raw)
	if err != nil {
		return nil, fmt.Errorf("transform %s: %w", ds.Name, err)
	}
	p.metrics.StageDuration.WithLabelValues("prepare").Observe(time.Since(start).Seconds())
	return normalized, nil
}

// joinOverlays prepares and links every overlay concurrently, then merges the
// columns in declared order. Any failure cancels the remaining joins.
func (p *Pipeline) joinOverlays(ctx context.Context, logger *slog.Logger, base []domain.NormalizedSample) (domain.Table, []OverlayResult, error) {
	overlays := p.registry.Overlays
	columns := make([][]domain.Value, len(overlays))
	results := make([]OverlayResult, len(overlays))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, o := range overlays {
		g.Go(func() error {
			samples, err := p.prepare(gctx, o.Dataset)
			if err != nil {
				return err
			}
			if err := gctx.Err(); err != nil {
				return err
			}

			start := time.Now()
			values, stats, err := p.matcher.Link(base, samples, o.Params)
			if err != nil {
				return fmt.Errorf("link %s: %w", o.Dataset.Name, err)
			}
			p.metrics.StageDuration.WithLabelValues("link").Observe(time.Since(start).Seconds())

			columns[i] = values
			results[i] = OverlayResult{Column: o.Dataset.Column, Stats: stats}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Table{}, nil, err
	}

	table := domain.NewBaseTable(p.registry.Base.Column, base)
	for i, o := range overlays {
		var err error
		table, err = table.WithColumn(o.Dataset.Column, columns[i])
		if err != nil {
			return domain.Table{}, nil, err
		}

		st := results[i].Stats
		p.metrics.IndexedPoints.WithLabelValues(o.Dataset.Name).Set(float64(st.OverlayPoints))
		p.metrics.OverlayRows.WithLabelValues(o.Dataset.Name, "matched").Add(float64(st.MatchedRows))
		p.metrics.OverlayRows.WithLabelValues(o.Dataset.Name, "missing").Add(float64(st.Rows - st.MatchedRows))

		attrs := []any{
			"overlay", o.Dataset.Name,
			"column", o.Dataset.Column,
			"mode", st.Mode.String(),
			"spatial_tolerance", o.Params.SpatialTolerance,
			"temporal_tolerance", o.Params.TemporalTolerance,
			"indexed_points", st.OverlayPoints,
			"matched_rows", st.MatchedRows,
			"match_rate", st.MatchRate(),
		}
		if st.Mode == domain.ModeAnnual {
			attrs = append(attrs, "base_locations", st.BaseLocations, "matched_locations", st.MatchedLocations)
		}
		logger.Info("overlay joined", attrs...)
	}
	return table, results, nil
}

func logSummary(logger *slog.Logger, s domain.Summary) {
	fill := make([]any, 0, len(s.Fill))
	for _, c := range s.Fill {
		fill = append(fill, slog.Group(c.Column, "present", c.Present, "rate", c.Rate))
	}
	logger.Info("linkage summary",
		"rows", s.Rows,
		"first_date", s.FirstDate.Format("2006-01-02"),
		"last_date", s.LastDate.Format("2006-01-02"),
		"unique_dates", s.UniqueDates,
		"unique_locations", s.UniqueLocations,
		"complete_rows", s.CompleteRows,
		"present_counts", s.PresentCounts,
		slog.Group("fill", fill...),
	)
}

func dateRange(samples []domain.NormalizedSample) (first, last time.Time, ok bool) {
	for i, s := range samples {
		if i == 0 || s.Date.Before(first) {
			first = s.Date
		}
		if i == 0 || s.Date.After(last) {
			last = s.Date
		}
	}
	return first, last, len(samples) > 0
}
