package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "geo_linkage"

// Metrics holds the Prometheus counters, histograms, and gauges for the linkage pipeline.
type Metrics struct {
	SamplesRead        *prometheus.CounterVec // labels: dataset
	RowsSkipped        *prometheus.CounterVec // labels: dataset
	SamplesInvalidated *prometheus.CounterVec // labels: dataset, reason={fill,range}
	SamplesNormalized  *prometheus.CounterVec // labels: dataset

	// Join metrics.
	OverlayRows   *prometheus.CounterVec // labels: overlay, outcome={matched,missing}
	IndexedPoints *prometheus.GaugeVec   // labels: overlay
	RowsDropped   prometheus.Counter
	RowsLoaded    prometheus.Counter

	PipelineRunning prometheus.Gauge
	StageDuration   *prometheus.HistogramVec // labels: stage={prepare,link,load}
}

func newMetrics() *Metrics {
	return &Metrics{
		SamplesRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_read_total",
			Help:      "Raw samples read per dataset.",
		}, []string{"dataset"}),
		RowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_skipped_total",
			Help:      "Input rows skipped because the date or a coordinate could not be parsed.",
		}, []string{"dataset"}),
		SamplesInvalidated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_invalidated_total",
			Help:      "Raw values turned missing by sanitization, by dataset and reason.",
		}, []string{"dataset", "reason"}),
		SamplesNormalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_normalized_total",
			Help:      "Samples left after grid normalization per dataset.",
		}, []string{"dataset"}),
		OverlayRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overlay_rows_total",
			Help:      "Base rows per overlay by match outcome.",
		}, []string{"overlay", "outcome"}),
		IndexedPoints: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "indexed_points",
			Help:      "Points in the nearest-neighbour index of the last join per overlay.",
		}, []string{"overlay"}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Rows dropped because every overlay value was missing.",
		}),
		RowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Matched rows written to the sinks.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a linkage run is in progress, 0 otherwise.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),
	}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.SamplesRead,
		m.RowsSkipped,
		m.SamplesInvalidated,
		m.SamplesNormalized,
		m.OverlayRows,
		m.IndexedPoints,
		m.RowsDropped,
		m.RowsLoaded,
		m.PipelineRunning,
		m.StageDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
