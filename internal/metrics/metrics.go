package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the pipeline
type MetricsRegistry struct {
	// Ingestion metrics
	RowsIngestedTotal      prometheus.CounterVec
	NormalizationErrsTotal prometheus.CounterVec

	// Merge metrics
	RecordsImportedTotal   prometheus.Counter
	RecordsUpgradedTotal   prometheus.Counter
	RecordsDuplicatesTotal prometheus.Counter

	// Render metrics
	PagesRenderedTotal prometheus.Counter
	PagesSkippedTotal  prometheus.Counter
	PagesFailedTotal   prometheus.Counter
	RenderDuration     prometheus.Histogram

	// Reconciliation metrics
	OrphansHandledTotal prometheus.CounterVec

	// Run metrics
	RunDuration  prometheus.HistogramVec
	StoreFlights prometheus.Gauge
	LastRunEpoch prometheus.Gauge
	RunsTotal    prometheus.CounterVec
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		RowsIngestedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matchfly_rows_ingested_total",
				Help: "Raw rows ingested by source",
			},
			[]string{"source"},
		),
		NormalizationErrsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matchfly_normalization_errors_total",
				Help: "Rows rejected during normalization by reason",
			},
			[]string{"reason"},
		),

		RecordsImportedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "matchfly_records_imported_total",
				Help: "New canonical records added by merges",
			},
		),
		RecordsUpgradedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "matchfly_records_upgraded_total",
				Help: "Historical records replaced by live observations",
			},
		),
		RecordsDuplicatesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "matchfly_records_duplicates_total",
				Help: "Incoming records dropped as duplicates",
			},
		),

		PagesRenderedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "matchfly_pages_rendered_total",
				Help: "Flight pages written to disk",
			},
		),
		PagesSkippedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "matchfly_pages_skipped_total",
				Help: "Records filtered out before rendering",
			},
		),
		PagesFailedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "matchfly_pages_failed_total",
				Help: "Records whose page generation failed",
			},
		),
		RenderDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "matchfly_render_duration_seconds",
				Help:    "Render stage execution time in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
			},
		),

		OrphansHandledTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matchfly_orphans_handled_total",
				Help: "Orphaned artifacts handled by action taken",
			},
			[]string{"action"},
		),

		RunDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "matchfly_run_duration_seconds",
				Help:    "Pipeline run execution time in seconds",
				Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"event"},
		),
		StoreFlights: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "matchfly_store_flights",
				Help: "Canonical records currently in the store",
			},
		),
		LastRunEpoch: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "matchfly_last_run_timestamp_seconds",
				Help: "Unix time of the last completed run",
			},
		),
		RunsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matchfly_runs_total",
				Help: "Completed pipeline runs by event and result",
			},
			[]string{"event", "result"},
		),
	}
}
