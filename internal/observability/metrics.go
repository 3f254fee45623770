package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// climate ETL pipeline.
type Metrics struct {
	// Extraction engine metrics.
	ChunksProcessed     prometheus.Counter
	ChunksFailed        *prometheus.CounterVec // labels: reason={retries_exhausted,timeout}
	ChunkRetries        prometheus.Counter
	ObservationsWritten prometheus.Counter
	ExtractionsInFlight prometheus.Gauge
	SampleDuration      prometheus.Histogram

	// Incremental downloader metrics.
	SeriesRowsAppended prometheus.Counter
	SeriesPointsFailed prometheus.Counter
	ForecastDuration   prometheus.Histogram

	// Merge/transform metrics.
	CanonicalRows prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ChunksProcessed,
		m.ChunksFailed,
		m.ChunkRetries,
		m.ObservationsWritten,
		m.ExtractionsInFlight,
		m.SampleDuration,
		m.SeriesRowsAppended,
		m.SeriesPointsFailed,
		m.ForecastDuration,
		m.CanonicalRows,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ChunksProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_etl",
			Name:      "chunks_processed_total",
			Help:      "Total extraction work units that completed successfully.",
		}),
		ChunksFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_etl",
			Name:      "chunks_failed_total",
			Help:      "Extraction work units abandoned, by failure reason.",
		}, []string{"reason"}),
		ChunkRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_etl",
			Name:      "chunk_retries_total",
			Help:      "Total sampling attempts retried after an error.",
		}),
		ObservationsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_etl",
			Name:      "observations_written_total",
			Help:      "Raw observations written to extraction output files.",
		}),
		ExtractionsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climate_etl",
			Name:      "extractions_in_flight",
			Help:      "Number of extraction runs currently executing.",
		}),
		SampleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climate_etl",
			Name:      "sample_duration_seconds",
			Help:      "Duration of one gridded-raster sampling call.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		SeriesRowsAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_etl",
			Name:      "series_rows_appended_total",
			Help:      "New point-series rows appended by the downloader.",
		}),
		SeriesPointsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_etl",
			Name:      "series_points_failed_total",
			Help:      "Points skipped by the downloader because their API query failed.",
		}),
		ForecastDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climate_etl",
			Name:      "forecast_api_duration_seconds",
			Help:      "Duration of one point-forecast API call.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		CanonicalRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_etl",
			Name:      "canonical_rows_total",
			Help:      "Rows written to the canonical processed table.",
		}),
	}
}
