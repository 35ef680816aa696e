package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// detection pipeline.
type Metrics struct {
	SamplesIngested  prometheus.Counter
	WindowsDetected  prometheus.Counter
	ReportsPublished prometheus.Counter
	DetectErrors     prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Detection cycle metrics.
	DetectDuration prometheus.Histogram

	// Bulletin fetch metrics.
	BulletinFetches       *prometheus.CounterVec // labels: outcome={success,error}
	BulletinFetchDuration prometheus.Histogram
	BulletinCache         *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		SamplesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dst_etl",
			Name:      "samples_ingested_total",
			Help:      "Total hourly Dst samples parsed from bulletins.",
		}),
		WindowsDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dst_etl",
			Name:      "windows_detected_total",
			Help:      "Total storm windows detected across pipeline cycles.",
		}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dst_etl",
			Name:      "reports_published_total",
			Help:      "Total storm reports written to the sink topic.",
		}),
		DetectErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dst_etl",
			Name:      "detect_errors_total",
			Help:      "Total failed detection cycles.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dst_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		DetectDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dst_etl",
			Name:      "detect_duration_seconds",
			Help:      "Duration of a complete fetch-detect-publish cycle.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		BulletinFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dst_etl",
			Name:      "bulletin_fetches_total",
			Help:      "Monthly bulletin fetches by outcome.",
		}, []string{"outcome"}),
		BulletinFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dst_etl",
			Name:      "bulletin_fetch_duration_seconds",
			Help:      "WDC bulletin request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		BulletinCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dst_etl",
			Name:      "bulletin_cache_total",
			Help:      "Bulletin cache lookups by result.",
		}, []string{"result"}),
	}

	prometheus.MustRegister(
		m.SamplesIngested,
		m.WindowsDetected,
		m.ReportsPublished,
		m.DetectErrors,
		m.PipelineRunning,
		m.DetectDuration,
		m.BulletinFetches,
		m.BulletinFetchDuration,
		m.BulletinCache,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		SamplesIngested:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "dst_etl", Name: "samples_ingested_total"}),
		WindowsDetected:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "dst_etl", Name: "windows_detected_total"}),
		ReportsPublished:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "dst_etl", Name: "reports_published_total"}),
		DetectErrors:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "dst_etl", Name: "detect_errors_total"}),
		PipelineRunning:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "dst_etl", Name: "pipeline_running"}),
		DetectDuration:        prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "dst_etl", Name: "detect_duration_seconds"}),
		BulletinFetches:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "dst_etl", Name: "bulletin_fetches_total"}, []string{"outcome"}),
		BulletinFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "dst_etl", Name: "bulletin_fetch_duration_seconds"}),
		BulletinCache:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "dst_etl", Name: "bulletin_cache_total"}, []string{"result"}),
	}
}
