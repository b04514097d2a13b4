// Package prometheus registers and exposes the application metrics: HTTP
// traffic, discovery pass outcomes, scoring latency, cache effectiveness,
// and report exports.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Default histogram buckets.
var (
	httpDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	passDurationBuckets = []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60}
	resultCountBuckets  = []float64{0, 10, 25, 50, 100, 250, 500, 1000}
)

// Metrics holds every metric the services emit.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DiscoveryRunsTotal    *prometheus.CounterVec
	DiscoveryPassTotal    *prometheus.CounterVec
	DiscoveryPassDuration *prometheus.HistogramVec
	DiscoveryResultCount  *prometheus.HistogramVec
	DiscoveryDedupDropped prometheus.Counter

	ScoringDuration  prometheus.Histogram
	AnalysisDuration prometheus.Histogram

	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	ReportExportsTotal *prometheus.CounterVec
}

// New registers all metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())

	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "patminer_http_requests_total",
			Help: "Total HTTP requests by method, route, and status code.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "patminer_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: httpDurationBuckets,
		}, []string{"method", "route"}),

		DiscoveryRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "patminer_discovery_runs_total",
			Help: "Discovery runs by terminal status.",
		}, []string{"status"}),
		DiscoveryPassTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "patminer_discovery_pass_total",
			Help: "Retrieval passes executed, by pass name and outcome.",
		}, []string{"pass", "outcome"}),
		DiscoveryPassDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "patminer_discovery_pass_duration_seconds",
			Help:    "Per-pass retrieval latency.",
			Buckets: passDurationBuckets,
		}, []string{"pass"}),
		DiscoveryResultCount: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "patminer_discovery_result_count",
			Help:    "Records returned per pass before dedup.",
			Buckets: resultCountBuckets,
		}, []string{"pass"}),
		DiscoveryDedupDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "patminer_discovery_dedup_dropped_total",
			Help: "Duplicate records merged during cross-pass dedup.",
		}),

		ScoringDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "patminer_scoring_duration_seconds",
			Help:    "Time spent scoring one run's candidates.",
			Buckets: passDurationBuckets,
		}),
		AnalysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "patminer_analysis_duration_seconds",
			Help:    "Time spent on technical and financial analysis per run.",
			Buckets: passDurationBuckets,
		}),

		CacheHitsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "patminer_cache_hits_total",
			Help: "Cache hits by cache name.",
		}, []string{"cache"}),
		CacheMissesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "patminer_cache_misses_total",
			Help: "Cache misses by cache name.",
		}, []string{"cache"}),

		ReportExportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "patminer_report_exports_total",
			Help: "Report artifacts exported, by format and outcome.",
		}, []string{"format", "outcome"}),
	}
}

// Handler serves the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one completed request.
func (m *Metrics) ObserveHTTP(method, route, status string, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObservePass records one retrieval pass execution.
func (m *Metrics) ObservePass(pass, outcome string, resultCount int, elapsed time.Duration) {
	m.DiscoveryPassTotal.WithLabelValues(pass, outcome).Inc()
	m.DiscoveryPassDuration.WithLabelValues(pass).Observe(elapsed.Seconds())
	m.DiscoveryResultCount.WithLabelValues(pass).Observe(float64(resultCount))
}
