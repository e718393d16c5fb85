// Package metrics provides Prometheus metrics for the compare ranking service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Match outcome labels.
const (
	OutcomeRecorded  = "recorded"
	OutcomeDuplicate = "duplicate"
	OutcomeSelfPlay  = "self_play"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ranking session
	matchesRecorded   *prometheus.CounterVec
	matchupsServed    prometheus.Counter
	matchupCandidates prometheus.Histogram
	matchupLatency    prometheus.Histogram
	poolSize          prometheus.Gauge
	meanCertainty     prometheus.Gauge
	replayedMatches   prometheus.Counter

	// Store
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "compare",
		subsystem:        "ranking",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.matchesRecorded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_total",
		Help:      "Submitted verdicts by outcome (recorded, duplicate, self_play)",
	}, []string{"outcome"})

	m.matchupsServed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matchups_served_total",
		Help:      "Total number of matchups proposed to the listener",
	})

	m.matchupCandidates = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matchup_candidates",
		Help:      "Number of near-best pairs the matchup was drawn from",
		Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 500, 1000, 5000},
	})

	m.matchupLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matchup_selection_seconds",
		Help:      "Time spent searching all pairs for the next matchup",
		Buckets:   m.histogramBuckets,
	})

	m.poolSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "songs",
		Help:      "Number of songs in the ranking pool",
	})

	m.meanCertainty = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "mean_certainty",
		Help:      "Mean rating certainty across the pool, 0 to 1",
	})

	m.replayedMatches = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "replayed_matches_total",
		Help:      "Matches replayed from the store while rebuilding the engine",
	})

	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "store",
		Name:      "operation_seconds",
		Help:      "Store operation latency",
		Buckets:   m.histogramBuckets,
	}, []string{"backend", "operation"})

	m.storeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "store",
		Name:      "errors_total",
		Help:      "Failed store operations",
	}, []string{"backend", "operation"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_usage_bytes",
		Help:      "Heap memory in use",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutines",
		Help:      "Number of goroutines",
	})
}

// RecordMatch counts a submitted verdict under outcome.
func RecordMatch(outcome string) {
	globalManager.matchesRecorded.WithLabelValues(outcome).Inc()
}

// RecordMatchupServed increments the matchups served counter.
func RecordMatchupServed() {
	globalManager.matchupsServed.Inc()
}

// RecordMatchupCandidates records how many pairs tied for best.
func RecordMatchupCandidates(count int) {
	globalManager.matchupCandidates.Observe(float64(count))
}

// RecordMatchupLatency records matchup search time in seconds.
func RecordMatchupLatency(seconds float64) {
	globalManager.matchupLatency.Observe(seconds)
}

// UpdatePoolSize sets the number of songs in the pool.
func UpdatePoolSize(count int) {
	globalManager.poolSize.Set(float64(count))
}

// UpdateMeanCertainty sets the mean certainty of the pool.
func UpdateMeanCertainty(certainty float64) {
	globalManager.meanCertainty.Set(certainty)
}

// RecordReplayedMatches adds count replayed matches.
func RecordReplayedMatches(count int) {
	globalManager.replayedMatches.Add(float64(count))
}

// RecordStoreOperation records the latency of a store operation.
func RecordStoreOperation(backend, operation string, seconds float64) {
	globalManager.storeLatency.WithLabelValues(backend, operation).Observe(seconds)
}

// RecordStoreError counts a failed store operation.
func RecordStoreError(backend, operation string) {
	globalManager.storeErrors.WithLabelValues(backend, operation).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
