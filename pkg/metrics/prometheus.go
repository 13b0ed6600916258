// Package metrics provides Prometheus metrics for the scouting score service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer
	enabled          bool

	// Pipeline
	pipelineRuns       *prometheus.CounterVec
	pipelineDuration   prometheus.Histogram
	stageDuration      *prometheus.HistogramVec
	rowsLoaded         prometheus.Gauge
	missingCells       *prometheus.CounterVec
	dateParseFailures  *prometheus.CounterVec
	schemaMismatches   *prometheus.CounterVec
	sourceLoadFailures prometheus.Counter
	scoreColumns       prometheus.Gauge

	// Cache
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	cacheEvictions prometheus.Counter

	// Ranking
	leaderboardQueries *prometheus.CounterVec
	leaderboardLatency prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
	errorRateByType     *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry keeps default Go collectors out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "scout",
		subsystem:        "scores",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
		enabled:          true,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of collectors
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.pipelineRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("pipeline_runs_total"),
		Help:        "Pipeline runs by outcome",
		ConstLabels: labels,
	}, []string{"outcome"})

	m.pipelineDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("pipeline_duration_milliseconds"),
		Help:        "Wall time of a full pipeline run in milliseconds",
		Buckets:     []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		ConstLabels: labels,
	})

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("stage_duration_milliseconds"),
		Help:        "Wall time of a pipeline stage in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 5, 10, 25, 50, 100, 250, 1000},
		ConstLabels: labels,
	}, []string{"stage"})

	m.rowsLoaded = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("rows_loaded"),
		Help:        "Rows in the currently served table",
		ConstLabels: labels,
	})

	m.missingCells = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("missing_cells_total"),
		Help:        "Cells that normalized to a missing value, by column",
		ConstLabels: labels,
	}, []string{"column"})

	m.dateParseFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("date_parse_failures_total"),
		Help:        "Birth or match dates that failed to parse",
		ConstLabels: labels,
	}, []string{"column"})

	m.schemaMismatches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("schema_mismatches_total"),
		Help:        "Metric columns required by a computation but absent from the source",
		ConstLabels: labels,
	}, []string{"column"})

	m.sourceLoadFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("source_load_failures_total"),
		Help:        "Source files that could not be read or parsed",
		ConstLabels: labels,
	})

	m.scoreColumns = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("score_columns"),
		Help:        "Composite score columns available in the served table",
		ConstLabels: labels,
	})

	m.cacheHits = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("cache_hits_total"),
		Help:        "Table cache hits by kind (table or derived)",
		ConstLabels: labels,
	}, []string{"kind"})

	m.cacheMisses = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("cache_misses_total"),
		Help:        "Table cache misses by kind (table or derived)",
		ConstLabels: labels,
	}, []string{"kind"})

	m.cacheEvictions = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("cache_evictions_total"),
		Help:        "Table versions evicted after a version change",
		ConstLabels: labels,
	})

	m.leaderboardQueries = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("leaderboard_queries_total"),
		Help:        "Top-N queries by result (ok, empty, not_available)",
		ConstLabels: labels,
	}, []string{"result"})

	m.leaderboardLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("leaderboard_latency_milliseconds"),
		Help:        "Top-N query latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_requests_total"),
		Help:        "HTTP requests by endpoint, method and status",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_request_duration_milliseconds"),
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_endpoint_total"),
		Help:        "HTTP errors by endpoint",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "error_type"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_type_total"),
		Help:        "Errors by type and severity",
		ConstLabels: labels,
	}, []string{"error_type", "severity"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_usage_bytes"),
		Help:        "Heap bytes allocated",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutine_count"),
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_gc_pause_time_milliseconds"),
		Help:        "Average GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: labels,
	})
}

// RecordPipelineRun counts a pipeline run with outcome "ok" or "failed".
func RecordPipelineRun(outcome string) {
	if !globalManager.enabled {
		return
	}
	globalManager.pipelineRuns.WithLabelValues(outcome).Inc()
}

// RecordPipelineDuration observes a full pipeline run.
func RecordPipelineDuration(ms float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.pipelineDuration.Observe(ms)
}

// RecordStageDuration observes one pipeline stage.
func RecordStageDuration(stage string, ms float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.stageDuration.WithLabelValues(stage).Observe(ms)
}

// UpdateRowsLoaded sets the row count of the served table.
func UpdateRowsLoaded(rows int) {
	if !globalManager.enabled {
		return
	}
	globalManager.rowsLoaded.Set(float64(rows))
}

// AddMissingCells adds n missing cells for column.
func AddMissingCells(column string, n int) {
	if !globalManager.enabled || n <= 0 {
		return
	}
	globalManager.missingCells.WithLabelValues(column).Add(float64(n))
}

// AddDateParseFailures adds n date parse failures for column.
func AddDateParseFailures(column string, n int) {
	if !globalManager.enabled || n <= 0 {
		return
	}
	globalManager.dateParseFailures.WithLabelValues(column).Add(float64(n))
}

// RecordSchemaMismatch counts a column that was required but absent.
func RecordSchemaMismatch(column string) {
	if !globalManager.enabled {
		return
	}
	globalManager.schemaMismatches.WithLabelValues(column).Inc()
}

// RecordSourceLoadFailure counts a failed source load.
func RecordSourceLoadFailure() {
	if !globalManager.enabled {
		return
	}
	globalManager.sourceLoadFailures.Inc()
}

// UpdateScoreColumns sets the number of score columns in the served table.
func UpdateScoreColumns(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.scoreColumns.Set(float64(n))
}

// RecordCacheHit counts a cache hit of the given kind.
func RecordCacheHit(kind string) {
	if !globalManager.enabled {
		return
	}
	globalManager.cacheHits.WithLabelValues(kind).Inc()
}

// RecordCacheMiss counts a cache miss of the given kind.
func RecordCacheMiss(kind string) {
	if !globalManager.enabled {
		return
	}
	globalManager.cacheMisses.WithLabelValues(kind).Inc()
}

// RecordCacheEviction counts an evicted table version.
func RecordCacheEviction() {
	if !globalManager.enabled {
		return
	}
	globalManager.cacheEvictions.Inc()
}

// RecordLeaderboardQuery counts a top-N query by result.
func RecordLeaderboardQuery(result string) {
	if !globalManager.enabled {
		return
	}
	globalManager.leaderboardQueries.WithLabelValues(result).Inc()
}

// RecordLeaderboardLatency observes a top-N query.
func RecordLeaderboardLatency(ms float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.leaderboardLatency.Observe(ms)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an HTTP error for an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// UpdateSystemMemoryUsage sets the heap size in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
