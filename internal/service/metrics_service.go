package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/tutoring-scheduler/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec

	passDuration      prometheus.Histogram
	assignments       prometheus.Counter
	conflicts         *prometheus.CounterVec
	retries           *prometheus.CounterVec
	modifications     *prometheus.CounterVec
	listenerFailures  *prometheus.CounterVec
	suggestionsIssued *prometheus.CounterVec

	passCount            uint64
	assignmentCount      uint64
	retryCount           uint64
	listenerFailureCount uint64
	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	dbQueryCount         uint64
	dbQueryDurationTotal uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	passDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "matching_pass_duration_seconds",
		Help:    "Duration of a candidate generation and assignment pass",
		Buckets: prometheus.DefBuckets,
	})

	assignments := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "matching_assignments_total",
		Help: "Total courses committed by matching passes",
	})

	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matching_conflicts_total",
		Help: "Total classified conflicts by type",
	}, []string{"type"})

	retries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "adjustment_retries_total",
		Help: "Retries of conflicted students by outcome",
	}, []string{"outcome"})

	modifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "adjustment_modifications_total",
		Help: "Ledger entries appended by target type",
	}, []string{"target"})

	listenerFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "adjustment_listener_failures_total",
		Help: "Listener callbacks that panicked, by event",
	}, []string{"event"})

	suggestionsIssued := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "suggestions_generated_total",
		Help: "Suggestions produced by type",
	}, []string{"type"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses, dbQueryDuration, goroutines,
		passDuration, assignments, conflicts, retries, modifications, listenerFailures, suggestionsIssued)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		dbQueryDuration: dbQueryDuration,

		passDuration:      passDuration,
		assignments:       assignments,
		conflicts:         conflicts,
		retries:           retries,
		modifications:     modifications,
		listenerFailures:  listenerFailures,
		suggestionsIssued: suggestionsIssued,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	total := hits + misses
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil || m.cacheWrite == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
	atomic.AddUint64(&m.dbQueryCount, 1)
	atomic.AddUint64(&m.dbQueryDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveMatchingPass records one generator + assignment pass.
func (m *MetricsService) ObserveMatchingPass(duration time.Duration, assigned int) {
	if m == nil {
		return
	}
	m.passDuration.Observe(duration.Seconds())
	m.assignments.Add(float64(assigned))
	atomic.AddUint64(&m.passCount, 1)
	atomic.AddUint64(&m.assignmentCount, uint64(assigned))
}

// IncConflict counts a classified conflict.
func (m *MetricsService) IncConflict(conflictType models.ConflictType) {
	if m == nil {
		return
	}
	m.conflicts.WithLabelValues(string(conflictType)).Inc()
}

// IncRetry counts a retry by outcome (resolved, failed, error, discarded).
func (m *MetricsService) IncRetry(outcome string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(outcome).Inc()
	atomic.AddUint64(&m.retryCount, 1)
}

// IncModification counts a ledger append.
func (m *MetricsService) IncModification(target models.TargetType) {
	if m == nil {
		return
	}
	m.modifications.WithLabelValues(string(target)).Inc()
}

// IncListenerFailure counts a recovered listener panic.
func (m *MetricsService) IncListenerFailure(event string) {
	if m == nil {
		return
	}
	m.listenerFailures.WithLabelValues(event).Inc()
	atomic.AddUint64(&m.listenerFailureCount, 1)
}

// ObserveSuggestions counts generated suggestions by type.
func (m *MetricsService) ObserveSuggestions(suggestions []models.Suggestion) {
	if m == nil {
		return
	}
	for _, s := range suggestions {
		m.suggestionsIssued.WithLabelValues(string(s.Type)).Inc()
	}
}

// Snapshot returns aggregated metrics suitable for the metrics endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	dbCount := atomic.LoadUint64(&m.dbQueryCount)
	dbDuration := atomic.LoadUint64(&m.dbQueryDurationTotal)

	var cacheRatio float64
	totalLookups := hits + misses
	if totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgDBMs float64
	if dbCount > 0 {
		avgDBMs = float64(dbDuration) / float64(dbCount) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		DBQueryCount:             dbCount,
		AverageDBQueryDurationMs: avgDBMs,
		MatchingPasses:           atomic.LoadUint64(&m.passCount),
		Assignments:              atomic.LoadUint64(&m.assignmentCount),
		Retries:                  atomic.LoadUint64(&m.retryCount),
		ListenerFailures:         atomic.LoadUint64(&m.listenerFailureCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
