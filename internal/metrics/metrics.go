// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - API endpoint latency and throughput
// - Recommendation runs and skipped places
// - Voting activity
// - Ratings cache efficiency
// - Circuit breaker around the data provider
// - Document store operations
// - Live group connections
// - Planning sessions and background maintenance jobs

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatherly_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gatherly_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gatherly_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatherly_api_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"endpoint"},
	)

	// Recommendation Metrics
	RecommendationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatherly_recommendation_runs_total",
			Help: "Total number of group recommendation runs",
		},
		[]string{"result"}, // "success", "empty", "error"
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gatherly_recommendation_duration_seconds",
			Help:    "Duration of group recommendation runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RecommendationCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gatherly_recommendation_candidates",
			Help:    "Number of candidate places considered per run",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	RecommendationSkippedPlaces = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gatherly_recommendation_skipped_places_total",
			Help: "Total number of candidate places skipped because of malformed ratings",
		},
	)

	// Voting Metrics
	VotesCast = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gatherly_votes_cast_total",
			Help: "Total number of ballots cast or replaced",
		},
	)

	TalliesComputed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gatherly_tallies_computed_total",
			Help: "Total number of ranked-choice tallies computed",
		},
	)

	RatingsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatherly_ratings_written_total",
			Help: "Total number of rating writes",
		},
		[]string{"operation"}, // "create", "update", "delete"
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatherly_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatherly_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gatherly_cache_size",
			Help: "Current number of entries held by a cache",
		},
		[]string{"cache"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gatherly_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatherly_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatherly_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Store Metrics
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gatherly_store_operation_duration_seconds",
			Help:    "Duration of document store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "collection"},
	)

	StoreOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatherly_store_operation_errors_total",
			Help: "Total number of failed document store operations",
		},
		[]string{"operation", "collection", "error_type"},
	)

	// Live update metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gatherly_websocket_connections",
			Help: "Current number of live group connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gatherly_websocket_messages_sent_total",
			Help: "Total number of live update messages sent",
		},
	)

	// Session Metrics
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gatherly_sessions_active",
			Help: "Current number of planning sessions held in memory",
		},
	)

	SessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gatherly_sessions_expired_total",
			Help: "Total number of planning sessions removed by the sweeper",
		},
	)

	// Maintenance Metrics
	MaintenanceRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatherly_maintenance_runs_total",
			Help: "Total number of background maintenance job runs",
		},
		[]string{"job", "result"}, // result: success, error
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gatherly_app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendationRun records the outcome of one group recommendation run.
// returned is the length of the final list; an empty list with no error counts as "empty".
func RecordRecommendationRun(duration time.Duration, candidates, returned int, err error) {
	RecommendationDuration.Observe(duration.Seconds())
	RecommendationCandidates.Observe(float64(candidates))

	switch {
	case err != nil:
		RecommendationRuns.WithLabelValues("error").Inc()
	case returned == 0:
		RecommendationRuns.WithLabelValues("empty").Inc()
	default:
		RecommendationRuns.WithLabelValues("success").Inc()
	}
}

// RecordSkippedPlace records a candidate dropped from a run.
func RecordSkippedPlace() {
	RecommendationSkippedPlaces.Inc()
}

// RecordVote records a ballot submission
func RecordVote() {
	VotesCast.Inc()
}

// RecordTally records a tally computation
func RecordTally() {
	TalliesComputed.Inc()
}

// RecordRatingWrite records a rating create, update or delete.
func RecordRatingWrite(operation string) {
	RatingsWritten.WithLabelValues(operation).Inc()
}

// RecordCacheLookup records a hit or miss for the named cache.
func RecordCacheLookup(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
		return
	}
	CacheMisses.WithLabelValues(cache).Inc()
}

// RecordStoreOperation records a document store operation
func RecordStoreOperation(operation, collection string, duration time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(operation, collection).Observe(duration.Seconds())
	if err != nil {
		StoreOperationErrors.WithLabelValues(operation, collection, classifyStoreError(err)).Inc()
	}
}

func classifyStoreError(err error) string {
	errorType := err.Error()
	// Truncate long error messages
	if len(errorType) > 50 {
		errorType = errorType[:50]
	}
	return errorType
}
