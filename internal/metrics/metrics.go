// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Spot repository loads (source failures, malformed records, dedup)
// - State-holder reloads and personalization refreshes
// - Score memoization
// - Viewport reconciliation
// - Search geocoding
// - Change events, websocket clients, HTTP API

var (
	// Repository Metrics
	SourceLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chaimap_source_loads_total",
			Help: "Venue collection loads by collection and outcome",
		},
		[]string{"collection", "outcome"}, // "ok", "unavailable"
	)

	MalformedRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chaimap_malformed_records_total",
			Help: "Remote records dropped by required-field validation",
		},
		[]string{"collection"},
	)

	DuplicateSpots = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chaimap_duplicate_spots_total",
			Help: "Spot records collapsed by identity during deduplication",
		},
	)

	WriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chaimap_write_failures_total",
			Help: "Failed store writes by kind and whether they were surfaced to the caller",
		},
		[]string{"kind", "surfaced"},
	)

	// State Holder Metrics
	ReloadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chaimap_reload_duration_seconds",
			Help:    "Duration of data reloads and personalization refreshes",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"kind"}, // "full", "personalization"
	)

	ReloadsCoalesced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chaimap_reloads_coalesced_total",
			Help: "Reload requests that joined an in-flight reload instead of starting one",
		},
		[]string{"kind"},
	)

	DegradedLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chaimap_degraded_loads_total",
			Help: "Personalization inputs that failed to load and kept their previous value",
		},
		[]string{"input"}, // "profile", "own_ratings", "friend_ratings"
	)

	SnapshotVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chaimap_snapshot_version",
			Help: "Version of the latest published state snapshot",
		},
	)

	CanonicalSpots = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chaimap_canonical_spots",
			Help: "Spots in the canonical collection",
		},
	)

	PersonalizedSpots = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chaimap_personalized_spots",
			Help: "Spots classified as personalized for the session user",
		},
	)

	// Score Cache Metrics
	ScoreCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chaimap_score_cache_hits_total",
			Help: "Personalization score memo hits",
		},
	)

	ScoreCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chaimap_score_cache_misses_total",
			Help: "Personalization score memo misses",
		},
	)

	// Viewport Metrics
	ViewportMoves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chaimap_viewport_moves_total",
			Help: "Viewport changes by source",
		},
		[]string{"source"}, // "user", "location", "reload", "fit", "search", "restore"
	)

	ViewportMovesSuppressed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chaimap_viewport_moves_suppressed_total",
			Help: "Programmatic viewport moves skipped during user interaction",
		},
		[]string{"source"},
	)

	// Search Metrics
	GeocodeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chaimap_geocode_requests_total",
			Help: "Geocoding requests by outcome",
		},
		[]string{"outcome"}, // "found", "not_found", "error"
	)

	StaleSearchResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chaimap_stale_search_results_total",
			Help: "Geocoding responses discarded because a newer query was issued",
		},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chaimap_events_published_total",
			Help: "Change events published by topic",
		},
		[]string{"topic"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chaimap_events_consumed_total",
			Help: "Change events consumed by topic and outcome",
		},
		[]string{"topic", "outcome"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chaimap_websocket_connections",
			Help: "Connected websocket clients",
		},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chaimap_websocket_messages_dropped_total",
			Help: "Websocket broadcasts dropped because a buffer was full",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chaimap_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chaimap_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chaimap_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chaimap_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chaimap_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// RecordSourceLoad records the outcome of loading one venue collection.
func RecordSourceLoad(collection string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "unavailable"
	}
	SourceLoads.WithLabelValues(collection, outcome).Inc()
}

// RecordReload records a completed reload of the given kind.
func RecordReload(kind string, duration time.Duration) {
	ReloadDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordWriteFailure records a failed write. surfaced is false for swallowed
// secondary-collection failures.
func RecordWriteFailure(kind string, surfaced bool) {
	WriteFailures.WithLabelValues(kind, strconv.FormatBool(surfaced)).Inc()
}

// RecordSnapshot updates the gauges describing the latest published snapshot.
func RecordSnapshot(version uint64, spots, personalized int) {
	SnapshotVersion.Set(float64(version))
	CanonicalSpots.Set(float64(spots))
	PersonalizedSpots.Set(float64(personalized))
}

// RecordViewportMove records a viewport change, or a suppressed one.
func RecordViewportMove(source string, applied bool) {
	if applied {
		ViewportMoves.WithLabelValues(source).Inc()
		return
	}
	ViewportMovesSuppressed.WithLabelValues(source).Inc()
}

// RecordEventConsumed records a consumed change event.
func RecordEventConsumed(topic string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	EventsConsumed.WithLabelValues(topic, outcome).Inc()
}

// RecordAPIRequest records API request metrics.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
