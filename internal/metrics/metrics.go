// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Turn Metrics
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turns_total",
			Help: "Total number of completed reply turns",
		},
		[]string{"fighter", "action"},
	)

	TurnErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turn_errors_total",
			Help: "Total number of failed reply turns",
		},
		[]string{"fighter", "stage"}, // stage: "extract", "generate", "arbitrate", "recommend", "render"
	)

	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "turn_duration_seconds",
			Help:    "End-to-end duration of reply turns in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}, // Generation dominates
		},
		[]string{"fighter"},
	)

	TurnStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "turn_stage_duration_seconds",
			Help:    "Duration of individual turn stages in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"stage"}, // "generate", "arbitrate", "recommend"
	)

	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Total number of turns answered with a recommendation list",
		},
		[]string{"fighter"},
	)

	// Model Runtime Metrics
	RuntimeCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "runtime_calls_total",
			Help: "Total number of model runtime calls",
		},
		[]string{"operation", "status"}, // operation: "encode", "decode", "pad", "score", "generate", "meta"
	)

	RuntimeCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "runtime_call_duration_seconds",
			Help:    "Duration of model runtime calls in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures recorded by the circuit breaker",
		},
		[]string{"name"},
	)

	// Session Metrics
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_active",
			Help: "Current number of live conversation sessions",
		},
	)

	SessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_created_total",
			Help: "Total number of conversation sessions created",
		},
	)

	SessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_expired_total",
			Help: "Total number of conversation sessions evicted by the TTL sweeper",
		},
	)

	// Turn Event Bus Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of turn events published to the bus",
		},
		[]string{"topic"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Total number of turn events consumed from the bus",
		},
		[]string{"topic", "status"}, // status: "ok", "error"
	)

	// Analytics Store Metrics
	AnalyticsInserts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_inserts_total",
			Help: "Total number of turn telemetry rows written",
		},
		[]string{"status"}, // "ok", "error"
	)

	AnalyticsQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analytics_query_duration_seconds",
			Help:    "Duration of analytics store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)
)

// RecordTurn records a completed reply turn with its chosen action.
func RecordTurn(fighter, action string, duration time.Duration, recommended bool) {
	TurnsTotal.WithLabelValues(fighter, action).Inc()
	TurnDuration.WithLabelValues(fighter).Observe(duration.Seconds())
	if recommended {
		RecommendationsServed.WithLabelValues(fighter).Inc()
	}
}

// RecordTurnError records a failed reply turn and the stage it failed in.
func RecordTurnError(fighter, stage string) {
	TurnErrors.WithLabelValues(fighter, stage).Inc()
}

// RecordTurnStage records the duration of one turn stage.
func RecordTurnStage(stage string, duration time.Duration) {
	TurnStageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordRuntimeCall records one model runtime call.
func RecordRuntimeCall(operation string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	RuntimeCallsTotal.WithLabelValues(operation, status).Inc()
	RuntimeCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordEventPublished records one event published to the bus.
func RecordEventPublished(topic string) {
	EventsPublished.WithLabelValues(topic).Inc()
}

// RecordEventConsumed records one event consumed from the bus.
func RecordEventConsumed(topic string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	EventsConsumed.WithLabelValues(topic, status).Inc()
}

// RecordAnalyticsInsert records one telemetry row write.
func RecordAnalyticsInsert(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	AnalyticsInserts.WithLabelValues(status).Inc()
}

// RecordAnalyticsQuery records one analytics query.
func RecordAnalyticsQuery(query string, duration time.Duration) {
	AnalyticsQueryDuration.WithLabelValues(query).Observe(duration.Seconds())
}
