// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedrank_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_db_query_errors_total",
			Help: "Total number of database query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// Training Metrics
	TrainingCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feedrank_training_cycle_duration_seconds",
			Help:    "Duration of training cycles in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
	)

	TrainingCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_training_cycles_total",
			Help: "Total number of training cycles by result",
		},
		[]string{"result"}, // "success", "timeout", "cancelled", "error"
	)

	TrainingUserOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_training_user_outcomes_total",
			Help: "Total number of per-user training outcomes",
		},
		[]string{"outcome"}, // "trained", "skipped", "failed", "timeout"
	)

	TrainingValidationMSE = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedrank_training_validation_mse",
			Help:    "Validation mean squared error of fitted user models",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		},
		[]string{"regressor"},
	)

	TrainingDirtyUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feedrank_training_dirty_users",
			Help: "Number of users with interactions newer than their model at the start of the last cycle",
		},
	)

	TrainingSamples = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feedrank_training_samples",
			Help:    "Number of labeled articles per user training set",
			Buckets: prometheus.ExponentialBuckets(2, 2, 10),
		},
	)

	// Ranking Metrics
	RankingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedrank_ranking_duration_seconds",
			Help:    "Duration of ranked feed requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"mode"}, // "personalized", "cold_start"
	)

	RankingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_ranking_requests_total",
			Help: "Total number of ranked feed requests by mode",
		},
		[]string{"mode"},
	)

	// Model Store Metrics
	ModelStoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_model_store_operations_total",
			Help: "Total number of model store operations",
		},
		[]string{"backend", "operation", "result"},
	)

	ModelRegistrySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feedrank_model_registry_entries",
			Help: "Current number of models held in memory",
		},
	)

	// Embedding Metrics
	EmbeddingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_embedding_requests_total",
			Help: "Total number of embedding provider requests",
		},
		[]string{"model", "status"}, // status: "success", "error", "rejected"
	)

	EmbeddingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedrank_embedding_duration_seconds",
			Help:    "Duration of embedding provider requests in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"model"},
	)

	EmbeddingCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_embedding_cache_lookups_total",
			Help: "Total number of embedding cache lookups",
		},
		[]string{"backend", "result"}, // result: "hit", "miss", "error"
	)

	// Backfill Metrics
	BackfillArticles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_backfill_articles_total",
			Help: "Total number of articles processed by the vector backfill",
		},
		[]string{"outcome"}, // "embedded", "failed"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "feedrank_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Event Ingestion Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_events_published_total",
			Help: "Total number of interaction events published",
		},
		[]string{"type"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_events_consumed_total",
			Help: "Total number of interaction events consumed by result",
		},
		[]string{"type", "result"}, // result: "stored", "invalid", "error"
	)

	// Operational HTTP Metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_http_requests_total",
			Help: "Total number of operational HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table, truncate(err.Error(), 50)).Inc()
	}
}

// RecordTrainingCycle records a finished training cycle.
func RecordTrainingCycle(result string, duration time.Duration) {
	TrainingCycles.WithLabelValues(result).Inc()
	TrainingCycleDuration.Observe(duration.Seconds())
}

// RecordUserOutcome records the outcome of training one user.
func RecordUserOutcome(outcome string) {
	TrainingUserOutcomes.WithLabelValues(outcome).Inc()
}

// RecordModelFit records a successful fit with its sample count and validation error.
func RecordModelFit(regressor string, samples int, mse float64) {
	TrainingSamples.Observe(float64(samples))
	TrainingValidationMSE.WithLabelValues(regressor).Observe(mse)
}

// SetDirtyUsers records the number of users pending training.
func SetDirtyUsers(n int) {
	TrainingDirtyUsers.Set(float64(n))
}

// RecordRanking records a ranked feed request.
func RecordRanking(coldStart bool, duration time.Duration) {
	mode := "personalized"
	if coldStart {
		mode = "cold_start"
	}
	RankingRequests.WithLabelValues(mode).Inc()
	RankingDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordModelStore records a model store operation.
func RecordModelStore(backend, operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	ModelStoreOperations.WithLabelValues(backend, operation, result).Inc()
}

// RecordEmbeddingRequest records an embedding provider call.
func RecordEmbeddingRequest(model, status string, duration time.Duration) {
	EmbeddingRequests.WithLabelValues(model, status).Inc()
	if status != "rejected" {
		EmbeddingDuration.WithLabelValues(model).Observe(duration.Seconds())
	}
}

// RecordEmbeddingCache records an embedding cache lookup result.
func RecordEmbeddingCache(backend, result string) {
	EmbeddingCacheLookups.WithLabelValues(backend, result).Inc()
}

// RecordBackfill records backfill results for one batch.
func RecordBackfill(embedded, failed int) {
	BackfillArticles.WithLabelValues("embedded").Add(float64(embedded))
	BackfillArticles.WithLabelValues("failed").Add(float64(failed))
}

// RecordEventPublished records an interaction event handed to the bus.
func RecordEventPublished(eventType string) {
	EventsPublished.WithLabelValues(eventType).Inc()
}

// RecordEventConsumed records the result of consuming one interaction event.
func RecordEventConsumed(eventType, result string) {
	EventsConsumed.WithLabelValues(eventType, result).Inc()
}

// RecordHTTPRequest records an operational HTTP request.
func RecordHTTPRequest(method, endpoint, status string) {
	HTTPRequests.WithLabelValues(method, endpoint, status).Inc()
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
