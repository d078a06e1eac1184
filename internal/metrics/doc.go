// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

/*
Package metrics provides Prometheus metrics for the ranking engine.

All collectors are registered on the default registry through promauto and
are exposed by the operational HTTP server at /metrics.

# Available Metrics

Training:
  - feedrank_training_cycle_duration_seconds (histogram)
  - feedrank_training_cycles_total{result} (counter)
  - feedrank_training_user_outcomes_total{outcome} (counter)
  - feedrank_training_validation_mse{regressor} (histogram)
  - feedrank_training_dirty_users (gauge)
  - feedrank_training_samples (histogram)

Ranking:
  - feedrank_ranking_duration_seconds{mode} (histogram)
  - feedrank_ranking_requests_total{mode} (counter)

Models:
  - feedrank_model_store_operations_total{backend, operation, result}
  - feedrank_model_registry_entries (gauge)

Embedding:
  - feedrank_embedding_requests_total{model, status}
  - feedrank_embedding_duration_seconds{model}
  - feedrank_embedding_cache_lookups_total{backend, result}
  - feedrank_backfill_articles_total{outcome}
  - feedrank_circuit_breaker_state{name}
  - feedrank_circuit_breaker_state_transitions_total{name, from_state, to_state}

Events and storage:
  - feedrank_events_published_total{type}
  - feedrank_events_consumed_total{type, result}
  - feedrank_db_query_duration_seconds{operation, table}
  - feedrank_db_query_errors_total{operation, table, error_type}
  - feedrank_http_requests_total{method, endpoint, status}

# Usage

	start := time.Now()
	err := store.InsertInteraction(ctx, in)
	metrics.RecordDBQuery("insert", "interactions", time.Since(start), err)
*/
package metrics
