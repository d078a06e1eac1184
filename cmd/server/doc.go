// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package main is the entry point for the Feedrank ranking server.
//
// Feedrank learns one small regression model per reader from their
// interactions with news articles and ranks recent articles by predicted
// interest. This binary runs the background side of the engine: the
// training scheduler, the embedding backfill, interaction ingestion and
// the ops HTTP surface.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: struct defaults, optional config.yaml, environment (Koanf v2)
//  2. Database: DuckDB (default), SQLite or PostgreSQL via sqlx
//  3. Model store: per-user model files or BadgerDB behind an LRU registry
//  4. Embedding provider: Ollama behind rate limit, circuit breaker and cache
//  5. Events (optional): watermill router over gochannel or NATS JetStream
//  6. Recommend engine: builder, trainer and ranker sharing the stores
//  7. Supervisor tree: backfill, training, ingest and ops HTTP layers
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (DATABASE_DRIVER, SCHEDULER_INTERVAL, ...)
//   - Config file (CONFIG_PATH or config.yaml)
//   - Built-in defaults
//
// # Build Tags
//
//	go build ./cmd/server               # gochannel transport only
//	go build -tags nats ./cmd/server    # adds NATS JetStream and the embedded server
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The supervisor stops every
// service within supervisor.shutdown_timeout, then the event transport,
// the model store and the database are closed in reverse order.
//
// # Example Usage
//
//	export DATABASE_DRIVER=sqlite
//	export DATABASE_DSN=/data/feedrank.db
//	export MODELS_PATH=/data/models
//	export EMBEDDING_URL=http://ollama:11434
//	./feedrank
package main
