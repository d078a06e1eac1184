// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

/*
Package config provides centralized configuration management for Feedrank.

Configuration is loaded in three layers, each overriding the previous one:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file (CONFIG_PATH, or config.yaml / /etc/feedrank/config.yaml)
 3. Environment variables, mapped through an explicit table (envTransformFunc)

Unmapped environment variables are ignored so that unrelated process
environment never leaks into the configuration.

# Configuration Structure

  - LoggingConfig: zerolog level, format and caller info
  - DatabaseConfig: driver (duckdb, sqlite, postgres) and DSN
  - ModelsConfig: model store backend (file, badger) and registry sizing
  - EmbeddingConfig: Ollama provider, rate limit, circuit breaker, cache
  - BackfillConfig: periodic vector backfill for articles without embeddings
  - scoring.Config: interest score weights and thresholds
  - TrainingConfig: regressor selection, holdout and seed
  - RankingConfig: candidate window, page size, display calendar
  - SchedulerConfig: training cycle interval and timeout
  - EventsConfig: interaction event bus (gochannel or NATS JetStream)
  - ServerConfig: operational HTTP endpoints (/healthz, /readyz, /metrics)
  - SupervisorConfig: suture failure handling

# Example

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Println(cfg.Training.Regressor)
*/
package config
