// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package config

import (
	"fmt"
	"net/url"
	"time"
	_ "time/tzdata" // display timezones must resolve on minimal images
)

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateLogging,
		c.validateDatabase,
		c.validateModels,
		c.validateEmbedding,
		c.validateBackfill,
		c.Scoring.Validate,
		c.validateTraining,
		c.validateRanking,
		c.validateScheduler,
		c.validateEvents,
		c.validateServer,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case DriverDuckDB, DriverSQLite:
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("DATABASE_DSN is required when DATABASE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("DATABASE_DRIVER must be one of: duckdb, sqlite, postgres (got %q)", c.Database.Driver)
	}
	if c.Database.MaxOpenConns < 0 {
		return fmt.Errorf("DATABASE_MAX_OPEN_CONNS must be non-negative")
	}
	return nil
}

func (c *Config) validateModels() error {
	switch c.Models.Backend {
	case ModelBackendFile, ModelBackendBadger:
	default:
		return fmt.Errorf("MODELS_BACKEND must be one of: file, badger (got %q)", c.Models.Backend)
	}
	if c.Models.Path == "" {
		return fmt.Errorf("MODELS_PATH is required")
	}
	if c.Models.RegistrySize < 1 {
		return fmt.Errorf("MODELS_REGISTRY_SIZE must be at least 1")
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	if !c.Embedding.Enabled {
		return nil
	}
	if err := validateHTTPURL(c.Embedding.URL); err != nil {
		return fmt.Errorf("EMBEDDING_URL is invalid: %w", err)
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("EMBEDDING_MODEL is required when EMBEDDING_ENABLED=true")
	}
	if c.Embedding.RateLimit <= 0 || c.Embedding.Burst < 1 {
		return fmt.Errorf("EMBEDDING_RATE_LIMIT must be positive and EMBEDDING_BURST at least 1")
	}
	if c.Embedding.Breaker.FailureThreshold < 1 {
		return fmt.Errorf("EMBEDDING_BREAKER_FAILURE_THRESHOLD must be at least 1")
	}

	switch c.Embedding.Cache.Backend {
	case CacheBackendNone, CacheBackendMemory:
	case CacheBackendRedis:
		if c.Embedding.Cache.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when EMBEDDING_CACHE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("EMBEDDING_CACHE_BACKEND must be one of: none, memory, redis (got %q)", c.Embedding.Cache.Backend)
	}
	return nil
}

func (c *Config) validateBackfill() error {
	if !c.Backfill.Enabled {
		return nil
	}
	if !c.Embedding.Enabled {
		return fmt.Errorf("BACKFILL_ENABLED=true requires EMBEDDING_ENABLED=true")
	}
	if c.Backfill.Interval < time.Second {
		return fmt.Errorf("BACKFILL_INTERVAL must be at least 1s")
	}
	if c.Backfill.BatchSize < 1 {
		return fmt.Errorf("BACKFILL_BATCH_SIZE must be at least 1")
	}
	return nil
}

func (c *Config) validateTraining() error {
	switch c.Training.Regressor {
	case RegressorRidge:
		if err := c.Training.Ridge.Validate(); err != nil {
			return err
		}
	case RegressorMLP:
		if err := c.Training.MLP.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("TRAINING_REGRESSOR must be one of: ridge, mlp (got %q)", c.Training.Regressor)
	}
	if c.Training.HoldoutFraction < 0 || c.Training.HoldoutFraction >= 1 {
		return fmt.Errorf("TRAINING_HOLDOUT_FRACTION must be in [0,1)")
	}
	if c.Training.UserTimeout < 0 {
		return fmt.Errorf("TRAINING_USER_TIMEOUT must be non-negative")
	}
	return nil
}

func (c *Config) validateRanking() error {
	if c.Ranking.Window <= 0 {
		return fmt.Errorf("RANKING_WINDOW must be positive")
	}
	if c.Ranking.PageSize < 1 {
		return fmt.Errorf("RANKING_PAGE_SIZE must be at least 1")
	}
	if c.Ranking.AbstractLength < 0 {
		return fmt.Errorf("RANKING_ABSTRACT_LENGTH must be non-negative")
	}
	switch c.Ranking.Calendar {
	case CalendarJalali, CalendarGregorian:
	default:
		return fmt.Errorf("RANKING_CALENDAR must be one of: jalali, gregorian (got %q)", c.Ranking.Calendar)
	}
	if _, err := time.LoadLocation(c.Ranking.Timezone); err != nil {
		return fmt.Errorf("RANKING_TIMEZONE is invalid: %w", err)
	}
	return nil
}

func (c *Config) validateScheduler() error {
	if !c.Scheduler.Enabled {
		return nil
	}
	if c.Scheduler.Interval < time.Second {
		return fmt.Errorf("SCHEDULER_INTERVAL must be at least 1s")
	}
	if c.Scheduler.CycleTimeout <= 0 {
		return fmt.Errorf("SCHEDULER_CYCLE_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	if c.Events.Topic == "" {
		return fmt.Errorf("EVENTS_TOPIC is required when EVENTS_ENABLED=true")
	}
	if c.Events.MaxRetries < 0 {
		return fmt.Errorf("EVENTS_MAX_RETRIES must be non-negative")
	}
	switch c.Events.Transport {
	case TransportChannel:
		return nil
	case TransportNATS:
		return c.validateNATS()
	default:
		return fmt.Errorf("EVENTS_TRANSPORT must be one of: gochannel, nats (got %q)", c.Events.Transport)
	}
}

func (c *Config) validateNATS() error {
	n := c.Events.NATS
	if n.SubscribersCount < 1 {
		return fmt.Errorf("NATS_SUBSCRIBERS must be at least 1")
	}
	if n.EmbeddedServer {
		if n.Port < 1 || n.Port > 65535 {
			return fmt.Errorf("NATS_PORT must be between 1 and 65535")
		}
		if n.StoreDir == "" {
			return fmt.Errorf("NATS_STORE_DIR is required for the embedded server")
		}
		return nil
	}
	u, err := url.Parse(n.URL)
	if err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}
	if u.Scheme != "nats" && u.Scheme != "tls" {
		return fmt.Errorf("NATS_URL must use nats:// or tls:// scheme (got %q)", u.Scheme)
	}
	return nil
}

func (c *Config) validateServer() error {
	if !c.Server.Enabled {
		return nil
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.RateLimitRequests < 1 || c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("HTTP_RATE_LIMIT and HTTP_RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https (got %q)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}
