// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/feedrank/internal/regression"
	"github.com/tomtom215/feedrank/internal/scoring"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/feedrank/config.yaml",
	"/etc/feedrank/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Database: DatabaseConfig{
			Driver:       DriverDuckDB,
			DSN:          "/data/feedrank.duckdb",
			MaxOpenConns: 4,
			QueryTimeout: 10 * time.Second,
		},
		Models: ModelsConfig{
			Backend:      ModelBackendFile,
			Path:         "/data/models",
			RegistrySize: 1000,
			RegistryTTL:  30 * time.Minute,
		},
		Embedding: EmbeddingConfig{
			Enabled:   false,
			URL:       "http://127.0.0.1:11434",
			Model:     "embeddinggemma",
			Normalize: true,
			Timeout:   30 * time.Second,
			RateLimit: 5,
			Burst:     5,
			Breaker: BreakerConfig{
				FailureThreshold: 5,
				Timeout:          30 * time.Second,
				Interval:         time.Minute,
				MaxRequests:      1,
			},
			Cache: EmbeddingCacheConfig{
				Backend:   CacheBackendMemory,
				Size:      10000,
				TTL:       24 * time.Hour,
				RedisAddr: "127.0.0.1:6379",
				KeyPrefix: "feedrank:embed:",
			},
		},
		Backfill: BackfillConfig{
			Enabled:   false,
			Interval:  5 * time.Minute,
			BatchSize: 100,
		},
		Scoring: scoring.DefaultConfig(),
		Training: TrainingConfig{
			Regressor:       RegressorRidge,
			HoldoutFraction: 0.1,
			Seed:            42,
			UserTimeout:     0,
			Ridge:           regression.DefaultRidgeConfig(),
			MLP:             regression.DefaultMLPConfig(),
		},
		Ranking: RankingConfig{
			Window:         24 * time.Hour,
			PageSize:       12,
			IntegerStars:   true,
			AbstractLength: 150,
			Timezone:       "Asia/Tehran",
			Calendar:       CalendarJalali,
			PersianDigits:  true,
		},
		Scheduler: SchedulerConfig{
			Enabled:        true,
			Interval:       60 * time.Second,
			CycleTimeout:   60 * time.Second,
			TrainOnStartup: true,
		},
		Events: EventsConfig{
			Enabled:         true,
			Transport:       TransportChannel,
			Topic:           "feedrank.interactions",
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			CloseTimeout:    30 * time.Second,
			NATS: NATSConfig{
				URL:              "nats://127.0.0.1:4222",
				EmbeddedServer:   true,
				Host:             "127.0.0.1",
				Port:             4222,
				StoreDir:         "/data/nats/jetstream",
				MaxReconnects:    -1,
				ReconnectWait:    2 * time.Second,
				QueueGroup:       "feedrank-ingest",
				DurableName:      "feedrank-ingest",
				SubscribersCount: 1,
				AckWaitTimeout:   30 * time.Second,
			},
		},
		Server: ServerConfig{
			Enabled:           true,
			Host:              "0.0.0.0",
			Port:              9090,
			Timeout:           30 * time.Second,
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf with layered sources:
//  1. Defaults from struct
//  2. Config file (optional)
//  3. Environment variables (highest priority)
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// DATABASE_DRIVER -> database.driver
	// SCHEDULER_INTERVAL -> scheduler.interval
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Database
	"database_driver":         "database.driver",
	"database_dsn":            "database.dsn",
	"database_url":            "database.dsn",
	"duckdb_path":             "database.dsn",
	"database_max_open_conns": "database.max_open_conns",
	"database_query_timeout":  "database.query_timeout",

	// Model store
	"models_backend":       "models.backend",
	"models_path":          "models.path",
	"models_registry_size": "models.registry_size",
	"models_registry_ttl":  "models.registry_ttl",

	// Embedding provider
	"embedding_enabled":                   "embedding.enabled",
	"embedding_url":                       "embedding.url",
	"ollama_host":                         "embedding.url",
	"embedding_model":                     "embedding.model",
	"embedding_normalize":                 "embedding.normalize",
	"embedding_timeout":                   "embedding.timeout",
	"embedding_rate_limit":                "embedding.rate_limit",
	"embedding_burst":                     "embedding.burst",
	"embedding_breaker_failure_threshold": "embedding.breaker.failure_threshold",
	"embedding_breaker_timeout":           "embedding.breaker.timeout",
	"embedding_cache_backend":             "embedding.cache.backend",
	"embedding_cache_size":                "embedding.cache.size",
	"embedding_cache_ttl":                 "embedding.cache.ttl",
	"redis_addr":                          "embedding.cache.redis_addr",
	"redis_password":                      "embedding.cache.redis_password",
	"redis_db":                            "embedding.cache.redis_db",

	// Backfill
	"backfill_enabled":    "backfill.enabled",
	"backfill_interval":   "backfill.interval",
	"backfill_batch_size": "backfill.batch_size",

	// Interest scoring
	"scoring_r_bounce":                         "scoring.r_bounce",
	"scoring_r_cap":                            "scoring.r_cap",
	"scoring_f_min":                            "scoring.f_min",
	"scoring_f_cap":                            "scoring.f_cap",
	"scoring_w_like":                           "scoring.w_like",
	"scoring_w_read":                           "scoring.w_read",
	"scoring_w_feed":                           "scoring.w_feed",
	"scoring_global_like_rate":                 "scoring.global_like_rate",
	"scoring_like_weight_sensitivity":          "scoring.like_weight_sensitivity",
	"scoring_shallow_like_penalty":             "scoring.shallow_like_penalty",
	"scoring_no_like_high_engagement_discount": "scoring.no_like_high_engagement_discount",

	// Training
	"training_regressor":        "training.regressor",
	"training_holdout_fraction": "training.holdout_fraction",
	"training_seed":             "training.seed",
	"training_user_timeout":     "training.user_timeout",
	"ridge_lambda":              "training.ridge.lambda",
	"mlp_hidden_units":          "training.mlp.hidden_units",
	"mlp_max_iter":              "training.mlp.max_iter",
	"mlp_learning_rate":         "training.mlp.learning_rate",

	// Ranking
	"ranking_window":          "ranking.window",
	"ranking_page_size":       "ranking.page_size",
	"ranking_integer_stars":   "ranking.integer_stars",
	"ranking_abstract_length": "ranking.abstract_length",
	"ranking_timezone":        "ranking.timezone",
	"ranking_calendar":        "ranking.calendar",
	"ranking_persian_digits":  "ranking.persian_digits",

	// Scheduler
	"scheduler_enabled":          "scheduler.enabled",
	"scheduler_interval":         "scheduler.interval",
	"scheduler_cycle_timeout":    "scheduler.cycle_timeout",
	"scheduler_train_on_startup": "scheduler.train_on_startup",

	// Events
	"events_enabled":     "events.enabled",
	"events_transport":   "events.transport",
	"events_topic":       "events.topic",
	"events_max_retries": "events.max_retries",
	"nats_url":           "events.nats.url",
	"nats_embedded":      "events.nats.embedded_server",
	"nats_host":          "events.nats.host",
	"nats_port":          "events.nats.port",
	"nats_store_dir":     "events.nats.store_dir",
	"nats_queue_group":   "events.nats.queue_group",
	"nats_durable_name":  "events.nats.durable_name",
	"nats_subscribers":   "events.nats.subscribers_count",

	// Ops HTTP server
	"http_enabled":           "server.enabled",
	"http_host":              "server.host",
	"http_port":              "server.port",
	"http_timeout":           "server.timeout",
	"http_rate_limit":        "server.rate_limit_requests",
	"http_rate_limit_window": "server.rate_limit_window",

	// Supervisor
	"supervisor_shutdown_timeout": "supervisor.shutdown_timeout",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - DATABASE_DRIVER -> database.driver
//   - DUCKDB_PATH -> database.dsn
//   - OLLAMA_HOST -> embedding.url
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}
