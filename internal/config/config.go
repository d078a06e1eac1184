// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package config

import (
	"time"

	"github.com/tomtom215/feedrank/internal/regression"
	"github.com/tomtom215/feedrank/internal/scoring"
)

// Config holds all application configuration.
type Config struct {
	Logging    LoggingConfig    `koanf:"logging"`
	Database   DatabaseConfig   `koanf:"database"`
	Models     ModelsConfig     `koanf:"models"`
	Embedding  EmbeddingConfig  `koanf:"embedding"`
	Backfill   BackfillConfig   `koanf:"backfill"`
	Scoring    scoring.Config   `koanf:"scoring"`
	Training   TrainingConfig   `koanf:"training"`
	Ranking    RankingConfig    `koanf:"ranking"`
	Scheduler  SchedulerConfig  `koanf:"scheduler"`
	Events     EventsConfig     `koanf:"events"`
	Server     ServerConfig     `koanf:"server"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// Supported database drivers.
const (
	DriverDuckDB   = "duckdb"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DatabaseConfig selects the SQL backend holding articles, interactions and
// training state.
type DatabaseConfig struct {
	// Driver is one of duckdb, sqlite or postgres.
	Driver string `koanf:"driver"`

	// DSN is the driver-specific data source: a file path for duckdb and
	// sqlite, a connection URL for postgres. Empty means in-memory for the
	// embedded drivers.
	DSN string `koanf:"dsn"`

	MaxOpenConns int           `koanf:"max_open_conns"`
	QueryTimeout time.Duration `koanf:"query_timeout"`
}

// Supported model store backends.
const (
	ModelBackendFile   = "file"
	ModelBackendBadger = "badger"
)

// ModelsConfig configures persistence of per-user ranking models.
type ModelsConfig struct {
	// Backend is file (one blob per user in Path) or badger (embedded KV at Path).
	Backend string `koanf:"backend"`
	Path    string `koanf:"path"`

	// RegistrySize bounds the number of models kept in memory for ranking.
	RegistrySize int `koanf:"registry_size"`

	// RegistryTTL is how long an idle model stays in memory. Zero keeps the default.
	RegistryTTL time.Duration `koanf:"registry_ttl"`
}

// EmbeddingConfig configures the text embedding provider.
//
// Environment Variables:
//   - EMBEDDING_ENABLED: Enable on-demand embedding (default: false)
//   - EMBEDDING_URL: Ollama base URL (default: http://127.0.0.1:11434)
//   - EMBEDDING_MODEL: Model name (default: embeddinggemma)
type EmbeddingConfig struct {
	Enabled bool   `koanf:"enabled"`
	URL     string `koanf:"url"`
	Model   string `koanf:"model"`

	// Normalize L2-normalizes returned vectors.
	Normalize bool `koanf:"normalize"`

	Timeout time.Duration `koanf:"timeout"`

	// RateLimit is the sustained request rate per second; Burst the bucket size.
	RateLimit float64 `koanf:"rate_limit"`
	Burst     int     `koanf:"burst"`

	Breaker BreakerConfig        `koanf:"breaker"`
	Cache   EmbeddingCacheConfig `koanf:"cache"`
}

// BreakerConfig configures the circuit breaker around the provider.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit.
	FailureThreshold uint32        `koanf:"failure_threshold"`
	Timeout          time.Duration `koanf:"timeout"`
	Interval         time.Duration `koanf:"interval"`
	MaxRequests      uint32        `koanf:"max_requests"`
}

// Supported embedding cache backends.
const (
	CacheBackendNone   = "none"
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// EmbeddingCacheConfig configures the content-hash embedding cache.
type EmbeddingCacheConfig struct {
	Backend string        `koanf:"backend"`
	Size    int           `koanf:"size"`
	TTL     time.Duration `koanf:"ttl"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	KeyPrefix     string `koanf:"key_prefix"`
}

// BackfillConfig configures the periodic embedding backfill for articles
// stored without a vector.
type BackfillConfig struct {
	Enabled   bool          `koanf:"enabled"`
	Interval  time.Duration `koanf:"interval"`
	BatchSize int           `koanf:"batch_size"`
}

// Supported regressors.
const (
	RegressorRidge = "ridge"
	RegressorMLP   = "mlp"
)

// TrainingConfig configures per-user model fitting.
type TrainingConfig struct {
	// Regressor is ridge (default) or mlp.
	Regressor string `koanf:"regressor"`

	// HoldoutFraction is the validation share of each user's training set.
	HoldoutFraction float64 `koanf:"holdout_fraction"`

	// Seed drives the train/validation shuffle and MLP initialization.
	Seed int64 `koanf:"seed"`

	// UserTimeout bounds a single user's build+fit+persist step. Zero disables it.
	UserTimeout time.Duration `koanf:"user_timeout"`

	Ridge regression.RidgeConfig `koanf:"ridge"`
	MLP   regression.MLPConfig   `koanf:"mlp"`
}

// Supported display calendars.
const (
	CalendarJalali    = "jalali"
	CalendarGregorian = "gregorian"
)

// RankingConfig configures the ranked feed.
type RankingConfig struct {
	// Window is how far back candidate articles are considered.
	Window time.Duration `koanf:"window"`

	PageSize int `koanf:"page_size"`

	// IntegerStars truncates predictions toward zero before sorting.
	IntegerStars bool `koanf:"integer_stars"`

	// AbstractLength is the number of runes kept before "..." is appended.
	AbstractLength int `koanf:"abstract_length"`

	Timezone      string `koanf:"timezone"`
	Calendar      string `koanf:"calendar"`
	PersianDigits bool   `koanf:"persian_digits"`
}

// SchedulerConfig configures the periodic training loop.
type SchedulerConfig struct {
	Enabled        bool          `koanf:"enabled"`
	Interval       time.Duration `koanf:"interval"`
	CycleTimeout   time.Duration `koanf:"cycle_timeout"`
	TrainOnStartup bool          `koanf:"train_on_startup"`
}

// Supported event transports.
const (
	TransportChannel = "gochannel"
	TransportNATS    = "nats"
)

// EventsConfig configures interaction event ingestion.
type EventsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Transport string `koanf:"transport"`
	Topic     string `koanf:"topic"`

	// Retry middleware settings for the consumer.
	MaxRetries      int           `koanf:"max_retries"`
	InitialInterval time.Duration `koanf:"initial_interval"`
	MaxInterval     time.Duration `koanf:"max_interval"`
	CloseTimeout    time.Duration `koanf:"close_timeout"`

	NATS NATSConfig `koanf:"nats"`
}

// NATSConfig holds NATS JetStream settings. Only used by builds with the nats tag.
type NATSConfig struct {
	URL string `koanf:"url"`

	// EmbeddedServer runs an in-process NATS server instead of dialing URL.
	EmbeddedServer bool   `koanf:"embedded_server"`
	Host           string `koanf:"host"`
	Port           int    `koanf:"port"`
	StoreDir       string `koanf:"store_dir"`

	MaxReconnects    int           `koanf:"max_reconnects"`
	ReconnectWait    time.Duration `koanf:"reconnect_wait"`
	QueueGroup       string        `koanf:"queue_group"`
	DurableName      string        `koanf:"durable_name"`
	SubscribersCount int           `koanf:"subscribers_count"`
	AckWaitTimeout   time.Duration `koanf:"ack_wait_timeout"`
}

// ServerConfig configures the operational HTTP server.
type ServerConfig struct {
	Enabled bool          `koanf:"enabled"`
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// RateLimitRequests per RateLimitWindow per client IP.
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// SupervisorConfig mirrors suture's failure handling knobs.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}
