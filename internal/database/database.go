// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package database stores articles, the interaction log and per-user training
// state behind sqlx. DuckDB is the default embedded engine; SQLite (pure Go)
// and PostgreSQL are supported through the same queries, written with ?
// placeholders and rebound per driver.
package database

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/tomtom215/feedrank/internal/config"
	"github.com/tomtom215/feedrank/internal/metrics"
)

//nolint:gochecknoinits // sqlx has no built-in bind type for these driver names
func init() {
	sqlx.BindDriver("duckdb", sqlx.QUESTION)
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// defaultQueryTimeout applies when the configuration leaves QueryTimeout unset.
const defaultQueryTimeout = 30 * time.Second

// DB wraps the sqlx connection pool.
type DB struct {
	conn    *sqlx.DB
	driver  string
	timeout time.Duration
}

// New opens the configured database and creates the schema.
func New(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	dsn := cfg.DSN
	switch cfg.Driver {
	case config.DriverDuckDB, config.DriverSQLite:
		if dsn != "" && dsn != ":memory:" {
			// Use 0750 permissions (owner: rwx, group: rx, other: none) per gosec G301
			if dir := filepath.Dir(dsn); dir != "" && dir != "." {
				if err := os.MkdirAll(dir, 0o750); err != nil {
					return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
				}
			}
		}
		if cfg.Driver == config.DriverSQLite && dsn == "" {
			dsn = ":memory:"
		}
		if cfg.Driver == config.DriverDuckDB && dsn == ":memory:" {
			dsn = ""
		}
	case config.DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("postgres driver requires a DSN")
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	conn, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	switch {
	case cfg.Driver == config.DriverSQLite:
		// SQLite allows one writer, and an in-memory database lives in a
		// single connection.
		conn.SetMaxOpenConns(1)
	case cfg.MaxOpenConns > 0:
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}

	db := &DB{conn: conn, driver: cfg.Driver, timeout: timeout}

	if err := db.Ping(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Driver, err)
	}
	if err := db.InitSchema(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}

// Driver returns the driver name the store was opened with.
func (db *DB) Driver() string {
	return db.driver
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// Close closes the connection pool.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// queryContext bounds a single statement by the configured query timeout.
func (db *DB) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, db.timeout)
}

// observe starts timing a query; the returned func records it with the
// final value of *errp.
//
//	defer observe("select", "articles", &err)()
func observe(operation, table string, errp *error) func() {
	start := time.Now()
	return func() {
		metrics.RecordDBQuery(operation, table, time.Since(start), *errp)
	}
}

func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close() // Explicitly ignore error - cleanup is best-effort
	}
}
