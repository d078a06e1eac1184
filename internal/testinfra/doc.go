// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package testinfra provides container fixtures for integration tests.
//
// The embedded drivers (DuckDB, SQLite) and the in-process caches are
// covered by ordinary unit tests. The networked backends Feedrank supports,
// PostgreSQL for the store and Redis for the shared embedding cache, are
// exercised against real containers started with testcontainers-go:
//
//	pg := testinfra.StartPostgres(t)
//	db, err := database.New(ctx, &config.DatabaseConfig{
//	    Driver: config.DriverPostgres,
//	    DSN:    pg.SchemaDSN(t, "articles_test"),
//	})
//
// Everything except this file is behind the integration build tag:
//
//	go test -tags integration ./...
//
// Tests skip when Docker is not available.
package testinfra
