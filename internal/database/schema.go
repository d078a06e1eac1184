// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/feedrank/internal/config"
)

// dialect holds the column definitions that differ between engines.
type dialect struct {
	double string

	// seqColumn defines the auto-incrementing log position of interactions.
	seqColumn string

	// preamble runs before the tables are created.
	preamble []string

	// indexUpserted reports whether columns rewritten by upserts may be
	// indexed. DuckDB refuses ON CONFLICT updates of indexed columns.
	indexUpserted bool
}

func dialectFor(driver string) dialect {
	switch driver {
	case config.DriverPostgres:
		return dialect{
			double:        "DOUBLE PRECISION",
			seqColumn:     "seq BIGSERIAL PRIMARY KEY",
			indexUpserted: true,
		}
	case config.DriverSQLite:
		return dialect{
			double:        "REAL",
			seqColumn:     "seq INTEGER PRIMARY KEY AUTOINCREMENT",
			indexUpserted: true,
		}
	default:
		return dialect{
			double:    "DOUBLE",
			seqColumn: "seq BIGINT PRIMARY KEY DEFAULT nextval('interactions_seq')",
			preamble:  []string{"CREATE SEQUENCE IF NOT EXISTS interactions_seq START 1"},
		}
	}
}

// InitSchema creates the tables and indexes if they do not exist. Existing
// tables are left untouched; there are no migrations.
func (db *DB) InitSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	d := dialectFor(db.driver)
	tables := []struct {
		name  string
		query string
	}{
		{"feeds", `CREATE TABLE IF NOT EXISTS feeds (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			favicon TEXT NOT NULL DEFAULT ''
		)`},
		{"articles", `CREATE TABLE IF NOT EXISTS articles (
			id TEXT PRIMARY KEY,
			feed_id TEXT NOT NULL,
			title TEXT NOT NULL,
			abstract TEXT NOT NULL DEFAULT '',
			link TEXT NOT NULL DEFAULT '',
			cover TEXT NOT NULL DEFAULT '',
			published_at BIGINT NOT NULL,
			vector TEXT
		)`},
		{"interactions", fmt.Sprintf(`CREATE TABLE IF NOT EXISTS interactions (
			%s,
			id TEXT NOT NULL UNIQUE,
			user_id TEXT,
			article_id TEXT NOT NULL,
			type TEXT NOT NULL,
			value %s,
			created_at BIGINT NOT NULL
		)`, d.seqColumn, d.double)},
		{"training_state", `CREATE TABLE IF NOT EXISTS training_state (
			user_id TEXT PRIMARY KEY,
			trained_through BIGINT NOT NULL,
			last_trained_at BIGINT NOT NULL
		)`},
	}

	for _, q := range d.preamble {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to prepare schema: %w", err)
		}
	}
	for _, t := range tables {
		if _, err := db.conn.ExecContext(ctx, t.query); err != nil {
			return fmt.Errorf("failed to create %s table: %w", t.name, err)
		}
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_interactions_user_created ON interactions(user_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_article ON interactions(article_id)`,
	}
	if d.indexUpserted {
		indexes = append(indexes, `CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(published_at)`)
	}
	for _, q := range indexes {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
