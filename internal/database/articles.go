// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/feedrank/internal/database/query"
	"github.com/tomtom215/feedrank/internal/models"
)

// ErrArticleNotFound is returned when an article id is unknown.
var ErrArticleNotFound = errors.New("article not found")

// UpsertFeed inserts or replaces a feed.
func (db *DB) UpsertFeed(ctx context.Context, f *models.Feed) (err error) {
	defer observe("upsert", "feeds", &err)()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	q := db.conn.Rebind(`INSERT INTO feeds (id, name, favicon) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, favicon = EXCLUDED.favicon`)
	if _, err = db.conn.ExecContext(ctx, q, f.ID, f.Name, f.Favicon); err != nil {
		return fmt.Errorf("upsert feed id=%s: %w", f.ID, err)
	}
	return nil
}

// UpsertArticle inserts or replaces an article. A nil vector on an existing
// article keeps the stored vector, so a re-crawl does not undo a backfill.
func (db *DB) UpsertArticle(ctx context.Context, a *models.Article) (err error) {
	defer observe("upsert", "articles", &err)()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	set := `feed_id = EXCLUDED.feed_id, title = EXCLUDED.title, abstract = EXCLUDED.abstract,
		link = EXCLUDED.link, cover = EXCLUDED.cover, published_at = EXCLUDED.published_at`
	if a.Vector != nil {
		set += `, vector = EXCLUDED.vector`
	}

	q := db.conn.Rebind(`INSERT INTO articles (id, feed_id, title, abstract, link, cover, published_at, vector)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET ` + set)
	_, err = db.conn.ExecContext(ctx, q,
		a.ID, a.FeedID, a.Title, a.Abstract, a.Link, a.Cover, a.PublishedAt, nullString(a.Vector))
	if err != nil {
		return fmt.Errorf("upsert article id=%s: %w", a.ID, err)
	}
	return nil
}

// GetArticle returns one article.
func (db *DB) GetArticle(ctx context.Context, id string) (_ *models.Article, err error) {
	defer observe("select", "articles", &err)()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	var rows []models.Article
	q := db.conn.Rebind(`SELECT id, feed_id, title, abstract, link, cover, published_at, vector
		FROM articles WHERE id = ?`)
	if err = db.conn.SelectContext(ctx, &rows, q, id); err != nil {
		return nil, fmt.Errorf("select article id=%s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrArticleNotFound, id)
	}
	return &rows[0], nil
}

// SetArticleVector stores the comma-joined vector of an article.
func (db *DB) SetArticleVector(ctx context.Context, id, vector string) (err error) {
	defer observe("update", "articles", &err)()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, db.conn.Rebind(`UPDATE articles SET vector = ? WHERE id = ?`), vector, id)
	if err != nil {
		return fmt.Errorf("update vector of article id=%s: %w", id, err)
	}
	if n, rerr := res.RowsAffected(); rerr == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrArticleNotFound, id)
	}
	return nil
}

// ArticlesMissingVector returns up to limit articles stored without a vector,
// newest first.
func (db *DB) ArticlesMissingVector(ctx context.Context, limit int) (_ []models.Article, err error) {
	defer observe("select", "articles", &err)()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}
	rows := []models.Article{}
	q := db.conn.Rebind(`SELECT id, feed_id, title, abstract, link, cover, published_at, vector
		FROM articles
		WHERE vector IS NULL OR vector = ''
		ORDER BY published_at DESC, id ASC
		LIMIT ?`)
	if err = db.conn.SelectContext(ctx, &rows, q, limit); err != nil {
		return nil, fmt.Errorf("select articles missing vector: %w", err)
	}
	return rows, nil
}

// RecentArticles returns articles published at or after since (unix
// seconds) with their feed, newest first and id ascending on ties.
func (db *DB) RecentArticles(ctx context.Context, since int64) (_ []models.CandidateArticle, err error) {
	defer observe("select", "articles", &err)()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	where, args := query.NewWhereBuilder().AddClause("a.published_at >= ?", since).BuildWithPrefix()
	rows := []models.CandidateArticle{}
	q := db.conn.Rebind(`SELECT a.id, a.feed_id, a.title, a.abstract, a.link, a.cover, a.published_at, a.vector,
			COALESCE(f.name, '') AS feed_name, COALESCE(f.favicon, '') AS feed_favicon
		FROM articles a
		LEFT JOIN feeds f ON f.id = a.feed_id
		` + where + `
		ORDER BY a.published_at DESC, a.id ASC`)
	if err = db.conn.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("select recent articles: %w", err)
	}
	return rows, nil
}

func nullString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func nullFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
