// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package models

// Feed is a news source.
type Feed struct {
	ID      string `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Favicon string `db:"favicon" json:"favicon"`
}

// Article is a crawled news item.
type Article struct {
	ID       string `db:"id" json:"id"`
	FeedID   string `db:"feed_id" json:"feed_id"`
	Title    string `db:"title" json:"title"`
	Abstract string `db:"abstract" json:"abstract"`
	Link     string `db:"link" json:"link"`
	Cover    string `db:"cover" json:"cover"`

	// PublishedAt is the publication time in unix seconds.
	PublishedAt int64 `db:"published_at" json:"published_at"`

	// Vector is the comma-joined embedding, nil when not yet embedded.
	Vector *string `db:"vector" json:"vector,omitempty"`
}

// HasVector reports whether the article carries a non-empty stored vector.
func (a *Article) HasVector() bool {
	return a.Vector != nil && *a.Vector != ""
}

// CandidateArticle is an article joined with its feed, as read by the ranker.
type CandidateArticle struct {
	Article
	FeedName    string `db:"feed_name" json:"feed_name"`
	FeedFavicon string `db:"feed_favicon" json:"feed_favicon"`
}
