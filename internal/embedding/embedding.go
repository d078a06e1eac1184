// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package embedding turns article text into feature vectors.
//
// The crawler normally stores vectors with each article. This package covers
// the rest: the persisted text codec (ParseVector, FormatVector), an Ollama
// client for articles stored without a vector, and the wrappers that make the
// provider safe to call from training and backfill (rate limit, circuit
// breaker, content-hash cache).
//
// Callers depend on the Embedder interface and receive it by injection:
//
//	emb, closer, err := embedding.New(&cfg.Embedding, logger)
//	builder := training.NewBuilder(store, cfg.Scoring, emb, logger)
package embedding

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrEmbeddingUnavailable is returned when the provider cannot serve a
	// request: the circuit is open, the rate limiter gave up, or the call failed.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrEmptyText is returned for blank input; no provider call is made.
	ErrEmptyText = errors.New("embedding: empty text")
)

// Embedder produces a vector for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)

	// Model names the embedding model; it is part of every cache key.
	Model() string
}

// ArticleText is the text embedded for an article: title and abstract joined
// by a single space.
func ArticleText(title, abstract string) string {
	return strings.TrimSpace(strings.TrimSpace(title) + " " + strings.TrimSpace(abstract))
}
