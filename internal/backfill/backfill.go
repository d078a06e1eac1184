// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package backfill embeds stored articles that arrived without a vector.
//
// Each run reads a batch of vectorless articles, embeds "title abstract"
// and stores the comma-joined vector. Per-article failures are counted and
// the article is retried on a later run. When the provider reports
// embedding.ErrEmbeddingUnavailable (circuit open) the rest of the batch is
// skipped.
package backfill

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/feedrank/internal/config"
	"github.com/tomtom215/feedrank/internal/embedding"
	"github.com/tomtom215/feedrank/internal/metrics"
	"github.com/tomtom215/feedrank/internal/models"
)

const defaultBatchSize = 100

// Store is the article side of the database.
type Store interface {
	ArticlesMissingVector(ctx context.Context, limit int) ([]models.Article, error)
	SetArticleVector(ctx context.Context, id, vector string) error
}

// Result summarizes one run.
type Result struct {
	Candidates int
	Embedded   int
	Failed     int

	// Skipped counts articles left untouched after the provider became unavailable.
	Skipped  int
	Duration time.Duration
}

// Backfiller fills missing article vectors.
type Backfiller struct {
	store     Store
	embedder  embedding.Embedder
	batchSize int
	logger    zerolog.Logger
}

// New returns a backfiller. A nil embedder is an error: with embedding
// disabled there is nothing to backfill with.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(store Store, embedder embedding.Embedder, cfg *config.BackfillConfig, logger zerolog.Logger) (*Backfiller, error) {
	if store == nil {
		return nil, fmt.Errorf("backfill: store required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("backfill: embedder required (enable embedding)")
	}
	size := cfg.BatchSize
	if size <= 0 {
		size = defaultBatchSize
	}
	return &Backfiller{
		store:     store,
		embedder:  embedder,
		batchSize: size,
		logger:    logger.With().Str("component", "backfill").Logger(),
	}, nil
}

// RunOnce processes one batch. Only a failure to read the batch or a
// canceled context is returned as an error.
func (b *Backfiller) RunOnce(ctx context.Context) (Result, error) {
	start := time.Now()
	var res Result

	articles, err := b.store.ArticlesMissingVector(ctx, b.batchSize)
	if err != nil {
		return res, fmt.Errorf("list articles missing vector: %w", err)
	}
	res.Candidates = len(articles)

	for i := range articles {
		if err := ctx.Err(); err != nil {
			res.Skipped = len(articles) - i
			b.finish(&res, start)
			return res, err
		}

		a := &articles[i]
		err := b.embedArticle(ctx, a)
		switch {
		case err == nil:
			res.Embedded++
		case errors.Is(err, embedding.ErrEmbeddingUnavailable):
			res.Failed++
			res.Skipped = len(articles) - i - 1
			b.logger.Warn().Err(err).Int("skipped", res.Skipped).Msg("embedding provider unavailable, ending batch early")
			b.finish(&res, start)
			return res, nil
		default:
			res.Failed++
			b.logger.Debug().Err(err).Str("article_id", a.ID).Msg("article not embedded")
		}
	}

	b.finish(&res, start)
	return res, nil
}

func (b *Backfiller) embedArticle(ctx context.Context, a *models.Article) error {
	vec, err := b.embedder.Embed(ctx, embedding.ArticleText(a.Title, a.Abstract))
	if err != nil {
		return err
	}
	if err := b.store.SetArticleVector(ctx, a.ID, embedding.FormatVector(vec)); err != nil {
		return fmt.Errorf("store vector of article %s: %w", a.ID, err)
	}
	return nil
}

func (b *Backfiller) finish(res *Result, start time.Time) {
	res.Duration = time.Since(start)
	metrics.RecordBackfill(res.Embedded, res.Failed)
	if res.Candidates == 0 {
		return
	}
	b.logger.Info().
		Int("candidates", res.Candidates).
		Int("embedded", res.Embedded).
		Int("failed", res.Failed).
		Int("skipped", res.Skipped).
		Dur("duration", res.Duration).
		Msg("backfill batch finished")
}
