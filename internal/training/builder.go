// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package training

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/feedrank/internal/embedding"
	"github.com/tomtom215/feedrank/internal/models"
	"github.com/tomtom215/feedrank/internal/scoring"
)

// MinArticles is the smallest number of labeled articles a model is fitted on.
const MinArticles = 2

var (
	// ErrInsufficientData means fewer than MinArticles usable labeled articles.
	ErrInsufficientData = errors.New("insufficient training data")

	// ErrDimensionMismatch means the article vectors differ in length.
	// It matches ErrInsufficientData.
	ErrDimensionMismatch = fmt.Errorf("%w: embedding dimensions differ", ErrInsufficientData)
)

// InteractionSource reads the interaction log.
type InteractionSource interface {
	LatestTrainableInteraction(ctx context.Context, userID string) (int64, error)
	TrainableInteractions(ctx context.Context, userID string, through int64) ([]models.TrainableInteraction, error)
}

// Drops counts articles excluded from a training set.
type Drops struct {
	// MissingVector counts articles with no stored vector and no embedder.
	MissingVector int `json:"missing_vector"`

	// ParseError counts articles whose stored vector is malformed.
	ParseError int `json:"parse_error"`

	// EmbedFailed counts articles the embedder could not vectorize.
	EmbedFailed int `json:"embed_failed"`
}

// Total returns the number of dropped articles.
func (d Drops) Total() int {
	return d.MissingVector + d.ParseError + d.EmbedFailed
}

// TrainingSet is a user's labeled feature matrix.
type TrainingSet struct {
	UserID string

	// ArticleIDs[i] is the article behind X[i] and Y[i].
	ArticleIDs []string
	X          [][]float64
	Y          []float64

	// Watermark is the highest interaction log position read.
	Watermark int64

	// Rows is the number of interaction rows read before deduplication.
	Rows int

	Dropped Drops
}

// Dim returns the feature dimensionality.
func (s *TrainingSet) Dim() int {
	if len(s.X) == 0 {
		return 0
	}
	return len(s.X[0])
}

// Builder assembles training sets.
type Builder struct {
	source   InteractionSource
	scoring  scoring.Config
	embedder embedding.Embedder
	logger   zerolog.Logger
}

// NewBuilder creates a Builder. embedder may be nil, in which case articles
// without a stored vector are dropped.
//
//nolint:gocritic // scoring.Config and zerolog.Logger are passed by value
func NewBuilder(source InteractionSource, cfg scoring.Config, embedder embedding.Embedder, logger zerolog.Logger) *Builder {
	return &Builder{
		source:   source,
		scoring:  cfg,
		embedder: embedder,
		logger:   logger.With().Str("component", "training_builder").Logger(),
	}
}

// articleSignals collects the deduplicated rows of one article.
type articleSignals struct {
	id       string
	like     bool
	read     float64
	view     float64
	title    string
	abstract string
	vector   *string
}

// Build assembles the training set of userID.
func (b *Builder) Build(ctx context.Context, userID string) (*TrainingSet, error) {
	watermark, err := b.source.LatestTrainableInteraction(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("read watermark: %w", err)
	}
	if watermark == 0 {
		return nil, fmt.Errorf("%w: user %s has no trainable interactions", ErrInsufficientData, userID)
	}

	rows, err := b.source.TrainableInteractions(ctx, userID, watermark)
	if err != nil {
		return nil, fmt.Errorf("read interactions: %w", err)
	}

	set := &TrainingSet{UserID: userID, Watermark: watermark, Rows: len(rows)}
	articles := group(dedupe(rows))

	dim := 0
	for _, a := range articles {
		vec, err := b.resolveVector(ctx, a, &set.Dropped)
		if err != nil {
			return nil, err
		}
		if vec == nil {
			continue
		}
		if dim == 0 {
			dim = len(vec)
		} else if len(vec) != dim {
			return nil, fmt.Errorf("%w: article %s has %d values, want %d", ErrDimensionMismatch, a.id, len(vec), dim)
		}

		set.ArticleIDs = append(set.ArticleIDs, a.id)
		set.X = append(set.X, vec)
		set.Y = append(set.Y, scoring.Score(a.like, a.read, a.view, b.scoring))
	}

	if n := len(set.X); n < MinArticles {
		return nil, fmt.Errorf("%w: user %s has %d usable articles, need %d", ErrInsufficientData, userID, n, MinArticles)
	}
	return set, nil
}

// dedupe keeps the last row per (article, type). Rows arrive ordered by
// creation time then log position, so the last one seen is the newest.
func dedupe(rows []models.TrainableInteraction) []models.TrainableInteraction {
	type key struct {
		article string
		typ     models.InteractionType
	}
	latest := make(map[key]int, len(rows))
	for i := range rows {
		latest[key{rows[i].ArticleID, rows[i].Type}] = i
	}

	out := make([]models.TrainableInteraction, 0, len(latest))
	for i := range rows {
		if latest[key{rows[i].ArticleID, rows[i].Type}] == i {
			out = append(out, rows[i])
		}
	}
	return out
}

// group folds deduplicated rows into per-article signals, in order of each
// article's first surviving row.
func group(rows []models.TrainableInteraction) []*articleSignals {
	byID := make(map[string]*articleSignals)
	var ordered []*articleSignals

	for i := range rows {
		r := &rows[i]
		a, ok := byID[r.ArticleID]
		if !ok {
			a = &articleSignals{id: r.ArticleID, title: r.Title, abstract: r.Abstract, vector: r.Vector}
			byID[r.ArticleID] = a
			ordered = append(ordered, a)
		}

		var value float64
		if r.Value != nil {
			value = *r.Value
		}
		switch r.Type {
		case models.InteractionLike:
			a.like = true
		case models.InteractionRead:
			a.read = value
		case models.InteractionView:
			a.view = value
		}
	}
	return ordered
}

// resolveVector returns the article's feature vector, or nil when the
// article has to be dropped. Only context cancellation is returned as an
// error.
func (b *Builder) resolveVector(ctx context.Context, a *articleSignals, drops *Drops) ([]float64, error) {
	if a.vector != nil {
		vec, err := embedding.ParseVector(*a.vector)
		if err != nil {
			drops.ParseError++
			b.logger.Debug().Str("article_id", a.id).Err(err).Msg("dropping article with malformed vector")
			return nil, nil
		}
		return vec, nil
	}

	if b.embedder == nil {
		drops.MissingVector++
		return nil, nil
	}

	vec, err := b.embedder.Embed(ctx, embedding.ArticleText(a.title, a.abstract))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		drops.EmbedFailed++
		b.logger.Debug().Str("article_id", a.id).Err(err).Msg("dropping article that could not be embedded")
		return nil, nil
	}
	return vec, nil
}
