// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package recommend

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/feedrank/internal/config"
	"github.com/tomtom215/feedrank/internal/database"
	"github.com/tomtom215/feedrank/internal/embedding"
	"github.com/tomtom215/feedrank/internal/events"
	"github.com/tomtom215/feedrank/internal/models"
	"github.com/tomtom215/feedrank/internal/modelstore"
	"github.com/tomtom215/feedrank/internal/ranking"
	"github.com/tomtom215/feedrank/internal/training"
)

// ErrUserRequired is returned by per-user operations called without a user.
var ErrUserRequired = errors.New("user id is required")

// Options carries the optional collaborators of an Engine.
type Options struct {
	// Embedder embeds articles that have no stored vector. Nil disables
	// on-demand embedding.
	Embedder embedding.Embedder

	// Sink, when set, makes RecordInteraction publish to the event bus
	// instead of inserting directly.
	Sink *events.Sink
}

// Engine coordinates training and ranking for the web layer.
type Engine struct {
	db      *database.DB
	models  *modelstore.Registry
	trainer *training.Trainer
	ranker  *ranking.Ranker
	sink    *events.Sink
	logger  zerolog.Logger
}

// HistoryEntry is one logged interaction with its training status.
type HistoryEntry struct {
	models.Interaction

	// Trained reports whether the row is folded into the user's current model.
	Trained bool `json:"trained"`
}

// NewEngine builds an engine over db and registry.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *config.Config, db *database.DB, registry *modelstore.Registry, opts Options, logger zerolog.Logger) (*Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("recommend: database required")
	}
	if registry == nil {
		return nil, fmt.Errorf("recommend: model registry required")
	}
	if err := cfg.Scoring.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring config: %w", err)
	}

	logger = logger.With().Str("component", "recommend").Logger()

	builder := training.NewBuilder(db, cfg.Scoring, opts.Embedder, logger)
	trainer := training.NewTrainer(db, builder, registry, &cfg.Training, logger)

	ranker, err := ranking.NewRanker(db, registry, opts.Embedder, &cfg.Ranking, logger)
	if err != nil {
		return nil, fmt.Errorf("create ranker: %w", err)
	}

	return &Engine{
		db:      db,
		models:  registry,
		trainer: trainer,
		ranker:  ranker,
		sink:    opts.Sink,
		logger:  logger,
	}, nil
}

// Trainer exposes the trainer for the training scheduler.
func (e *Engine) Trainer() *training.Trainer {
	return e.trainer
}

// RankedFeed returns pages 0 through page of the user's feed. An empty
// userID is served the cold-start ranking.
func (e *Engine) RankedFeed(ctx context.Context, userID string, page int) (*ranking.Feed, error) {
	return e.ranker.RankedFeed(ctx, userID, page)
}

// RecordInteraction validates ev and appends it to the interaction log,
// through the event bus when one is configured. It returns the interaction ID.
func (e *Engine) RecordInteraction(ctx context.Context, ev events.InteractionEvent) (string, error) {
	if e.sink != nil {
		return e.sink.Publish(ctx, ev)
	}
	if err := ev.Validate(); err != nil {
		return "", err
	}
	in := ev.ToInteraction()
	if err := e.db.InsertInteraction(ctx, in); err != nil {
		return "", err
	}
	return in.ID, nil
}

// ResetUser deletes the user's interactions (only the given types when any
// are passed), their training state and their model. The user is served
// cold start until enough new interactions are trained. It returns the
// number of interactions deleted.
func (e *Engine) ResetUser(ctx context.Context, userID string, types ...models.InteractionType) (int64, error) {
	if userID == "" {
		return 0, ErrUserRequired
	}
	for _, t := range types {
		if !t.Valid() {
			return 0, fmt.Errorf("reset user %s: unknown interaction type %q", userID, t)
		}
	}

	n, err := e.db.ResetUser(ctx, userID, types)
	if err != nil {
		return 0, err
	}
	if err := e.models.Delete(ctx, userID); err != nil {
		return n, fmt.Errorf("delete model of user %s: %w", userID, err)
	}

	e.logger.Info().
		Str("user_id", userID).
		Int64("interactions_deleted", n).
		Int("types", len(types)).
		Msg("user data reset")
	return n, nil
}

// Train runs one training cycle over every dirty user.
func (e *Engine) Train(ctx context.Context) (*training.CycleSummary, error) {
	return e.trainer.RunCycle(ctx)
}

// TrainUser trains a single user outside the scheduler.
func (e *Engine) TrainUser(ctx context.Context, userID string) training.UserOutcome {
	return e.trainer.TrainUser(ctx, userID)
}

// ModelInfo returns the metadata of the user's current model, or
// modelstore.ErrModelNotFound.
func (e *Engine) ModelInfo(ctx context.Context, userID string) (modelstore.Metadata, error) {
	if userID == "" {
		return modelstore.Metadata{}, ErrUserRequired
	}
	snap, err := e.models.Get(ctx, userID)
	if err != nil {
		return modelstore.Metadata{}, err
	}
	return snap.Metadata, nil
}

// History returns the user's interactions by event time, each flagged with
// whether it is already folded into the current model.
func (e *Engine) History(ctx context.Context, userID string) ([]HistoryEntry, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	rows, err := e.db.ListInteractions(ctx, userID)
	if err != nil {
		return nil, err
	}
	state, err := e.db.GetTrainingState(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]HistoryEntry, len(rows))
	for i := range rows {
		out[i] = HistoryEntry{
			Interaction: rows[i],
			Trained:     rows[i].Type.Trainable() && rows[i].Trained(state.TrainedThrough),
		}
	}
	return out, nil
}
