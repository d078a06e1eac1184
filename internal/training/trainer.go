// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package training

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/feedrank/internal/config"
	"github.com/tomtom215/feedrank/internal/logging"
	"github.com/tomtom215/feedrank/internal/metrics"
	"github.com/tomtom215/feedrank/internal/models"
	"github.com/tomtom215/feedrank/internal/modelstore"
	"github.com/tomtom215/feedrank/internal/regression"
)

var (
	// ErrModelFit is regression.ErrModelFit, re-exported for callers of the trainer.
	ErrModelFit = regression.ErrModelFit

	// ErrCycleTimeout means the cycle deadline passed before all users were processed.
	ErrCycleTimeout = errors.New("training cycle timed out")

	// ErrTrainingInProgress means another cycle is running.
	ErrTrainingInProgress = errors.New("training cycle already in progress")
)

// Store is the trainer's view of the database.
type Store interface {
	InteractionSource
	DirtyUsers(ctx context.Context) ([]string, error)
	UpsertTrainingState(ctx context.Context, st models.TrainingState) error
}

// ModelSink receives fitted models. modelstore.Registry implements it.
type ModelSink interface {
	Put(ctx context.Context, snap *modelstore.Snapshot) error
}

// Trainer fits and persists per-user models.
type Trainer struct {
	store   Store
	builder *Builder
	models  ModelSink
	cfg     *config.TrainingConfig
	logger  zerolog.Logger

	// cycleMu prevents overlapping cycles. It is never waited on.
	cycleMu sync.Mutex

	now func() time.Time
}

// NewTrainer creates a Trainer.
//
//nolint:gocritic // zerolog.Logger is passed by value
func NewTrainer(store Store, builder *Builder, sink ModelSink, cfg *config.TrainingConfig, logger zerolog.Logger) *Trainer {
	return &Trainer{
		store:   store,
		builder: builder,
		models:  sink,
		cfg:     cfg,
		logger:  logger.With().Str("component", "trainer").Logger(),
		now:     time.Now,
	}
}

// RunCycle trains every dirty user in order. Per-user failures are recorded
// in the summary and do not stop the cycle. The returned error is
// ErrTrainingInProgress, ErrCycleTimeout, or a failure to list dirty users.
func (t *Trainer) RunCycle(ctx context.Context) (*CycleSummary, error) {
	if !t.cycleMu.TryLock() {
		return nil, ErrTrainingInProgress
	}
	defer t.cycleMu.Unlock()

	if logging.CorrelationIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewCorrelationID(ctx)
	}
	summary := &CycleSummary{
		CorrelationID: logging.CorrelationIDFromContext(ctx),
		StartedAt:     t.now(),
	}
	logger := logging.Ctx(ctx, t.logger)

	finish := func(result string, err error) (*CycleSummary, error) {
		summary.Duration = time.Since(summary.StartedAt)
		metrics.RecordTrainingCycle(result, summary.Duration)
		return summary, err
	}

	users, err := t.store.DirtyUsers(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return finish("timeout", fmt.Errorf("%w: %w", ErrCycleTimeout, err))
		}
		return finish("error", fmt.Errorf("list dirty users: %w", err))
	}
	summary.Dirty = len(users)
	metrics.SetDirtyUsers(len(users))

	for i, userID := range users {
		if err := ctx.Err(); err != nil {
			logger.Warn().
				Int("remaining", len(users)-i).
				Int("trained", summary.Trained).
				Msg("training cycle abandoned")
			if errors.Is(err, context.DeadlineExceeded) {
				return finish("timeout", ErrCycleTimeout)
			}
			return finish("cancelled", err)
		}
		summary.add(t.TrainUser(ctx, userID))
	}

	if summary.Dirty > 0 {
		logger.Info().
			Int("dirty", summary.Dirty).
			Int("trained", summary.Trained).
			Int("skipped", summary.Skipped).
			Int("failed", summary.Failed).
			Int("timed_out", summary.TimedOut).
			Dur("duration", time.Since(summary.StartedAt)).
			Msg("training cycle finished")
	}
	return finish("success", nil)
}

// TrainUser builds, fits, persists and records the watermark for one user.
// The watermark is only advanced after the model is persisted.
func (t *Trainer) TrainUser(ctx context.Context, userID string) UserOutcome {
	start := time.Now()
	ctx = logging.ContextWithUserID(ctx, userID)
	logger := logging.Ctx(ctx, t.logger)

	if t.cfg.UserTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.UserTimeout)
		defer cancel()
	}

	out := t.trainUser(ctx, userID)
	out.UserID = userID
	out.Duration = time.Since(start)
	metrics.RecordUserOutcome(string(out.Outcome))

	switch out.Outcome {
	case OutcomeTrained:
		logger.Info().
			Int("samples", out.Samples).
			Float64("validation_mse", out.ValidationMSE).
			Dur("duration", out.Duration).
			Msg("user model trained")
	case OutcomeSkipped:
		logger.Debug().Err(out.Err).Msg("user skipped")
	default:
		logger.Warn().Err(out.Err).Str("outcome", string(out.Outcome)).Msg("user training failed")
	}
	return out
}

func (t *Trainer) trainUser(ctx context.Context, userID string) UserOutcome {
	started := t.now()

	set, err := t.builder.Build(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrInsufficientData) {
			return UserOutcome{Outcome: OutcomeSkipped, Err: err}
		}
		return t.failure(ctx, fmt.Errorf("build training set: %w", err))
	}

	trainIdx, holdoutIdx := regression.Split(len(set.X), t.cfg.HoldoutFraction, t.cfg.Seed)
	Xtr, ytr := regression.Subset(set.X, set.Y, trainIdx)
	Xho, yho := regression.Subset(set.X, set.Y, holdoutIdx)

	model, err := t.fit(ctx, Xtr, ytr)
	if err != nil {
		return t.failure(ctx, err)
	}

	mse := regression.MSE(model, Xtr, ytr)
	if len(Xho) > 0 {
		mse = regression.MSE(model, Xho, yho)
	}
	metrics.RecordModelFit(model.Kind(), len(set.X), mse)

	snap := &modelstore.Snapshot{
		Metadata: modelstore.Metadata{
			UserID:             userID,
			Kind:               model.Kind(),
			Dim:                model.Dim(),
			TrainedAt:          started,
			TrainSamples:       len(Xtr),
			HoldoutSamples:     len(Xho),
			ValidationMSE:      mse,
			TrainedThrough:     set.Watermark,
			TrainingDurationMS: t.now().Sub(started).Milliseconds(),
		},
		Model: model,
	}
	if err := t.models.Put(ctx, snap); err != nil {
		return t.failure(ctx, fmt.Errorf("persist model: %w", err))
	}

	state := models.TrainingState{
		UserID:         userID,
		TrainedThrough: set.Watermark,
		LastTrainedAt:  t.now().UnixNano(),
	}
	if err := t.store.UpsertTrainingState(ctx, state); err != nil {
		return t.failure(ctx, fmt.Errorf("advance watermark: %w", err))
	}

	return UserOutcome{
		Outcome:       OutcomeTrained,
		Samples:       len(set.X),
		ValidationMSE: mse,
		Watermark:     set.Watermark,
	}
}

//nolint:gocritic // X follows linear algebra notation
func (t *Trainer) fit(ctx context.Context, X [][]float64, y []float64) (regression.Regressor, error) {
	switch t.cfg.Regressor {
	case config.RegressorMLP:
		m, err := regression.FitMLP(ctx, X, y, t.cfg.MLP, t.cfg.Seed)
		if err != nil {
			return nil, fmt.Errorf("fit mlp: %w", err)
		}
		return m, nil
	case config.RegressorRidge, "":
		m, err := regression.FitRidge(X, y, t.cfg.Ridge)
		if err != nil {
			return nil, fmt.Errorf("fit ridge: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: unknown regressor %q", ErrModelFit, t.cfg.Regressor)
	}
}

// failure classifies err as a timeout when the user's context expired.
func (t *Trainer) failure(ctx context.Context, err error) UserOutcome {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return UserOutcome{Outcome: OutcomeTimeout, Err: err}
	}
	return UserOutcome{Outcome: OutcomeFailed, Err: err}
}
