// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/feedrank/internal/config"
	"github.com/tomtom215/feedrank/internal/training"
)

// CycleRunner runs one training cycle. Satisfied by *training.Trainer.
type CycleRunner interface {
	RunCycle(ctx context.Context) (*training.CycleSummary, error)
}

// TrainingService runs training cycles on a fixed interval.
//
// Every cycle is bounded by the configured cycle timeout. The loop sleeps
// the interval after each cycle, whatever its result, and only returns
// when its context is canceled.
type TrainingService struct {
	runner       CycleRunner
	interval     time.Duration
	cycleTimeout time.Duration
	onStartup    bool
	logger       zerolog.Logger
	name         string
}

// NewTrainingService creates the scheduler service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrainingService(runner CycleRunner, cfg *config.SchedulerConfig, logger zerolog.Logger) *TrainingService {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 60 * time.Second
	}
	timeout := cfg.CycleTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &TrainingService{
		runner:       runner,
		interval:     interval,
		cycleTimeout: timeout,
		onStartup:    cfg.TrainOnStartup,
		logger:       logger.With().Str("service", "training").Logger(),
		name:         "training-scheduler",
	}
}

// Serve implements suture.Service.
func (s *TrainingService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("train_on_startup", s.onStartup).
		Dur("interval", s.interval).
		Dur("cycle_timeout", s.cycleTimeout).
		Msg("training scheduler starting")

	if !s.onStartup && !s.sleep(ctx) {
		return ctx.Err()
	}

	for {
		s.runCycle(ctx)
		if !s.sleep(ctx) {
			s.logger.Info().Msg("training scheduler shutting down")
			return ctx.Err()
		}
	}
}

// sleep waits one interval. It returns false if ctx was canceled first.
func (s *TrainingService) sleep(ctx context.Context) bool {
	timer := time.NewTimer(s.interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// runCycle runs one bounded cycle and logs its result. Panics are logged
// and swallowed so the loop keeps its schedule.
func (s *TrainingService) runCycle(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, s.cycleTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Err(fmt.Errorf("panic: %v", r)).
				Msg("training cycle panicked")
		}
	}()

	summary, err := s.runner.RunCycle(cycleCtx)
	switch {
	case err == nil:
		if summary != nil && summary.Dirty > 0 {
			s.logger.Debug().
				Str("correlation_id", summary.CorrelationID).
				Int("trained", summary.Trained).
				Int("failed", summary.Failed).
				Msg("training cycle complete")
		}
	case errors.Is(err, training.ErrTrainingInProgress):
		s.logger.Debug().Msg("previous training cycle still running")
	case errors.Is(err, training.ErrCycleTimeout):
		ev := s.logger.Warn().Dur("cycle_timeout", s.cycleTimeout)
		if summary != nil {
			ev = ev.Int("trained", summary.Trained).Int("dirty", summary.Dirty)
		}
		ev.Msg("training cycle timed out")
	case ctx.Err() != nil:
		// Shutdown interrupted the cycle.
	default:
		s.logger.Error().Err(err).Msg("training cycle failed")
	}
}

// String implements fmt.Stringer for logging.
func (s *TrainingService) String() string {
	return s.name
}
