// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/feedrank/internal/backfill"
)

// BackfillRunner embeds one batch of articles. Satisfied by *backfill.Backfiller.
type BackfillRunner interface {
	RunOnce(ctx context.Context) (backfill.Result, error)
}

// BackfillService runs the embedding backfill on a ticker.
type BackfillService struct {
	runner   BackfillRunner
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewBackfillService creates the backfill service. A non-positive
// interval defaults to five minutes.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBackfillService(runner BackfillRunner, interval time.Duration, logger zerolog.Logger) *BackfillService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &BackfillService{
		runner:   runner,
		interval: interval,
		logger:   logger.With().Str("service", "backfill").Logger(),
		name:     "embedding-backfill",
	}
}

// Serve implements suture.Service. A batch runs immediately, then once
// per interval.
func (s *BackfillService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.runner.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn().Err(err).Msg("backfill batch failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// String implements fmt.Stringer for logging.
func (s *BackfillService) String() string {
	return s.name
}
