// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/feedrank/internal/config"
	"github.com/tomtom215/feedrank/internal/metrics"
)

// ResilientEmbedder guards a provider with a token-bucket rate limiter and a
// circuit breaker. Every failure it returns wraps ErrEmbeddingUnavailable so
// callers can treat the provider as absent and keep going.
type ResilientEmbedder struct {
	next    Embedder
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[]float64]
	name    string
	logger  zerolog.Logger
}

// NewResilientEmbedder wraps next using the rate and breaker settings in cfg.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewResilientEmbedder(next Embedder, cfg *config.EmbeddingConfig, logger zerolog.Logger) *ResilientEmbedder {
	cbName := "embedding-" + next.Model()
	logger = logger.With().Str("breaker", cbName).Logger()

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	threshold := cfg.Breaker.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]float64](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,

		// Opens after N consecutive failures.
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= threshold
			if trip {
				logger.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("opening embedding circuit")
			}
			return trip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logger.Info().Str("from", fromStr).Str("to", toStr).Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},

		// Caller cancellation and blank input say nothing about provider health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrEmptyText)
		},
	})

	return &ResilientEmbedder{
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
		cb:      cb,
		name:    cbName,
		logger:  logger,
	}
}

// Model returns the wrapped provider's model name.
func (r *ResilientEmbedder) Model() string {
	return r.next.Model()
}

// Embed waits for a rate token and calls the provider through the breaker.
func (r *ResilientEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		metrics.RecordEmbeddingRequest(r.Model(), "rejected", 0)
		return nil, fmt.Errorf("%w: rate limiter: %w", ErrEmbeddingUnavailable, err)
	}

	start := time.Now()
	vec, err := r.cb.Execute(func() ([]float64, error) {
		return r.next.Embed(ctx, text)
	})
	if err == nil {
		metrics.RecordEmbeddingRequest(r.Model(), "success", time.Since(start))
		return vec, nil
	}

	if errors.Is(err, ErrEmptyText) {
		return nil, err
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.RecordEmbeddingRequest(r.Model(), "rejected", 0)
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	metrics.RecordEmbeddingRequest(r.Model(), "error", time.Since(start))
	return nil, fmt.Errorf("%w: %w", ErrEmbeddingUnavailable, err)
}

// State reports the breaker state as closed, half-open or open.
func (r *ResilientEmbedder) State() string {
	return stateToString(r.cb.State())
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
