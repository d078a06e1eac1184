// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package scoring converts raw engagement signals into a bounded interest score.
//
// The score is the supervised label used to train per-user ranking models. It
// combines three signals:
//
//   - like: whether the user liked the article (0 or 1)
//   - R: seconds spent on the full article page
//   - F: seconds spent dwelling on the article's preview card in a feed
//
// The result always lies in the closed interval [MinScore, MaxScore] and is
// rounded to two decimal places. All functions in this package are pure.
package scoring

import (
	"fmt"
	"math"
)

const (
	// MinScore is the lowest interest score.
	MinScore = 1.0

	// MaxScore is the highest interest score.
	MaxScore = 10.0

	// logEpsilon guards the read-time log denominator.
	logEpsilon = 1e-9

	// baselineEpsilon guards the like-rate baseline.
	baselineEpsilon = 1e-6

	// engagedThreshold is the normalized signal above which a view counts as substantial engagement.
	engagedThreshold = 0.6

	// shallowThreshold is the normalized signal below which a like counts as shallow.
	shallowThreshold = 0.1
)

// Config holds the tunable parameters of the interest score.
type Config struct {
	// RBounce is the read time (seconds) treated as accidental-click noise.
	RBounce float64 `koanf:"r_bounce"`

	// RCap is the read time (seconds) at which the read signal saturates.
	RCap float64 `koanf:"r_cap"`

	// FMin is the feed dwell (seconds) below which the feed signal is zero.
	FMin float64 `koanf:"f_min"`

	// FCap is the feed dwell (seconds) at which the feed signal saturates.
	FCap float64 `koanf:"f_cap"`

	// Base weights of the three terms.
	WLike float64 `koanf:"w_like"`
	WRead float64 `koanf:"w_read"`
	WFeed float64 `koanf:"w_feed"`

	// UserLikeRate is the user's personal like rate in [0,1]. Nil disables
	// the like-weight adjustment and the no-like discount.
	UserLikeRate *float64 `koanf:"-"`

	// GlobalLikeRate is the product-wide like rate used as baseline.
	GlobalLikeRate float64 `koanf:"global_like_rate"`

	// LikeWeightSensitivity scales the like-weight adjustment.
	LikeWeightSensitivity float64 `koanf:"like_weight_sensitivity"`

	// ShallowLikePenalty multiplies the like term when the like came with no real engagement.
	ShallowLikePenalty float64 `koanf:"shallow_like_penalty"`

	// NoLikeHighEngagementDiscount is subtracted (as a fraction of each weight)
	// from read/feed terms of heavy likers who engaged but did not like.
	NoLikeHighEngagementDiscount float64 `koanf:"no_like_high_engagement_discount"`
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		RBounce:                      2.0,
		RCap:                         180.0,
		FMin:                         1.0,
		FCap:                         8.0,
		WLike:                        0.50,
		WRead:                        0.35,
		WFeed:                        0.15,
		GlobalLikeRate:               0.20,
		LikeWeightSensitivity:        0.5,
		ShallowLikePenalty:           0.70,
		NoLikeHighEngagementDiscount: 0.05,
	}
}

// WithUserLikeRate returns a copy of the config with a personal like rate set.
//
//nolint:gocritic // Config is small and copied intentionally
func (c Config) WithUserLikeRate(rate float64) Config {
	c.UserLikeRate = &rate
	return c
}

// Validate checks the configuration for values that would break the bounds.
func (c *Config) Validate() error {
	if c.RBounce < 0 {
		return fmt.Errorf("scoring.r_bounce must be non-negative, got %v", c.RBounce)
	}
	if c.RCap < 0 {
		return fmt.Errorf("scoring.r_cap must be non-negative, got %v", c.RCap)
	}
	if c.FMin < 0 {
		return fmt.Errorf("scoring.f_min must be non-negative, got %v", c.FMin)
	}
	if c.FCap <= c.FMin {
		return fmt.Errorf("scoring.f_cap (%v) must be greater than scoring.f_min (%v)", c.FCap, c.FMin)
	}
	if c.WLike < 0 || c.WRead < 0 || c.WFeed < 0 {
		return fmt.Errorf("scoring weights must be non-negative, got like=%v read=%v feed=%v", c.WLike, c.WRead, c.WFeed)
	}
	if c.GlobalLikeRate < 0 || c.GlobalLikeRate > 1 {
		return fmt.Errorf("scoring.global_like_rate must be in [0,1], got %v", c.GlobalLikeRate)
	}
	if c.UserLikeRate != nil && (*c.UserLikeRate < 0 || *c.UserLikeRate > 1) {
		return fmt.Errorf("scoring user like rate must be in [0,1], got %v", *c.UserLikeRate)
	}
	if c.LikeWeightSensitivity < 0 {
		return fmt.Errorf("scoring.like_weight_sensitivity must be non-negative, got %v", c.LikeWeightSensitivity)
	}
	if c.ShallowLikePenalty < 0 || c.ShallowLikePenalty > 1 {
		return fmt.Errorf("scoring.shallow_like_penalty must be in [0,1], got %v", c.ShallowLikePenalty)
	}
	if c.NoLikeHighEngagementDiscount < 0 || c.NoLikeHighEngagementDiscount > 1 {
		return fmt.Errorf("scoring.no_like_high_engagement_discount must be in [0,1], got %v", c.NoLikeHighEngagementDiscount)
	}
	return nil
}

// Input holds the engagement signals for one (user, article) pair.
type Input struct {
	Like bool
	R    float64
	F    float64
}

// Breakdown shows how each component contributed to the final score.
type Breakdown struct {
	// ReadSignal is the normalized read signal r in [0,1].
	ReadSignal float64

	// FeedSignal is the normalized feed signal f in [0,1].
	FeedSignal float64

	// LikeWeight is the like weight after the personal like-rate adjustment.
	LikeWeight float64

	LikeTerm float64
	ReadTerm float64
	FeedTerm float64

	// ShallowLike reports that the shallow-like penalty was applied.
	ShallowLike bool

	// Discounted reports that the no-like-high-engagement discount was applied.
	Discounted bool

	// Raw is the clamped weighted sum in [0,1].
	Raw float64

	// Final is the rounded score in [MinScore, MaxScore].
	Final float64
}

// Score computes the interest score for the given signals.
//
//nolint:gocritic // Config passed by value keeps Score free of aliasing
func Score(like bool, r, f float64, cfg Config) float64 {
	return ScoreWithBreakdown(Input{Like: like, R: r, F: f}, cfg).Final
}

// ScoreWithBreakdown computes the interest score with component details.
//
//nolint:gocritic // Config passed by value keeps the function pure
func ScoreWithBreakdown(in Input, cfg Config) Breakdown {
	var b Breakdown

	b.ReadSignal = readSignal(sanitize(in.R), cfg)
	b.FeedSignal = feedSignal(sanitize(in.F), cfg)
	b.LikeWeight = likeWeight(cfg)

	if in.Like {
		b.LikeTerm = b.LikeWeight
	}
	b.ReadTerm = cfg.WRead * b.ReadSignal
	b.FeedTerm = cfg.WFeed * b.FeedSignal

	if in.Like && b.ReadSignal < shallowThreshold && b.FeedSignal < shallowThreshold {
		b.LikeTerm *= cfg.ShallowLikePenalty
		b.ShallowLike = true
	}

	if !in.Like &&
		(b.ReadSignal > engagedThreshold || b.FeedSignal > engagedThreshold) &&
		cfg.UserLikeRate != nil && *cfg.UserLikeRate > cfg.GlobalLikeRate {
		b.ReadTerm = math.Max(0, b.ReadTerm-cfg.NoLikeHighEngagementDiscount*cfg.WRead)
		b.FeedTerm = math.Max(0, b.FeedTerm-cfg.NoLikeHighEngagementDiscount*cfg.WFeed)
		b.Discounted = true
	}

	b.Raw = clamp(b.LikeTerm+b.ReadTerm+b.FeedTerm, 0, 1)
	b.Final = round2(MinScore + (MaxScore-MinScore)*b.Raw)
	return b
}

// readSignal normalizes read time logarithmically with diminishing returns.
//
//nolint:gocritic // see Score
func readSignal(r float64, cfg Config) float64 {
	if cfg.RCap <= 0 {
		return 0
	}
	eff := math.Max(0, r-cfg.RBounce)
	return math.Min(1, math.Log1p(eff)/math.Log1p(math.Max(logEpsilon, cfg.RCap)))
}

// feedSignal interpolates feed dwell linearly between FMin and FCap.
//
//nolint:gocritic // see Score
func feedSignal(f float64, cfg Config) float64 {
	switch {
	case f < cfg.FMin:
		return 0
	case f >= cfg.FCap:
		return 1
	default:
		return (f - cfg.FMin) / math.Max(logEpsilon, cfg.FCap-cfg.FMin)
	}
}

// likeWeight adjusts the like weight by the user's like rate relative to the global baseline.
//
//nolint:gocritic // see Score
func likeWeight(cfg Config) float64 {
	if cfg.UserLikeRate == nil {
		return cfg.WLike
	}
	baseline := math.Max(baselineEpsilon, cfg.GlobalLikeRate)
	delta := (*cfg.UserLikeRate - cfg.GlobalLikeRate) / baseline
	lambda := clamp(1+cfg.LikeWeightSensitivity*delta, 0.5, 1.5)
	return cfg.WLike * lambda
}

// sanitize maps NaN and negative durations to zero.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
