// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package recommend is the in-process facade the web layer talks to.
//
// # Architecture
//
// Engine wires the pieces of the ranking pipeline over one database and
// one model registry:
//
//   - training.Builder and training.Trainer turn the interaction log into
//     per-user regression models
//   - ranking.Ranker serves paginated feeds from those models, falling back
//     to recency order for cold-start users
//   - events.Sink (optional) routes recorded interactions through the bus
//     instead of writing them directly
//
// # Usage
//
//	engine, err := recommend.NewEngine(cfg, db, registry, recommend.Options{
//	    Embedder: embedder,
//	}, logger)
//
//	// Record an interaction
//	id, err := engine.RecordInteraction(ctx, events.InteractionEvent{
//	    UserID: "u1", ArticleID: "a1", Type: models.InteractionView, Value: &dwell,
//	})
//
//	// Serve the first page
//	feed, err := engine.RankedFeed(ctx, "u1", 0)
//
// # Thread Safety
//
// Engine is safe for concurrent use. Ranking reads immutable model
// snapshots and never waits for training; overlapping training cycles are
// refused with training.ErrTrainingInProgress.
package recommend
