// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

/*
Package training turns a user's interaction history into a fitted ranking
model.

The Builder reads the user's view, read and like interactions, keeps the
newest row per (article, type), labels every article with the interest score
and pairs the label with the article's embedding vector. The Trainer walks
the users with interactions stored after their training watermark,
fits one regressor per user, persists it and then advances the watermark.

# Watermark

Each user has a trained_through log position. A build first reads the
highest trainable seq M and then only rows stored at or before M, so rows
arriving while a user trains are left for the next cycle. Event timestamps
are never compared with the watermark: a late or redelivered event carries
an old created_at but always gets a new seq. The
watermark moves to M only after the model is persisted; a skipped or failed
user stays dirty and is retried next cycle.

# Outcomes

Per-user results never abort a cycle. Each user yields a UserOutcome
(trained, skipped, failed or timeout) and the cycle returns a CycleSummary:

	summary, err := trainer.RunCycle(ctx)
	if errors.Is(err, training.ErrTrainingInProgress) {
		return nil // another cycle is running
	}
	logger.Info().Int("trained", summary.Trained).Msg("cycle finished")
*/
package training
