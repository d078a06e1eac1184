// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

/*
Package models defines the persisted records shared by the store, the trainer
and the ranker.

Key Components:

  - Feed, Article: crawler output. Article.Vector holds the embedding in its
    comma-joined text form and is nil until the article has been embedded.
  - Interaction: one append-only row of the interaction log.
  - TrainingState: per-user watermark of the newest interaction already
    folded into the user's model.
  - TrainableInteraction, CandidateArticle: join rows read by the training set
    builder and the ranking server.

Timestamps:

Article publication times are unix seconds. Interaction and training state
times are unix nanoseconds so that two interactions recorded in the same
second still order deterministically.

All structs carry both db tags (sqlx) and json tags (event payloads and the
operational API).
*/
package models
