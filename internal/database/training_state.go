// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/feedrank/internal/models"
)

// GetTrainingState returns the user's training bookkeeping. A user that was
// never trained gets a zero state, not an error.
func (db *DB) GetTrainingState(ctx context.Context, userID string) (_ models.TrainingState, err error) {
	defer observe("select", "training_state", &err)()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	var rows []models.TrainingState
	q := db.conn.Rebind(`SELECT user_id, trained_through, last_trained_at FROM training_state WHERE user_id = ?`)
	if err = db.conn.SelectContext(ctx, &rows, q, userID); err != nil {
		return models.TrainingState{}, fmt.Errorf("select training state of user %s: %w", userID, err)
	}
	if len(rows) == 0 {
		return models.TrainingState{UserID: userID}, nil
	}
	return rows[0], nil
}

// UpsertTrainingState records a successful training of the user.
func (db *DB) UpsertTrainingState(ctx context.Context, st models.TrainingState) (err error) {
	defer observe("upsert", "training_state", &err)()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	q := db.conn.Rebind(`INSERT INTO training_state (user_id, trained_through, last_trained_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			trained_through = EXCLUDED.trained_through,
			last_trained_at = EXCLUDED.last_trained_at`)
	if _, err = db.conn.ExecContext(ctx, q, st.UserID, st.TrainedThrough, st.LastTrainedAt); err != nil {
		return fmt.Errorf("upsert training state of user %s: %w", st.UserID, err)
	}
	return nil
}
