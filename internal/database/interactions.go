// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/feedrank/internal/database/query"
	"github.com/tomtom215/feedrank/internal/models"
)

// trainableTypes returns the trainable interaction types as strings.
func trainableTypes() []string {
	out := make([]string, len(models.TrainableInteractionTypes))
	for i, t := range models.TrainableInteractionTypes {
		out[i] = string(t)
	}
	return out
}

// InsertInteraction appends a row to the interaction log. A missing ID is
// generated and a zero CreatedAt is set to the current time; both are
// written back to in. Inserting an ID that already exists is a no-op, so a
// redelivered event is recorded once.
func (db *DB) InsertInteraction(ctx context.Context, in *models.Interaction) (err error) {
	defer observe("insert", "interactions", &err)()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	if !in.Type.Valid() {
		return fmt.Errorf("insert interaction: unknown type %q", in.Type)
	}
	if in.ID == "" {
		in.ID = uuid.New().String()
	}
	if in.CreatedAt == 0 {
		in.CreatedAt = time.Now().UnixNano()
	}

	q := db.conn.Rebind(`INSERT INTO interactions (id, user_id, article_id, type, value, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`)
	_, err = db.conn.ExecContext(ctx, q,
		in.ID, nullString(in.UserID), in.ArticleID, string(in.Type), nullFloat(in.Value), in.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert interaction id=%s: %w", in.ID, err)
	}
	return nil
}

// ListInteractions returns a user's interactions ordered by creation time.
func (db *DB) ListInteractions(ctx context.Context, userID string) (_ []models.Interaction, err error) {
	defer observe("select", "interactions", &err)()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	rows := []models.Interaction{}
	q := db.conn.Rebind(`SELECT seq, id, user_id, article_id, type, value, created_at
		FROM interactions WHERE user_id = ?
		ORDER BY created_at ASC, seq ASC`)
	if err = db.conn.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, fmt.Errorf("select interactions of user %s: %w", userID, err)
	}
	return rows, nil
}

// LatestTrainableInteraction returns the highest log position (seq) among the
// user's trainable interactions, or 0 when there are none. created_at is not
// used here: it is supplied by the event and may predate rows already stored.
func (db *DB) LatestTrainableInteraction(ctx context.Context, userID string) (_ int64, err error) {
	defer observe("select", "interactions", &err)()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	where, args := query.NewWhereBuilder().
		AddEquals("user_id", userID).
		AddIn("type", trainableTypes()).
		BuildWithPrefix()

	var latest sql.NullInt64
	q := db.conn.Rebind(`SELECT MAX(seq) FROM interactions ` + where)
	if err = db.conn.GetContext(ctx, &latest, q, args...); err != nil {
		return 0, fmt.Errorf("select latest interaction of user %s: %w", userID, err)
	}
	return latest.Int64, nil
}

// TrainableInteractions returns the user's view, read and like rows stored
// at or before log position through, joined with their article. Rows whose article no
// longer exists are dropped by the join. Order is created_at then log
// position, so later rows win when a caller deduplicates in order.
func (db *DB) TrainableInteractions(ctx context.Context, userID string, through int64) (_ []models.TrainableInteraction, err error) {
	defer observe("select", "interactions", &err)()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	where, args := query.NewWhereBuilder().
		AddEquals("i.user_id", userID).
		AddIn("i.type", trainableTypes()).
		AddClause("i.seq <= ?", through).
		BuildWithPrefix()

	rows := []models.TrainableInteraction{}
	q := db.conn.Rebind(`SELECT i.article_id, i.type, i.value, i.created_at, i.seq,
			a.title, a.abstract, a.vector
		FROM interactions i
		JOIN articles a ON a.id = i.article_id
		` + where + `
		ORDER BY i.created_at ASC, i.seq ASC`)
	if err = db.conn.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("select trainable interactions of user %s: %w", userID, err)
	}
	return rows, nil
}

// DirtyUsers returns, in id order, the users with a trainable interaction
// stored after their training watermark. Anonymous rows are
// never included.
func (db *DB) DirtyUsers(ctx context.Context) (_ []string, err error) {
	defer observe("select", "interactions", &err)()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	where, args := query.NewWhereBuilder().
		AddClause("i.user_id IS NOT NULL").
		AddIn("i.type", trainableTypes()).
		BuildWithPrefix()

	users := []string{}
	q := db.conn.Rebind(`SELECT i.user_id
		FROM interactions i
		LEFT JOIN training_state s ON s.user_id = i.user_id
		` + where + `
		GROUP BY i.user_id
		HAVING MAX(i.seq) > COALESCE(MAX(s.trained_through), 0)
		ORDER BY i.user_id`)
	if err = db.conn.SelectContext(ctx, &users, q, args...); err != nil {
		return nil, fmt.Errorf("select dirty users: %w", err)
	}
	return users, nil
}

// ResetUser deletes a user's interactions and training state in one
// transaction. When types is non-empty only interactions of those types are
// deleted. It returns the number of interactions removed.
func (db *DB) ResetUser(ctx context.Context, userID string, types []models.InteractionType) (_ int64, err error) {
	defer observe("delete", "interactions", &err)()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	typeNames := make([]string, len(types))
	for i, t := range types {
		typeNames[i] = string(t)
	}
	where, args := query.NewWhereBuilder().
		AddEquals("user_id", userID).
		AddIn("type", typeNames).
		BuildWithPrefix()

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin reset of user %s: %w", userID, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM interactions `+where), args...)
	if err != nil {
		return 0, fmt.Errorf("delete interactions of user %s: %w", userID, err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted interactions of user %s: %w", userID, err)
	}

	if _, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM training_state WHERE user_id = ?`), userID); err != nil {
		return 0, fmt.Errorf("delete training state of user %s: %w", userID, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit reset of user %s: %w", userID, err)
	}
	return deleted, nil
}
