// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package models

// InteractionType classifies a row of the interaction log.
type InteractionType string

// Interaction types. Only view, read and like feed the trainer.
const (
	InteractionView    InteractionType = "view"
	InteractionRead    InteractionType = "read"
	InteractionLike    InteractionType = "like"
	InteractionComment InteractionType = "comment"
	InteractionArchive InteractionType = "archive"
	InteractionFollow  InteractionType = "follow"
)

// AllInteractionTypes lists every accepted type.
var AllInteractionTypes = []InteractionType{
	InteractionView,
	InteractionRead,
	InteractionLike,
	InteractionComment,
	InteractionArchive,
	InteractionFollow,
}

// TrainableInteractionTypes lists the types that contribute to a label.
var TrainableInteractionTypes = []InteractionType{
	InteractionView,
	InteractionRead,
	InteractionLike,
}

// Valid reports whether t is a known type.
func (t InteractionType) Valid() bool {
	for _, known := range AllInteractionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Trainable reports whether t contributes to training labels.
func (t InteractionType) Trainable() bool {
	return t == InteractionView || t == InteractionRead || t == InteractionLike
}

// Interaction is one append-only row of the interaction log.
type Interaction struct {
	// Seq is the row's position in the log, assigned on insert.
	Seq int64  `db:"seq" json:"seq,omitempty"`
	ID  string `db:"id" json:"id"`

	// UserID is nil for anonymous interactions, which are never trained.
	UserID    *string         `db:"user_id" json:"user_id,omitempty"`
	ArticleID string          `db:"article_id" json:"article_id"`
	Type      InteractionType `db:"type" json:"type"`

	// Value is the dwell time in seconds for view and read rows.
	Value *float64 `db:"value" json:"value,omitempty"`

	// CreatedAt is unix nanoseconds, as reported by the event.
	CreatedAt int64 `db:"created_at" json:"created_at"`
}

// ValueOrZero returns the interaction value, treating a missing value as 0.
func (i *Interaction) ValueOrZero() float64 {
	if i.Value == nil {
		return 0
	}
	return *i.Value
}

// Trained reports whether the row is already folded into a model trained
// through the given log position.
func (i *Interaction) Trained(trainedThrough int64) bool {
	return i.Seq > 0 && i.Seq <= trainedThrough
}

// TrainableInteraction is an interaction of a trainable type joined with its
// article's text and vector.
type TrainableInteraction struct {
	ArticleID string          `db:"article_id"`
	Type      InteractionType `db:"type"`
	Value     *float64        `db:"value"`
	CreatedAt int64           `db:"created_at"`

	// Seq is the row's position in the log and breaks timestamp ties.
	Seq int64 `db:"seq"`

	Title    string  `db:"title"`
	Abstract string  `db:"abstract"`
	Vector   *string `db:"vector"`
}

// TrainingState is the per-user training bookkeeping.
type TrainingState struct {
	UserID string `db:"user_id" json:"user_id"`

	// TrainedThrough is the highest interaction log position (seq) folded
	// into the current model. Zero means never trained.
	TrainedThrough int64 `db:"trained_through" json:"trained_through"`

	// LastTrainedAt is the wall clock (unix nanos) of the last successful fit.
	LastTrainedAt int64 `db:"last_trained_at" json:"last_trained_at"`
}
