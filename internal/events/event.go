// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/feedrank/internal/models"
	"github.com/tomtom215/feedrank/internal/validation"
)

// ErrInvalidEvent is returned for events that fail validation or decoding.
var ErrInvalidEvent = errors.New("invalid interaction event")

// InteractionEvent is the wire form of one user interaction.
type InteractionEvent struct {
	// EventID doubles as the interaction row ID. Generated by the sink when empty.
	EventID   string                 `json:"event_id,omitempty" validate:"omitempty,max=64"`
	UserID    string                 `json:"user_id" validate:"required,max=128"`
	ArticleID string                 `json:"article_id" validate:"required,max=128"`
	Type      models.InteractionType `json:"type" validate:"required,interaction_type"`

	// Value is the dwell time in seconds for view and read events.
	Value *float64 `json:"value,omitempty" validate:"omitempty,finite,gte=0"`

	// OccurredAt is unix nanoseconds. Zero means "when stored".
	OccurredAt int64 `json:"occurred_at,omitempty" validate:"gte=0"`
}

// Validate checks the event, wrapping any failure in ErrInvalidEvent.
func (e *InteractionEvent) Validate() error {
	if verr := validation.ValidateStruct(e); verr != nil {
		return fmt.Errorf("%w: %s", ErrInvalidEvent, verr.Error())
	}
	return nil
}

// ensureID assigns a random event ID if none is set.
func (e *InteractionEvent) ensureID() {
	if e.EventID == "" {
		e.EventID = uuid.New().String()
	}
}

// ToInteraction converts the event into an interaction log row.
func (e *InteractionEvent) ToInteraction() *models.Interaction {
	userID := e.UserID
	return &models.Interaction{
		ID:        e.EventID,
		UserID:    &userID,
		ArticleID: e.ArticleID,
		Type:      e.Type,
		Value:     e.Value,
		CreatedAt: e.OccurredAt,
	}
}

// MarshalEvent encodes e as JSON.
func MarshalEvent(e *InteractionEvent) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// UnmarshalEvent decodes and validates an event payload.
func UnmarshalEvent(data []byte) (*InteractionEvent, error) {
	var e InteractionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

// stamp fills OccurredAt from now when unset.
func (e *InteractionEvent) stamp(now time.Time) {
	if e.OccurredAt == 0 {
		e.OccurredAt = now.UnixNano()
	}
}
