// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/feedrank/internal/metrics"
	"github.com/tomtom215/feedrank/internal/models"
)

// InteractionStore is the write side of the interaction log.
type InteractionStore interface {
	InsertInteraction(ctx context.Context, in *models.Interaction) error
}

// Consumer stores consumed events in the interaction log.
type Consumer struct {
	store  InteractionStore
	logger zerolog.Logger
}

// NewConsumer returns a consumer writing to store.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewConsumer(store InteractionStore, logger zerolog.Logger) *Consumer {
	return &Consumer{store: store, logger: logger}
}

// Handle is a message.NoPublishHandlerFunc.
//
// Error handling:
//   - invalid payloads are acked and counted, retrying cannot fix them
//   - storage errors are returned so the router retries the message
func (c *Consumer) Handle(msg *message.Message) error {
	ev, err := UnmarshalEvent(msg.Payload)
	if err != nil {
		metrics.RecordEventConsumed(typeLabel(msg), "invalid")
		c.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("dropping invalid interaction event")
		return nil
	}

	ctx := msg.Context()
	if err := c.store.InsertInteraction(ctx, ev.ToInteraction()); err != nil {
		metrics.RecordEventConsumed(string(ev.Type), "error")
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("store event %s: %w", ev.EventID, err)
	}

	metrics.RecordEventConsumed(string(ev.Type), "stored")
	return nil
}

// typeLabel bounds the metric label to known interaction types.
func typeLabel(msg *message.Message) string {
	t := models.InteractionType(msg.Metadata.Get("type"))
	if !t.Valid() {
		return "unknown"
	}
	return string(t)
}
