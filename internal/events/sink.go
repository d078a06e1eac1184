// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/feedrank/internal/metrics"
)

// Sink publishes interaction events to the bus.
type Sink struct {
	publisher message.Publisher
	topic     string
	logger    zerolog.Logger
	now       func() time.Time
}

// NewSink returns a sink publishing to topic.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSink(publisher message.Publisher, topic string, logger zerolog.Logger) *Sink {
	return &Sink{
		publisher: publisher,
		topic:     topic,
		logger:    logger,
		now:       time.Now,
	}
}

// Publish validates ev and hands it to the bus. It returns the event ID,
// which becomes the interaction ID once consumed. OccurredAt defaults to
// the publish time so that bus latency does not shift the log order.
func (s *Sink) Publish(ctx context.Context, ev InteractionEvent) (string, error) {
	if err := ev.Validate(); err != nil {
		return "", err
	}
	ev.ensureID()
	ev.stamp(s.now())

	data, err := MarshalEvent(&ev)
	if err != nil {
		return "", err
	}

	msg := message.NewMessage(ev.EventID, data)
	msg.Metadata.Set("type", string(ev.Type))
	msg.SetContext(ctx)

	if err := s.publisher.Publish(s.topic, msg); err != nil {
		return "", fmt.Errorf("publish event %s: %w", ev.EventID, err)
	}

	metrics.RecordEventPublished(string(ev.Type))
	s.logger.Debug().
		Str("event_id", ev.EventID).
		Str("user_id", ev.UserID).
		Str("type", string(ev.Type)).
		Msg("interaction event published")
	return ev.EventID, nil
}
