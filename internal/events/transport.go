// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package events

import (
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/feedrank/internal/config"
)

// ErrNATSNotEnabled is returned when the nats transport is configured in a
// binary built without the nats tag.
var ErrNATSNotEnabled = errors.New("NATS transport not enabled (build with -tags nats)")

// channelBuffer is the per-subscriber output buffer of the gochannel transport.
const channelBuffer = 256

// Transport is a publisher/subscriber pair for one configured backend.
type Transport struct {
	Name       string
	Publisher  message.Publisher
	Subscriber message.Subscriber

	// closers run in order on Close.
	closers []func() error
}

// NewTransport builds the transport named by cfg.Transport.
func NewTransport(cfg *config.EventsConfig, logger watermill.LoggerAdapter) (*Transport, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	switch cfg.Transport {
	case config.TransportChannel, "":
		ch := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: channelBuffer,
		}, logger)
		return &Transport{
			Name:       config.TransportChannel,
			Publisher:  ch,
			Subscriber: ch,
			closers:    []func() error{ch.Close},
		}, nil
	case config.TransportNATS:
		return newNATSTransport(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown event transport %q", cfg.Transport)
	}
}

// Close releases the publisher, the subscriber and any embedded server.
func (t *Transport) Close() error {
	var errs []error
	for _, c := range t.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	t.closers = nil
	return errors.Join(errs...)
}
