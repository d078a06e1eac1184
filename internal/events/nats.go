// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

//go:build nats

package events

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/feedrank/internal/config"
)

// newNATSTransport connects a JetStream publisher and a durable queue
// subscriber, starting an embedded server first when configured.
func newNATSTransport(cfg *config.EventsConfig, logger watermill.LoggerAdapter) (*Transport, error) {
	nc := cfg.NATS
	t := &Transport{Name: config.TransportNATS}

	url := nc.URL
	var srv *EmbeddedServer
	if nc.EmbeddedServer {
		var err error
		srv, err = NewEmbeddedServer(&nc)
		if err != nil {
			return nil, err
		}
		url = srv.ClientURL()
		logger.Info("Embedded NATS server started", watermill.LogFields{"url": url})
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(nc.MaxReconnects),
		natsgo.ReconnectWait(nc.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(c *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": c.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			TrackMsgId:    true,
		},
	}, logger)
	if err != nil {
		shutdownQuietly(srv)
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: nc.QueueGroup,
		SubscribersCount: nc.SubscribersCount,
		AckWaitTimeout:   nc.AckWaitTimeout,
		CloseTimeout:     cfg.CloseTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.AckWait(nc.AckWaitTimeout),
				natsgo.DeliverAll(),
			},
			DurablePrefix: nc.DurableName,
		},
	}, logger)
	if err != nil {
		_ = pub.Close() //nolint:errcheck // already failing
		shutdownQuietly(srv)
		return nil, fmt.Errorf("create NATS subscriber: %w", err)
	}

	t.Publisher = pub
	t.Subscriber = sub
	t.closers = []func() error{pub.Close, sub.Close}
	if srv != nil {
		t.closers = append(t.closers, srv.Close)
	}
	return t, nil
}

func shutdownQuietly(srv *EmbeddedServer) {
	if srv != nil {
		_ = srv.Close() //nolint:errcheck // best effort on a failed start
	}
}
