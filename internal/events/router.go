// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package events

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/feedrank/internal/config"
)

// handlerName identifies the interaction consumer in router logs.
const handlerName = "interaction-log"

// retryMultiplier is the backoff growth factor between redeliveries.
const retryMultiplier = 2.0

// Router consumes the interaction topic into a Consumer.
//
// Each Run builds a fresh Watermill router, so a supervisor can restart it
// after a failure. The subscriber outlives runs and is closed with the
// Transport.
type Router struct {
	cfg        config.EventsConfig
	subscriber message.Subscriber
	handler    message.NoPublishHandlerFunc
	logger     watermill.LoggerAdapter

	running   atomic.Bool
	ready     chan struct{}
	readyOnce sync.Once
}

// NewRouter wires consumer to the subscriber's topic.
func NewRouter(cfg *config.EventsConfig, subscriber message.Subscriber, consumer *Consumer, logger watermill.LoggerAdapter) (*Router, error) {
	if subscriber == nil {
		return nil, fmt.Errorf("event router: subscriber required")
	}
	if consumer == nil {
		return nil, fmt.Errorf("event router: consumer required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("event router: topic required")
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Router{
		cfg:        *cfg,
		subscriber: subscriber,
		handler:    consumer.Handle,
		logger:     logger,
		ready:      make(chan struct{}),
	}, nil
}

func (r *Router) build() (*message.Router, error) {
	wm, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: r.cfg.CloseTimeout,
	}, r.logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	wm.AddMiddleware(middleware.Recoverer)

	retry := middleware.Retry{
		MaxRetries:      r.cfg.MaxRetries,
		InitialInterval: r.cfg.InitialInterval,
		MaxInterval:     r.cfg.MaxInterval,
		Multiplier:      retryMultiplier,
		Logger:          r.logger,
	}
	wm.AddMiddleware(retry.Middleware)

	wm.AddConsumerHandler(handlerName, r.cfg.Topic, r.subscriber, r.handler)
	return wm, nil
}

// Run consumes until ctx is canceled.
func (r *Router) Run(ctx context.Context) error {
	wm, err := r.build()
	if err != nil {
		return err
	}

	go func() {
		select {
		case <-wm.Running():
			r.running.Store(true)
			r.readyOnce.Do(func() { close(r.ready) })
		case <-ctx.Done():
		}
	}()
	defer r.running.Store(false)

	r.logger.Info("Event router starting", watermill.LogFields{
		"topic":   r.cfg.Topic,
		"handler": handlerName,
	})
	if err := wm.Run(ctx); err != nil {
		return fmt.Errorf("event router: %w", err)
	}
	return nil
}

// Ready is closed once the first run has subscribed.
func (r *Router) Ready() <-chan struct{} {
	return r.ready
}

// IsRunning reports whether a run is currently consuming.
func (r *Router) IsRunning() bool {
	return r.running.Load()
}
