// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package services

import (
	"context"
	"errors"
	"fmt"
)

// ErrRouterStopped is returned when the router exits while its context is
// still live, so that suture restarts it.
var ErrRouterStopped = errors.New("event router stopped unexpectedly")

// EventRouter matches the lifecycle of *events.Router.
type EventRouter interface {
	Run(ctx context.Context) error
	IsRunning() bool
}

// EventRouterService supervises the interaction event router.
//
//	router, _ := events.NewRouter(&cfg.Events, transport.Subscriber, consumer, wmLogger)
//	tree.AddIngestService(services.NewEventRouterService(router))
type EventRouterService struct {
	router EventRouter
	name   string
}

// NewEventRouterService wraps router.
func NewEventRouterService(router EventRouter) *EventRouterService {
	return &EventRouterService{
		router: router,
		name:   "event-router",
	}
}

// Serve implements suture.Service.
func (s *EventRouterService) Serve(ctx context.Context) error {
	err := s.router.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("%s: %w", s.name, err)
	}
	return ErrRouterStopped
}

// String implements fmt.Stringer for logging.
func (s *EventRouterService) String() string {
	return s.name
}
