// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/tomtom215/feedrank/internal/config"
	"github.com/tomtom215/feedrank/internal/database"
	"github.com/tomtom215/feedrank/internal/events"
	"github.com/tomtom215/feedrank/internal/logging"
)

var errRouterNotRunning = errors.New("event router is not running")

// eventComponents holds the ingestion pipeline. The zero value means
// events are disabled and every method is safe to call.
type eventComponents struct {
	transport *events.Transport
	sink      *events.Sink
	router    *events.Router
}

// initEvents builds the transport, the publishing sink and the consuming
// router. The transport outlives router restarts and is closed by main.
//
//nolint:gocritic // zerolog.Logger is passed by value
func initEvents(cfg *config.Config, db *database.DB, logger zerolog.Logger) (*eventComponents, error) {
	if !cfg.Events.Enabled {
		logging.Info().Msg("Event ingestion disabled; interactions are recorded directly")
		return &eventComponents{}, nil
	}

	wmLogger := events.NewLoggerAdapter(logger.With().Str("component", "events").Logger())
	transport, err := events.NewTransport(&cfg.Events, wmLogger)
	if err != nil {
		return nil, err
	}

	consumer := events.NewConsumer(db, logger)
	router, err := events.NewRouter(&cfg.Events, transport.Subscriber, consumer, wmLogger)
	if err != nil {
		_ = transport.Close()
		return nil, err
	}

	logging.Info().
		Str("transport", transport.Name).
		Str("topic", cfg.Events.Topic).
		Msg("Event ingestion initialized")

	return &eventComponents{
		transport: transport,
		sink:      events.NewSink(transport.Publisher, cfg.Events.Topic, logger),
		router:    router,
	}, nil
}

// Enabled reports whether ingestion is configured.
func (e *eventComponents) Enabled() bool {
	return e.router != nil
}

// Sink returns the publisher side, or nil when disabled.
func (e *eventComponents) Sink() *events.Sink {
	return e.sink
}

// RouterCheck is the readiness probe for the ingest layer.
func (e *eventComponents) RouterCheck(context.Context) error {
	if e.router == nil || !e.router.IsRunning() {
		return errRouterNotRunning
	}
	return nil
}

// Close releases the transport.
func (e *eventComponents) Close() {
	if e.transport == nil {
		return
	}
	if err := e.transport.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing event transport")
	}
}
