// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/feedrank/internal/config"
)

// OpsServerService serves the ops router (health, readiness, metrics) under
// supervision. Every Serve binds a fresh listener, so a restart after a bind
// failure tries the port again.
//
//	handler := api.NewRouter(&cfg.Server, checks...)
//	tree.AddAPIService(services.NewOpsServerService(&cfg.Server, handler, cfg.Supervisor.ShutdownTimeout, logger))
type OpsServerService struct {
	addr    string
	handler http.Handler
	timeout time.Duration
	drain   time.Duration
	logger  zerolog.Logger

	bound atomic.Pointer[string]
}

// NewOpsServerService creates the service for cfg.Host:cfg.Port. Port 0
// binds an ephemeral port. A non-positive drain defaults to 10s.
//
//nolint:gocritic // zerolog.Logger is passed by value
func NewOpsServerService(cfg *config.ServerConfig, handler http.Handler, drain time.Duration, logger zerolog.Logger) *OpsServerService {
	if drain <= 0 {
		drain = 10 * time.Second
	}
	return &OpsServerService{
		addr:    net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		handler: handler,
		timeout: cfg.Timeout,
		drain:   drain,
		logger:  logger.With().Str("service", "ops-http").Logger(),
	}
}

// Serve implements suture.Service. It returns ctx.Err() after a graceful
// drain, and a wrapped error when binding or serving fails.
func (s *OpsServerService) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("ops http listen on %s: %w", s.addr, err)
	}
	bound := ln.Addr().String()
	s.bound.Store(&bound)
	defer s.bound.Store(nil)

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.timeout,
		WriteTimeout:      s.timeout,
	}
	s.logger.Info().Str("addr", bound).Msg("ops http server listening")

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return fmt.Errorf("ops http server on %s: %w", bound, err)

	case <-ctx.Done():
		// ctx is already done; the drain needs its own deadline.
		drainCtx, cancel := context.WithTimeout(context.Background(), s.drain)
		defer cancel()

		if err := srv.Shutdown(drainCtx); err != nil {
			_ = srv.Close()
			<-errCh
			return fmt.Errorf("ops http drain: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn().Err(err).Msg("ops http server stopped with error")
		}
		return ctx.Err()
	}
}

// Addr returns the bound listen address while serving, or "".
func (s *OpsServerService) Addr() string {
	if p := s.bound.Load(); p != nil {
		return *p
	}
	return ""
}

// String implements fmt.Stringer for logging.
func (s *OpsServerService) String() string {
	return "ops-http"
}
