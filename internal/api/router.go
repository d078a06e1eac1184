// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/feedrank/internal/config"
	"github.com/tomtom215/feedrank/internal/middleware"
)

// NewRouter builds the ops handler. checks are evaluated in order by /readyz.
func NewRouter(cfg *config.ServerConfig, checks ...ReadinessCheck) http.Handler {
	h := newHealthHandler(checks, cfg.Timeout)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	if cfg.RateLimitRequests > 0 && cfg.RateLimitWindow > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}
	r.Use(middleware.PrometheusMetrics)

	r.Get("/healthz", h.live)
	r.Get("/readyz", h.ready)
	r.Handle("/metrics", promhttp.Handler())
	return r
}
