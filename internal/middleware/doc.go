// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package middleware provides the HTTP middleware shared by Feedrank's
// chi routers.
//
//   - RequestID: accepts or generates X-Request-ID and tags the request
//     context with it as the logging correlation id
//   - PrometheusMetrics: counts requests by method, route pattern and
//     status in feedrank_http_requests_total, and logs 5xx responses
//
// Both follow the chi signature func(http.Handler) http.Handler:
//
//	r := chi.NewRouter()
//	r.Use(middleware.RequestID)
//	r.Use(middleware.PrometheusMetrics)
package middleware
