// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

/*
Package api provides the operational HTTP surface of Feedrank using the
Chi router.

This is not the public web layer. It exposes only what an orchestrator and
a Prometheus scraper need:

	GET /healthz   liveness; 200 while the process is up
	GET /readyz    readiness; 503 until every registered check passes
	GET /metrics   Prometheus exposition (promhttp)

Every route is rate limited per client IP with go-chi/httprate and counted
in feedrank_http_requests_total. Health payloads are encoded with
goccy/go-json.

	handler := api.NewRouter(&cfg.Server, api.ReadinessCheck{
	    Name:  "database",
	    Check: db.Ping,
	})
	srv := &http.Server{Addr: addr, Handler: handler}
*/
package api
