// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/feedrank/internal/logging"
)

// ReadinessCheck is one dependency probed by /readyz.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// CheckResult is the per-check part of a readiness response.
type CheckResult struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status    string        `json:"status"`
	Uptime    float64       `json:"uptime_seconds"`
	Timestamp time.Time     `json:"timestamp"`
	Checks    []CheckResult `json:"checks,omitempty"`
}

type healthHandler struct {
	checks  []ReadinessCheck
	timeout time.Duration
	started time.Time
	now     func() time.Time
}

func newHealthHandler(checks []ReadinessCheck, timeout time.Duration) *healthHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &healthHandler{
		checks:  checks,
		timeout: timeout,
		started: time.Now(),
		now:     time.Now,
	}
}

func (h *healthHandler) live(w http.ResponseWriter, _ *http.Request) {
	now := h.now()
	respondJSON(w, http.StatusOK, &HealthResponse{
		Status:    "ok",
		Uptime:    now.Sub(h.started).Seconds(),
		Timestamp: now,
	})
}

func (h *healthHandler) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := &HealthResponse{Status: "ready", Checks: make([]CheckResult, 0, len(h.checks))}
	code := http.StatusOK
	for _, c := range h.checks {
		res := CheckResult{Name: c.Name, Status: "ok"}
		if err := c.Check(ctx); err != nil {
			res.Status = "failed"
			res.Error = err.Error()
			resp.Status = "not_ready"
			code = http.StatusServiceUnavailable
		}
		resp.Checks = append(resp.Checks, res)
	}

	now := h.now()
	resp.Uptime = now.Sub(h.started).Seconds()
	resp.Timestamp = now
	respondJSON(w, code, resp)
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal health response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Debug().Err(err).Msg("failed to write health response")
	}
}
