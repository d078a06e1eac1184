// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/feedrank/internal/metrics"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		wantSame bool
	}{
		{"generated when absent", "", false},
		{"upstream id kept", "abc-123", true},
		{"oversized id replaced", strings.Repeat("x", 200), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			header := rec.Header().Get(RequestIDHeader)
			if header == "" {
				t.Fatal("response is missing X-Request-ID")
			}
			if header != seen {
				t.Errorf("context id = %q, header = %q, want equal", seen, header)
			}
			if (header == tt.incoming) != tt.wantSame {
				t.Errorf("X-Request-ID = %q, incoming %q, wantSame %v", header, tt.incoming, tt.wantSame)
			}
		})
	}
}

func TestPrometheusMetrics(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/models/{user}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/boom", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	r.Get("/implicit", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	tests := []struct {
		path     string
		endpoint string
		status   string
	}{
		{"/models/u1", "/models/{user}", "204"},
		{"/models/u2", "/models/{user}", "204"},
		{"/boom", "/boom", "500"},
		{"/implicit", "/implicit", "200"},
		{"/wp-admin.php", unmatchedEndpoint, "404"},
	}

	before := make(map[string]float64)
	for _, tt := range tests {
		key := tt.endpoint + tt.status
		if _, ok := before[key]; !ok {
			before[key] = testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("GET", tt.endpoint, tt.status))
		}
	}

	want := make(map[string]float64)
	for _, tt := range tests {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))
		want[tt.endpoint+tt.status]++
	}

	for _, tt := range tests {
		key := tt.endpoint + tt.status
		got := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("GET", tt.endpoint, tt.status)) - before[key]
		if got != want[key] {
			t.Errorf("http_requests{%s,%s} delta = %v, want %v", tt.endpoint, tt.status, got, want[key])
		}
	}
}
