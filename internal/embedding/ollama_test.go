// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package embedding

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func newOllamaServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestOllamaClientEmbed(t *testing.T) {
	reqs := make(chan embeddingRequest, 1)
	srv := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/embeddings" {
			t.Errorf("request = %s %s, want POST /api/embeddings", r.Method, r.URL.Path)
		}
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		reqs <- req
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"embedding":[3,4]}`))
	})

	c := NewOllamaClient(srv.URL+"/", "embeddinggemma", false, time.Second)
	vec, err := c.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	if len(vec) != 2 || vec[0] != 3 || vec[1] != 4 {
		t.Errorf("Embed() = %v, want [3 4]", vec)
	}
	got := <-reqs
	if got.Model != "embeddinggemma" || got.Prompt != "hello world" {
		t.Errorf("request body = %+v", got)
	}
	if c.Model() != "embeddinggemma" {
		t.Errorf("Model() = %q, want embeddinggemma", c.Model())
	}
}

func TestOllamaClientNormalize(t *testing.T) {
	srv := newOllamaServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"embedding":[3,4]}`))
	})

	c := NewOllamaClient(srv.URL, "m", true, time.Second)
	vec, err := c.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	if math.Abs(vec[0]-0.6) > 1e-12 || math.Abs(vec[1]-0.8) > 1e-12 {
		t.Errorf("Embed() = %v, want [0.6 0.8]", vec)
	}
}

func TestOllamaClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantSub string
	}{
		{"server error", http.StatusInternalServerError, "model not loaded", "status 500"},
		{"bad json", http.StatusOK, "{not json", "decode"},
		{"empty embedding", http.StatusOK, `{"embedding":[]}`, "empty embedding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newOllamaServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			c := NewOllamaClient(srv.URL, "m", false, time.Second)
			_, err := c.Embed(context.Background(), "text")
			if err == nil || !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("Embed() error = %v, want containing %q", err, tt.wantSub)
			}
		})
	}
}

func TestOllamaClientEmptyText(t *testing.T) {
	c := NewOllamaClient("http://127.0.0.1:1", "m", false, time.Second)
	if _, err := c.Embed(context.Background(), "  \n"); !errors.Is(err, ErrEmptyText) {
		t.Errorf("Embed(blank) error = %v, want ErrEmptyText", err)
	}
}
