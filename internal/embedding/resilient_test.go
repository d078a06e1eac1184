// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package embedding

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/feedrank/internal/config"
)

// fakeEmbedder returns a fixed vector or a fixed error and counts calls.
type fakeEmbedder struct {
	mu    sync.Mutex
	model string
	vec   []float64
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if text == "" {
		return nil, ErrEmptyText
	}
	if f.err != nil {
		return nil, f.err
	}
	return append([]float64(nil), f.vec...), nil
}

func (f *fakeEmbedder) Model() string { return f.model }

func (f *fakeEmbedder) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testEmbeddingConfig() *config.EmbeddingConfig {
	return &config.EmbeddingConfig{
		RateLimit: 0,
		Burst:     1,
		Breaker: config.BreakerConfig{
			FailureThreshold: 2,
			Timeout:          time.Minute,
			MaxRequests:      1,
		},
	}
}

func TestResilientEmbedderSuccess(t *testing.T) {
	fake := &fakeEmbedder{model: "resilient-ok", vec: []float64{1, 2}}
	r := NewResilientEmbedder(fake, testEmbeddingConfig(), zerolog.Nop())

	vec, err := r.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	if len(vec) != 2 {
		t.Errorf("Embed() = %v, want 2 components", vec)
	}
	if r.State() != "closed" {
		t.Errorf("State() = %q, want closed", r.State())
	}
}

func TestResilientEmbedderOpensCircuit(t *testing.T) {
	fake := &fakeEmbedder{model: "resilient-fail", err: errors.New("connection refused")}
	r := NewResilientEmbedder(fake, testEmbeddingConfig(), zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := r.Embed(ctx, "text"); !errors.Is(err, ErrEmbeddingUnavailable) {
			t.Fatalf("call %d error = %v, want ErrEmbeddingUnavailable", i, err)
		}
	}
	if r.State() != "open" {
		t.Fatalf("State() = %q, want open", r.State())
	}

	_, err := r.Embed(ctx, "text")
	if !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Errorf("rejected call error = %v, want ErrEmbeddingUnavailable", err)
	}
	if fake.Calls() != 2 {
		t.Errorf("provider calls = %d, want 2 (third call rejected by breaker)", fake.Calls())
	}
}

func TestResilientEmbedderEmptyTextDoesNotTrip(t *testing.T) {
	fake := &fakeEmbedder{model: "resilient-empty", vec: []float64{1}}
	r := NewResilientEmbedder(fake, testEmbeddingConfig(), zerolog.Nop())

	for i := 0; i < 5; i++ {
		if _, err := r.Embed(context.Background(), ""); !errors.Is(err, ErrEmptyText) {
			t.Fatalf("Embed(\"\") error = %v, want ErrEmptyText", err)
		}
	}
	if r.State() != "closed" {
		t.Errorf("State() = %q, want closed", r.State())
	}
}

func TestResilientEmbedderCancelledContext(t *testing.T) {
	fake := &fakeEmbedder{model: "resilient-ctx", vec: []float64{1}}
	cfg := testEmbeddingConfig()
	cfg.RateLimit = 0.001
	r := NewResilientEmbedder(fake, cfg, zerolog.Nop())

	// Drain the single burst token.
	if _, err := r.Embed(context.Background(), "a"); err != nil {
		t.Fatalf("first Embed() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Embed(ctx, "b")
	if !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Errorf("Embed() error = %v, want ErrEmbeddingUnavailable", err)
	}
	if fake.Calls() != 1 {
		t.Errorf("provider calls = %d, want 1", fake.Calls())
	}
}
