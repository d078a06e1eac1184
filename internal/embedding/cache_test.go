// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package embedding

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/feedrank/internal/config"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("gemma", "hello")
	if len(a) != 64 {
		t.Errorf("CacheKey() length = %d, want 64 hex chars", len(a))
	}
	if a != CacheKey("gemma", "hello") {
		t.Error("CacheKey() not deterministic")
	}
	if a == CacheKey("other", "hello") {
		t.Error("CacheKey() should depend on model")
	}
	if CacheKey("ab", "c") == CacheKey("a", "bc") {
		t.Error("CacheKey() should separate model and text")
	}
}

func TestMemoryCacheCopies(t *testing.T) {
	c := NewMemoryCache(10, time.Minute)
	ctx := context.Background()

	vec := []float64{1, 2, 3}
	if err := c.Set(ctx, "k", vec); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	vec[0] = 99

	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v, %v", got, ok, err)
	}
	if got[0] != 1 {
		t.Errorf("cached vector mutated through caller slice: %v", got)
	}
	got[1] = 42
	again, _, _ := c.Get(ctx, "k")
	if again[1] != 2 {
		t.Errorf("cached vector mutated through returned slice: %v", again)
	}

	if _, ok, _ := c.Get(ctx, "missing"); ok {
		t.Error("Get(missing) reported a hit")
	}
}

// failingCache fails every operation.
type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]float64, bool, error) {
	return nil, false, errors.New("cache down")
}

func (failingCache) Set(context.Context, string, []float64) error { return errors.New("cache down") }

func (failingCache) Backend() string { return "failing" }

func TestCachedEmbedder(t *testing.T) {
	fake := &fakeEmbedder{model: "cached", vec: []float64{0.5, 0.5}}
	e := NewCachedEmbedder(fake, NewMemoryCache(10, time.Minute), zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := e.Embed(ctx, "same text"); err != nil {
			t.Fatalf("Embed() error: %v", err)
		}
	}
	if fake.Calls() != 1 {
		t.Errorf("provider calls = %d, want 1", fake.Calls())
	}

	if _, err := e.Embed(ctx, "other text"); err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	if fake.Calls() != 2 {
		t.Errorf("provider calls = %d, want 2", fake.Calls())
	}
}

func TestCachedEmbedderBypassesBrokenCache(t *testing.T) {
	fake := &fakeEmbedder{model: "cached-broken", vec: []float64{1}}
	e := NewCachedEmbedder(fake, failingCache{}, zerolog.Nop())

	vec, err := e.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	if len(vec) != 1 {
		t.Errorf("Embed() = %v", vec)
	}
}

func TestCachedEmbedderDoesNotCacheErrors(t *testing.T) {
	fake := &fakeEmbedder{model: "cached-err", err: errors.New("boom")}
	e := NewCachedEmbedder(fake, NewMemoryCache(10, time.Minute), zerolog.Nop())

	for i := 0; i < 2; i++ {
		if _, err := e.Embed(context.Background(), "text"); err == nil {
			t.Fatal("Embed() expected error")
		}
	}
	if fake.Calls() != 2 {
		t.Errorf("provider calls = %d, want 2", fake.Calls())
	}
}

func TestNewDisabled(t *testing.T) {
	emb, closer, err := New(&config.EmbeddingConfig{Enabled: false}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if emb != nil {
		t.Errorf("New(disabled) = %v, want nil embedder", emb)
	}
	if closer == nil || closer.Close() != nil {
		t.Error("New(disabled) closer should be a no-op")
	}
}

func TestNewMemoryChain(t *testing.T) {
	var calls atomic.Int32
	srv := newOllamaServer(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"embedding":[1,2,3]}`))
	})

	cfg := testEmbeddingConfig()
	cfg.Enabled = true
	cfg.URL = srv.URL
	cfg.Model = "chain-model"
	cfg.Timeout = time.Second
	cfg.Cache = config.EmbeddingCacheConfig{Backend: config.CacheBackendMemory, Size: 10, TTL: time.Minute}

	emb, closer, err := New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer closer.Close()

	for i := 0; i < 2; i++ {
		vec, err := emb.Embed(context.Background(), "title abstract")
		if err != nil {
			t.Fatalf("Embed() error: %v", err)
		}
		if len(vec) != 3 {
			t.Errorf("Embed() = %v", vec)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server calls = %d, want 1", n)
	}
	if emb.Model() != "chain-model" {
		t.Errorf("Model() = %q", emb.Model())
	}
}
