// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package embedding

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"

	"github.com/tomtom215/feedrank/internal/cache"
	"github.com/tomtom215/feedrank/internal/metrics"
)

// CacheKey returns the content hash identifying an embedding: BLAKE2b-256 over
// the model name and the text, separated by a NUL byte, hex encoded.
func CacheKey(model, text string) string {
	h, _ := blake2b.New256(nil) // only fails for keys longer than 64 bytes
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Cache stores vectors by content hash.
type Cache interface {
	Get(ctx context.Context, key string) ([]float64, bool, error)
	Set(ctx context.Context, key string, vec []float64) error
	Backend() string
}

// MemoryCache is a process-local LRU cache.
type MemoryCache struct {
	lru *cache.LRU[[]float64]
}

// NewMemoryCache creates an LRU cache holding at most size vectors for ttl each.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{lru: cache.NewLRU[[]float64](size, ttl)}
}

// Get returns a copy of the cached vector.
func (m *MemoryCache) Get(_ context.Context, key string) ([]float64, bool, error) {
	v, ok := m.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	return append([]float64(nil), v...), true, nil
}

// Set stores a copy of vec.
func (m *MemoryCache) Set(_ context.Context, key string, vec []float64) error {
	m.lru.Add(key, append([]float64(nil), vec...))
	return nil
}

// Backend returns "memory".
func (m *MemoryCache) Backend() string { return "memory" }

// Stats exposes the underlying LRU counters.
func (m *MemoryCache) Stats() cache.Stats { return m.lru.Stats() }

// RedisCache shares embeddings between processes. Vectors are stored in the
// same comma-joined text form used by the articles table.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache wraps an existing client. A zero ttl stores keys without expiry.
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

// Get looks key up; a missing key is a miss, not an error.
func (r *RedisCache) Get(ctx context.Context, key string) ([]float64, bool, error) {
	s, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	vec, err := ParseVector(s)
	if err != nil {
		return nil, false, err
	}
	return vec, true, nil
}

// Set stores vec under key.
func (r *RedisCache) Set(ctx context.Context, key string, vec []float64) error {
	if err := r.client.Set(ctx, r.prefix+key, FormatVector(vec), r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Backend returns "redis".
func (r *RedisCache) Backend() string { return "redis" }

// Close closes the redis client.
func (r *RedisCache) Close() error { return r.client.Close() }

// CachedEmbedder serves repeated texts from a Cache. Cache failures are
// logged and bypassed; only provider failures reach the caller.
type CachedEmbedder struct {
	next   Embedder
	cache  Cache
	logger zerolog.Logger
}

// NewCachedEmbedder wraps next with c.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewCachedEmbedder(next Embedder, c Cache, logger zerolog.Logger) *CachedEmbedder {
	return &CachedEmbedder{next: next, cache: c, logger: logger}
}

// Model returns the wrapped provider's model name.
func (e *CachedEmbedder) Model() string { return e.next.Model() }

// Embed returns the cached vector for text or computes and stores it.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	key := CacheKey(e.Model(), text)
	backend := e.cache.Backend()

	vec, ok, err := e.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.RecordEmbeddingCache(backend, "error")
		e.logger.Warn().Err(err).Str("backend", backend).Msg("embedding cache read failed")
	case ok:
		metrics.RecordEmbeddingCache(backend, "hit")
		return vec, nil
	default:
		metrics.RecordEmbeddingCache(backend, "miss")
	}

	vec, err = e.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := e.cache.Set(ctx, key, vec); err != nil {
		e.logger.Warn().Err(err).Str("backend", backend).Msg("embedding cache write failed")
	}
	return vec, nil
}
