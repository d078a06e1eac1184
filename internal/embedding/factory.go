// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package embedding

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tomtom215/feedrank/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New assembles the provider chain described by cfg:
// cache -> rate limit + circuit breaker -> Ollama.
//
// A disabled provider yields a nil Embedder; callers then treat articles
// without a stored vector as unusable. The returned closer releases the
// cache connection and is never nil.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(cfg *config.EmbeddingConfig, logger zerolog.Logger) (Embedder, io.Closer, error) {
	if !cfg.Enabled {
		return nil, nopCloser{}, nil
	}
	logger = logger.With().Str("component", "embedding").Str("model", cfg.Model).Logger()

	var emb Embedder = NewOllamaClient(cfg.URL, cfg.Model, cfg.Normalize, cfg.Timeout)
	emb = NewResilientEmbedder(emb, cfg, logger)

	switch cfg.Cache.Backend {
	case config.CacheBackendMemory:
		emb = NewCachedEmbedder(emb, NewMemoryCache(cfg.Cache.Size, cfg.Cache.TTL), logger)
		return emb, nopCloser{}, nil

	case config.CacheBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nopCloser{}, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Cache.RedisAddr, err)
		}
		rc := NewRedisCache(client, cfg.Cache.KeyPrefix, cfg.Cache.TTL)
		logger.Info().Str("addr", cfg.Cache.RedisAddr).Msg("embedding cache connected to redis")
		return NewCachedEmbedder(emb, rc, logger), rc, nil

	default:
		return emb, nopCloser{}, nil
	}
}
