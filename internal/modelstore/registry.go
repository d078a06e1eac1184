// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package modelstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/feedrank/internal/cache"
	"github.com/tomtom215/feedrank/internal/config"
	"github.com/tomtom215/feedrank/internal/metrics"
)

// Registry serves models to the ranking path from memory and falls back to
// the Store on a miss. Put replaces a user's model in one step so readers
// see either the old or the new snapshot, never a partial one.
//
// Every Put and Delete bumps the user's generation. A miss only caches what
// it loaded if the generation is unchanged, so a slow Load can never pin a
// model that was replaced or deleted while it ran.
type Registry struct {
	store Store
	lru   *cache.LRU[*Snapshot]

	mu   sync.Mutex
	gens map[string]uint64
}

// NewRegistry creates a registry over store holding at most size models.
func NewRegistry(store Store, size int, ttl time.Duration) *Registry {
	return &Registry{
		store: store,
		lru:   cache.NewLRU[*Snapshot](size, ttl),
		gens:  make(map[string]uint64),
	}
}

// Get returns the user's current model, or ErrModelNotFound.
func (r *Registry) Get(ctx context.Context, userID string) (*Snapshot, error) {
	if snap, ok := r.lru.Get(userID); ok {
		return snap, nil
	}

	r.mu.Lock()
	gen := r.gens[userID]
	r.mu.Unlock()

	snap, err := r.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.gens[userID] == gen {
		r.lru.Add(userID, snap)
	}
	r.mu.Unlock()
	metrics.ModelRegistrySize.Set(float64(r.lru.Len()))
	return snap, nil
}

// Put persists snap and then publishes it to readers.
func (r *Registry) Put(ctx context.Context, snap *Snapshot) error {
	userID := snap.Metadata.UserID
	if err := r.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("save model for user %s: %w", userID, err)
	}

	r.mu.Lock()
	r.gens[userID]++
	r.lru.Add(userID, snap)
	r.mu.Unlock()
	metrics.ModelRegistrySize.Set(float64(r.lru.Len()))
	return nil
}

// Delete removes the user's model from the store and then from memory.
// The memory entry is dropped even when the store fails.
func (r *Registry) Delete(ctx context.Context, userID string) error {
	err := r.store.Delete(ctx, userID)

	r.mu.Lock()
	r.gens[userID]++
	r.lru.Remove(userID)
	r.mu.Unlock()
	metrics.ModelRegistrySize.Set(float64(r.lru.Len()))
	return err
}

// List returns metadata of every persisted model.
func (r *Registry) List(ctx context.Context) ([]Metadata, error) {
	return r.store.List(ctx)
}

// Stats reports in-memory cache counters.
func (r *Registry) Stats() cache.Stats {
	return r.lru.Stats()
}

// Store returns the underlying persistent store.
func (r *Registry) Store() Store {
	return r.store
}

// Close closes the underlying store.
func (r *Registry) Close() error {
	r.lru.Clear()
	return r.store.Close()
}

// New opens the store selected by cfg.Backend and wraps it in a Registry.
func New(cfg *config.ModelsConfig) (*Registry, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Backend {
	case config.ModelBackendBadger:
		store, err = NewBadgerStore(cfg.Path)
	case config.ModelBackendFile, "":
		store, err = NewFileStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown model backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return NewRegistry(store, cfg.RegistrySize, cfg.RegistryTTL), nil
}
