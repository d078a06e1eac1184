// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package modelstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/feedrank/internal/metrics"
)

var badgerKeyPrefix = []byte("model:")

// BadgerStore keeps models in an embedded BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a BadgerDB at path. An empty path opens
// an in-memory database.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for models: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Backend returns "badger".
func (s *BadgerStore) Backend() string { return "badger" }

// Close closes the database.
func (s *BadgerStore) Close() error { return s.db.Close() }

func badgerKey(userID string) []byte {
	return append(append([]byte{}, badgerKeyPrefix...), userID...)
}

// Save writes the model in a single transaction.
func (s *BadgerStore) Save(ctx context.Context, snap *Snapshot) (err error) {
	defer func() { metrics.RecordModelStore(s.Backend(), "save", err) }()
	if err := ctx.Err(); err != nil {
		return err
	}

	data, meta, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(meta.UserID), data)
	})
}

// Load reads and verifies the user's model.
func (s *BadgerStore) Load(ctx context.Context, userID string) (_ *Snapshot, err error) {
	defer func() {
		if !errors.Is(err, ErrModelNotFound) {
			metrics.RecordModelStore(s.Backend(), "load", err)
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var snap *Snapshot
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: user %s", ErrModelNotFound, userID)
		}
		if err != nil {
			return fmt.Errorf("get model: %w", err)
		}
		return item.Value(func(val []byte) error {
			var derr error
			snap, derr = decodeSnapshot(bytes.NewReader(val))
			return derr
		})
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Delete removes the user's model.
func (s *BadgerStore) Delete(_ context.Context, userID string) (err error) {
	defer func() { metrics.RecordModelStore(s.Backend(), "delete", err) }()
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(badgerKey(userID)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete model: %w", err)
		}
		return nil
	})
}

// List reads the metadata of every stored model.
func (s *BadgerStore) List(ctx context.Context) ([]Metadata, error) {
	var out []Metadata
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = badgerKeyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := it.Item().Value(func(val []byte) error {
				meta, err := decodeMetadata(bytes.NewReader(val))
				if err != nil {
					return nil // skip unreadable entries
				}
				out = append(out, meta)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	return out, nil
}
