// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

/*
Package modelstore persists per-user ranking models and serves them to the
ranker from memory.

# Storage Format

A model is gob-encoded, checksummed with SHA-256 and gzip-compressed. The
compressed payload travels inside a gob envelope together with its Metadata,
so listing models never has to decompress them. A checksum mismatch on load
is reported as ErrCorrupt.

# Backends

  - FileStore: one file per user in a directory, written to a temporary file
    and renamed into place so readers never observe a partial model.
  - BadgerStore: one key per user ("model:" + user id) in an embedded
    BadgerDB, written in a single transaction.

# Registry

Registry is the read path used while ranking. It keeps immutable snapshots in
an LRU cache and falls back to the Store on a miss. Writes persist first and
swap the cached pointer second, so a failed save never changes what ranking
sees.

	reg := modelstore.NewRegistry(store, 1000, 30*time.Minute)
	snap, err := reg.Get(ctx, "user-42")
	if errors.Is(err, modelstore.ErrModelNotFound) {
	    // cold start
	}
*/
package modelstore
