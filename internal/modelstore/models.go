// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package modelstore

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tomtom215/feedrank/internal/regression"
)

var (
	// ErrModelNotFound means the user has no persisted model (cold start).
	ErrModelNotFound = errors.New("model not found")

	// ErrCorrupt means a stored model failed decoding or checksum verification.
	ErrCorrupt = errors.New("stored model is corrupt")
)

// Metadata describes a stored model.
type Metadata struct {
	UserID string `json:"user_id"`

	// Kind is the regressor kind, "ridge" or "mlp".
	Kind string `json:"kind"`

	// Dim is the feature dimensionality the model accepts.
	Dim int `json:"dim"`

	TrainedAt time.Time `json:"trained_at"`
	SavedAt   time.Time `json:"saved_at"`

	TrainSamples   int `json:"train_samples"`
	HoldoutSamples int `json:"holdout_samples"`

	// ValidationMSE is advisory; it is the training MSE when the holdout is empty.
	ValidationMSE float64 `json:"validation_mse"`

	// TrainedThrough is the interaction log position the model covers.
	TrainedThrough int64 `json:"trained_through"`

	TrainingDurationMS int64 `json:"training_duration_ms"`

	// Checksum is the SHA-256 of the uncompressed model encoding.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed model size.
	SizeBytes int64 `json:"size_bytes"`
}

// Snapshot is an immutable trained model with its metadata. Snapshots are
// shared between goroutines and must not be modified after creation.
type Snapshot struct {
	Metadata Metadata
	Model    regression.Regressor
}

// Store persists snapshots by user id.
type Store interface {
	// Save replaces the user's model atomically.
	Save(ctx context.Context, snap *Snapshot) error

	// Load returns ErrModelNotFound when the user has no model.
	Load(ctx context.Context, userID string) (*Snapshot, error)

	// Delete removes the user's model. Deleting a missing model is not an error.
	Delete(ctx context.Context, userID string) error

	// List returns the metadata of every stored model.
	List(ctx context.Context) ([]Metadata, error)

	Backend() string
	Close() error
}

// storedFile is the persisted envelope.
type storedFile struct {
	Metadata       Metadata
	CompressedData []byte
}

// payload carries the regressor through gob's interface encoding.
type payload struct {
	Model regression.Regressor
}

// encodeSnapshot serializes snap and returns the bytes together with the
// completed metadata (checksum, size, save time).
func encodeSnapshot(snap *Snapshot) ([]byte, Metadata, error) {
	if snap == nil || snap.Model == nil {
		return nil, Metadata{}, fmt.Errorf("encode model: nil snapshot")
	}
	meta := snap.Metadata

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(payload{Model: snap.Model}); err != nil {
		return nil, Metadata{}, fmt.Errorf("encode model: %w", err)
	}
	hash := sha256.Sum256(raw.Bytes())
	meta.Checksum = hex.EncodeToString(hash[:])

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw.Bytes()); err != nil {
		return nil, Metadata{}, fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, Metadata{}, fmt.Errorf("finalize compression: %w", err)
	}

	meta.SizeBytes = int64(compressed.Len())
	meta.SavedAt = time.Now()
	meta.Kind = snap.Model.Kind()
	meta.Dim = snap.Model.Dim()

	var out bytes.Buffer
	if err := gob.NewEncoder(&out).Encode(storedFile{Metadata: meta, CompressedData: compressed.Bytes()}); err != nil {
		return nil, Metadata{}, fmt.Errorf("write model envelope: %w", err)
	}
	return out.Bytes(), meta, nil
}

// decodeMetadata reads only the envelope metadata.
func decodeMetadata(r io.Reader) (Metadata, error) {
	var sf storedFile
	if err := gob.NewDecoder(r).Decode(&sf); err != nil {
		return Metadata{}, fmt.Errorf("%w: read envelope: %v", ErrCorrupt, err)
	}
	return sf.Metadata, nil
}

// decodeSnapshot reverses encodeSnapshot and verifies the checksum.
func decodeSnapshot(r io.Reader) (*Snapshot, error) {
	var sf storedFile
	if err := gob.NewDecoder(r).Decode(&sf); err != nil {
		return nil, fmt.Errorf("%w: read envelope: %v", ErrCorrupt, err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("%w: decompress model: %v", ErrCorrupt, err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("%w: read decompressed data: %v", ErrCorrupt, err)
	}

	hash := sha256.Sum256(raw)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Metadata.Checksum {
		return nil, fmt.Errorf("%w: checksum mismatch: expected %s, got %s", ErrCorrupt, sf.Metadata.Checksum, checksum)
	}

	var p payload
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: decode model: %v", ErrCorrupt, err)
	}
	if p.Model == nil {
		return nil, fmt.Errorf("%w: empty model", ErrCorrupt)
	}
	return &Snapshot{Metadata: sf.Metadata, Model: p.Model}, nil
}

// Register gob types for serialization.
//
//nolint:gochecknoinits // gob.Register must be called in init for type registration
func init() {
	gob.Register(&regression.Ridge{})
	gob.Register(&regression.MLP{})
	gob.Register(storedFile{})
}
