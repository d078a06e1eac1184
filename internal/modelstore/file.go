// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package modelstore

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tomtom215/feedrank/internal/metrics"
)

const modelFileSuffix = ".gob.gz"

// FileStore keeps one model file per user in a directory.
type FileStore struct {
	baseDir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return nil, fmt.Errorf("create model directory: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Backend returns "file".
func (s *FileStore) Backend() string { return "file" }

// Close is a no-op.
func (s *FileStore) Close() error { return nil }

// modelPath maps a user id to a file name. User ids are arbitrary text, so
// they are base64url encoded to stay within a single path element.
func (s *FileStore) modelPath(userID string) string {
	return filepath.Join(s.baseDir, base64.RawURLEncoding.EncodeToString([]byte(userID))+modelFileSuffix)
}

// Save writes the model to a temporary file and renames it over the old one.
func (s *FileStore) Save(ctx context.Context, snap *Snapshot) (err error) {
	defer func() { metrics.RecordModelStore(s.Backend(), "save", err) }()
	if err := ctx.Err(); err != nil {
		return err
	}

	data, meta, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.baseDir, ".model-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp model file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName) //nolint:errcheck // best-effort cleanup of a failed write
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write model file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync model file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close model file: %w", err)
	}
	if err = os.Rename(tmpName, s.modelPath(meta.UserID)); err != nil {
		return fmt.Errorf("replace model file: %w", err)
	}
	return nil
}

// Load reads and verifies the user's model.
func (s *FileStore) Load(ctx context.Context, userID string) (_ *Snapshot, err error) {
	defer func() {
		if !errors.Is(err, ErrModelNotFound) {
			metrics.RecordModelStore(s.Backend(), "load", err)
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.modelPath(userID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: user %s", ErrModelNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	return decodeSnapshot(bytes.NewReader(data))
}

// Delete removes the user's model file.
func (s *FileStore) Delete(_ context.Context, userID string) (err error) {
	defer func() { metrics.RecordModelStore(s.Backend(), "delete", err) }()
	if err := os.Remove(s.modelPath(userID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete model: %w", err)
	}
	return nil
}

// List reads the metadata of every model file. Unreadable files are skipped.
func (s *FileStore) List(ctx context.Context) ([]Metadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read model directory: %w", err)
	}

	var out []Metadata
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), modelFileSuffix) {
			continue
		}
		f, err := os.Open(filepath.Join(s.baseDir, entry.Name())) //nolint:gosec // path is built from a directory listing
		if err != nil {
			continue
		}
		meta, err := decodeMetadata(f)
		_ = f.Close() //nolint:errcheck // error on close after read is not actionable
		if err != nil {
			continue
		}
		out = append(out, meta)
	}
	return out, nil
}
