// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ruangustavo/workspace-launcher/internal/workspace"
)

// FileStore keeps the workspace document in a single file.
type FileStore struct {
	path string

	mu   sync.Mutex
	last [sha256.Size]byte // digest of the content last read or written
}

// NewFileStore creates a file store at path. The file and its directory are
// created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Format is YAML for .yaml/.yml files and JSON otherwise.
func (s *FileStore) Format() workspace.Format {
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".yaml", ".yml":
		return workspace.FormatYAML
	}
	return workspace.FormatJSON
}

// Load reads the file. A missing file yields an empty document.
func (s *FileStore) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return emptyDocument(s.Format()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	s.remember(data)
	return data, nil
}

// Save atomically replaces the file using tmp+rename.
func (s *FileStore) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write tmp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename tmp to %s: %w", filepath.Base(s.path), err)
	}
	s.remember(data)
	return nil
}

// Changed reports whether the file differs from what this store last read
// or wrote, so the registry does not reload its own saves.
func (s *FileStore) Changed() (bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		data = emptyDocument(s.Format())
	} else if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return sha256.Sum256(data) != s.last, nil
}

func (s *FileStore) remember(data []byte) {
	sum := sha256.Sum256(data)
	s.mu.Lock()
	s.last = sum
	s.mu.Unlock()
}

// Close is a no-op.
func (s *FileStore) Close() error {
	return nil
}
