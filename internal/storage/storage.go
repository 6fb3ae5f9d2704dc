// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package storage provides the durable backends for the workspace registry.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ruangustavo/workspace-launcher/internal/workspace"
)

// Store is a workspace document backend.
type Store interface {
	workspace.Storage

	// Format is the document encoding the store expects.
	Format() workspace.Format

	// Close releases any resources held by the store.
	Close() error
}

// Open returns the store described by url. Supported forms:
//   - "" or "file:<path>"  a JSON (or .yaml/.yml) file
//   - "sqlite:<path>"      a SQLite database
//   - "mem:"               process memory
//
// Relative paths are resolved against dataDir.
func Open(url, dataDir string) (Store, error) {
	switch {
	case url == "":
		return NewFileStore(DefaultPath(dataDir)), nil
	case strings.HasPrefix(url, "file:"):
		path := strings.TrimPrefix(url, "file:")
		if path == "" {
			path = DefaultPath(dataDir)
		}
		return NewFileStore(resolve(path, dataDir)), nil
	case strings.HasPrefix(url, "sqlite:"):
		dsn := strings.TrimPrefix(url, "sqlite:")
		if dsn == "" {
			dsn = filepath.Join(dataDir, "workspaces", "workspaces.db")
		}
		return OpenSQLite(resolve(dsn, dataDir))
	case url == "mem:" || url == "memory:":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported storage url: %s", url)
	}
}

// DefaultPath returns the workspace file location under dataDir.
func DefaultPath(dataDir string) string {
	return filepath.Join(dataDir, "workspaces", "workspaces.json")
}

func resolve(path, dataDir string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	if filepath.IsAbs(path) || dataDir == "" {
		return path
	}
	return filepath.Join(dataDir, path)
}

// emptyDocument is what a store returns before anything was saved.
func emptyDocument(f workspace.Format) []byte {
	if f == workspace.FormatYAML {
		return []byte("[]\n")
	}
	return []byte("[]")
}
