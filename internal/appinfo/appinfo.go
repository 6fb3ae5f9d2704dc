// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package appinfo describes an executable path for display.
package appinfo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotExist is returned when the path does not exist.
var ErrNotExist = errors.New("application not found")

// Info describes an executable.
type Info struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Exists     bool   `json:"exists"`
	Executable bool   `json:"executable"`
}

// Resolve returns the display name (the file name without extension) and
// existence of path.
func Resolve(path string) (*Info, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrNotExist)
	}

	fi, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotExist, path)
	}
	if err != nil {
		return nil, err
	}

	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" {
		name = base
	}

	return &Info{
		Name:       name,
		Path:       path,
		Exists:     true,
		Executable: !fi.IsDir() && fi.Mode()&0o111 != 0,
	}, nil
}
