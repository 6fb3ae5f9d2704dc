// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package appinfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Editor.exe")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))

	info, err := Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, "Editor", info.Name)
	assert.Equal(t, path, info.Path)
	assert.True(t, info.Exists)
	assert.True(t, info.Executable)
}

func TestResolve_NoExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	info, err := Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, "notes", info.Name)
	assert.False(t, info.Executable)
}

func TestResolve_Missing(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrNotExist)

	_, err = Resolve("  ")
	assert.ErrorIs(t, err, ErrNotExist)
}
