// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruangustavo/workspace-launcher/internal/config"
)

func TestGenerateConfig_Loads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launcher.hjson")
	require.NoError(t, os.WriteFile(path, []byte(generateConfig(5050, "sqlite:workspaces/workspaces.db", "30s")), 0o644))

	cfg, err := config.NewLoader().LoadWithDefaults(t.Context(), path)
	require.NoError(t, err)
	assert.Equal(t, 5050, cfg.Server.Port)
	assert.Equal(t, "sqlite:workspaces/workspaces.db", cfg.Storage.URL)
	assert.Equal(t, "30s", cfg.Launch.CompletionTimeout)
	assert.True(t, cfg.Watch.IsEnabled())
}

func TestFindConfig_Env(t *testing.T) {
	t.Setenv("LAUNCHER_CONFIG", "/etc/launcher.hjson")
	assert.Equal(t, "/etc/launcher.hjson", findConfig())
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}
