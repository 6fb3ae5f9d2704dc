// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package e2e

import (
	"context"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruangustavo/workspace-launcher/internal/app"
	"github.com/ruangustavo/workspace-launcher/pkg/client"
)

// startLauncher runs the full application against a YAML workspace file
// and returns a client for it.
func startLauncher(t *testing.T, extraConfig string) (*client.Client, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX executables")
	}

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "launcher.hjson")
	cfg := `{
  data_dir: "` + dir + `"
  storage: { url: "file:workspaces.yaml" }
  launch: { completion_timeout: "5s" }
  ` + extraConfig + `
}`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	a, err := app.New(app.Options{ConfigPath: cfgPath, Version: "e2e"})
	require.NoError(t, err)
	require.NoError(t, a.Initialize(context.Background()))

	server := httptest.NewServer(a.Handler())
	t.Cleanup(func() {
		server.Close()
		a.Shutdown(context.Background())
	})
	return client.New(server.URL), dir
}

func truePath(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("true")
	if err != nil {
		t.Skip("true not on PATH")
	}
	return path
}

func TestWorkspaceLifecycle(t *testing.T) {
	c, dir := startLauncher(t, "")
	ctx := context.Background()

	ws, err := c.Workspaces.Create(ctx, client.WorkspaceDefinition{
		Name: "Dev",
		Apps: []client.App{
			{Name: "One", Path: truePath(t)},
			{Name: "Missing", Path: "/definitely/not/here"},
		},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "workspaces.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: Dev")

	res, err := c.Launch.Workspace(ctx, ws.ID, true)
	require.NoError(t, err)
	require.NotNil(t, res.Outcome)
	assert.Equal(t, client.OutcomePartialFailure, res.Outcome.Kind)
	assert.Equal(t, []string{ws.Apps[0].ID}, res.Status.RunningApps)

	_, err = c.Launch.Stop(ctx, ws.ID)
	require.NoError(t, err)

	require.NoError(t, c.Workspaces.Delete(ctx, ws.ID))
	list, err := c.Workspaces.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLaunch_TotalFailure(t *testing.T) {
	c, _ := startLauncher(t, "")
	ctx := context.Background()

	ws, err := c.Workspaces.Create(ctx, client.WorkspaceDefinition{
		Name: "Broken",
		Apps: []client.App{{Name: "Nope", Path: "/no/such/app"}},
	})
	require.NoError(t, err)

	res, err := c.Launch.Workspace(ctx, ws.ID, true)
	require.NoError(t, err)
	assert.Equal(t, client.OutcomeTotalFailure, res.Outcome.Kind)
	assert.False(t, res.Status.IsRunning)
}

func TestLaunch_ConflictWhileLaunching(t *testing.T) {
	c, _ := startLauncher(t, "")
	ctx := context.Background()

	ws, err := c.Workspaces.Create(ctx, client.WorkspaceDefinition{
		Name: "Slow",
		Apps: []client.App{
			{Name: "First", Path: truePath(t)},
			{Name: "Second", Path: truePath(t), Delay: 1},
		},
	})
	require.NoError(t, err)

	first, err := c.Launch.Workspace(ctx, ws.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Total)

	_, err = c.Launch.Workspace(ctx, ws.ID, false)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "CONFLICT", apiErr.Code)

	assert.Eventually(t, func() bool {
		st, err := c.Launch.Status(ctx, ws.ID)
		return err == nil && st.LaunchProgress == nil && len(st.RunningApps) == 2
	}, 5*time.Second, 50*time.Millisecond)
}

func TestEventStream_FollowsLaunch(t *testing.T) {
	c, _ := startLauncher(t, "")

	ws, err := c.Workspaces.Create(context.Background(), client.WorkspaceDefinition{
		Name: "Watched",
		Apps: []client.App{{Name: "One", Path: truePath(t)}},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var (
		mu    sync.Mutex
		types []string
	)
	done := make(chan error, 1)
	go func() {
		done <- c.Events.Stream(ctx, client.StreamOptions{Pattern: "launch.*", Workspace: ws.ID}, func(e client.Event) error {
			mu.Lock()
			types = append(types, e.Type)
			mu.Unlock()
			if e.Type == "launch.outcome" {
				cancel()
			}
			return nil
		})
	}()

	// Let the stream subscribe before launching.
	time.Sleep(100 * time.Millisecond)
	_, err = c.Launch.Workspace(context.Background(), ws.ID, false)
	require.NoError(t, err)

	require.NoError(t, <-done)
	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, types)
	assert.Equal(t, "launch.started", types[0])
	joined := strings.Join(types, ",")
	assert.Contains(t, joined, "launch.progress")
	assert.Contains(t, joined, "launch.outcome")
}

func TestExternalEditIsReloaded(t *testing.T) {
	c, dir := startLauncher(t, `watch: { debounce: "20ms" }`)

	doc := `- id: hand
  name: Hand Written
  apps:
    - id: a
      name: Shell
      path: /bin/sh
  createdAt: "2026-01-01T00:00:00Z"
  updatedAt: "2026-01-01T00:00:00Z"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "workspaces.yaml"), []byte(doc), 0o644))

	assert.Eventually(t, func() bool {
		ws, err := c.Workspaces.Get(context.Background(), "hand")
		return err == nil && ws.Name == "Hand Written"
	}, 3*time.Second, 25*time.Millisecond)
}
