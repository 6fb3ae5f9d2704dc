// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruangustavo/workspace-launcher/internal/api/version"
	"github.com/ruangustavo/workspace-launcher/internal/events"
	"github.com/ruangustavo/workspace-launcher/internal/launcher"
	"github.com/ruangustavo/workspace-launcher/internal/orchestrator"
	"github.com/ruangustavo/workspace-launcher/internal/status"
	"github.com/ruangustavo/workspace-launcher/internal/storage"
	"github.com/ruangustavo/workspace-launcher/internal/workspace"
)

// autoLauncher reports every app as started, failing those whose path
// contains "missing".
type autoLauncher struct {
	bus events.Publisher
}

func (l *autoLauncher) LaunchApps(ctx context.Context, batch launcher.LaunchBatch) error {
	go func() {
		results := make([]launcher.Result, 0, len(batch.Requests))
		for i, req := range batch.Requests {
			l.bus.Publish(context.Background(), launcher.Progress{
				AttemptID: batch.AttemptID, WorkspaceID: batch.WorkspaceID,
				Current: i, Total: len(batch.Requests), AppName: req.Name, AppID: req.AppID,
			}.Event())
			r := launcher.Result{AppID: req.AppID, Success: true}
			if strings.Contains(req.Path, "missing") {
				r = launcher.Result{AppID: req.AppID, Error: "application not found: " + req.Path}
			}
			results = append(results, r)
		}
		l.bus.Publish(context.Background(), launcher.Completion{
			AttemptID: batch.AttemptID, WorkspaceID: batch.WorkspaceID, Results: results,
		}.Event())
	}()
	return nil
}

type testEnv struct {
	server   *httptest.Server
	bus      *events.MemoryEventBus
	registry *workspace.Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	bus := events.NewMemoryEventBus(events.MemoryBusConfig{})
	registry := workspace.NewRegistry(storage.NewMemoryStore(), workspace.WithPublisher(bus))
	orch := orchestrator.New(registry, status.NewTracker(), &autoLauncher{bus: bus}, bus, orchestrator.Config{})
	registry.SetPruner(orch)

	srv := httptest.NewServer(NewRouter(Dependencies{
		Registry:     registry,
		Orchestrator: orch,
		EventBus:     bus,
		Version:      "test",
	}))
	t.Cleanup(func() {
		srv.Close()
		orch.Close()
		bus.Close()
	})
	return &testEnv{server: srv, bus: bus, registry: registry}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
	Meta struct {
		Warning string `json:"warning"`
	} `json:"meta"`
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, out interface{}) (int, envelope) {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	} else {
		rdr = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.server.URL+path, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	if out != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return resp.StatusCode, env
}

func (e *testEnv) create(t *testing.T, def workspace.Definition) *workspace.Workspace {
	t.Helper()
	var ws workspace.Workspace
	code, env := e.do(t, http.MethodPost, "/api/v1/workspaces", def, &ws)
	require.Equal(t, http.StatusCreated, code, "%+v", env.Error)
	return &ws
}

func devDefinition() workspace.Definition {
	return workspace.Definition{
		Name: "Dev",
		Apps: []workspace.App{
			{Name: "Editor", Path: "/usr/bin/editor"},
			{Name: "Browser", Path: "/usr/bin/browser", Delay: 1},
		},
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	env.create(t, devDefinition())

	var body struct {
		Status  string       `json:"status"`
		Version string       `json:"version"`
		Events  events.Stats `json:"events"`
	}
	code, _ := env.do(t, http.MethodGet, "/healthz", nil, &body)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "test", body.Version)
	assert.Positive(t, body.Events.HistorySize)
}

func TestWorkspaceCRUD(t *testing.T) {
	env := newTestEnv(t)

	ws := env.create(t, devDefinition())
	assert.NotEmpty(t, ws.ID)
	require.Len(t, ws.Apps, 2)
	assert.NotEmpty(t, ws.Apps[0].ID)

	var list []workspace.Workspace
	code, _ := env.do(t, http.MethodGet, "/api/v1/workspaces", nil, &list)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, list, 1)

	var got workspace.Workspace
	code, _ = env.do(t, http.MethodGet, "/api/v1/workspaces/"+ws.ID, nil, &got)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Dev", got.Name)

	var updated workspace.Workspace
	code, _ = env.do(t, http.MethodPatch, "/api/v1/workspaces/"+ws.ID, map[string]string{"name": "Development"}, &updated)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Development", updated.Name)
	assert.Len(t, updated.Apps, 2)
	assert.True(t, updated.UpdatedAt.After(ws.UpdatedAt))

	code, _ = env.do(t, http.MethodDelete, "/api/v1/workspaces/"+ws.ID, nil, nil)
	assert.Equal(t, http.StatusOK, code)

	code, e := env.do(t, http.MethodGet, "/api/v1/workspaces/"+ws.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, code)
	require.NotNil(t, e.Error)
	assert.Equal(t, "NOT_FOUND", e.Error.Code)
}

func TestCreate_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)

	code, e := env.do(t, http.MethodPost, "/api/v1/workspaces", workspace.Definition{Name: " "}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, e.Error)
	assert.Equal(t, "BAD_REQUEST", e.Error.Code)
	assert.Contains(t, e.Error.Details, "errors")
}

func TestCreate_MalformedBody(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Post(env.server.URL+"/api/v1/workspaces", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLaunch_Wait(t *testing.T) {
	env := newTestEnv(t)
	def := devDefinition()
	def.Apps[1].Path = "/opt/missing"
	ws := env.create(t, def)

	var resp struct {
		AttemptID string                  `json:"attempt_id"`
		Total     int                     `json:"total"`
		Outcome   *orchestrator.Outcome   `json:"outcome"`
		Status    *status.WorkspaceStatus `json:"status"`
	}
	code, e := env.do(t, http.MethodPost, "/api/v1/workspaces/"+ws.ID+"/launch?wait=true", nil, &resp)
	require.Equal(t, http.StatusOK, code, "%+v", e.Error)

	assert.NotEmpty(t, resp.AttemptID)
	assert.Equal(t, 2, resp.Total)
	require.NotNil(t, resp.Outcome)
	assert.Equal(t, orchestrator.KindPartialFailure, resp.Outcome.Kind)
	assert.Equal(t, 1, resp.Outcome.Failed)
	assert.True(t, resp.Status.IsRunning)
	assert.Equal(t, []string{ws.Apps[0].ID}, resp.Status.RunningApps)
}

func TestLaunch_AcceptedThenStatus(t *testing.T) {
	env := newTestEnv(t)
	ws := env.create(t, devDefinition())

	code, _ := env.do(t, http.MethodPost, "/api/v1/workspaces/"+ws.ID+"/launch", nil, nil)
	assert.Equal(t, http.StatusAccepted, code)

	assert.Eventually(t, func() bool {
		var st status.WorkspaceStatus
		env.do(t, http.MethodGet, "/api/v1/workspaces/"+ws.ID+"/status", nil, &st)
		return st.IsRunning && len(st.RunningApps) == 2 && st.LaunchProgress == nil
	}, 2*time.Second, 10*time.Millisecond)

	var all []status.WorkspaceStatus
	code, _ = env.do(t, http.MethodGet, "/api/v1/status", nil, &all)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, all, 1)

	var st status.WorkspaceStatus
	code, _ = env.do(t, http.MethodPost, "/api/v1/workspaces/"+ws.ID+"/stop", nil, &st)
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, st.IsRunning)
	assert.Empty(t, st.RunningApps)
}

func TestLaunch_Errors(t *testing.T) {
	env := newTestEnv(t)

	code, e := env.do(t, http.MethodPost, "/api/v1/workspaces/nope/launch", nil, nil)
	assert.Equal(t, http.StatusNotFound, code)
	require.NotNil(t, e.Error)

	ws := env.create(t, devDefinition())
	code, _ = env.do(t, http.MethodPost, "/api/v1/workspaces/"+ws.ID+"/apps/nope/launch", nil, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestLaunchApp(t *testing.T) {
	env := newTestEnv(t)
	ws := env.create(t, devDefinition())

	var resp struct {
		Total   int                   `json:"total"`
		Outcome *orchestrator.Outcome `json:"outcome"`
	}
	code, _ := env.do(t, http.MethodPost, "/api/v1/workspaces/"+ws.ID+"/apps/"+ws.Apps[1].ID+"/launch?wait=1", nil, &resp)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, orchestrator.KindFullSuccess, resp.Outcome.Kind)
}

func TestEventsHistory(t *testing.T) {
	env := newTestEnv(t)
	ws := env.create(t, devDefinition())

	var list []events.Event
	code, _ := env.do(t, http.MethodGet, "/api/v1/events?type=workspace.created&workspace="+ws.ID, nil, &list)
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, list, 1)
	assert.Equal(t, events.EventWorkspaceCreated, list[0].Type)

	for _, q := range []string{"since=yesterday", "limit=-1", "type=la*nch"} {
		code, _ = env.do(t, http.MethodGet, "/api/v1/events?"+q, nil, nil)
		assert.Equal(t, http.StatusBadRequest, code, q)
	}

	code, _ = env.do(t, http.MethodPost, "/api/v1/workspaces/"+ws.ID+"/launch?wait=true", nil, nil)
	require.Equal(t, http.StatusOK, code)
	var all []events.Event
	env.do(t, http.MethodGet, "/api/v1/events?type=launch.outcome", nil, &all)
	require.NotEmpty(t, all)
	attempt, _ := all[0].Payload["attempt_id"].(string)
	require.NotEmpty(t, attempt)

	code, _ = env.do(t, http.MethodGet, "/api/v1/events?attempt="+attempt, nil, &list)
	assert.Equal(t, http.StatusOK, code)
	for _, ev := range list {
		assert.Equal(t, attempt, ev.Payload["attempt_id"])
	}
	assert.GreaterOrEqual(t, len(list), 2)
}

func TestEventsWebSocket(t *testing.T) {
	env := newTestEnv(t)

	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/api/v1/events/ws?pattern=workspace.*"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// The subscription is registered after the upgrade; give it a moment.
	time.Sleep(50 * time.Millisecond)
	env.create(t, devDefinition())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var e events.Event
	require.NoError(t, conn.ReadJSON(&e))
	assert.Equal(t, events.EventWorkspaceCreated, e.Type)
}

func TestAppInfo(t *testing.T) {
	env := newTestEnv(t)

	path := filepath.Join(t.TempDir(), "tool.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))

	var info map[string]interface{}
	code, _ := env.do(t, http.MethodGet, "/api/v1/appinfo?path="+path, nil, &info)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "tool", info["name"])

	code, _ = env.do(t, http.MethodGet, "/api/v1/appinfo", nil, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestUnknownEndpoint(t *testing.T) {
	env := newTestEnv(t)

	code, e := env.do(t, http.MethodGet, "/api/v1/nothing", nil, nil)
	assert.Equal(t, http.StatusNotFound, code)
	require.NotNil(t, e.Error)
}

func TestUnsupportedVersion(t *testing.T) {
	env := newTestEnv(t)

	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/api/v1/workspaces", nil)
	require.NoError(t, err)
	req.Header.Set(version.Header, "2000-01-01")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServerConfigAddr(t *testing.T) {
	assert.Equal(t, "127.0.0.1:4646", ServerConfig{Host: "127.0.0.1", Port: 4646}.Addr())
}
