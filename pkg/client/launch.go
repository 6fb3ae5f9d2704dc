// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"net/http"
	"net/url"
)

// LaunchClient starts and stops workspaces.
//
// A launch runs in the background on the server. With wait=true the call
// blocks until every app was handled and the result carries the [Outcome];
// otherwise poll [LaunchClient.Status] or follow [EventClient.Stream].
type LaunchClient struct {
	c *Client
}

// Workspace launches every app of a workspace in order. A workspace that is
// already launching is a CONFLICT.
func (l *LaunchClient) Workspace(ctx context.Context, id string, wait bool) (*LaunchResult, error) {
	return l.launch(ctx, workspacePath(id)+"/launch", wait)
}

// App launches a single app of a workspace.
func (l *LaunchClient) App(ctx context.Context, workspaceID, appID string, wait bool) (*LaunchResult, error) {
	return l.launch(ctx, workspacePath(workspaceID)+"/apps/"+url.PathEscape(appID)+"/launch", wait)
}

func (l *LaunchClient) launch(ctx context.Context, path string, wait bool) (*LaunchResult, error) {
	if wait {
		path += "?wait=true"
	}
	var res LaunchResult
	if err := l.c.call(ctx, http.MethodPost, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Stop resets a workspace to idle. Started applications keep running.
func (l *LaunchClient) Stop(ctx context.Context, id string) (*WorkspaceStatus, error) {
	return l.status(ctx, http.MethodPost, workspacePath(id)+"/stop")
}

// Status returns the launch state of a workspace; one that was never
// launched reports idle.
func (l *LaunchClient) Status(ctx context.Context, id string) (*WorkspaceStatus, error) {
	return l.status(ctx, http.MethodGet, workspacePath(id)+"/status")
}

// Statuses returns the launch state of every workspace launched so far.
func (l *LaunchClient) Statuses(ctx context.Context) ([]WorkspaceStatus, error) {
	var list []WorkspaceStatus
	if err := l.c.call(ctx, http.MethodGet, "/api/v1/status", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (l *LaunchClient) status(ctx context.Context, method, path string) (*WorkspaceStatus, error) {
	var st WorkspaceStatus
	if err := l.c.call(ctx, method, path, nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}
