// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"net/http"
	"net/url"
)

// WorkspaceClient manages workspace definitions.
type WorkspaceClient struct {
	c *Client
}

func workspacePath(id string) string {
	return "/api/v1/workspaces/" + url.PathEscape(id)
}

// List returns all workspaces in the order they were created.
func (w *WorkspaceClient) List(ctx context.Context) ([]Workspace, error) {
	var list []Workspace
	if err := w.c.call(ctx, http.MethodGet, "/api/v1/workspaces", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Get returns a single workspace.
func (w *WorkspaceClient) Get(ctx context.Context, id string) (*Workspace, error) {
	return w.one(ctx, http.MethodGet, workspacePath(id), nil)
}

// Create adds a workspace. The server assigns the workspace id and any
// missing app ids. An invalid definition is a BAD_REQUEST whose Details
// name the offending fields.
func (w *WorkspaceClient) Create(ctx context.Context, def WorkspaceDefinition) (*Workspace, error) {
	return w.one(ctx, http.MethodPost, "/api/v1/workspaces", def)
}

// Update changes the fields set in patch and leaves the rest alone.
func (w *WorkspaceClient) Update(ctx context.Context, id string, patch WorkspacePatch) (*Workspace, error) {
	return w.one(ctx, http.MethodPatch, workspacePath(id), patch)
}

// Delete removes a workspace and forgets its launch status.
func (w *WorkspaceClient) Delete(ctx context.Context, id string) error {
	return w.c.call(ctx, http.MethodDelete, workspacePath(id), nil, nil)
}

func (w *WorkspaceClient) one(ctx context.Context, method, path string, in interface{}) (*Workspace, error) {
	var ws Workspace
	if err := w.c.call(ctx, method, path, in, &ws); err != nil {
		return nil, err
	}
	return &ws, nil
}
