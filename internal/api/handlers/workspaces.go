// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ruangustavo/workspace-launcher/internal/workspace"
)

// WorkspaceRegistry is the workspace CRUD surface.
type WorkspaceRegistry interface {
	List() []*workspace.Workspace
	Get(id string) (*workspace.Workspace, error)
	Add(ctx context.Context, def workspace.Definition) (*workspace.Workspace, error)
	Update(ctx context.Context, id string, p workspace.Patch) (*workspace.Workspace, error)
	Delete(ctx context.Context, id string) error
}

// WorkspaceHandler handles workspace CRUD requests.
type WorkspaceHandler struct {
	registry WorkspaceRegistry
}

// NewWorkspaceHandler creates a new workspace handler.
func NewWorkspaceHandler(registry WorkspaceRegistry) *WorkspaceHandler {
	return &WorkspaceHandler{registry: registry}
}

// List returns all workspaces.
func (h *WorkspaceHandler) List(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.registry.List())
}

// Get returns a single workspace.
func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	ws, err := h.registry.Get(mux.Vars(r)["id"])
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, ws)
}

// Create adds a workspace.
func (h *WorkspaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var def workspace.Definition
	if err := decodeJSON(r, &def); err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "invalid request body: "+err.Error())
		return
	}

	ws, err := h.registry.Add(r.Context(), def)
	writeMutation(w, http.StatusCreated, ws, err)
}

// Update patches a workspace.
func (h *WorkspaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var p workspace.Patch
	if err := decodeJSON(r, &p); err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "invalid request body: "+err.Error())
		return
	}

	ws, err := h.registry.Update(r.Context(), mux.Vars(r)["id"], p)
	writeMutation(w, http.StatusOK, ws, err)
}

// Delete removes a workspace.
func (h *WorkspaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	err := h.registry.Delete(r.Context(), id)
	writeMutation(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"}, err)
}

// writeMutation reports a registry mutation. A persist failure still
// returns success because the in-memory change stands.
func writeMutation(w http.ResponseWriter, status int, data interface{}, err error) {
	switch {
	case err == nil:
		WriteJSON(w, status, data)
	case errors.Is(err, workspace.ErrPersistFailed):
		WriteJSONWithWarning(w, status, data, err.Error())
	default:
		WriteDomainError(w, err)
	}
}
