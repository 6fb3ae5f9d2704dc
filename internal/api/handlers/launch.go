// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ruangustavo/workspace-launcher/internal/orchestrator"
	"github.com/ruangustavo/workspace-launcher/internal/status"
)

// Orchestrator is the launch surface used by the API.
type Orchestrator interface {
	Launch(ctx context.Context, workspaceID string) (*orchestrator.Attempt, error)
	LaunchApp(ctx context.Context, workspaceID, appID string) (*orchestrator.Attempt, error)
	Stop(ctx context.Context, workspaceID string) *status.WorkspaceStatus
	Status(workspaceID string) *status.WorkspaceStatus
	Statuses() []*status.WorkspaceStatus
}

// LaunchResponse describes an accepted or finished launch.
type LaunchResponse struct {
	AttemptID   string                  `json:"attempt_id"`
	WorkspaceID string                  `json:"workspace_id"`
	Total       int                     `json:"total"`
	Outcome     *orchestrator.Outcome   `json:"outcome,omitempty"`
	Status      *status.WorkspaceStatus `json:"status"`
}

// LaunchHandler handles launch, stop and status requests.
type LaunchHandler struct {
	orch Orchestrator
}

// NewLaunchHandler creates a new launch handler.
func NewLaunchHandler(orch Orchestrator) *LaunchHandler {
	return &LaunchHandler{orch: orch}
}

// Launch starts a workspace. With ?wait=true the response is sent after
// the launch finished and includes its outcome.
func (h *LaunchHandler) Launch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	// Background context: the launch outlives the request.
	a, err := h.orch.Launch(context.Background(), id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	h.respond(w, r, a)
}

// LaunchApp starts a single app of a workspace.
func (h *LaunchHandler) LaunchApp(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	a, err := h.orch.LaunchApp(context.Background(), vars["id"], vars["appId"])
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	h.respond(w, r, a)
}

func (h *LaunchHandler) respond(w http.ResponseWriter, r *http.Request, a *orchestrator.Attempt) {
	resp := LaunchResponse{
		AttemptID:   a.ID(),
		WorkspaceID: a.WorkspaceID(),
		Total:       a.Total(),
	}

	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	if !wait {
		resp.Status = h.orch.Status(a.WorkspaceID())
		WriteJSON(w, http.StatusAccepted, resp)
		return
	}

	outcome, err := a.Wait(r.Context())
	if err != nil {
		if r.Context().Err() != nil {
			// Client went away; the launch keeps running.
			log.Printf("API: %s: stopped waiting for attempt %s: %v", a.WorkspaceID(), a.ID(), r.Context().Err())
			return
		}
		WriteDomainError(w, err)
		return
	}
	resp.Outcome = outcome
	resp.Status = h.orch.Status(a.WorkspaceID())
	WriteJSON(w, http.StatusOK, resp)
}

// Stop forgets the launch state of a workspace.
func (h *LaunchHandler) Stop(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.orch.Stop(r.Context(), mux.Vars(r)["id"]))
}

// Status returns the launch state of a workspace.
func (h *LaunchHandler) Status(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.orch.Status(mux.Vars(r)["id"]))
}

// StatusList returns every tracked status.
func (h *LaunchHandler) StatusList(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.orch.Statuses())
}
