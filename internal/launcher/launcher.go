// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package launcher starts the apps of a launch plan and reports progress and
// results on the event bus.
package launcher

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ruangustavo/workspace-launcher/internal/events"
	"github.com/ruangustavo/workspace-launcher/internal/plan"
)

var (
	// ErrEmptyBatch is returned for a batch without requests.
	ErrEmptyBatch = errors.New("launch batch has no requests")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("launcher is closed")
)

// LaunchBatch is one launch attempt's worth of requests.
type LaunchBatch struct {
	AttemptID   string
	WorkspaceID string
	Requests    []plan.LaunchRequest
}

// Launcher dispatches a batch. A nil error means exactly one launch.complete
// event for the attempt will follow, preceded by one launch.progress event
// per request. A non-nil error means nothing was started.
type Launcher interface {
	LaunchApps(ctx context.Context, batch LaunchBatch) error
}

// Result is the outcome of starting one app.
type Result struct {
	AppID   string `json:"app_id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Progress is published before each app is started. Current is the index
// of that app, which equals the number of apps already handled.
type Progress struct {
	AttemptID   string `json:"attempt_id"`
	WorkspaceID string `json:"workspace_id"`
	Current     int    `json:"current"`
	Total       int    `json:"total"`
	AppName     string `json:"app_name"`
	AppID       string `json:"app_id"`
}

// Event wraps the progress in a launch.progress event.
func (p Progress) Event() events.Event {
	return events.Event{
		Type:      events.EventLaunchProgress,
		Workspace: p.WorkspaceID,
		Payload:   toPayload(p),
	}
}

// Completion is published once after every app of a batch was handled.
type Completion struct {
	AttemptID   string   `json:"attempt_id"`
	WorkspaceID string   `json:"workspace_id"`
	Results     []Result `json:"results"`
}

// Event wraps the completion in a launch.complete event.
func (c Completion) Event() events.Event {
	return events.Event{
		Type:      events.EventLaunchComplete,
		Workspace: c.WorkspaceID,
		Payload:   toPayload(c),
	}
}

// ProgressFromEvent decodes a launch.progress event.
func ProgressFromEvent(e events.Event) (Progress, bool) {
	var p Progress
	if e.Type != events.EventLaunchProgress || !fromPayload(e.Payload, &p) {
		return Progress{}, false
	}
	return p, true
}

// CompletionFromEvent decodes a launch.complete event.
func CompletionFromEvent(e events.Event) (Completion, bool) {
	var c Completion
	if e.Type != events.EventLaunchComplete || !fromPayload(e.Payload, &c) {
		return Completion{}, false
	}
	return c, true
}

// toPayload flattens v into an event payload using its JSON field names.
func toPayload(v interface{}) map[string]interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}

func fromPayload(m map[string]interface{}, v interface{}) bool {
	if m == nil {
		return false
	}
	data, err := json.Marshal(m)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}
