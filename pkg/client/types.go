// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import "time"

// App is one application of a workspace.
type App struct {
	// ID identifies the app within its workspace. Assigned by the server
	// when left empty on create.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Name is the display name.
	Name string `json:"name" yaml:"name"`

	// Path is the executable, either absolute or looked up on PATH.
	Path string `json:"path" yaml:"path"`

	// Args is the argument string, split with shell quoting rules.
	Args string `json:"args,omitempty" yaml:"args,omitempty"`

	// Delay is the number of seconds to wait before starting this app.
	Delay int `json:"delay,omitempty" yaml:"delay,omitempty"`

	// Icon is an optional icon reference for UIs.
	Icon string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// Workspace is a named, ordered group of apps.
type Workspace struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	Apps        []App     `json:"apps"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// WorkspaceDefinition is the body of a create request.
type WorkspaceDefinition struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Apps        []App  `json:"apps" yaml:"apps"`
}

// WorkspacePatch is the body of an update request. Nil fields are left
// unchanged; a non-nil Apps replaces the whole list.
type WorkspacePatch struct {
	Name        *string `json:"name,omitempty" yaml:"name,omitempty"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        *string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Apps        *[]App  `json:"apps,omitempty" yaml:"apps,omitempty"`
}

// LaunchProgress reports how far an in-flight launch has got.
type LaunchProgress struct {
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Current   string `json:"current,omitempty"`
}

// WorkspaceStatus is the launch state of a workspace.
type WorkspaceStatus struct {
	ID             string          `json:"id"`
	IsRunning      bool            `json:"isRunning"`
	RunningApps    []string        `json:"runningApps"`
	LaunchProgress *LaunchProgress `json:"launchProgress,omitempty"`
}

// Outcome kinds.
const (
	OutcomeFullSuccess    = "full_success"
	OutcomePartialFailure = "partial_failure"
	OutcomeTotalFailure   = "total_failure"
)

// AppResult is the per-app result of a launch.
type AppResult struct {
	AppID   string `json:"app_id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Outcome summarises a finished launch.
type Outcome struct {
	AttemptID   string      `json:"attempt_id"`
	WorkspaceID string      `json:"workspace_id"`
	Kind        string      `json:"kind"`
	Total       int         `json:"total"`
	Failed      int         `json:"failed"`
	Succeeded   []string    `json:"succeeded"`
	Results     []AppResult `json:"results"`
}

// LaunchResult is the response to a launch request. Outcome is only set
// when the request waited for the launch to finish.
type LaunchResult struct {
	AttemptID   string           `json:"attempt_id"`
	WorkspaceID string           `json:"workspace_id"`
	Total       int              `json:"total"`
	Outcome     *Outcome         `json:"outcome,omitempty"`
	Status      *WorkspaceStatus `json:"status"`
}

// Event is an entry of the event log.
type Event struct {
	ID        string                 `json:"id"`
	Version   string                 `json:"version"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Workspace string                 `json:"workspace,omitempty"`
	Payload   map[string]interface{} `json:"payload"`
}

// AppInfo describes an executable on the launcher's host.
type AppInfo struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Exists     bool   `json:"exists"`
	Executable bool   `json:"executable"`
}
