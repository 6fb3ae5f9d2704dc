// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package plan turns a workspace into an ordered list of launch requests.
package plan

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-shellwords"

	"github.com/ruangustavo/workspace-launcher/internal/workspace"
)

var (
	// ErrEmptyPlan is returned for a workspace without apps.
	ErrEmptyPlan = errors.New("workspace has no apps to launch")

	// ErrInvalidDelay is returned for a negative delay.
	ErrInvalidDelay = fmt.Errorf("%w: delay must be non-negative", workspace.ErrValidationFailed)

	// ErrInvalidArgs is returned when an argument string cannot be tokenized,
	// for example because of an unterminated quote.
	ErrInvalidArgs = fmt.Errorf("%w: malformed arguments", workspace.ErrValidationFailed)
)

// LaunchRequest is one app's normalized launch instruction.
type LaunchRequest struct {
	AppID string `json:"app_id"`
	Name  string `json:"app_name"`
	Path  string `json:"path"`
	// Args is the trimmed raw argument string; empty means no arguments.
	Args string `json:"args,omitempty"`
	// Argv is Args split with shell-word rules.
	Argv  []string      `json:"argv,omitempty"`
	Delay time.Duration `json:"delay,omitempty"`
}

// HasDelay reports whether the launcher should wait before this app.
func (r LaunchRequest) HasDelay() bool {
	return r.Delay > 0
}

// Build returns one request per app, in app order.
func Build(ws *workspace.Workspace) ([]LaunchRequest, error) {
	if ws == nil || len(ws.Apps) == 0 {
		return nil, ErrEmptyPlan
	}

	reqs := make([]LaunchRequest, 0, len(ws.Apps))
	for i, app := range ws.Apps {
		req, err := Request(app)
		if err != nil {
			return nil, fmt.Errorf("app %d (%s): %w", i, app.Name, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// Request normalizes a single app.
func Request(app workspace.App) (LaunchRequest, error) {
	if app.Delay < 0 {
		return LaunchRequest{}, ErrInvalidDelay
	}

	req := LaunchRequest{
		AppID: app.ID,
		Name:  app.Name,
		Path:  app.Path,
		Args:  strings.TrimSpace(app.Args),
		Delay: time.Duration(app.Delay) * time.Second,
	}
	if req.Args != "" {
		argv, err := shellwords.Parse(req.Args)
		if err != nil {
			return LaunchRequest{}, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
		}
		req.Argv = argv
	}
	return req, nil
}
