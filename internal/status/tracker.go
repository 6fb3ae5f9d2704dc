// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package status tracks the launch state of each workspace for the lifetime
// of the process.
package status

import (
	"sort"
	"sync"
)

// LaunchProgress describes an in-flight launch.
type LaunchProgress struct {
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Current   string `json:"current,omitempty"`
}

// WorkspaceStatus is the launch state of one workspace.
type WorkspaceStatus struct {
	ID             string          `json:"id"`
	IsRunning      bool            `json:"isRunning"`
	RunningApps    []string        `json:"runningApps"`
	LaunchProgress *LaunchProgress `json:"launchProgress,omitempty"`
}

func (s *WorkspaceStatus) clone() *WorkspaceStatus {
	c := *s
	c.RunningApps = append([]string{}, s.RunningApps...)
	if s.LaunchProgress != nil {
		p := *s.LaunchProgress
		c.LaunchProgress = &p
	}
	return &c
}

// Patch is a partial status update. Nil fields are left unchanged;
// ClearProgress removes the launch progress.
type Patch struct {
	IsRunning      *bool
	RunningApps    []string
	SetRunningApps bool
	LaunchProgress *LaunchProgress
	ClearProgress  bool
}

// Idle returns the patch that resets a workspace to not running.
func Idle() Patch {
	running := false
	return Patch{IsRunning: &running, RunningApps: nil, SetRunningApps: true, ClearProgress: true}
}

// Tracker holds one status per workspace id.
type Tracker struct {
	mu      sync.Mutex
	entries map[string]*WorkspaceStatus
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{entries: make(map[string]*WorkspaceStatus)}
}

// Get returns a copy of the status for id. Unknown ids report idle.
func (t *Tracker) Get(id string) *WorkspaceStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.entries[id]; ok {
		return s.clone()
	}
	return &WorkspaceStatus{ID: id, RunningApps: []string{}}
}

// Update merges p into the status for id, creating it if needed, and
// returns the result.
func (t *Tracker) Update(id string, p Patch) *WorkspaceStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.applyLocked(id, p).clone()
}

// TryBeginLaunch marks id as launching with the given progress unless it is
// already running. It reports whether the caller now owns the launch.
func (t *Tracker) TryBeginLaunch(id string, progress LaunchProgress) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.entries[id]; ok && s.IsRunning {
		return false
	}
	running := true
	t.applyLocked(id, Patch{
		IsRunning:      &running,
		SetRunningApps: true,
		LaunchProgress: &progress,
	})
	return true
}

// AddRunningApps marks the workspace running and appends apps not already
// listed.
func (t *Tracker) AddRunningApps(id string, apps ...string) *WorkspaceStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.applyLocked(id, Patch{})
	s.IsRunning = true
	for _, app := range apps {
		if !contains(s.RunningApps, app) {
			s.RunningApps = append(s.RunningApps, app)
		}
	}
	return s.clone()
}

// Reset returns a tracked workspace to idle. Untracked ids stay untracked;
// either way the idle status is returned.
func (t *Tracker) Reset(id string) *WorkspaceStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.entries[id]; !ok {
		return &WorkspaceStatus{ID: id, RunningApps: []string{}}
	}
	return t.applyLocked(id, Idle()).clone()
}

// Prune forgets id.
func (t *Tracker) Prune(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, id)
}

// List returns copies of all tracked statuses ordered by id.
func (t *Tracker) List() []*WorkspaceStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]*WorkspaceStatus, 0, len(t.entries))
	for _, s := range t.entries {
		out = append(out, s.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (t *Tracker) applyLocked(id string, p Patch) *WorkspaceStatus {
	s, ok := t.entries[id]
	if !ok {
		s = &WorkspaceStatus{ID: id, RunningApps: []string{}}
		t.entries[id] = s
	}
	if p.IsRunning != nil {
		s.IsRunning = *p.IsRunning
	}
	if p.SetRunningApps {
		s.RunningApps = append([]string{}, p.RunningApps...)
	}
	if p.ClearProgress {
		s.LaunchProgress = nil
	} else if p.LaunchProgress != nil {
		lp := *p.LaunchProgress
		s.LaunchProgress = &lp
	}
	return s
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
