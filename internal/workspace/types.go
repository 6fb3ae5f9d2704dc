// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package workspace holds the workspace model and the registry that owns it.
package workspace

import "time"

// App is one executable entry of a workspace.
type App struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
	// Args is the raw argument string, tokenized at launch time.
	Args string `json:"args,omitempty" yaml:"args,omitempty"`
	// Delay is the number of seconds to wait before launching this app.
	Delay int    `json:"delay,omitempty" yaml:"delay,omitempty"`
	Icon  string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// Workspace is a named, ordered group of apps launched together.
type Workspace struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	Apps        []App     `json:"apps"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of the workspace.
func (w *Workspace) Clone() *Workspace {
	if w == nil {
		return nil
	}
	c := *w
	c.Apps = append([]App(nil), w.Apps...)
	return &c
}

// App returns the app with the given id.
func (w *Workspace) App(id string) (App, bool) {
	for _, a := range w.Apps {
		if a.ID == id {
			return a, true
		}
	}
	return App{}, false
}

// Definition is the caller-supplied content of a new workspace.
type Definition struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Apps        []App  `json:"apps" yaml:"apps"`
}

// Patch holds the fields of an update. Nil fields are left unchanged.
type Patch struct {
	Name        *string `json:"name,omitempty" yaml:"name,omitempty"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        *string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Apps        *[]App  `json:"apps,omitempty" yaml:"apps,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Icon == nil && p.Apps == nil
}
