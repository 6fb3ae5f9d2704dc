// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Validate checks the user-editable fields of a workspace.
func Validate(name string, apps []App) error {
	errs := &ValidationError{}

	if strings.TrimSpace(name) == "" {
		errs.Add("name", "is required")
	}
	if len(apps) == 0 {
		errs.Add("apps", "at least one app is required")
	}

	seen := make(map[string]int, len(apps))
	for i, app := range apps {
		field := fmt.Sprintf("apps[%d]", i)
		if strings.TrimSpace(app.Name) == "" {
			errs.Add(field+".name", "is required")
		}
		if strings.TrimSpace(app.Path) == "" {
			errs.Add(field+".path", "is required")
		}
		if app.Delay < 0 {
			errs.Add(field+".delay", "must be non-negative")
		}
		if app.ID == "" {
			continue
		}
		if prev, dup := seen[app.ID]; dup {
			errs.Add(field+".id", fmt.Sprintf("duplicates apps[%d].id %q", prev, app.ID))
			continue
		}
		seen[app.ID] = i
	}

	if errs.IsEmpty() {
		return nil
	}
	return errs
}

// normalizeApps copies apps, trims text fields and fills in missing ids.
func normalizeApps(apps []App) []App {
	out := make([]App, len(apps))
	for i, app := range apps {
		app.Name = strings.TrimSpace(app.Name)
		app.Path = strings.TrimSpace(app.Path)
		app.Args = strings.TrimSpace(app.Args)
		if app.ID == "" {
			app.ID = uuid.NewString()
		}
		out[i] = app
	}
	return out
}
