// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ruangustavo/workspace-launcher/pkg/client"
)

func printJSON(w io.Writer, v interface{}) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(out))
}

func printWorkspaces(w io.Writer, list []client.Workspace) {
	fmt.Fprintf(w, "%-38s %-20s %-5s %s\n", "ID", "NAME", "APPS", "UPDATED")
	fmt.Fprintln(w, strings.Repeat("-", 85))
	for _, ws := range list {
		fmt.Fprintf(w, "%-38s %-20s %-5d %s\n", ws.ID, truncate(ws.Name, 20), len(ws.Apps), ws.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	}
}

func printWorkspace(w io.Writer, ws *client.Workspace) {
	fmt.Fprintf(w, "ID:          %s\n", ws.ID)
	fmt.Fprintf(w, "Name:        %s\n", ws.Name)
	if ws.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", ws.Description)
	}
	fmt.Fprintf(w, "Updated:     %s\n", ws.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-38s %-20s %-6s %s\n", "APP ID", "NAME", "DELAY", "COMMAND")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, app := range ws.Apps {
		command := app.Path
		if app.Args != "" {
			command += " " + app.Args
		}
		delay := "-"
		if app.Delay > 0 {
			delay = fmt.Sprintf("%ds", app.Delay)
		}
		fmt.Fprintf(w, "%-38s %-20s %-6s %s\n", app.ID, truncate(app.Name, 20), delay, command)
	}
}

func printStatuses(w io.Writer, list []client.WorkspaceStatus) {
	fmt.Fprintf(w, "%-38s %-10s %-6s %s\n", "WORKSPACE", "STATE", "APPS", "PROGRESS")
	fmt.Fprintln(w, strings.Repeat("-", 75))
	for _, st := range list {
		state := "idle"
		progress := "-"
		if st.IsRunning {
			state = "running"
		}
		if p := st.LaunchProgress; p != nil {
			state = "launching"
			progress = fmt.Sprintf("%d/%d %s", p.Completed, p.Total, p.Current)
		}
		fmt.Fprintf(w, "%-38s %-10s %-6d %s\n", st.ID, state, len(st.RunningApps), progress)
	}
}

func printOutcome(w io.Writer, o *client.Outcome) {
	switch o.Kind {
	case client.OutcomeFullSuccess:
		fmt.Fprintf(w, "Launched %d of %d apps\n", o.Total-o.Failed, o.Total)
	case client.OutcomePartialFailure:
		fmt.Fprintf(w, "Launched with %d of %d apps failing\n", o.Failed, o.Total)
	default:
		fmt.Fprintf(w, "All %d apps failed to launch\n", o.Total)
	}
	for _, r := range o.Results {
		if !r.Success {
			fmt.Fprintf(w, "  %s: %s\n", r.AppID, r.Error)
		}
	}
}

func formatEvent(evt client.Event) string {
	keys := make([]string, 0, len(evt.Payload))
	for k := range evt.Payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, evt.Payload[k]))
	}
	return fmt.Sprintf("%-25s %-22s %-38s %s",
		evt.Timestamp.Local().Format("2006-01-02 15:04:05.000"),
		evt.Type,
		evt.Workspace,
		strings.Join(parts, " "),
	)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
