// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ruangustavo/workspace-launcher/pkg/client"
)

func newCmdList() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := apiClient(cmd).Workspaces.List(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				printJSON(cmd.OutOrStdout(), list)
				return nil
			}
			printWorkspaces(cmd.OutOrStdout(), list)
			return nil
		},
	}
}

func newCmdGet() *cobra.Command {
	return &cobra.Command{
		Use:   "get <workspace-id>",
		Short: "Show a workspace and its apps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := apiClient(cmd).Workspaces.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				printJSON(cmd.OutOrStdout(), ws)
				return nil
			}
			printWorkspace(cmd.OutOrStdout(), ws)
			return nil
		},
	}
}

func newCmdCreate() *cobra.Command {
	var (
		file        string
		name        string
		description string
		apps        []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a workspace from flags or a JSON/YAML file",
		Long: `Create a workspace.

Either pass -f with a JSON or YAML definition:

  name: Dev
  apps:
    - name: Editor
      path: code
      args: ~/src/project
    - name: Browser
      path: firefox
      delay: 2

or give --name and one --app per application as "Name=command args":

  wlctl create --name Dev --app "Editor=code ~/src/project" --app "Browser=firefox"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var def client.WorkspaceDefinition
			if file != "" {
				if err := readDefinition(file, &def); err != nil {
					return err
				}
			}
			if name != "" {
				def.Name = name
			}
			if description != "" {
				def.Description = description
			}
			for _, spec := range apps {
				app, err := parseAppFlag(spec)
				if err != nil {
					return err
				}
				def.Apps = append(def.Apps, app)
			}

			ws, err := apiClient(cmd).Workspaces.Create(cmd.Context(), def)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				printJSON(cmd.OutOrStdout(), ws)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created workspace %s (%s)\n", ws.Name, ws.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON or YAML workspace definition")
	cmd.Flags().StringVar(&name, "name", "", "Workspace name")
	cmd.Flags().StringVar(&description, "description", "", "Workspace description")
	cmd.Flags().StringArrayVar(&apps, "app", nil, `App as "Name=command args" (repeatable)`)
	return cmd
}

func newCmdUpdate() *cobra.Command {
	var (
		file string
		name string
		desc string
	)
	cmd := &cobra.Command{
		Use:   "update <workspace-id>",
		Short: "Update a workspace",
		Long: `Update a workspace. Fields missing from the patch are left unchanged;
an apps list in the patch file replaces all apps.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch client.WorkspacePatch
			if file != "" {
				if err := readDefinition(file, &patch); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &desc
			}

			ws, err := apiClient(cmd).Workspaces.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				printJSON(cmd.OutOrStdout(), ws)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated workspace %s (%s)\n", ws.Name, ws.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON or YAML patch")
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&desc, "description", "", "New description")
	return cmd
}

func newCmdDelete() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <workspace-id>",
		Short: "Delete a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := apiClient(cmd).Workspaces.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted workspace %s\n", args[0])
			return nil
		},
	}
}

// readDefinition decodes a JSON or YAML file; JSON is valid YAML.
func readDefinition(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// parseAppFlag parses "Name=command args". The command is split with shell
// rules so quoted paths with spaces survive.
func parseAppFlag(spec string) (client.App, error) {
	name, command, ok := strings.Cut(spec, "=")
	name, command = strings.TrimSpace(name), strings.TrimSpace(command)
	if !ok || name == "" || command == "" {
		return client.App{}, fmt.Errorf("invalid --app %q: want Name=command args", spec)
	}
	words, err := shellwords.Parse(command)
	if err != nil {
		return client.App{}, fmt.Errorf("invalid --app %q: %w", spec, err)
	}
	if len(words) == 0 {
		return client.App{}, fmt.Errorf("invalid --app %q: empty command", spec)
	}

	app := client.App{Name: name, Path: words[0]}
	if len(words) > 1 {
		app.Args = joinArgs(words[1:])
	}
	return app, nil
}

// joinArgs rebuilds an argument string, quoting words the launcher's
// tokenizer would otherwise split.
func joinArgs(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		if w == "" || strings.ContainsAny(w, " \t'\"\\$`") {
			w = "'" + strings.ReplaceAll(w, "'", `'\''`) + "'"
		}
		quoted[i] = w
	}
	return strings.Join(quoted, " ")
}
