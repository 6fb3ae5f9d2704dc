// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ruangustavo/workspace-launcher/pkg/client"
)

func newCmdLaunch() *cobra.Command {
	var (
		app  string
		wait bool
	)
	cmd := &cobra.Command{
		Use:   "launch <workspace-id>",
		Short: "Launch a workspace or one of its apps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := apiClient(cmd)

			var (
				res *client.LaunchResult
				err error
			)
			if app != "" {
				res, err = c.Launch.App(cmd.Context(), args[0], app, wait)
			} else {
				res, err = c.Launch.Workspace(cmd.Context(), args[0], wait)
			}
			if err != nil {
				return err
			}

			if jsonOutput(cmd) {
				printJSON(cmd.OutOrStdout(), res)
				return nil
			}
			if res.Outcome != nil {
				printOutcome(cmd.OutOrStdout(), res.Outcome)
				if res.Outcome.Kind == client.OutcomeTotalFailure {
					return fmt.Errorf("launch failed")
				}
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Launching %d app(s), attempt %s\n", res.Total, res.AttemptID)
			return nil
		},
	}
	cmd.Flags().StringVar(&app, "app", "", "Launch only this app id")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Wait for the launch to finish and print the outcome")
	return cmd
}

func newCmdStop() *cobra.Command {
	return &cobra.Command{
		Use:   "stop <workspace-id>",
		Short: "Reset a workspace to idle",
		Long:  "Reset a workspace to idle. Applications that were started keep running.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := apiClient(cmd).Launch.Stop(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				printJSON(cmd.OutOrStdout(), st)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stopped workspace %s\n", args[0])
			return nil
		},
	}
}

func newCmdStatus() *cobra.Command {
	return &cobra.Command{
		Use:   "status [workspace-id]",
		Short: "Show launch status of all workspaces or one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := apiClient(cmd)

			var list []client.WorkspaceStatus
			if len(args) == 1 {
				st, err := c.Launch.Status(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				list = []client.WorkspaceStatus{*st}
			} else {
				var err error
				if list, err = c.Launch.Statuses(cmd.Context()); err != nil {
					return err
				}
			}

			if jsonOutput(cmd) {
				printJSON(cmd.OutOrStdout(), list)
				return nil
			}
			printStatuses(cmd.OutOrStdout(), list)
			return nil
		},
	}
}
