// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ruangustavo/workspace-launcher/pkg/client"
)

func newCmdEvents() *cobra.Command {
	var (
		limit     int
		types     []string
		workspace string
		attempt   string
		follow    bool
		pattern   string
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show recent events or follow live ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := apiClient(cmd)
			out := cmd.OutOrStdout()

			if follow {
				ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()
				return c.Events.Stream(ctx, client.StreamOptions{Pattern: pattern, Workspace: workspace}, func(evt client.Event) error {
					if jsonOutput(cmd) {
						line, _ := json.Marshal(evt)
						fmt.Fprintln(out, string(line))
						return nil
					}
					fmt.Fprintln(out, formatEvent(evt))
					return nil
				})
			}

			list, err := c.Events.List(cmd.Context(), &client.ListOptions{
				Limit:     limit,
				Types:     types,
				Workspace: workspace,
				Attempt:   attempt,
			})
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				printJSON(out, list)
				return nil
			}
			fmt.Fprintf(out, "%-25s %-22s %-38s %s\n", "TIME", "TYPE", "WORKSPACE", "DETAILS")
			fmt.Fprintln(out, strings.Repeat("-", 110))
			for _, evt := range list {
				fmt.Fprintln(out, formatEvent(evt))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Number of events")
	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "Only these event types")
	cmd.Flags().StringVar(&workspace, "workspace", "", "Only events of this workspace")
	cmd.Flags().StringVar(&attempt, "attempt", "", "Only events of this launch attempt")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Stream live events")
	cmd.Flags().StringVar(&pattern, "pattern", "*", "Event type pattern when following, e.g. launch.*")
	return cmd
}
