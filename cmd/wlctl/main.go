// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// wlctl is a command-line tool for controlling a running workspace launcher.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ruangustavo/workspace-launcher/pkg/client"
)

var version = "0.1.0"

const defaultAPI = "http://127.0.0.1:4646"

// clientKey carries the API client from PersistentPreRunE to subcommands.
type clientKey struct{}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "wlctl",
		Short:   "Control a running workspace launcher",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultURL := os.Getenv("LAUNCHER_API")
	if defaultURL == "" {
		defaultURL = defaultAPI
	}
	cmd.PersistentFlags().String("api", defaultURL, "Base URL of the launcher API (env LAUNCHER_API)")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")

	cmd.PersistentPreRunE = func(c *cobra.Command, _ []string) error {
		url, _ := c.Flags().GetString("api")
		errOut := c.ErrOrStderr()
		api := client.New(url, client.WithWarningHandler(func(_, _, warning string) {
			fmt.Fprintln(errOut, "warning:", warning)
		}))
		c.SetContext(context.WithValue(c.Context(), clientKey{}, api))
		return nil
	}

	cmd.AddCommand(newCmdList())
	cmd.AddCommand(newCmdGet())
	cmd.AddCommand(newCmdCreate())
	cmd.AddCommand(newCmdUpdate())
	cmd.AddCommand(newCmdDelete())
	cmd.AddCommand(newCmdLaunch())
	cmd.AddCommand(newCmdStop())
	cmd.AddCommand(newCmdStatus())
	cmd.AddCommand(newCmdEvents())
	cmd.AddCommand(newCmdAppInfo())
	return cmd
}

func apiClient(cmd *cobra.Command) *client.Client {
	return cmd.Context().Value(clientKey{}).(*client.Client)
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func main() {
	// Optional .env with LAUNCHER_API.
	_ = godotenv.Load()

	root := newRootCmd()
	root.SetContext(context.Background())
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
