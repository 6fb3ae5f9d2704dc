// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCmdAppInfo() *cobra.Command {
	return &cobra.Command{
		Use:   "appinfo <path>",
		Short: "Describe an executable on the launcher's host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := apiClient(cmd).Apps.Info(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				printJSON(cmd.OutOrStdout(), info)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Name:       %s\nPath:       %s\nExecutable: %t\n", info.Name, info.Path, info.Executable)
			return nil
		},
	}
}
