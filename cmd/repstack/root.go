// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Repstack CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repstack",
		Short: "Repstack - training progress dashboard",
		Long: `Repstack is a gym progress dashboard with team sharing,
email-verified accounts, and token-based credential flows.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
