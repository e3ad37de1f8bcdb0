// SPDX-FileCopyrightText: Copyright 2026 The authrelay Authors
// SPDX-License-Identifier: Apache-2.0

// Package app provides the entry point for the authrelay command-line
// application.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:               "authrelay",
	DisableAutoGenTag: true,
	Short:             "authrelay is a delegated-authorization broker for MCP clients",
	Long: `authrelay sits between MCP clients and an upstream OAuth provider.
It lets an AI agent obtain a scoped credential to act against a user's
account on the upstream provider without ever seeing the user's provider
credentials: OAuth 2.1 authorization-code grant with mandatory PKCE,
refresh-token renewal, and signed bearer tokens in front of the MCP surface.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// NewRootCmd creates the root command for the authrelay CLI.
func NewRootCmd() *cobra.Command {
	rootCmd.AddCommand(newServeCmd())
	return rootCmd
}
