// SPDX-FileCopyrightText: Copyright 2026 The authrelay Authors
// SPDX-License-Identifier: Apache-2.0

// Package main is the entry point for the authrelay server.
package main

import (
	"os"

	"github.com/relaykit/authrelay/cmd/authrelay/app"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
