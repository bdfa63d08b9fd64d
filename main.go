// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package main

import (
	"os"

	"github.com/vmware/ssh-fanout/commands"
	"github.com/vmware/ssh-fanout/pkg/logging"
)

const (
	exitError = 1
)

func main() {
	rootCmd := commands.RootCmd()
	if err := rootCmd.Execute(); err != nil {
		if rootCmd.SilenceErrors {
			logging.For("main").Errorf("Error: %v", err)
		}
		os.Exit(exitError)
	}
}
