// Package main is the entry point for the keychord command.
package main

import (
	"os"

	"github.com/dshills/keychord/internal/cli"
)

// version is set via ldflags during build.
var version = "dev"

func main() {
	if err := cli.NewRootCmd(version).Execute(); err != nil {
		// The error is already printed by Cobra.
		os.Exit(1)
	}
}
