// Package main is the entry point for the swarmboard CLI.
package main

import (
	"os"

	"github.com/swarmboard/swarmboard/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
