// Package main provides the entry point for metalmesh-ctl.
//
// metalmesh-ctl is the command-line client for the conductor's
// JSON-RPC API.
package main

import (
	"fmt"
	"os"

	"github.com/yndnr/metalmesh/internal/ctl/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
