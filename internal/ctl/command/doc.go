// Package command provides CLI command definitions for metalmesh-ctl.
//
// It uses urfave/cli/v2 for command parsing. Every command talks to a
// conductor through the JSON-RPC client; there is no direct store
// access from the CLI.
//
// @design DS-0601
package command
