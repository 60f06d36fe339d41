// Package ctl contains the building blocks of metalmesh-ctl, the
// command-line client for the conductor RPC API.
//
// Subpackages:
//
//   - command: urfave/cli command definitions
//   - output: table, JSON and YAML formatting
//
// @design DS-0601
package ctl
