// Package main provides the entry point for metalmesh-conductor.
//
// The conductor is the node management service that provides:
//
//   - JSON-RPC control-plane API over HTTP/HTTPS POST
//   - Basic-Auth or token-based authorization gates
//   - A self-contained loopback RPC bus when no broker is configured
//   - Optional Prometheus metrics on a separate listener
//
// Usage:
//
//	metalmesh-conductor [flags]
//	metalmesh-conductor --config /path/to/config.yaml
//
// The conductor loads configuration, opens the node store, registers
// its RPC methods, and serves until interrupted.
//
// @design DS-0501
package main
