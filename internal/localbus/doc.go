// Package localbus bootstraps a self-contained same-host RPC channel
// when no external message broker is configured.
//
// The bus picks a loopback address (preferring IPv6), provisions an
// ephemeral TLS certificate bound to it, generates a random password
// with a matching bcrypt credential-file entry for a fixed internal
// username, and rewrites the process configuration so the RPC server
// and client agree on address, TLS material and credentials.
//
// All generated files are temporary and removed on Close. The bus is
// created once at process start; credentials never survive a restart.
//
// @design DS-0301
package localbus
