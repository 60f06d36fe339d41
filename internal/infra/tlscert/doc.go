// Package tlscert provides TLS certificate management for the RPC
// channel.
//
// It covers both sides of a self-provisioned TLS setup:
//
//   - issuer.go: self-signed certificate issuance for a host identity
//   - roots.go: trusted root pools built from files or PEM data
//
// The local RPC bus uses the issuer to mint a throwaway identity for
// the loopback address and the root pool to make the client trust it.
//
// @req RQ-0203
// @design DS-0203
package tlscert
