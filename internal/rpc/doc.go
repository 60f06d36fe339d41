// Package rpc implements the JSON-RPC 2.0 subset used as the
// control-plane transport between the metalmesh API service and its
// conductors.
//
// The subset is deliberately narrow: single requests only (no batches),
// named parameters only, version "2.0" only. Requests carry a nested
// request context under params.context and, when version pinning is in
// use, an "rpc.version" string. A request without an id is a
// notification: the server never returns a body for it.
//
// Components:
//
//   - message.go: wire request/response shapes
//   - errors.go: protocol error taxonomy and the generic remote error
//   - version.go: "<major>.<minor>" version negotiation
//   - context.go: request context and the entity serializer
//   - dispatcher.go: the method registry with its deny-list
//   - server.go: HTTP POST server pipeline
//   - client.go: call/cast client with safe error deserialization
//
// @req RQ-0201
// @design DS-0201
package rpc
