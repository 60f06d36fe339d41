// Package domain defines the core domain models for metalmesh.
//
// It contains:
//
//   - errors.go: the domain error taxonomy and the closed registry used
//     to rebuild server-reported errors on the client side
//   - node.go: the bare-metal node entity managed by conductors
//
// @req RQ-0104
// @design DS-0104
package domain
