// Package auth provides HTTP Basic authentication for the metalmesh
// RPC channel, backed by an Apache-style credential file.
//
// Components:
//
//   - store.go: credential file parsing and strict startup validation
//   - cache.go: bounded LRU memoizing bcrypt verification results
//   - basic.go: the Basic-Auth middleware gate
//   - watcher.go: fsnotify watcher clearing the cache on file changes
//
// The credential file is re-read on every authentication attempt; only
// the bcrypt verdicts are cached, keyed by (password, hash).
//
// @req RQ-0202
// @design DS-0202
package auth
