// Package logger provides structured logging for metalmesh.
//
// This package wraps the standard library log/slog:
//
//   - logger.go: Logger interface, handler configuration, global level
//   - context.go: Context-aware logging with request IDs
//   - redact.go: Sensitive data masking
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering with runtime adjustment
//   - Automatic masking of secret-shaped attributes and argument maps
//   - Context propagation for request tracing
//
// @req RQ-0402
// @design DS-0402
package logger
