// Package output provides output formatting for the metalmesh CLI.
//
// This package handles all CLI output formatting:
//
//   - formatter.go: Formatter interface and factory
//   - table.go: Table rendering for node listings
//   - json.go: JSON output formatting
//   - yaml.go: YAML output formatting
//
// Formatters support:
//
//   - Multiple output formats (table, json, yaml)
//   - Machine-readable output for scripting
//
// @design DS-0601
package output
