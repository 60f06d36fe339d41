// Package config defines the conductor configuration structure.
//
// Configuration is loaded via internal/infra/confloader with priority
// Env > File > Default. This package owns the typed sections, their
// defaults, startup verification, and the sanitized form used for
// logging.
//
// @req RQ-0502
// @design DS-0501
package config
