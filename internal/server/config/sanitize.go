// Package config defines the conductor configuration structure.
package config

import "strings"

// Sanitize returns a copy of the config with sensitive fields masked,
// for logging the effective configuration at startup.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg

	if sanitized.Auth.Password != "" {
		sanitized.Auth.Password = maskSecret(sanitized.Auth.Password)
	}

	return &sanitized
}

// maskSecret masks a secret value for safe logging.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
