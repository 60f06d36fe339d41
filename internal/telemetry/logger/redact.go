// Package logger provides structured logging for metalmesh.
package logger

import (
	"log/slog"
	"strings"
)

// Key patterns that mark an attribute or argument as secret-shaped.
// Matches both our own parameter names (e.g. "auth_password",
// "ipmi_password") and header-derived names (e.g. "authorization").
var sensitiveKeyPatterns = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"credential",
	"auth",
	"bearer",
}

// Masked is the placeholder written in place of secret values.
const Masked = "***"

// redactSensitive checks if an attribute contains sensitive data
// and redacts it if necessary.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		if IsSensitiveKey(a.Key) && a.Value.String() != "" {
			return slog.String(a.Key, Masked)
		}
	}

	// Handle nested groups recursively
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// IsSensitiveKey checks if a key name suggests secret content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// MaskArgs returns a copy of an argument map with the values of
// secret-shaped keys replaced by the mask. Nested maps are masked
// recursively; all other values pass through untouched.
//
// The RPC client and server run every request parameter map and
// result through this before writing it to a debug log.
func MaskArgs(args map[string]any) map[string]any {
	if args == nil {
		return nil
	}

	masked := make(map[string]any, len(args))
	for k, v := range args {
		switch nested := v.(type) {
		case map[string]any:
			masked[k] = MaskArgs(nested)
		default:
			if IsSensitiveKey(k) && v != nil {
				masked[k] = Masked
			} else {
				masked[k] = v
			}
		}
	}
	return masked
}

// MaskValue masks a single value when its key is secret-shaped.
func MaskValue(key string, value any) any {
	if IsSensitiveKey(key) && value != nil {
		return Masked
	}
	return value
}
