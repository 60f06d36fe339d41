// Package secrets provides secret generation and hashing utilities.
package secrets

import (
	"crypto/rand"
	"encoding/base64"
)

// DefaultLength is the default password length in bytes.
const DefaultLength = 32

// GeneratePassword generates a cryptographically secure random password.
//
// The returned password is Base64 RawURL encoded for safe transmission
// in headers and credential files.
func GeneratePassword() (string, error) {
	return GeneratePasswordWithLength(DefaultLength)
}

// GeneratePasswordWithLength generates a password with the specified byte length.
func GeneratePasswordWithLength(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
