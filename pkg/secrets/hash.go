// Package secrets provides secret generation and hashing utilities.
package secrets

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword computes the bcrypt hash of a password.
//
// The returned hash uses the library default cost and carries the
// standard $2a$ prefix understood by the credential store.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword verifies a password against a bcrypt hash.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CredentialLine formats a username and bcrypt hash as a credential
// file entry.
func CredentialLine(username, hash string) string {
	return username + ":" + hash
}
