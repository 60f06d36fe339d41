// Package auth provides HTTP Basic authentication for the metalmesh RPC channel.
package auth

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/yndnr/metalmesh/internal/core/domain"
)

// bcryptPrefixes are the only password hash schemes the store accepts.
// Anything else in the credential file is a hard configuration error.
var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// CredentialStore reads an Apache-style "username:bcrypt-hash"
// credential file. The file is scanned on construction for strict
// validation and re-read on every lookup; no credential table is held
// in memory between requests. Blank lines and lines without a colon
// are ignored; every line that does carry a colon must hold a
// username and a bcrypt hash.
type CredentialStore struct {
	path string
}

// NewCredentialStore validates the entire credential file and returns
// a store bound to it.
func NewCredentialStore(path string) (*CredentialStore, error) {
	s := &CredentialStore{path: path}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the credential file path.
func (s *CredentialStore) Path() string {
	return s.path
}

func (s *CredentialStore) validate() error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("auth: open credential file: %w", err)
	}
	defer f.Close()

	lineNo := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		name, hash, found := strings.Cut(line, ":")
		if !found {
			// Comment lines and other colon-free noise are skipped, so
			// annotated htpasswd-style files stay usable.
			continue
		}
		if name == "" {
			return domain.NewConfigInvalid(
				"credential file %s line %d: expected username:hashed password", s.path, lineNo)
		}
		if !isBcryptHash(hash) {
			return domain.NewConfigInvalid(
				"credential file %s line %d: only bcrypt digested passwords are supported", s.path, lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("auth: read credential file: %w", err)
	}
	return nil
}

// Lookup re-scans the credential file for the first line whose
// username prefix matches exactly, returning that line's hash.
// Reaching the end of the file without a match is an authentication
// failure, not a configuration error.
func (s *CredentialStore) Lookup(username string) (string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return "", fmt.Errorf("auth: open credential file: %w", err)
	}
	defer f.Close()

	prefix := username + ":"
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, prefix) {
			return line[len(prefix):], nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("auth: read credential file: %w", err)
	}

	return "", unauthorized("Invalid username or password")
}

func isBcryptHash(hash string) bool {
	for _, p := range bcryptPrefixes {
		if strings.HasPrefix(hash, p) {
			return true
		}
	}
	return false
}
