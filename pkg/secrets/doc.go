// Package secrets provides secret generation and hashing utilities.
//
// This package implements cryptographically secure password generation
// and bcrypt hashing for the conductor's credential files.
//
// Password Format:
//
//   - Body: Base64 RawURL encoded random bytes
//   - Default: 32 random bytes, 43 encoded characters
//
// Credential Entry Format:
//
//   - username:bcrypt-hash, one entry per line
//   - Only bcrypt hashes are accepted ($2a$, $2b$, $2y$ prefixes)
//
// Security:
//
//   - Uses crypto/rand for CSPRNG
//   - bcrypt with the library default cost
//   - Plaintext passwords are never written to disk
//
// @design DS-0101
// @adr AD-0101
package secrets
