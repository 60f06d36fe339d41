// Package auth provides HTTP Basic authentication for the metalmesh RPC channel.
package auth

import "net/http"

// Error is an authentication failure with an HTTP status code and the
// headers that must accompany the rejection (e.g. WWW-Authenticate).
// Every failure mode gets exactly one attempt; nothing here retries.
type Error struct {
	Code    int
	Message string
	Headers map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status code of the failure.
func (e *Error) StatusCode() int {
	return e.Code
}

// unauthorized builds a 401 carrying the Basic challenge.
func unauthorized(message string) *Error {
	return &Error{
		Code:    http.StatusUnauthorized,
		Message: message,
		Headers: map[string]string{
			"WWW-Authenticate": `Basic realm="metalmesh"`,
		},
	}
}

// malformed builds a 400 for headers or tokens that cannot be parsed.
func malformed(message string) *Error {
	return &Error{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}
