// Package rpc implements the metalmesh control-plane JSON-RPC transport.
package rpc

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// JSON-RPC 2.0 reserved error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
)

// ProtocolError is a JSON-RPC protocol-level failure. It carries its
// reserved negative code as the status code, which classifies it as
// expected; its class name is never reported to peers.
type ProtocolError struct {
	Code    int
	Message string
}

func (e *ProtocolError) Error() string {
	return e.Message
}

// StatusCode returns the reserved JSON-RPC error code.
func (e *ProtocolError) StatusCode() int {
	return e.Code
}

// NewParseError reports a body that is not valid JSON.
func NewParseError(detail string) *ProtocolError {
	msg := "Parse error"
	if detail != "" {
		msg = fmt.Sprintf("Parse error: %s", detail)
	}
	return &ProtocolError{Code: CodeParseError, Message: msg}
}

// NewInvalidRequest reports a JSON body that is not a single
// well-formed request object. Batches land here too.
func NewInvalidRequest(detail string) *ProtocolError {
	msg := "Invalid Request"
	if detail != "" {
		msg = fmt.Sprintf("Invalid Request: %s", detail)
	}
	return &ProtocolError{Code: CodeInvalidRequest, Message: msg}
}

// NewMethodNotFound reports an unregistered method name.
func NewMethodNotFound(method string) *ProtocolError {
	return &ProtocolError{
		Code:    CodeMethodNotFound,
		Message: fmt.Sprintf("Method %s was not found", method),
	}
}

// NewInvalidParams reports parameters the target method rejected.
func NewInvalidParams(method string, params []string, cause error) *ProtocolError {
	msg := fmt.Sprintf("Params %s of method %s are invalid", strings.Join(params, ", "), method)
	if cause != nil {
		msg = fmt.Sprintf("%s: %s", msg, cause)
	}
	return &ProtocolError{Code: CodeInvalidParams, Message: msg}
}

// IsProtocolError reports whether err is one of the transport's own
// JSON-RPC error kinds.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// ArgsError marks a method-level argument mismatch (missing argument,
// wrong type). The server maps it to InvalidParams, preserving the
// offending parameter names and the underlying message.
type ArgsError struct {
	Params []string
	Err    error
}

func (e *ArgsError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("invalid arguments: %s", strings.Join(e.Params, ", "))
}

func (e *ArgsError) Unwrap() error {
	return e.Err
}

// UnexpectedError is the generic error a client surfaces when the
// server reports a failure whose class cannot be safely rebuilt:
// unexpected server errors, and expected errors outside the allow-list.
// The reported class name is deliberately dropped.
type UnexpectedError struct {
	// WireCode is the code the server reported.
	WireCode int
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected RPC error from the remote side (code %d)", e.WireCode)
}

// StatusCode is always 500: the caller cannot act on the remote code
// of an error it was not allowed to understand.
func (e *UnexpectedError) StatusCode() int {
	return http.StatusInternalServerError
}

// VersionError is raised locally when a requested version cannot be
// sent under the client's version cap. No network call is made.
type VersionError struct {
	Requested Version
	Cap       Version
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("requested RPC API version %s cannot be sent under cap %s",
		e.Requested, e.Cap)
}
