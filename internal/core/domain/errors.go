// Package domain defines the core domain models for metalmesh.
package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// NamespaceException is the dotted namespace of metalmesh's own errors.
// It is the wire identity carried in a JSON-RPC error's data.class field.
const NamespaceException = "metalmesh.exception"

// NamespaceInspectorUtils is the namespace of the inspection extension's
// utility errors, the one extension allowed to travel over the RPC channel.
const NamespaceInspectorUtils = "metalmesh_inspector.utils"

// DefaultAllowedNamespaces lists the namespaces a client may rebuild
// remote error classes from. Anything outside these prefixes is always
// surfaced as a generic unexpected error, never instantiated.
var DefaultAllowedNamespaces = []string{NamespaceException, NamespaceInspectorUtils}

// Error is a domain error with an HTTP-style status code and a dotted
// class name.
//
// @design DS-0104
type Error struct {
	Class   string // Dotted class name (e.g. "metalmesh.exception.NodeNotFound")
	Code    int    // HTTP-style status code carried over the wire
	Message string // Human-readable message
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// StatusCode returns the HTTP-style code. Any error exposing this
// method is treated as "expected" by the RPC error mapping.
func (e *Error) StatusCode() int {
	return e.Code
}

// RemoteClass returns the dotted class name reported to clients.
func (e *Error) RemoteClass() string {
	return e.Class
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support: two domain errors match when their
// classes match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Class == t.Class
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *Error) WithCause(cause error) *Error {
	return &Error{
		Class:   e.Class,
		Code:    e.Code,
		Message: e.Message,
		Cause:   cause,
	}
}

// Coded is satisfied by errors that carry an HTTP-style status code.
type Coded interface {
	error
	StatusCode() int
}

// Classed is satisfied by errors that advertise a dotted class name
// safe to report to clients.
type Classed interface {
	error
	RemoteClass() string
}

// CodeOf extracts the status code from an error. Errors without a code
// default to 500, matching the catch-all classification for unexpected
// failures.
func CodeOf(err error) int {
	var c Coded
	if errors.As(err, &c) {
		return c.StatusCode()
	}
	return http.StatusInternalServerError
}

// IsExpected reports whether an error is part of the domain taxonomy,
// as opposed to an unexpected internal failure.
func IsExpected(err error) bool {
	var c Coded
	return errors.As(err, &c)
}

// ClassOf extracts the dotted class name from an error, or "" when the
// error does not advertise one.
func ClassOf(err error) string {
	var cl Classed
	if errors.As(err, &cl) {
		return cl.RemoteClass()
	}
	return ""
}

// ============================================================================
// Error classes
// ============================================================================

func exceptionClass(name string) string {
	return NamespaceException + "." + name
}

// NewNodeNotFound indicates the requested node does not exist.
func NewNodeNotFound(node string) *Error {
	return &Error{
		Class:   exceptionClass("NodeNotFound"),
		Code:    http.StatusNotFound,
		Message: fmt.Sprintf("node %s could not be found", node),
	}
}

// NewNodeLocked indicates the node is reserved by another conductor.
func NewNodeLocked(node string) *Error {
	return &Error{
		Class:   exceptionClass("NodeLocked"),
		Code:    http.StatusConflict,
		Message: fmt.Sprintf("node %s is locked by another process", node),
	}
}

// NewInvalidParameterValue indicates a request argument failed validation.
func NewInvalidParameterValue(format string, args ...any) *Error {
	return &Error{
		Class:   exceptionClass("InvalidParameterValue"),
		Code:    http.StatusBadRequest,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewNotAcceptable indicates the requested API version cannot be served.
func NewNotAcceptable(message string) *Error {
	return &Error{
		Class:   exceptionClass("NotAcceptable"),
		Code:    http.StatusNotAcceptable,
		Message: message,
	}
}

// NewTemporaryFailure indicates a transient condition worth retrying.
func NewTemporaryFailure(message string) *Error {
	return &Error{
		Class:   exceptionClass("TemporaryFailure"),
		Code:    http.StatusServiceUnavailable,
		Message: message,
	}
}

// NewPowerStateFailure indicates a power action could not be carried out.
func NewPowerStateFailure(node, state string) *Error {
	return &Error{
		Class:   exceptionClass("PowerStateFailure"),
		Code:    http.StatusBadRequest,
		Message: fmt.Sprintf("failed to set node %s power state to %s", node, state),
	}
}

// NewConfigInvalid indicates broken process configuration. It is raised
// at startup, never over the wire.
func NewConfigInvalid(format string, args ...any) *Error {
	return &Error{
		Class:   exceptionClass("ConfigInvalid"),
		Code:    http.StatusInternalServerError,
		Message: fmt.Sprintf(format, args...),
	}
}

// ============================================================================
// Remote error reconstruction registry
// ============================================================================

// The registry is the closed set of class names a client will rebuild
// into typed errors. It is seeded with metalmesh's own classes; an
// extension registers its classes at init time. Unknown names never
// resolve, regardless of what the wire claims.
var (
	registryMu sync.RWMutex
	registry   = map[string]struct{}{}
)

func init() {
	for _, name := range []string{
		"NodeNotFound",
		"NodeLocked",
		"InvalidParameterValue",
		"NotAcceptable",
		"TemporaryFailure",
		"PowerStateFailure",
		"ConfigInvalid",
	} {
		RegisterClass(exceptionClass(name))
	}
}

// RegisterClass adds a dotted class name to the reconstruction registry.
func RegisterClass(class string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[class] = struct{}{}
}

// Rebuild converts a wire-reported (class, code, message) triple back
// into a typed domain error.
//
// It succeeds only when the class name sits under one of the allowed
// namespaces and is present in the registry. The ok result is false
// otherwise; callers must then fall back to a generic error and must
// not leak the reported class name.
func Rebuild(class, message string, code int, allowedNamespaces []string) (*Error, bool) {
	if class == "" {
		return nil, false
	}

	allowed := false
	for _, ns := range allowedNamespaces {
		if strings.HasPrefix(class, ns+".") {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, false
	}

	registryMu.RLock()
	_, known := registry[class]
	registryMu.RUnlock()
	if !known {
		return nil, false
	}

	return &Error{Class: class, Code: code, Message: message}, true
}
