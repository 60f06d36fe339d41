// Package rpc implements the metalmesh control-plane JSON-RPC transport.
package rpc

import "encoding/json"

// JSONRPCVersion is the only protocol version this transport speaks.
const JSONRPCVersion = "2.0"

// Reserved parameter keys.
const (
	// ParamContext carries the serialized request context.
	ParamContext = "context"

	// ParamVersion carries the pinned RPC API version. The server
	// strips it before dispatch; enforcement happens client-side.
	ParamVersion = "rpc.version"
)

// Request is an outgoing JSON-RPC request or notification.
type Request struct {
	JSONRPC string         `json:"jsonrpc"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params,omitempty"`

	// ID is absent for notifications. It is carried as any to
	// round-trip string and numeric ids untouched.
	ID any `json:"id,omitempty"`
}

// ErrorData is the optional payload attached to a wire error.
type ErrorData struct {
	// Class is the dotted class name of an expected server-side
	// error. Protocol errors and unexpected errors never carry it.
	Class string `json:"class,omitempty"`
}

// ErrorBody is the error member of a response.
type ErrorBody struct {
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Data    *ErrorData `json:"data,omitempty"`
}

// successResponse is the wire shape of a successful call response.
// Result is always present, even when null.
type successResponse struct {
	JSONRPC string `json:"jsonrpc"`
	Result  any    `json:"result"`
	ID      any    `json:"id"`
}

// errorResponse is the wire shape of a failed call response. ID is
// null when the request's id could not be determined.
type errorResponse struct {
	JSONRPC string     `json:"jsonrpc"`
	Error   *ErrorBody `json:"error"`
	ID      any        `json:"id"`
}

// response is the combined shape the client parses. Exactly one of
// Result and Error is present in a valid response.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *ErrorBody      `json:"error"`
	ID      any             `json:"id"`
}

// plainError is the non-JSON-RPC body used for HTTP-layer rejections
// (405 on non-POST, 403 from the authorization gate).
type plainError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newPlainError(code int, message string) plainError {
	var p plainError
	p.Error.Code = code
	p.Error.Message = message
	return p
}
