// Package rpc implements the metalmesh control-plane JSON-RPC transport.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"
)

// RequestContext is the typed request context nested under
// params.context on every request. It identifies the caller and ties
// log lines on both sides together through the request id.
type RequestContext struct {
	RequestID string `json:"request_id,omitempty"`
	UserName  string `json:"user_name,omitempty"`
	IsAdmin   bool   `json:"is_admin,omitempty"`
}

// ToMap serializes the context into its wire form.
func (rc *RequestContext) ToMap() (map[string]any, error) {
	data, err := json.Marshal(rc)
	if err != nil {
		return nil, fmt.Errorf("serialize request context: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("serialize request context: %w", err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

// RequestContextFromMap deserializes the wire form back into a typed
// context. Unknown fields are ignored for forward compatibility.
func RequestContextFromMap(m map[string]any) (*RequestContext, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("deserialize request context: %w", err)
	}
	var rc RequestContext
	if err := json.Unmarshal(data, &rc); err != nil {
		return nil, fmt.Errorf("deserialize request context: %w", err)
	}
	return &rc, nil
}

type requestContextKey struct{}

// WithRequestContext attaches a request context to a context.Context,
// making it visible to dispatched methods.
func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// RequestContextFrom extracts the request context, or nil.
func RequestContextFrom(ctx context.Context) *RequestContext {
	if rc, ok := ctx.Value(requestContextKey{}).(*RequestContext); ok {
		return rc
	}
	return nil
}

// Serializer round-trips entity values between their language form and
// their wire form, scoped to the request context of the call.
type Serializer interface {
	// Serialize converts a value into its wire form.
	Serialize(rc *RequestContext, v any) (any, error)
	// Deserialize converts a wire value back into its language form.
	Deserialize(rc *RequestContext, v any) (any, error)
}

// jsonSerializer is the default Serializer: a JSON round trip. It
// normalizes arbitrary structs into plain maps/slices/scalars so both
// sides of the channel see the same shapes.
type jsonSerializer struct{}

// NewJSONSerializer returns the default entity serializer.
func NewJSONSerializer() Serializer {
	return jsonSerializer{}
}

func (jsonSerializer) Serialize(_ *RequestContext, v any) (any, error) {
	return jsonRoundTrip(v)
}

func (jsonSerializer) Deserialize(_ *RequestContext, v any) (any, error) {
	return jsonRoundTrip(v)
}

func jsonRoundTrip(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("serialize entity: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("deserialize entity: %w", err)
	}
	return out, nil
}
