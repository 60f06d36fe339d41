// Package rpc implements the metalmesh control-plane JSON-RPC transport.
package rpc

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Args holds the named parameters of a dispatched call, after the
// reserved keys have been handled.
type Args map[string]any

// String extracts a required string argument.
func (a Args) String(key string) (string, error) {
	v, ok := a[key]
	if !ok {
		return "", &ArgsError{Params: []string{key}, Err: fmt.Errorf("missing required argument %q", key)}
	}
	s, ok := v.(string)
	if !ok {
		return "", &ArgsError{Params: []string{key}, Err: fmt.Errorf("argument %q must be a string", key)}
	}
	return s, nil
}

// StringOr extracts an optional string argument with a default.
func (a Args) StringOr(key, def string) (string, error) {
	if _, ok := a[key]; !ok {
		return def, nil
	}
	return a.String(key)
}

// Bool extracts an optional bool argument, false when absent.
func (a Args) Bool(key string) (bool, error) {
	v, ok := a[key]
	if !ok {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, &ArgsError{Params: []string{key}, Err: fmt.Errorf("argument %q must be a boolean", key)}
	}
	return b, nil
}

// Map extracts an optional object argument, nil when absent.
func (a Args) Map(key string) (map[string]any, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &ArgsError{Params: []string{key}, Err: fmt.Errorf("argument %q must be an object", key)}
	}
	return m, nil
}

// Method is a callable registered with the dispatcher. The request
// context, when present, travels inside ctx (see RequestContextFrom).
type Method func(ctx context.Context, args Args) (any, error)

// Lifecycle hooks of a manager that must never be remotely callable,
// rejected at registration time.
var deniedMethods = map[string]struct{}{
	"init_host":  {},
	"del_host":   {},
	"target":     {},
	"iter_nodes": {},
}

// Registry is the flat name-to-callable map the server dispatches
// against. It is built once at startup and read-only afterwards.
type Registry struct {
	methods map[string]Method
}

// NewRegistry creates an empty method registry.
func NewRegistry() *Registry {
	return &Registry{methods: make(map[string]Method)}
}

// Register adds a method under the given name.
//
// Names with the implementation-private prefix, names on the lifecycle
// deny-list, and duplicates are configuration errors.
func (r *Registry) Register(name string, m Method) error {
	if name == "" {
		return fmt.Errorf("rpc: method name must not be empty")
	}
	if strings.HasPrefix(name, "_") {
		return fmt.Errorf("rpc: method %q is private and cannot be exposed", name)
	}
	if _, denied := deniedMethods[name]; denied {
		return fmt.Errorf("rpc: method %q is a lifecycle hook and cannot be exposed", name)
	}
	if m == nil {
		return fmt.Errorf("rpc: method %q has no callable", name)
	}
	if _, dup := r.methods[name]; dup {
		return fmt.Errorf("rpc: method %q is already registered", name)
	}
	r.methods[name] = m
	return nil
}

// MustRegister is Register that panics on misconfiguration. Intended
// for startup wiring where a bad name is a programming error.
func (r *Registry) MustRegister(name string, m Method) {
	if err := r.Register(name, m); err != nil {
		panic(err)
	}
}

// Get looks up a method by name.
func (r *Registry) Get(name string) (Method, bool) {
	m, ok := r.methods[name]
	return m, ok
}

// Names returns the registered method names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
