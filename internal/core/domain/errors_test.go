package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		wantCode int
	}{
		{"node not found", NewNodeNotFound("n1"), http.StatusNotFound},
		{"node locked", NewNodeLocked("n1"), http.StatusConflict},
		{"invalid parameter", NewInvalidParameterValue("bad %s", "value"), http.StatusBadRequest},
		{"not acceptable", NewNotAcceptable("nope"), http.StatusNotAcceptable},
		{"temporary failure", NewTemporaryFailure("busy"), http.StatusServiceUnavailable},
		{"power state failure", NewPowerStateFailure("n1", PowerOn), http.StatusBadRequest},
		{"config invalid", NewConfigInvalid("broken"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.StatusCode() != tt.wantCode {
				t.Errorf("StatusCode() = %d, want %d", tt.err.StatusCode(), tt.wantCode)
			}
			if got := ClassOf(tt.err); got == "" {
				t.Error("ClassOf() = empty")
			} else if got[:len(NamespaceException)] != NamespaceException {
				t.Errorf("ClassOf() = %q, want %s namespace", got, NamespaceException)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(NewNodeNotFound("n1")); got != http.StatusNotFound {
		t.Errorf("CodeOf(NodeNotFound) = %d, want 404", got)
	}
	if got := CodeOf(errors.New("plain")); got != http.StatusInternalServerError {
		t.Errorf("CodeOf(plain error) = %d, want 500", got)
	}
	wrapped := fmt.Errorf("save node: %w", NewNodeLocked("n1"))
	if got := CodeOf(wrapped); got != http.StatusConflict {
		t.Errorf("CodeOf(wrapped) = %d, want 409", got)
	}
}

func TestIsExpected(t *testing.T) {
	if !IsExpected(NewNodeNotFound("n1")) {
		t.Error("IsExpected(domain error) = false")
	}
	if !IsExpected(fmt.Errorf("lookup: %w", NewNodeNotFound("n1"))) {
		t.Error("IsExpected(wrapped domain error) = false")
	}
	if IsExpected(errors.New("disk on fire")) {
		t.Error("IsExpected(plain error) = true")
	}
	if IsExpected(nil) {
		t.Error("IsExpected(nil) = true")
	}
}

func TestErrorIsMatchesByClass(t *testing.T) {
	a := NewNodeNotFound("n1")
	b := NewNodeNotFound("completely-different-node")

	if !errors.Is(a, b) {
		t.Error("errors.Is() = false for same class")
	}
	if errors.Is(a, NewNodeLocked("n1")) {
		t.Error("errors.Is() = true across classes")
	}
	if errors.Is(a, errors.New("node n1 could not be found")) {
		t.Error("errors.Is() = true against a plain error")
	}
}

func TestErrorWithCauseUnwraps(t *testing.T) {
	cause := errors.New("io timeout")
	err := NewTemporaryFailure("backend unavailable").WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
	if err.StatusCode() != http.StatusServiceUnavailable {
		t.Errorf("StatusCode() = %d after WithCause", err.StatusCode())
	}

	// WithCause copies; the original stays cause-free.
	base := NewTemporaryFailure("backend unavailable")
	if base.WithCause(cause) == base {
		t.Error("WithCause() returned the receiver")
	}
	if base.Cause != nil {
		t.Error("WithCause() mutated the receiver")
	}
}

func TestRebuild(t *testing.T) {
	tests := []struct {
		name   string
		class  string
		wantOK bool
	}{
		{"known class", NamespaceException + ".NodeNotFound", true},
		{"known class other namespace form", NamespaceException + ".TemporaryFailure", true},
		{"empty class", "", false},
		{"outside allowed namespaces", "ironic.common.exception.NodeNotFound", false},
		{"allowed namespace unknown class", NamespaceException + ".Fabricated", false},
		{"namespace prefix without dot", NamespaceException + "Sneaky.NodeNotFound", false},
		{"bare namespace", NamespaceException, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err, ok := Rebuild(tt.class, "message", 404, DefaultAllowedNamespaces)
			if ok != tt.wantOK {
				t.Fatalf("Rebuild() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				if err != nil {
					t.Errorf("Rebuild() err = %v on failure, want nil", err)
				}
				return
			}
			if err.Class != tt.class || err.Code != 404 || err.Message != "message" {
				t.Errorf("Rebuild() = %+v", err)
			}
		})
	}
}

func TestRebuildRegisteredExtensionClass(t *testing.T) {
	class := NamespaceInspectorUtils + ".LookupFailed"

	if _, ok := Rebuild(class, "m", 400, DefaultAllowedNamespaces); ok {
		t.Fatal("Rebuild() succeeded before registration")
	}

	RegisterClass(class)
	err, ok := Rebuild(class, "m", 400, DefaultAllowedNamespaces)
	if !ok {
		t.Fatal("Rebuild() failed after registration")
	}
	if err.Class != class {
		t.Errorf("Class = %q", err.Class)
	}
}

func TestRebuildRespectsCallerNamespaces(t *testing.T) {
	// A registered class still fails when the caller narrows the
	// allowed namespaces.
	class := NamespaceException + ".NodeNotFound"
	if _, ok := Rebuild(class, "m", 404, []string{NamespaceInspectorUtils}); ok {
		t.Error("Rebuild() succeeded outside the caller's namespaces")
	}
	if _, ok := Rebuild(class, "m", 404, nil); ok {
		t.Error("Rebuild() succeeded with no allowed namespaces")
	}
}
