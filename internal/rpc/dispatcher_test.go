package rpc

import (
	"context"
	"errors"
	"testing"
)

func noopMethod(ctx context.Context, args Args) (any, error) {
	return nil, nil
}

func TestRegistry_Register(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		fn      Method
		wantErr bool
	}{
		{"valid name", "create_node", noopMethod, false},
		{"empty name", "", noopMethod, true},
		{"private prefix", "_secret", noopMethod, true},
		{"denied init_host", "init_host", noopMethod, true},
		{"denied del_host", "del_host", noopMethod, true},
		{"denied target", "target", noopMethod, true},
		{"denied iter_nodes", "iter_nodes", noopMethod, true},
		{"nil callable", "broken", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			err := r.Register(tt.method, tt.fn)
			if (err != nil) != tt.wantErr {
				t.Errorf("Register(%q) error = %v, wantErr %v", tt.method, err, tt.wantErr)
			}
		})
	}
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("ping", noopMethod); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	if err := r.Register("ping", noopMethod); err == nil {
		t.Error("duplicate Register() should fail")
	}
}

func TestRegistry_MustRegister_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustRegister() should panic on a denied name")
		}
	}()

	NewRegistry().MustRegister("init_host", noopMethod)
}

func TestRegistry_Names_Sorted(t *testing.T) {
	r := NewRegistry()
	r.MustRegister("zeta", noopMethod)
	r.MustRegister("alpha", noopMethod)
	r.MustRegister("mid", noopMethod)

	names := r.Names()
	want := []string{"alpha", "mid", "zeta"}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], name)
		}
	}
}

func TestArgs_String(t *testing.T) {
	args := Args{"name": "compute-0", "count": float64(2)}

	if v, err := args.String("name"); err != nil || v != "compute-0" {
		t.Errorf("String(name) = %q, %v", v, err)
	}

	if _, err := args.String("missing"); err == nil {
		t.Error("String(missing) should fail")
	} else {
		var argsErr *ArgsError
		if !errors.As(err, &argsErr) {
			t.Errorf("error type = %T, want *ArgsError", err)
		}
	}

	if _, err := args.String("count"); err == nil {
		t.Error("String() should reject non-string values")
	}
}

func TestArgs_StringOr(t *testing.T) {
	args := Args{"name": "compute-0"}

	if v, _ := args.StringOr("name", "def"); v != "compute-0" {
		t.Errorf("StringOr(name) = %q", v)
	}
	if v, _ := args.StringOr("missing", "def"); v != "def" {
		t.Errorf("StringOr(missing) = %q, want def", v)
	}
}

func TestArgs_Bool(t *testing.T) {
	args := Args{"on": true, "name": "x"}

	if v, err := args.Bool("on"); err != nil || !v {
		t.Errorf("Bool(on) = %v, %v", v, err)
	}
	if v, err := args.Bool("missing"); err != nil || v {
		t.Errorf("Bool(missing) = %v, %v, want false", v, err)
	}
	if _, err := args.Bool("name"); err == nil {
		t.Error("Bool() should reject non-bool values")
	}
}

func TestArgs_Map(t *testing.T) {
	args := Args{"extra": map[string]any{"rack": "r12"}, "name": "x"}

	m, err := args.Map("extra")
	if err != nil || m["rack"] != "r12" {
		t.Errorf("Map(extra) = %v, %v", m, err)
	}

	if m, err := args.Map("missing"); err != nil || m != nil {
		t.Errorf("Map(missing) = %v, %v, want nil", m, err)
	}
	if _, err := args.Map("name"); err == nil {
		t.Error("Map() should reject non-object values")
	}
}
