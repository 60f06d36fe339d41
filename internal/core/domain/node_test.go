package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestNewNode(t *testing.T) {
	node := NewNode("compute-01", "ipmi")

	if _, err := uuid.Parse(node.UUID); err != nil {
		t.Errorf("UUID %q is not valid: %v", node.UUID, err)
	}
	if node.PowerState != PowerOff {
		t.Errorf("PowerState = %q, want %q", node.PowerState, PowerOff)
	}
	if node.ProvisionState != ProvisionAvailable {
		t.Errorf("ProvisionState = %q, want %q", node.ProvisionState, ProvisionAvailable)
	}
	if node.CreatedAt.IsZero() || !node.CreatedAt.Equal(node.UpdatedAt) {
		t.Errorf("timestamps = (%v, %v)", node.CreatedAt, node.UpdatedAt)
	}
	if err := node.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestNodeValidate(t *testing.T) {
	valid := func() *Node { return NewNode("compute-01", "ipmi") }

	tests := []struct {
		name   string
		mutate func(*Node)
	}{
		{"empty uuid", func(n *Node) { n.UUID = "" }},
		{"malformed uuid", func(n *Node) { n.UUID = "not-a-uuid" }},
		{"empty name", func(n *Node) { n.Name = "" }},
		{"whitespace name", func(n *Node) { n.Name = "   " }},
		{"empty driver", func(n *Node) { n.Driver = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := valid()
			tt.mutate(node)

			err := node.Validate()
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			var de *Error
			if !errors.As(err, &de) {
				t.Fatalf("error type = %T", err)
			}
			if de.Code != 400 {
				t.Errorf("Code = %d, want 400", de.Code)
			}
		})
	}
}

func TestValidPowerTarget(t *testing.T) {
	for _, target := range []string{PowerOn, PowerOff, PowerRebooting} {
		if !ValidPowerTarget(target) {
			t.Errorf("ValidPowerTarget(%q) = false", target)
		}
	}
	for _, target := range []string{"", "on", "POWER ON", "soft power off"} {
		if ValidPowerTarget(target) {
			t.Errorf("ValidPowerTarget(%q) = true", target)
		}
	}
}
