// Package domain defines the core domain models for metalmesh.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Power states a node can report or be driven to.
const (
	PowerOn        = "power on"
	PowerOff       = "power off"
	PowerRebooting = "rebooting"
)

// Provision states relevant to the conductor.
const (
	ProvisionAvailable = "available"
	ProvisionActive    = "active"
	ProvisionDeploying = "deploying"
	ProvisionError     = "error"
)

// Node is a bare-metal machine tracked by a conductor.
type Node struct {
	UUID           string         `json:"uuid"`
	Name           string         `json:"name"`
	Driver         string         `json:"driver"`
	PowerState     string         `json:"power_state"`
	ProvisionState string         `json:"provision_state"`
	Extra          map[string]any `json:"extra,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// NewNode creates a node with a fresh UUID in the available state.
func NewNode(name, driver string) *Node {
	now := time.Now().UTC()
	return &Node{
		UUID:           uuid.NewString(),
		Name:           name,
		Driver:         driver,
		PowerState:     PowerOff,
		ProvisionState: ProvisionAvailable,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Validate checks invariants before a node is persisted.
func (n *Node) Validate() error {
	if n.UUID == "" {
		return NewInvalidParameterValue("node UUID must not be empty")
	}
	if _, err := uuid.Parse(n.UUID); err != nil {
		return NewInvalidParameterValue("node UUID %q is not a valid UUID", n.UUID)
	}
	if strings.TrimSpace(n.Name) == "" {
		return NewInvalidParameterValue("node name must not be empty")
	}
	if n.Driver == "" {
		return NewInvalidParameterValue("node %s has no driver assigned", n.UUID)
	}
	return nil
}

// ValidPowerTarget reports whether a requested power transition target
// is one the conductor understands.
func ValidPowerTarget(target string) bool {
	switch target {
	case PowerOn, PowerOff, PowerRebooting:
		return true
	}
	return false
}
