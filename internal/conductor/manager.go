// Package conductor implements the node management service.
//
// @design DS-0201
package conductor

import (
	"context"
	"time"

	"github.com/yndnr/metalmesh/internal/core/domain"
	"github.com/yndnr/metalmesh/internal/rpc"
	"github.com/yndnr/metalmesh/internal/telemetry/logger"
	"github.com/yndnr/metalmesh/pkg/cmap"
)

// Manager owns the node inventory and exposes it on the RPC registry.
//
// Conflicting operations on the same node are serialized with a
// per-node reservation; a second caller gets NodeLocked instead of
// waiting.
type Manager struct {
	topic   string
	store   *NodeStore
	log     logger.Logger
	locks   *cmap.Map[string, string]
	started time.Time
}

// NewManager creates a manager bound to a topic and node store.
func NewManager(topic string, store *NodeStore, log logger.Logger) *Manager {
	if log == nil {
		log = logger.Default()
	}
	return &Manager{
		topic:   topic,
		store:   store,
		log:     log.With("topic", topic),
		locks:   cmap.New[string, string](),
		started: time.Now(),
	}
}

// Topic returns the routing topic this manager answers on.
func (m *Manager) Topic() string {
	return m.topic
}

// RegisterMethods wires the manager's operations into the registry.
// Panics on name conflicts, which are startup wiring bugs.
func (m *Manager) RegisterMethods(reg *rpc.Registry) {
	reg.MustRegister("ping", m.Ping)
	reg.MustRegister("create_node", m.CreateNode)
	reg.MustRegister("get_node", m.GetNode)
	reg.MustRegister("list_nodes", m.ListNodes)
	reg.MustRegister("update_node", m.UpdateNode)
	reg.MustRegister("delete_node", m.DeleteNode)
	reg.MustRegister("change_node_power_state", m.ChangeNodePowerState)
	reg.MustRegister("list_reservations", m.ListReservations)
}

// reserve takes the per-node reservation, or reports who holds it.
func (m *Manager) reserve(ctx context.Context, uuid, purpose string) error {
	if !m.locks.SetIfAbsent(uuid, purpose) {
		holder, _ := m.locks.Get(uuid)
		m.log.Debug("node reservation conflict",
			"node", uuid, "wanted", purpose, "held_for", holder)
		return domain.NewNodeLocked(uuid)
	}
	return nil
}

func (m *Manager) release(uuid string) {
	m.locks.Delete(uuid)
}

// ListReservations reports the reservations currently held, keyed by
// node UUID with the purpose each was taken for. Reservations are
// short-lived, so an empty map is the common answer.
func (m *Manager) ListReservations(ctx context.Context, args rpc.Args) (any, error) {
	return map[string]any{"reservations": m.locks.Snapshot()}, nil
}

// Ping is the liveness probe.
func (m *Manager) Ping(ctx context.Context, args rpc.Args) (any, error) {
	return map[string]any{
		"topic":          m.topic,
		"uptime_seconds": int64(time.Since(m.started).Seconds()),
	}, nil
}

// CreateNode registers a new node in the inventory.
//
// Required args: name, driver. Optional: extra (object).
func (m *Manager) CreateNode(ctx context.Context, args rpc.Args) (any, error) {
	name, err := args.String("name")
	if err != nil {
		return nil, err
	}
	driver, err := args.String("driver")
	if err != nil {
		return nil, err
	}
	extra, err := args.Map("extra")
	if err != nil {
		return nil, err
	}

	if existing, err := m.store.GetByName(ctx, name); err == nil {
		return nil, domain.NewInvalidParameterValue(
			"a node with name %q already exists (%s)", name, existing.UUID)
	}

	node := domain.NewNode(name, driver)
	node.Extra = extra

	if err := m.store.Save(ctx, node); err != nil {
		return nil, err
	}

	m.log.Info("node created",
		"node", node.UUID, "name", node.Name, "driver", node.Driver)

	return node, nil
}

// GetNode looks a node up by UUID or name.
func (m *Manager) GetNode(ctx context.Context, args rpc.Args) (any, error) {
	ident, err := args.String("node_id")
	if err != nil {
		return nil, err
	}

	node, err := m.store.Get(ctx, ident)
	if err == nil {
		return node, nil
	}
	return m.store.GetByName(ctx, ident)
}

// ListNodes returns the full inventory.
func (m *Manager) ListNodes(ctx context.Context, args rpc.Args) (any, error) {
	nodes, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"nodes": nodes}, nil
}

// UpdateNode patches mutable fields of a node.
//
// Required args: node_id. Optional: name, driver, extra.
func (m *Manager) UpdateNode(ctx context.Context, args rpc.Args) (any, error) {
	ident, err := args.String("node_id")
	if err != nil {
		return nil, err
	}

	node, err := m.lookup(ctx, ident)
	if err != nil {
		return nil, err
	}

	if err := m.reserve(ctx, node.UUID, "update"); err != nil {
		return nil, err
	}
	defer m.release(node.UUID)

	name, err := args.StringOr("name", node.Name)
	if err != nil {
		return nil, err
	}
	driver, err := args.StringOr("driver", node.Driver)
	if err != nil {
		return nil, err
	}
	extra, err := args.Map("extra")
	if err != nil {
		return nil, err
	}

	if name != node.Name {
		if existing, err := m.store.GetByName(ctx, name); err == nil && existing.UUID != node.UUID {
			return nil, domain.NewInvalidParameterValue(
				"a node with name %q already exists (%s)", name, existing.UUID)
		}
	}

	node.Name = name
	node.Driver = driver
	if extra != nil {
		node.Extra = extra
	}
	node.UpdatedAt = time.Now().UTC()

	if err := m.store.Save(ctx, node); err != nil {
		return nil, err
	}

	m.log.Info("node updated", "node", node.UUID, "name", node.Name)

	return node, nil
}

// DeleteNode removes a node from the inventory.
//
// Active nodes cannot be deleted.
func (m *Manager) DeleteNode(ctx context.Context, args rpc.Args) (any, error) {
	ident, err := args.String("node_id")
	if err != nil {
		return nil, err
	}

	node, err := m.lookup(ctx, ident)
	if err != nil {
		return nil, err
	}

	if err := m.reserve(ctx, node.UUID, "delete"); err != nil {
		return nil, err
	}
	defer m.release(node.UUID)

	if node.ProvisionState == domain.ProvisionActive {
		return nil, domain.NewNotAcceptable(
			"node " + node.UUID + " is active and cannot be deleted")
	}

	if err := m.store.Delete(ctx, node.UUID); err != nil {
		return nil, err
	}

	m.log.Info("node deleted", "node", node.UUID, "name", node.Name)

	return nil, nil
}

// ChangeNodePowerState drives a node to a target power state.
//
// Required args: node_id, target. Valid targets are "power on",
// "power off" and "rebooting"; rebooting settles as "power on".
func (m *Manager) ChangeNodePowerState(ctx context.Context, args rpc.Args) (any, error) {
	ident, err := args.String("node_id")
	if err != nil {
		return nil, err
	}
	target, err := args.String("target")
	if err != nil {
		return nil, err
	}

	if !domain.ValidPowerTarget(target) {
		return nil, domain.NewInvalidParameterValue(
			"invalid power target %q", target)
	}

	node, err := m.lookup(ctx, ident)
	if err != nil {
		return nil, err
	}

	if err := m.reserve(ctx, node.UUID, "power"); err != nil {
		return nil, err
	}
	defer m.release(node.UUID)

	if node.Driver == "" {
		return nil, domain.NewPowerStateFailure(node.UUID, target)
	}

	// A reboot request settles in the powered-on state.
	settled := target
	if target == domain.PowerRebooting {
		settled = domain.PowerOn
	}

	node.PowerState = settled
	node.UpdatedAt = time.Now().UTC()

	if err := m.store.Save(ctx, node); err != nil {
		return nil, err
	}

	if rc := rpc.RequestContextFrom(ctx); rc != nil {
		m.log.Info("node power state changed",
			"node", node.UUID, "target", target,
			"power_state", node.PowerState, "user", rc.UserName)
	} else {
		m.log.Info("node power state changed",
			"node", node.UUID, "target", target,
			"power_state", node.PowerState)
	}

	return node, nil
}

// lookup resolves a node identifier that may be a UUID or a name.
func (m *Manager) lookup(ctx context.Context, ident string) (*domain.Node, error) {
	node, err := m.store.Get(ctx, ident)
	if err == nil {
		return node, nil
	}
	return m.store.GetByName(ctx, ident)
}
