// Package conductor implements the node management service exposed
// over the control-plane RPC transport.
//
// The conductor owns a Badger-backed node inventory and registers its
// operations on an RPC method registry:
//
//   - ping: liveness probe, returns topic and uptime
//   - create_node, get_node, list_nodes, update_node, delete_node
//   - change_node_power_state: drives power transitions with a
//     per-node reservation to serialize conflicting requests
//
// Host lifecycle management is internal to the process and is never
// exposed as an RPC method.
//
// @design DS-0201
package conductor
