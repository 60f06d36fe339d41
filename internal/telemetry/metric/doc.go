// Package metric provides Prometheus metrics for metalmesh.
//
// Metrics cover the RPC transport:
//
//   - request counters by method and outcome
//   - request duration histograms by method
//   - authentication failures
//   - credential verify-cache hits and misses
//
// Metrics are exposed in Prometheus format via Handler, served on a
// dedicated listener; the RPC port itself stays POST-only.
//
// @req RQ-0403
// @design DS-0402
package metric
