// Package main provides the entry point for metalmesh-ctl.
//
// The CLI talks to a conductor over the JSON-RPC control plane:
//
//	metalmesh-ctl --topic conductor.localhost:8089 node list
//	metalmesh-ctl node create compute-0 --driver ipmi
//	metalmesh-ctl node power compute-0 "power on"
//	metalmesh-ctl ping
//
// Credentials and TLS settings come from flags or METALMESH_*
// environment variables.
//
// @design DS-0601
package main
