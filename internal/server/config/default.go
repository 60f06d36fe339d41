// Package config defines the conductor configuration structure.
package config

import "time"

// Default configuration values.
const (
	DefaultHostIP = "127.0.0.1"
	DefaultPort   = 8089

	DefaultAuthStrategy = "noauth"
	DefaultRequiredRole = "admin"

	DefaultTopic   = "conductor"
	DefaultDataDir = "/var/lib/metalmesh/conductor"

	DefaultTimeout = 60 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default conductor configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		RPC: RPCSection{
			HostIP:  DefaultHostIP,
			Port:    DefaultPort,
			Timeout: DefaultTimeout,
		},
		Auth: AuthSection{
			Strategy:     DefaultAuthStrategy,
			RequiredRole: DefaultRequiredRole,
		},
		Conductor: ConductorSection{
			Topic:   DefaultTopic,
			DataDir: DefaultDataDir,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
