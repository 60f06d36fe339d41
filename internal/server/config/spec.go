// Package config defines the conductor configuration structure.
package config

import "time"

// ServerConfig is the root configuration for metalmesh-conductor.
type ServerConfig struct {
	RPC       RPCSection       `koanf:"rpc"`
	Auth      AuthSection      `koanf:"auth"`
	Conductor ConductorSection `koanf:"conductor"`
	Telemetry TelemetrySection `koanf:"telemetry"`
	Log       LogSection       `koanf:"log"`
}

// RPCSection configures the JSON-RPC transport, both sides.
type RPCSection struct {
	// HostIP is the bind address of the RPC server.
	HostIP string `koanf:"host_ip"`

	// Port is the RPC port, shared by server and client defaults.
	Port int `koanf:"port"`

	// UseSSL enables TLS on the server; ClientUseSSL on the client.
	// The local bus sets both when it provisions cert material.
	UseSSL       bool `koanf:"use_ssl"`
	ClientUseSSL bool `koanf:"client_use_ssl"`

	// TLSCertFile and TLSKeyFile are the server-side cert material.
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`

	// CAFile is what the client trusts instead of the system roots.
	CAFile string `koanf:"ca_file"`

	// VersionCap bounds the RPC API versions the client may request
	// ("<major>.<minor>"; empty = uncapped).
	VersionCap string `koanf:"version_cap"`

	// AllowedErrorNamespaces are the dotted prefixes remote error
	// classes may be rebuilt from.
	AllowedErrorNamespaces []string `koanf:"allowed_error_namespaces"`

	// Timeout bounds each client HTTP round trip.
	Timeout time.Duration `koanf:"timeout"`
}

// AuthSection configures the RPC authentication strategy.
type AuthSection struct {
	// Strategy is one of "noauth", "http_basic", "keystone".
	Strategy string `koanf:"strategy"`

	// CredentialFile backs the http_basic server gate.
	CredentialFile string `koanf:"credential_file"`

	// Username and Password are the client-side basic credentials.
	Username string `koanf:"username"`
	Password string `koanf:"password"`

	// RequiredRole for the keystone gate.
	RequiredRole string `koanf:"required_role"`
}

// ConductorSection configures the conductor manager.
type ConductorSection struct {
	// Topic is the name this conductor answers on
	// ("<topic>.<host:port>" from the client's view).
	Topic string `koanf:"topic"`

	// DataDir holds the node store.
	DataDir string `koanf:"data_dir"`

	// LocalBus stands up a self-contained loopback RPC channel at
	// startup, overriding the RPC and Auth sections with generated
	// material.
	LocalBus bool `koanf:"local_bus"`
}

// TelemetrySection configures observability endpoints.
type TelemetrySection struct {
	// MetricsAddr serves Prometheus metrics when non-empty. Never the
	// RPC port: the RPC surface stays POST-only.
	MetricsAddr string `koanf:"metrics_addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
