// Package config defines the conductor configuration structure.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
)

// Verify validates the configuration before anything starts.
func Verify(cfg *ServerConfig) error {
	if err := verifyRPC(&cfg.RPC); err != nil {
		return err
	}
	if err := verifyAuth(&cfg.Auth); err != nil {
		return err
	}
	return verifyConductor(&cfg.Conductor)
}

func verifyRPC(cfg *RPCSection) error {
	if net.ParseIP(cfg.HostIP) == nil {
		return fmt.Errorf("rpc.host_ip %q is not a valid IP address", cfg.HostIP)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("rpc.port %d is out of range", cfg.Port)
	}
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		return errors.New("rpc.tls_cert_file and rpc.tls_key_file must be set together")
	}
	if cfg.UseSSL && cfg.TLSCertFile == "" {
		return errors.New("rpc.use_ssl requires rpc.tls_cert_file and rpc.tls_key_file")
	}
	return nil
}

func verifyAuth(cfg *AuthSection) error {
	switch cfg.Strategy {
	case "noauth", "keystone":
	case "http_basic":
		if cfg.CredentialFile == "" {
			return errors.New("auth.strategy http_basic requires auth.credential_file")
		}
		if _, err := os.Stat(cfg.CredentialFile); err != nil {
			return fmt.Errorf("auth.credential_file: %w", err)
		}
	default:
		return fmt.Errorf("auth.strategy %q is not supported", cfg.Strategy)
	}
	return nil
}

func verifyConductor(cfg *ConductorSection) error {
	if cfg.Topic == "" {
		return errors.New("conductor.topic is required")
	}
	if cfg.DataDir == "" {
		return errors.New("conductor.data_dir is required")
	}
	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return fmt.Errorf("cannot create data directory: %w", err)
	}
	return nil
}
