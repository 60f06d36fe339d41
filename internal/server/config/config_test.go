package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// verifiable returns a default config with the data dir pointed at a
// temp directory so Verify's MkdirAll stays inside the test sandbox.
func verifiable(t *testing.T) *ServerConfig {
	t.Helper()
	cfg := Default()
	cfg.Conductor.DataDir = filepath.Join(t.TempDir(), "data")
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.RPC.HostIP != DefaultHostIP {
		t.Errorf("RPC.HostIP = %q, want %q", cfg.RPC.HostIP, DefaultHostIP)
	}
	if cfg.RPC.Port != DefaultPort {
		t.Errorf("RPC.Port = %d, want %d", cfg.RPC.Port, DefaultPort)
	}
	if cfg.Auth.Strategy != "noauth" {
		t.Errorf("Auth.Strategy = %q, want noauth", cfg.Auth.Strategy)
	}
	if cfg.Conductor.LocalBus {
		t.Error("Conductor.LocalBus defaults to true")
	}
	if cfg.RPC.UseSSL || cfg.RPC.ClientUseSSL {
		t.Error("TLS enabled by default")
	}
}

func TestVerifyDefaultsPass(t *testing.T) {
	cfg := verifiable(t)
	if err := Verify(cfg); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if _, err := os.Stat(cfg.Conductor.DataDir); err != nil {
		t.Errorf("Verify() did not create the data dir: %v", err)
	}
}

func TestVerifyRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantSub string
	}{
		{"bad host ip", func(c *ServerConfig) { c.RPC.HostIP = "conductor.example" }, "host_ip"},
		{"port zero", func(c *ServerConfig) { c.RPC.Port = 0 }, "port"},
		{"port too high", func(c *ServerConfig) { c.RPC.Port = 70000 }, "port"},
		{"cert without key", func(c *ServerConfig) { c.RPC.TLSCertFile = "/tmp/cert.pem" }, "together"},
		{"key without cert", func(c *ServerConfig) { c.RPC.TLSKeyFile = "/tmp/key.pem" }, "together"},
		{"ssl without cert", func(c *ServerConfig) { c.RPC.UseSSL = true }, "use_ssl"},
		{"unknown auth strategy", func(c *ServerConfig) { c.Auth.Strategy = "kerberos" }, "strategy"},
		{"basic without credential file", func(c *ServerConfig) { c.Auth.Strategy = "http_basic" }, "credential_file"},
		{
			"basic with missing credential file",
			func(c *ServerConfig) {
				c.Auth.Strategy = "http_basic"
				c.Auth.CredentialFile = "/nonexistent/credentials"
			},
			"credential_file",
		},
		{"empty topic", func(c *ServerConfig) { c.Conductor.Topic = "" }, "topic"},
		{"empty data dir", func(c *ServerConfig) { c.Conductor.DataDir = "" }, "data_dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := verifiable(t)
			tt.mutate(cfg)

			err := Verify(cfg)
			if err == nil {
				t.Fatal("Verify() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("Verify() error = %q, want substring %q", err, tt.wantSub)
			}
		})
	}
}

func TestVerifyBasicAuthWithCredentialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials")
	if err := os.WriteFile(path, []byte("admin:$2b$04$x\n"), 0o600); err != nil {
		t.Fatalf("os.WriteFile() error = %v", err)
	}

	cfg := verifiable(t)
	cfg.Auth.Strategy = "http_basic"
	cfg.Auth.CredentialFile = path

	if err := Verify(cfg); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
}

func TestSanitizeMasksPassword(t *testing.T) {
	cfg := Default()
	cfg.Auth.Password = "super-secret-password"

	sanitized := Sanitize(cfg)

	if sanitized.Auth.Password == cfg.Auth.Password {
		t.Error("Sanitize() left the password intact")
	}
	if !strings.Contains(sanitized.Auth.Password, "*") {
		t.Errorf("Sanitize() password = %q, want masked", sanitized.Auth.Password)
	}
	if cfg.Auth.Password != "super-secret-password" {
		t.Error("Sanitize() mutated the original config")
	}
}

func TestSanitizeShortSecret(t *testing.T) {
	cfg := Default()
	cfg.Auth.Password = "abc"

	if got := Sanitize(cfg).Auth.Password; got != "****" {
		t.Errorf("Sanitize() short password = %q, want ****", got)
	}
}

func TestSanitizeEmptyPassword(t *testing.T) {
	cfg := Default()
	if got := Sanitize(cfg).Auth.Password; got != "" {
		t.Errorf("Sanitize() empty password = %q, want empty", got)
	}
}
