package localbus

import (
	"os"
	"testing"

	"github.com/yndnr/metalmesh/internal/auth"
	"github.com/yndnr/metalmesh/internal/rpc"
	"github.com/yndnr/metalmesh/internal/server/config"
	"github.com/yndnr/metalmesh/pkg/secrets"
)

func TestStart_PlainChannel(t *testing.T) {
	cfg := config.Default()

	bus, err := Start(cfg, Options{UseTLS: false})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer bus.Close()

	if bus.HostIP != "::1" && bus.HostIP != "127.0.0.1" {
		t.Errorf("HostIP = %q, want a loopback address", bus.HostIP)
	}
	if cfg.RPC.HostIP != bus.HostIP {
		t.Errorf("cfg.RPC.HostIP = %q, want %q", cfg.RPC.HostIP, bus.HostIP)
	}

	if cfg.Auth.Strategy != rpc.AuthBasic {
		t.Errorf("Strategy = %q, want %q", cfg.Auth.Strategy, rpc.AuthBasic)
	}
	if cfg.Auth.Username != LocalUser {
		t.Errorf("Username = %q, want %q", cfg.Auth.Username, LocalUser)
	}
	if cfg.Auth.Password == "" {
		t.Error("Password should be generated")
	}
	if cfg.Auth.CredentialFile != bus.CredentialFile {
		t.Errorf("CredentialFile = %q, want %q", cfg.Auth.CredentialFile, bus.CredentialFile)
	}

	// TLS stays off
	if cfg.RPC.UseSSL || cfg.RPC.ClientUseSSL {
		t.Error("TLS flags should stay off without UseTLS")
	}
	if bus.CertFile != "" || bus.KeyFile != "" {
		t.Error("no cert material should be generated without UseTLS")
	}
}

func TestStart_CredentialFileIsUsable(t *testing.T) {
	cfg := config.Default()

	bus, err := Start(cfg, Options{})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer bus.Close()

	// The generated file must pass full credential validation.
	store, err := auth.NewCredentialStore(bus.CredentialFile)
	if err != nil {
		t.Fatalf("NewCredentialStore() error = %v", err)
	}

	hash, err := store.Lookup(LocalUser)
	if err != nil {
		t.Fatalf("Lookup(%q) error = %v", LocalUser, err)
	}

	if !secrets.VerifyPassword(bus.Password, hash) {
		t.Error("generated password should verify against the stored hash")
	}
	if secrets.VerifyPassword("wrong", hash) {
		t.Error("wrong password should not verify")
	}

	info, err := os.Stat(bus.CredentialFile)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("credential file mode = %o, want 600", perm)
	}
}

func TestStart_TLSChannel(t *testing.T) {
	cfg := config.Default()

	bus, err := Start(cfg, Options{UseTLS: true})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer bus.Close()

	if !cfg.RPC.UseSSL || !cfg.RPC.ClientUseSSL {
		t.Error("TLS flags should be set")
	}
	if cfg.RPC.TLSCertFile != bus.CertFile || cfg.RPC.TLSKeyFile != bus.KeyFile {
		t.Error("cfg should point at the generated cert material")
	}
	if cfg.RPC.CAFile != bus.CertFile {
		t.Error("client CA should be the self-signed certificate itself")
	}

	for _, path := range []string{bus.CertFile, bus.KeyFile} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("generated file %s missing: %v", path, err)
		}
	}
}

func TestBus_Close_RemovesFiles(t *testing.T) {
	cfg := config.Default()

	bus, err := Start(cfg, Options{UseTLS: true})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	paths := []string{bus.CredentialFile, bus.CertFile, bus.KeyFile}
	bus.Close()

	for _, path := range paths {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("file %s should be removed, stat err = %v", path, err)
		}
	}

	// Close is safe to call again.
	bus.Close()
}

func TestStart_FreshCredentialsEachTime(t *testing.T) {
	cfg1 := config.Default()
	bus1, err := Start(cfg1, Options{})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer bus1.Close()

	cfg2 := config.Default()
	bus2, err := Start(cfg2, Options{})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer bus2.Close()

	if bus1.Password == bus2.Password {
		t.Error("two bootstraps should never share a password")
	}
	if bus1.CredentialFile == bus2.CredentialFile {
		t.Error("two bootstraps should never share a credential file")
	}
}
