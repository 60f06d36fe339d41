package tlscert

import (
	"crypto/tls"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
)

func TestNewPool(t *testing.T) {
	pool := NewPool()
	if pool == nil {
		t.Fatal("NewPool() returned nil")
	}
	if pool.Pool() == nil {
		t.Fatal("Pool() returned nil")
	}
}

func TestNewEmptyPool(t *testing.T) {
	pool := NewEmptyPool()
	if pool.Pool() == nil {
		t.Fatal("Pool() returned nil")
	}
}

func TestAddCertPEM(t *testing.T) {
	pool := NewEmptyPool()

	certPEM, _ := issueTestCert(t, IssueRequest{CommonName: "test", IP: "127.0.0.1"})
	if err := pool.AddCertPEM([]byte(certPEM)); err != nil {
		t.Fatalf("AddCertPEM() error = %v", err)
	}
}

func TestAddCertPEM_NoCerts(t *testing.T) {
	pool := NewEmptyPool()

	if err := pool.AddCertPEM([]byte{}); err != ErrNoCertsFound {
		t.Errorf("AddCertPEM() error = %v, want %v", err, ErrNoCertsFound)
	}
	if err := pool.AddCertPEM([]byte("not a certificate")); err != ErrNoCertsFound {
		t.Errorf("AddCertPEM() error = %v, want %v", err, ErrNoCertsFound)
	}
}

func TestAddCertPEM_InvalidCert(t *testing.T) {
	pool := NewEmptyPool()

	invalidPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: []byte("invalid certificate data"),
	})

	if err := pool.AddCertPEM(invalidPEM); err == nil {
		t.Error("AddCertPEM() expected error for invalid certificate")
	}
}

func TestAddCertPEM_MultipleCerts(t *testing.T) {
	pool := NewEmptyPool()

	cert1, _ := issueTestCert(t, IssueRequest{CommonName: "one", IP: "127.0.0.1"})
	cert2, _ := issueTestCert(t, IssueRequest{CommonName: "two", IP: "::1"})

	if err := pool.AddCertPEM([]byte(cert1 + cert2)); err != nil {
		t.Fatalf("AddCertPEM() error = %v", err)
	}
}

func TestAddCertFile(t *testing.T) {
	pool := NewEmptyPool()

	_, req := issueTestCert(t, IssueRequest{CommonName: "test", IP: "127.0.0.1"})
	if err := pool.AddCertFile(req.CertPath); err != nil {
		t.Fatalf("AddCertFile() error = %v", err)
	}
}

func TestAddCertFile_NotFound(t *testing.T) {
	pool := NewEmptyPool()

	path := filepath.Join(t.TempDir(), "absent.pem")
	if err := pool.AddCertFile(path); err == nil {
		t.Error("AddCertFile() expected error for missing file")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("missing cert file appeared during the test")
	}
}

func TestTLSConfig(t *testing.T) {
	pool := NewEmptyPool()

	cfg := pool.TLSConfig()
	if cfg.RootCAs != pool.Pool() {
		t.Error("TLSConfig() RootCAs is not the pool")
	}
	if cfg.MinVersion != tls.VersionTLS12 {
		t.Errorf("TLSConfig() MinVersion = %d, want TLS 1.2", cfg.MinVersion)
	}
}
