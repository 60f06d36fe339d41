// Package localbus bootstraps a self-contained same-host RPC channel.
//
// @design DS-0301
package localbus

import (
	"fmt"
	"net"
	"os"

	"github.com/yndnr/metalmesh/internal/infra/tlscert"
	"github.com/yndnr/metalmesh/internal/rpc"
	"github.com/yndnr/metalmesh/internal/server/config"
	"github.com/yndnr/metalmesh/internal/telemetry/logger"
	"github.com/yndnr/metalmesh/pkg/secrets"
)

// LocalUser is the fixed username the bus provisions credentials for.
const LocalUser = "metalmesh-internal"

// certValidDays keeps the ephemeral certificate valid for far longer
// than any process lifetime. The files are deleted on shutdown.
const certValidDays = 3650

// Options controls the bootstrap.
type Options struct {
	// UseTLS provisions an ephemeral certificate for the channel.
	UseTLS bool

	// Logger used for provisioning and cleanup messages.
	Logger logger.Logger
}

// Bus is a provisioned same-host RPC channel. Close removes the
// generated temp files.
type Bus struct {
	// HostIP is the loopback address the channel is bound to.
	HostIP string

	// Password is the generated plaintext password, matching the
	// bcrypt entry written to the credential file.
	Password string

	// CredentialFile, CertFile and KeyFile are the generated paths.
	// CertFile and KeyFile are empty when TLS is disabled.
	CredentialFile string
	CertFile       string
	KeyFile        string

	log   logger.Logger
	files []string
}

// Start provisions the channel and rewrites cfg so that server and
// client both point at it. It must run before the server is built.
func Start(cfg *config.ServerConfig, opts Options) (*Bus, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}

	bus := &Bus{
		HostIP: pickLoopback(log),
		log:    log,
	}

	if err := bus.provisionCredentials(); err != nil {
		bus.Close()
		return nil, err
	}

	if opts.UseTLS {
		if err := bus.provisionCertificate(); err != nil {
			bus.Close()
			return nil, err
		}
	}

	bus.apply(cfg)

	log.Info("local RPC bus provisioned",
		"host_ip", bus.HostIP,
		"port", cfg.RPC.Port,
		"tls", opts.UseTLS)

	return bus, nil
}

// pickLoopback prefers IPv6 loopback, falling back to IPv4 when an
// IPv6 socket cannot be bound on this host.
func pickLoopback(log logger.Logger) string {
	ln, err := net.Listen("tcp6", "[::1]:0")
	if err != nil {
		log.Debug("IPv6 loopback unavailable, using IPv4", "error", err)
		return "127.0.0.1"
	}
	ln.Close()
	return "::1"
}

func (b *Bus) provisionCredentials() error {
	password, err := secrets.GeneratePassword()
	if err != nil {
		return fmt.Errorf("localbus: generate password: %w", err)
	}

	hash, err := secrets.HashPassword(password)
	if err != nil {
		return fmt.Errorf("localbus: %w", err)
	}

	f, err := os.CreateTemp("", "metalmesh-credentials-*")
	if err != nil {
		return fmt.Errorf("localbus: create credential file: %w", err)
	}
	b.files = append(b.files, f.Name())

	if err := f.Chmod(0o600); err != nil {
		f.Close()
		return fmt.Errorf("localbus: chmod credential file: %w", err)
	}
	if _, err := f.WriteString(secrets.CredentialLine(LocalUser, hash) + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("localbus: write credential file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("localbus: close credential file: %w", err)
	}

	b.Password = password
	b.CredentialFile = f.Name()
	return nil
}

func (b *Bus) provisionCertificate() error {
	certFile, err := tempPath("metalmesh-cert-*.pem")
	if err != nil {
		return fmt.Errorf("localbus: %w", err)
	}
	b.files = append(b.files, certFile)

	keyFile, err := tempPath("metalmesh-key-*.pem")
	if err != nil {
		return fmt.Errorf("localbus: %w", err)
	}
	b.files = append(b.files, keyFile)

	_, err = tlscert.Issue(tlscert.IssueRequest{
		CommonName: "MetalMesh JSON RPC Service",
		IP:         b.HostIP,
		ValidDays:  certValidDays,
		CertPath:   certFile,
		KeyPath:    keyFile,
	}, b.log)
	if err != nil {
		return fmt.Errorf("localbus: issue certificate: %w", err)
	}

	b.CertFile = certFile
	b.KeyFile = keyFile
	return nil
}

// apply rewrites the process configuration for the provisioned channel.
func (b *Bus) apply(cfg *config.ServerConfig) {
	cfg.RPC.HostIP = b.HostIP

	cfg.Auth.Strategy = rpc.AuthBasic
	cfg.Auth.CredentialFile = b.CredentialFile
	cfg.Auth.Username = LocalUser
	cfg.Auth.Password = b.Password

	if b.CertFile != "" {
		cfg.RPC.UseSSL = true
		cfg.RPC.ClientUseSSL = true
		cfg.RPC.TLSCertFile = b.CertFile
		cfg.RPC.TLSKeyFile = b.KeyFile
		cfg.RPC.CAFile = b.CertFile
	}
}

// Close removes the generated files. Failures are logged, not fatal:
// leftover temp files do not compromise the next start, which always
// generates fresh credentials.
func (b *Bus) Close() {
	for _, path := range b.files {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			b.log.Warn("failed to remove local bus file",
				"path", path, "error", err)
		}
	}
	b.files = nil
}

// tempPath reserves a temp file path without keeping it open.
func tempPath(pattern string) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return name, nil
}
