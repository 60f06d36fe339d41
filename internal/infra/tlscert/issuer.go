// Package tlscert provides TLS certificate management for the RPC channel.
package tlscert

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"time"

	"github.com/yndnr/metalmesh/internal/telemetry/logger"
)

// DefaultValidDays is the validity window when the caller does not
// supply one.
const DefaultValidDays = 30

// IssueRequest describes the identity a self-signed certificate binds.
type IssueRequest struct {
	// CommonName is used for both subject and issuer.
	CommonName string

	// IP is the single Subject Alternative Name, as a string
	// (e.g. "::1"). Parsed and rejected before any file I/O.
	IP string

	// ValidDays is the validity window length; DefaultValidDays if 0.
	// The local bus pins it far in the future since in-place rotation
	// is not supported.
	ValidDays int

	// CertPath and KeyPath receive the PEM-encoded certificate and
	// unencrypted PKCS8 private key.
	CertPath string
	KeyPath  string
}

// Issue generates a P-256 key pair and a self-signed certificate for
// the requested identity, writes both to disk as PEM, and returns the
// certificate PEM text.
//
// P-256 is roughly equivalent in strength to 3072-bit RSA at a
// fraction of the key size.
func Issue(req IssueRequest, log logger.Logger) (string, error) {
	if log == nil {
		log = logger.Default()
	}

	ip := net.ParseIP(req.IP)
	if ip == nil {
		return "", fmt.Errorf("tlscert: %q is not a valid IP address", req.IP)
	}

	validDays := req.ValidDays
	if validDays <= 0 {
		validDays = DefaultValidDays
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("tlscert: generate key: %w", err)
	}

	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return "", fmt.Errorf("tlscert: serialize key: %w", err)
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return "", fmt.Errorf("tlscert: generate serial: %w", err)
	}

	notBefore := time.Now()
	notAfter := notBefore.Add(time.Duration(validDays) * 24 * time.Hour)

	// Self-signed: the subject doubles as the issuer.
	subject := pkix.Name{CommonName: req.CommonName}
	template := x509.Certificate{
		SerialNumber:          serial,
		Subject:               subject,
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		IPAddresses:           []net.IP{ip},
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		SignatureAlgorithm:    x509.ECDSAWithSHA256,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return "", fmt.Errorf("tlscert: create certificate: %w", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})

	if err := os.WriteFile(req.KeyPath, keyPEM, 0o600); err != nil {
		return "", fmt.Errorf("tlscert: write key: %w", err)
	}
	if err := os.WriteFile(req.CertPath, certPEM, 0o600); err != nil {
		return "", fmt.Errorf("tlscert: write certificate: %w", err)
	}

	log.Info("issued self-signed certificate",
		"common_name", req.CommonName,
		"ip", ip.String(),
		"not_before", notBefore,
		"not_after", notAfter,
		"cert_file", req.CertPath,
	)

	return string(certPEM), nil
}
