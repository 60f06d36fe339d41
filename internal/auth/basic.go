// Package auth provides HTTP Basic authentication for the metalmesh RPC channel.
package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/yndnr/metalmesh/internal/telemetry/logger"
	"github.com/yndnr/metalmesh/internal/telemetry/metric"
)

// Identity headers injected into authenticated requests. Both carry
// the same value: X-User follows metalmesh's own identity convention,
// X-User-Name the header-derived one.
const (
	HeaderUser     = "X-User"
	HeaderUserName = "X-User-Name"
)

// GateConfig configures a Gate.
type GateConfig struct {
	// CredentialFile is the Apache-style credential file path.
	CredentialFile string

	// CacheSize bounds the bcrypt verify cache (DefaultCacheSize if 0).
	CacheSize int

	Logger  logger.Logger
	Metrics *metric.Registry
}

// Gate is HTTP middleware enforcing Basic authentication against a
// credential file before forwarding to the inner handler.
type Gate struct {
	inner   http.Handler
	store   *CredentialStore
	cache   *VerifyCache
	log     logger.Logger
	metrics *metric.Registry
}

// NewGate validates the credential file and wraps inner with the
// authentication gate.
func NewGate(inner http.Handler, cfg GateConfig) (*Gate, error) {
	store, err := NewCredentialStore(cfg.CredentialFile)
	if err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	return &Gate{
		inner:   inner,
		store:   store,
		cache:   NewVerifyCache(cfg.CacheSize),
		log:     log,
		metrics: cfg.Metrics,
	}, nil
}

// Cache exposes the verify cache, for the credential watcher.
func (g *Gate) Cache() *VerifyCache {
	return g.cache
}

// ServeHTTP authenticates the request and either forwards it with
// identity fields injected or renders a structured rejection.
func (g *Gate) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	username, err := g.authenticate(r)
	if err != nil {
		g.reject(w, err)
		return
	}

	r.Header.Set(HeaderUser, username)
	r.Header.Set(HeaderUserName, username)
	g.inner.ServeHTTP(w, r)
}

// authenticate runs the per-request flow: header extraction, type and
// base64 validation, credential file lookup, bcrypt verification.
func (g *Gate) authenticate(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", unauthorized("Authorization required")
	}

	fields := strings.Fields(header)
	if len(fields) != 2 {
		return "", malformed("Cannot parse Authorization header")
	}

	if !strings.EqualFold(fields[0], "basic") {
		return "", malformed(fmt.Sprintf("Unsupported authorization type %q", fields[0]))
	}

	decoded, err := base64.StdEncoding.Strict().DecodeString(fields[1])
	if err != nil {
		return "", malformed("Could not decode authorization token")
	}

	username, password, found := strings.Cut(string(decoded), ":")
	if !found {
		return "", malformed("Could not parse username and password")
	}

	hash, err := g.store.Lookup(username)
	if err != nil {
		return "", err
	}

	if !g.verify(password, hash) {
		return "", unauthorized("Invalid username or password")
	}

	return username, nil
}

// verify checks a password against a bcrypt hash, consulting the
// bounded verdict cache first.
func (g *Gate) verify(password, hash string) bool {
	if ok, cached := g.cache.Get(password, hash); cached {
		if g.metrics != nil {
			g.metrics.VerifyCacheHits.Inc()
		}
		return ok
	}
	if g.metrics != nil {
		g.metrics.VerifyCacheMisses.Inc()
	}

	ok := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	g.cache.Set(password, hash, ok)
	return ok
}

// reject renders an authentication failure as a JSON body with the
// failure's own HTTP headers attached.
func (g *Gate) reject(w http.ResponseWriter, err error) {
	var ae *Error
	if !errors.As(err, &ae) {
		ae = &Error{Code: http.StatusInternalServerError, Message: "Internal server error"}
		g.log.Error("authentication failed unexpectedly", "error", err)
	} else {
		g.log.Debug("authentication rejected", "code", ae.Code, "reason", ae.Message)
	}

	if g.metrics != nil {
		g.metrics.AuthFailures.Inc()
	}

	for k, v := range ae.Headers {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ae.Code)

	body := map[string]any{
		"error": map[string]any{
			"code":    ae.Code,
			"message": ae.Message,
		},
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		g.log.Error("failed to write rejection body", "error", err)
	}
}
