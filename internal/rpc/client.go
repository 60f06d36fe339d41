// Package rpc implements the metalmesh control-plane JSON-RPC transport.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/metalmesh/internal/core/domain"
	"github.com/yndnr/metalmesh/internal/infra/tlscert"
	"github.com/yndnr/metalmesh/internal/telemetry/logger"
)

// DefaultPort is the conductor RPC port used when a topic carries none.
const DefaultPort = 8089

// ClientConfig configures a Client.
type ClientConfig struct {
	// UseSSL selects https for this client; GlobalUseSSL is the
	// process-wide flag. Either one enables TLS.
	UseSSL       bool
	GlobalUseSSL bool

	// CAFile, when set, is the PEM bundle the TLS transport trusts
	// instead of the system roots.
	CAFile string

	// AuthStrategy is AuthNone or AuthBasic; the keystone strategy is
	// handled by an external session, not this client.
	AuthStrategy string
	Username     string
	Password     string

	// VersionCap bounds the RPC API versions this client may request.
	// Empty means uncapped.
	VersionCap string

	// AllowedNamespaces are the dotted prefixes remote error classes
	// may be rebuilt from. Defaults to the service's own exception
	// namespace plus the inspector extension's utils namespace.
	AllowedNamespaces []string

	// DefaultPort for topics without an explicit port.
	DefaultPort int

	// Timeout bounds each HTTP round trip. The transport owns all
	// timeout behavior; the RPC layer adds no retries of its own.
	Timeout time.Duration

	Serializer Serializer
	Logger     logger.Logger
}

// Client constructs and sends JSON-RPC requests to conductor servers.
// The underlying HTTP session is created lazily exactly once and
// shared by all calls.
type Client struct {
	conf       ClientConfig
	cap        *Version
	serializer Serializer
	log        logger.Logger

	sessionOnce sync.Once
	session     *http.Client
	sessionErr  error
}

// CallContext binds a prepared topic to a host, port and optional
// pinned API version.
type CallContext struct {
	Host    string
	Port    int
	version *Version
}

// Version returns the pinned version string, or "".
func (cc *CallContext) Version() string {
	if cc.version == nil {
		return ""
	}
	return cc.version.String()
}

// NewClient creates a client. The version cap is parsed here so a
// malformed cap is a startup error, not a per-call one.
func NewClient(conf ClientConfig) (*Client, error) {
	c := &Client{
		conf:       conf,
		serializer: conf.Serializer,
		log:        conf.Logger,
	}
	if c.serializer == nil {
		c.serializer = NewJSONSerializer()
	}
	if c.log == nil {
		c.log = logger.Default()
	}
	if c.conf.DefaultPort == 0 {
		c.conf.DefaultPort = DefaultPort
	}
	if c.conf.Timeout == 0 {
		c.conf.Timeout = 60 * time.Second
	}
	if len(c.conf.AllowedNamespaces) == 0 {
		c.conf.AllowedNamespaces = domain.DefaultAllowedNamespaces
	}

	if conf.VersionCap != "" {
		capVersion, err := ParseVersion(conf.VersionCap)
		if err != nil {
			return nil, fmt.Errorf("rpc: invalid version cap: %w", err)
		}
		c.cap = &capVersion
	}

	switch conf.AuthStrategy {
	case "", AuthNone, AuthBasic:
	default:
		return nil, fmt.Errorf("rpc: unsupported client auth strategy %q", conf.AuthStrategy)
	}

	return c, nil
}

// Prepare parses a topic of the form "<name>.<host[:port]>" into a
// call context. IPv6 literals are accepted both bracketed
// ("[::1]:8089") and bare ("::1").
func (c *Client) Prepare(topic, version string) (*CallContext, error) {
	_, endpoint, found := strings.Cut(topic, ".")
	if !found || endpoint == "" {
		return nil, fmt.Errorf("rpc: topic %q does not contain a host", topic)
	}

	host, port, err := c.splitEndpoint(endpoint)
	if err != nil {
		return nil, fmt.Errorf("rpc: topic %q: %w", topic, err)
	}

	cc := &CallContext{Host: host, Port: port}
	if version != "" {
		v, err := ParseVersion(version)
		if err != nil {
			return nil, err
		}
		cc.version = &v
	}
	return cc, nil
}

// splitEndpoint parses "host[:port]" with IPv6 literal support.
func (c *Client) splitEndpoint(endpoint string) (string, int, error) {
	defaultPort := c.conf.DefaultPort

	switch {
	case strings.HasPrefix(endpoint, "["):
		// Bracketed IPv6, with or without a port.
		if host, portStr, err := net.SplitHostPort(endpoint); err == nil {
			port, err := strconv.Atoi(portStr)
			if err != nil || port <= 0 || port > 65535 {
				return "", 0, fmt.Errorf("invalid port %q", portStr)
			}
			return host, port, nil
		}
		host := strings.TrimSuffix(strings.TrimPrefix(endpoint, "["), "]")
		if net.ParseIP(host) == nil {
			return "", 0, fmt.Errorf("invalid IPv6 literal %q", endpoint)
		}
		return host, defaultPort, nil

	case strings.Count(endpoint, ":") > 1:
		// Bare IPv6 literal, no port.
		if net.ParseIP(endpoint) == nil {
			return "", 0, fmt.Errorf("invalid IPv6 literal %q", endpoint)
		}
		return endpoint, defaultPort, nil

	case strings.Contains(endpoint, ":"):
		host, portStr, err := net.SplitHostPort(endpoint)
		if err != nil {
			return "", 0, err
		}
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 || port > 65535 {
			return "", 0, fmt.Errorf("invalid port %q", portStr)
		}
		return host, port, nil

	default:
		return endpoint, defaultPort, nil
	}
}

// CanSend reports whether a version fits under the client's cap.
func (c *Client) CanSend(v Version) bool {
	if c.cap == nil {
		return true
	}
	return CanSend(v, *c.cap)
}

// checkVersion enforces the cap locally; incompatibility never reaches
// the network.
func (c *Client) checkVersion(cc *CallContext) error {
	if cc.version == nil || c.cap == nil {
		return nil
	}
	if !CanSend(*cc.version, *c.cap) {
		return &VersionError{Requested: *cc.version, Cap: *c.cap}
	}
	return nil
}

// Call sends a request expecting a response and blocks until one
// arrives. The result is the deserialized wire value; errors reported
// by the server are translated back into typed errors where safely
// possible.
func (c *Client) Call(ctx context.Context, cc *CallContext, method string, args Args) (any, error) {
	if err := c.checkVersion(cc); err != nil {
		return nil, err
	}

	reqCtx := requestContextOrNew(ctx)
	id := reqCtx.RequestID
	if id == "" {
		id = ulid.Make().String()
	}

	wireReq, err := c.buildRequest(reqCtx, cc, method, args, id)
	if err != nil {
		return nil, err
	}

	body, err := c.send(ctx, cc, wireReq)
	if err != nil {
		return nil, err
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("rpc: malformed response from %s: %w", cc.Host, err)
	}

	if resp.Error != nil {
		return nil, c.translateError(resp.Error)
	}

	var result any
	if len(resp.Result) > 0 {
		if err := json.Unmarshal(resp.Result, &result); err != nil {
			return nil, fmt.Errorf("rpc: malformed result from %s: %w", cc.Host, err)
		}
	}

	return c.serializer.Deserialize(reqCtx, result)
}

// Cast sends a notification. Fire-and-forget at the protocol layer:
// server-side failures are never surfaced, only a failure of the HTTP
// round trip itself propagates.
func (c *Client) Cast(ctx context.Context, cc *CallContext, method string, args Args) error {
	if err := c.checkVersion(cc); err != nil {
		return err
	}

	reqCtx := requestContextOrNew(ctx)
	wireReq, err := c.buildRequest(reqCtx, cc, method, args, nil)
	if err != nil {
		return err
	}

	_, err = c.send(ctx, cc, wireReq)
	if err != nil {
		var te *transportError
		if errors.As(err, &te) {
			// The server answered; whatever it said is discarded.
			return nil
		}
		return err
	}
	return nil
}

// buildRequest assembles the wire request: every argument round-trips
// through the entity serializer, the context is nested under
// params.context, and the pinned version rides under "rpc.version".
func (c *Client) buildRequest(reqCtx *RequestContext, cc *CallContext, method string, args Args, id any) (*Request, error) {
	params := make(map[string]any, len(args)+2)
	for k, v := range args {
		encoded, err := c.serializer.Serialize(reqCtx, v)
		if err != nil {
			return nil, fmt.Errorf("rpc: serialize argument %q: %w", k, err)
		}
		params[k] = encoded
	}

	ctxMap, err := reqCtx.ToMap()
	if err != nil {
		return nil, err
	}
	params[ParamContext] = ctxMap

	if cc.version != nil {
		params[ParamVersion] = cc.version.String()
	}

	return &Request{
		JSONRPC: JSONRPCVersion,
		Method:  method,
		Params:  params,
		ID:      id,
	}, nil
}

// transportError marks a non-2xx HTTP answer, as opposed to a failed
// round trip. Cast swallows these; Call reports them.
type transportError struct {
	status int
	body   string
}

func (e *transportError) Error() string {
	return fmt.Sprintf("rpc: request failed with HTTP status %d: %s", e.status, e.body)
}

// send performs one HTTP POST round trip and returns the raw response
// body. No retries; transport failures propagate as-is.
func (c *Client) send(ctx context.Context, cc *CallContext, wireReq *Request) ([]byte, error) {
	session, err := c.getSession()
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(wireReq)
	if err != nil {
		return nil, fmt.Errorf("rpc: marshal request: %w", err)
	}

	c.log.Debug("RPC request",
		"url", c.urlFor(cc),
		"method", wireReq.Method,
		"id", wireReq.ID,
		"params", logger.MaskArgs(wireReq.Params),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.urlFor(cc), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("rpc: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.conf.AuthStrategy == AuthBasic {
		httpReq.SetBasicAuth(c.conf.Username, c.conf.Password)
	}

	resp, err := session.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("rpc: read response: %w", err)
	}

	c.logResponse(resp.StatusCode, body)

	if resp.StatusCode >= 400 {
		return nil, &transportError{status: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}

	return body, nil
}

// logResponse debug-logs the raw response with secrets masked. Bodies
// that do not parse as objects are logged by status only.
func (c *Client) logResponse(status int, body []byte) {
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err == nil {
		c.log.Debug("RPC response", "status", status, "body", logger.MaskArgs(parsed))
		return
	}
	c.log.Debug("RPC response", "status", status, "bytes", len(body))
}

// urlFor builds the target URL; IPv6 hosts are bracket-escaped.
func (c *Client) urlFor(cc *CallContext) string {
	scheme := "http"
	if c.conf.UseSSL || c.conf.GlobalUseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/", scheme, net.JoinHostPort(cc.Host, strconv.Itoa(cc.Port)))
}

// translateError converts a wire error into a language-level one.
//
// A typed domain error is rebuilt only when the reported class sits in
// the allow-listed namespaces and the closed registry. Anything else
// (unknown classes, classes outside the allow-list, no class at all)
// becomes a generic UnexpectedError. The reported class name is never
// used to instantiate anything outside the registry.
func (c *Client) translateError(e *ErrorBody) error {
	if e.Data != nil && e.Data.Class != "" {
		if rebuilt, ok := domain.Rebuild(e.Data.Class, e.Message, e.Code, c.conf.AllowedNamespaces); ok {
			return rebuilt
		}
		c.log.Debug("remote error class not allow-listed, reporting generically", "code", e.Code)
	}
	return &UnexpectedError{WireCode: e.Code}
}

// getSession lazily initializes the shared HTTP session exactly once.
func (c *Client) getSession() (*http.Client, error) {
	c.sessionOnce.Do(func() {
		transport := http.DefaultTransport.(*http.Transport).Clone()

		if c.conf.UseSSL || c.conf.GlobalUseSSL {
			pool := tlscert.NewPool()
			if c.conf.CAFile != "" {
				pool = tlscert.NewEmptyPool()
				if err := pool.AddCertFile(c.conf.CAFile); err != nil {
					c.sessionErr = err
					return
				}
			}
			transport.TLSClientConfig = pool.TLSConfig()
		}

		c.session = &http.Client{
			Transport: transport,
			Timeout:   c.conf.Timeout,
		}
	})
	return c.session, c.sessionErr
}

// requestContextOrNew returns the attached request context or a fresh
// empty one.
func requestContextOrNew(ctx context.Context) *RequestContext {
	if rc := RequestContextFrom(ctx); rc != nil {
		return rc
	}
	return &RequestContext{}
}
