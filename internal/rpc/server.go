// Package rpc implements the metalmesh control-plane JSON-RPC transport.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yndnr/metalmesh/internal/auth"
	"github.com/yndnr/metalmesh/internal/core/domain"
	"github.com/yndnr/metalmesh/internal/telemetry/logger"
	"github.com/yndnr/metalmesh/internal/telemetry/metric"
)

// Auth strategies the server understands.
const (
	AuthNone     = "noauth"
	AuthBasic    = "http_basic"
	AuthKeystone = "keystone"
)

// DefaultRequiredRole gates dispatch when the external token-based
// authorization strategy is active.
const DefaultRequiredRole = "admin"

// ServerOptions configures a Server.
type ServerOptions struct {
	// HostIP and Port form the bind address.
	HostIP string
	Port   int

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string

	// AuthStrategy is one of AuthNone, AuthBasic, AuthKeystone.
	AuthStrategy string

	// CredentialFile backs the Basic-Auth gate (AuthBasic only).
	CredentialFile string

	// RequiredRole for the keystone gate; DefaultRequiredRole if empty.
	RequiredRole string

	// Serializer round-trips entity parameters; JSON round trip if nil.
	Serializer Serializer

	Logger  logger.Logger
	Metrics *metric.Registry
}

// Server exposes a method registry as a JSON-RPC endpoint over
// HTTP POST. Stateless per request; the registry is immutable after
// construction.
type Server struct {
	httpServer *http.Server
	registry   *Registry
	opts       ServerOptions
	serializer Serializer
	log        logger.Logger
	metrics    *metric.Registry
	gate       *auth.Gate
	tlsEnabled bool
}

// NewServer builds a server around a registry. With AuthBasic the
// credential file is validated here, so misconfiguration surfaces at
// startup rather than on first request.
func NewServer(registry *Registry, opts ServerOptions) (*Server, error) {
	if registry == nil {
		return nil, fmt.Errorf("rpc: registry is required")
	}

	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}

	serializer := opts.Serializer
	if serializer == nil {
		serializer = NewJSONSerializer()
	}

	s := &Server{
		registry:   registry,
		opts:       opts,
		serializer: serializer,
		log:        log,
		metrics:    opts.Metrics,
		tlsEnabled: opts.TLSCertFile != "" && opts.TLSKeyFile != "",
	}

	var handler http.Handler = http.HandlerFunc(s.handle)
	switch opts.AuthStrategy {
	case AuthBasic:
		gate, err := auth.NewGate(handler, auth.GateConfig{
			CredentialFile: opts.CredentialFile,
			Logger:         log,
			Metrics:        opts.Metrics,
		})
		if err != nil {
			return nil, err
		}
		s.gate = gate
		handler = gate
	case AuthNone, AuthKeystone, "":
		// keystone authorization runs inside the pipeline; noauth
		// needs nothing.
	default:
		return nil, fmt.Errorf("rpc: unknown auth strategy %q", opts.AuthStrategy)
	}

	addr := net.JoinHostPort(opts.HostIP, strconv.Itoa(opts.Port))
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	return s, nil
}

// Handler returns the full middleware-wrapped handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Gate returns the Basic-Auth gate, or nil when another strategy is
// active.
func (s *Server) Gate() *auth.Gate {
	return s.gate
}

// Addr returns the configured bind address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAndServe starts the server, with TLS when cert material is
// configured.
func (s *Server) ListenAndServe() error {
	s.log.Info("RPC server listening",
		"addr", s.httpServer.Addr,
		"tls", s.tlsEnabled,
		"auth_strategy", s.opts.AuthStrategy,
		"methods", s.registry.Names(),
	)
	if s.tlsEnabled {
		return s.httpServer.ListenAndServeTLS(s.opts.TLSCertFile, s.opts.TLSKeyFile)
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handle runs the request pipeline: transport check, authorization,
// parse, validate, dispatch, respond.
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		s.writePlain(w, http.StatusMethodNotAllowed, "Only POST method can be used")
		return
	}

	if s.opts.AuthStrategy == AuthKeystone && !s.authorized(r) {
		s.writePlain(w, http.StatusForbidden, "Forbidden")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, nil, NewParseError(err.Error()))
		return
	}

	method, outcome := s.dispatch(r.Context(), w, body)

	if s.metrics != nil {
		s.metrics.RequestsTotal.WithLabelValues(method, outcome).Inc()
		s.metrics.RequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}
}

// authorized checks the roles header for the required role.
func (s *Server) authorized(r *http.Request) bool {
	required := s.opts.RequiredRole
	if required == "" {
		required = DefaultRequiredRole
	}
	for _, role := range strings.Split(r.Header.Get("X-Roles"), ",") {
		if strings.EqualFold(strings.TrimSpace(role), required) {
			return true
		}
	}
	return false
}

// dispatch parses and executes a single request, writing the response.
// It returns the method name and outcome for metrics; "unknown" when
// the body never yielded a method name.
func (s *Server) dispatch(ctx context.Context, w http.ResponseWriter, body []byte) (string, string) {
	// Parse. A JSON failure is ParseError; valid JSON that is not a
	// single object (arrays included, batched or not) is
	// InvalidRequest.
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		s.writeError(w, nil, NewParseError(err.Error()))
		return "unknown", metric.OutcomeError
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		s.writeError(w, nil, NewInvalidRequest("a single request object is required"))
		return "unknown", metric.OutcomeError
	}

	// Malformed requests are never treated as notifications: error
	// responses below carry id null when no id was usable.
	id := requestID(obj)

	// Shape validation.
	if v, _ := obj["jsonrpc"].(string); v != JSONRPCVersion {
		s.writeError(w, id, NewInvalidRequest(`"jsonrpc" must be "2.0"`))
		return "unknown", metric.OutcomeError
	}

	methodName, _ := obj["method"].(string)
	if methodName == "" {
		s.writeError(w, id, NewInvalidRequest(`"method" must be a non-empty string`))
		return "unknown", metric.OutcomeError
	}

	var params map[string]any
	if rawParams, present := obj["params"]; present {
		params, ok = rawParams.(map[string]any)
		if !ok {
			s.writeError(w, id, NewInvalidRequest(`"params" must be an object`))
			return methodName, metric.OutcomeError
		}
	}

	// Method lookup.
	target, ok := s.registry.Get(methodName)
	if !ok {
		s.writeError(w, id, NewMethodNotFound(methodName))
		return methodName, metric.OutcomeError
	}

	// Context extraction and parameter deserialization.
	args := make(Args, len(params))
	for k, v := range params {
		args[k] = v
	}

	var reqCtx *RequestContext
	if rawCtx, present := args[ParamContext]; present {
		ctxMap, ok := rawCtx.(map[string]any)
		if !ok {
			s.writeError(w, id, NewInvalidParams(methodName, []string{ParamContext},
				errors.New("context is not a mapping")))
			return methodName, metric.OutcomeError
		}

		reqCtx, ok = s.decodeContext(w, id, methodName, ctxMap)
		if !ok {
			return methodName, metric.OutcomeError
		}
		delete(args, ParamContext)

		// Round-trip every remaining parameter through the entity
		// serializer bound to the extracted context.
		for k, v := range args {
			decoded, err := s.serializer.Deserialize(reqCtx, v)
			if err != nil {
				s.writeError(w, id, NewInvalidParams(methodName, []string{k}, err))
				return methodName, metric.OutcomeError
			}
			args[k] = decoded
		}

		ctx = WithRequestContext(ctx, reqCtx)
		if reqCtx.RequestID != "" {
			ctx = logger.WithRequestID(ctx, reqCtx.RequestID)
		}
	}

	// Version pinning is accepted and stripped; the client enforces.
	delete(args, ParamVersion)

	s.log.Debug("RPC request",
		"method", methodName,
		"id", id,
		"params", logger.MaskArgs(args),
	)

	// Dispatch.
	result, err := target(ctx, args)
	if err != nil {
		var argsErr *ArgsError
		if errors.As(err, &argsErr) {
			err = NewInvalidParams(methodName, argsErr.Params, argsErr.Err)
		}
		s.writeError(w, id, err)
		return methodName, metric.OutcomeError
	}

	// Notifications discard the result and produce no body.
	if id == nil {
		w.WriteHeader(http.StatusNoContent)
		return methodName, metric.OutcomeNotification
	}

	if reqCtx != nil {
		result, err = s.serializer.Serialize(reqCtx, result)
		if err != nil {
			s.writeError(w, id, err)
			return methodName, metric.OutcomeError
		}
	}

	if m, ok := result.(map[string]any); ok {
		s.log.Debug("RPC response", "method", methodName, "id", id, "result", logger.MaskArgs(m))
	} else {
		s.log.Debug("RPC response", "method", methodName, "id", id)
	}

	s.writeJSON(w, http.StatusOK, successResponse{
		JSONRPC: JSONRPCVersion,
		Result:  result,
		ID:      id,
	})
	return methodName, metric.OutcomeSuccess
}

// decodeContext deserializes params.context into a typed context.
func (s *Server) decodeContext(w http.ResponseWriter, id any, method string, ctxMap map[string]any) (*RequestContext, bool) {
	reqCtx, err := RequestContextFromMap(ctxMap)
	if err != nil {
		s.writeError(w, id, NewInvalidParams(method, []string{ParamContext}, err))
		return nil, false
	}
	return reqCtx, true
}

// requestID extracts the id member, nil for notifications. String and
// numeric ids are returned verbatim.
func requestID(obj map[string]any) any {
	id, present := obj["id"]
	if !present || id == nil {
		return nil
	}
	return id
}

// writeError maps any failure to a JSON-RPC error body. Expected
// errors (those carrying a status code) surface their class name
// unless they are the protocol's own kinds; everything else is
// reported generically to avoid hinting at exploitable types.
func (s *Server) writeError(w http.ResponseWriter, id any, err error) {
	code := domain.CodeOf(err)
	body := &ErrorBody{Code: code, Message: err.Error()}

	if domain.IsExpected(err) {
		if class := domain.ClassOf(err); class != "" && !IsProtocolError(err) {
			body.Data = &ErrorData{Class: class}
		}
		s.log.Debug("RPC error response", "code", code, "message", err.Error())
	} else {
		s.log.Error("unexpected error handling RPC request", "error", err)
	}

	s.writeJSON(w, http.StatusOK, errorResponse{
		JSONRPC: JSONRPCVersion,
		Error:   body,
		ID:      id,
	})
}

// writePlain writes a non-JSON-RPC rejection body for HTTP-layer
// failures (wrong verb, failed authorization).
func (s *Server) writePlain(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(newPlainError(code, message)); err != nil {
		s.log.Error("failed to write error body", "error", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("failed to write response body", "error", err)
	}
}
