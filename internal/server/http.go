package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/logging"
	"github.com/teemow/workspace-mcp/internal/mcp/oauth"
)

// MCPEndpointPath is where the streamable HTTP transport is mounted.
const MCPEndpointPath = "/mcp"

const (
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
)

// HTTPServerConfig configures the streamable HTTP server.
type HTTPServerConfig struct {
	Addr    string
	BaseURL string

	MCPServer *mcpserver.MCPServer
	OAuth     *oauth.Handler

	// Health is optional; without it no health endpoints are mounted.
	Health *HealthChecker

	// Sessions issues Mcp-Session-Id values. Optional.
	Sessions *SessionIDManager

	Metrics *instrumentation.Metrics
	Logger  *slog.Logger
}

// HTTPServer serves the MCP endpoint behind bearer authentication together
// with the OAuth proxy routes.
type HTTPServer struct {
	config     HTTPServerConfig
	handler    http.Handler
	routes     []string
	httpServer *http.Server
	logger     *slog.Logger
}

// NewHTTPServer builds the handler tree. Nothing listens until Start.
func NewHTTPServer(config HTTPServerConfig) (*HTTPServer, error) {
	if config.MCPServer == nil {
		return nil, errors.New("MCP server is required")
	}
	if config.OAuth == nil {
		return nil, errors.New("OAuth handler is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &HTTPServer{config: config, logger: logger}

	mux := http.NewServeMux()
	s.routes = RegisterOAuthRoutes(mux, config.OAuth)

	callback := config.OAuth.CallbackRoute()
	mux.Handle(callback.Path, config.OAuth.Wrap(callback))
	s.routes = append(s.routes, callback.Path)

	var opts []mcpserver.StreamableHTTPOption
	opts = append(opts, mcpserver.WithEndpointPath(MCPEndpointPath))
	if config.Sessions != nil {
		opts = append(opts, mcpserver.WithSessionIdManager(config.Sessions))
	}
	streamable := mcpserver.NewStreamableHTTPServer(config.MCPServer, opts...)
	mux.Handle(MCPEndpointPath, config.OAuth.RequireBearer(streamable))
	s.routes = append(s.routes, MCPEndpointPath)

	if config.Health != nil {
		config.Health.RegisterHealthEndpoints(mux)
	}

	s.handler = RequestIDMiddleware(InstrumentationMiddleware(config.Metrics)(mux))
	return s, nil
}

// RegisterOAuthRoutes mounts the OAuth discovery and proxy routes on mux and
// returns their paths in registration order.
func RegisterOAuthRoutes(mux *http.ServeMux, h *oauth.Handler) []string {
	routes := h.Routes()
	paths := make([]string, 0, len(routes))
	for _, route := range routes {
		mux.Handle(route.Path, h.Wrap(route))
		paths = append(paths, route.Path)
	}
	return paths
}

// Handler returns the root handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// Routes returns the mounted OAuth, consent callback and MCP paths.
func (s *HTTPServer) Routes() []string {
	return append([]string(nil), s.routes...)
}

// Start listens on the configured address and serves until Shutdown.
func (s *HTTPServer) Start() error {
	return s.StartWithReadySignal(nil)
}

// StartWithReadySignal is Start, closing ready once the listener is bound.
func (s *HTTPServer) StartWithReadySignal(ready chan<- struct{}) error {
	if err := validateHTTPSRequirement(s.config.BaseURL); err != nil {
		s.logger.Warn("public URL does not use HTTPS, put a TLS-terminating proxy in front of this server", logging.Err(err))
	}

	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		if ready != nil {
			close(ready)
		}
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}

	s.logger.Info("serving MCP over streamable HTTP",
		"addr", ln.Addr().String(),
		"endpoint", s.config.BaseURL+MCPEndpointPath)
	if ready != nil {
		close(ready)
	}

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.config.Sessions != nil {
		s.config.Sessions.Stop()
	}
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// validateHTTPSRequirement checks OAuth 2.1 HTTPS compliance.
// HTTP is accepted only for loopback addresses (localhost, 127.0.0.1, ::1).
func validateHTTPSRequirement(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	if u.Scheme == "http" {
		host := u.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			return fmt.Errorf("OAuth 2.1 requires HTTPS for production (got: %s). Use HTTPS or localhost for development", baseURL)
		}
	} else if u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s. Must be http (localhost only) or https", u.Scheme)
	}

	return nil
}
