package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/workspace-mcp/internal/config"
	"github.com/teemow/workspace-mcp/internal/google"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/logging"
	"github.com/teemow/workspace-mcp/internal/mcp/oauth"
	"github.com/teemow/workspace-mcp/internal/registry"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tiers"
)

const (
	serverName     = "workspace-mcp"
	transportStdio = "stdio"
)

// serveFlags override the environment when set explicitly.
type serveFlags struct {
	transport string
	toolTier  string
	tools     string
	port      string
	authMode  string
	readOnly  bool
	debug     bool
}

// apply copies explicitly set flags onto cfg and normalizes it again.
func (f *serveFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("tool-tier") {
		cfg.ToolTier = f.toolTier
	}
	if flags.Changed("tools") {
		cfg.Tools = f.tools
	}
	if flags.Changed("port") {
		cfg.Port = f.port
	}
	if flags.Changed("auth-mode") {
		cfg.AuthModeName = f.authMode
		cfg.StatelessMode = false
	}
	if flags.Changed("read-only") {
		cfg.ReadOnly = f.readOnly
	}
	if f.debug {
		cfg.LogLevel = "debug"
	}
	return cfg.Normalize()
}

func newServeCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Google Workspace MCP server.

The toolset is selected with TOOL_TIER (core, extended, complete) and TOOLS,
a comma or space separated list of services:
  gmail drive calendar docs sheets chat forms slides tasks search

Transports:
  - streamable-http (default): serves /mcp behind Google OAuth together with
    the OAuth discovery and proxy endpoints, on 0.0.0.0:$PORT (default 8000)
  - stdio: for local clients; requires the file auth mode

Auth modes (WORKSPACE_MCP_AUTH_MODE):
  - stateless: every request carries its own Google token, nothing is stored
  - file:      tokens are kept per user in WORKSPACE_MCP_CREDENTIALS_DIR
  - session:   tokens are kept in a memory or redis session store

Flags take precedence over the environment and any .env file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runServe(ctx, cfg, flags.transport)
		},
	}

	cmd.Flags().StringVar(&flags.transport, "transport", config.TransportStreamableHTTP, "Transport type: streamable-http or stdio")
	cmd.Flags().StringVar(&flags.toolTier, "tool-tier", "", "Tool tier: core, extended or complete. Can also use TOOL_TIER env var.")
	cmd.Flags().StringVar(&flags.tools, "tools", "", "Services to enable, comma or space separated. Can also use TOOLS env var.")
	cmd.Flags().StringVar(&flags.port, "port", "", "Listener port (default 8000). Can also use PORT or WORKSPACE_MCP_PORT env vars.")
	cmd.Flags().StringVar(&flags.authMode, "auth-mode", "", "Credential mode: stateless, file or session. Can also use WORKSPACE_MCP_AUTH_MODE env var.")
	cmd.Flags().BoolVar(&flags.readOnly, "read-only", false, "Register read-only tools and request read-only scopes. Can also use WORKSPACE_MCP_READ_ONLY env var.")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "Enable debug logging")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, transport string) error {
	if transport != config.TransportStreamableHTTP && transport != transportStdio {
		return fmt.Errorf("unsupported transport type: %s (supported: streamable-http, stdio)", transport)
	}
	if transport == transportStdio && cfg.AuthMode() != config.AuthModeFile {
		return fmt.Errorf("the stdio transport requires the file auth mode, got %s", cfg.AuthMode())
	}

	logger, logCloser, err := logging.Setup(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	defer func() { _ = logCloser.Close() }()

	if !cfg.Stateless() {
		if err := google.CheckCredentialsDir(cfg.CredentialsDir); err != nil {
			return fmt.Errorf("credentials directory check failed: %w", err)
		}
		logger.Debug("credentials directory is writable", slog.String("dir", cfg.CredentialsDir))
	} else {
		logger.Info("stateless mode, no credentials are persisted")
	}

	table, err := tiers.Load(cfg.ToolTiersFile)
	if err != nil {
		return err
	}
	ts, err := resolveToolset(table, cfg.Tier(), cfg.Services())
	if err != nil {
		return err
	}

	instrConfig, err := instrumentation.ConfigFromEnv()
	if err != nil {
		return err
	}
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()
	metrics := provider.Metrics()

	if transport != transportStdio && cfg.Metrics.Enabled {
		metricsServer, err := startMetricsServer(cfg.Metrics.Addr, provider, logger)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown failed", logging.Err(err))
			}
		}()
	}

	backend, err := newCredentialBackend(ctx, cfg, metrics, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("failed to close session store", logging.Err(err))
		}
	}()

	sc, err := server.NewServerContext(ctx,
		server.WithTokenProvider(backend.Tokens),
		server.WithAuthMode(cfg.AuthMode()),
		server.WithReadOnly(cfg.ReadOnly),
		server.WithSearchConfig(cfg.Search),
		server.WithMetrics(metrics),
		server.WithAuditLogger(instrumentation.NewAuditLogger(logger, instrConfig.AuditLogging)),
		server.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() { _ = sc.Shutdown() }()

	mcpSrv, activated, err := setupMCPServer(ctx, sc, table, ts, cfg.ReadOnly, logger)
	if err != nil {
		return err
	}

	if transport == transportStdio {
		logger.Info("serving MCP over stdio", slog.Int("tools", len(mcpSrv.ListTools())))
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	}

	health := server.NewHealthChecker(sc)
	health.SetToolsetInfo(server.ToolsetInfo{
		AuthMode:  string(cfg.AuthMode()),
		Tier:      ts.Tier,
		Services:  activated,
		ToolCount: len(mcpSrv.ListTools()),
		ReadOnly:  cfg.ReadOnly,
	})
	if backend.Sessions != nil {
		health.AddCheck("session_store", backend.Sessions.Ping)
	}

	httpServer, oauthHandler, err := newHTTPServer(cfg, mcpSrv, backend, health, metrics, logger)
	if err != nil {
		return err
	}
	defer oauthHandler.Close()

	return serveHTTP(ctx, httpServer, health, logger)
}

// setupMCPServer creates the MCP server and activates the services of ts on
// it. It returns the activated services.
func setupMCPServer(ctx context.Context, sc *server.ServerContext, table *tiers.Table, ts toolset, readOnly bool, logger *slog.Logger) (*mcpserver.MCPServer, []string, error) {
	mcpSrv := mcpserver.NewMCPServer(serverName, version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)

	registrar := registry.NewRegistrar(mcpSrv, ts.Filter, logger)
	google.SetEnabledServices(ts.Services)

	activated, err := activateTools(registrar, newActivator(sc, readOnly, logger), ts, logger)
	if err != nil {
		return nil, nil, err
	}

	enabled := mcpSrv.ListTools()
	recordEnabledTools(ctx, sc.Metrics(), table, enabled)

	logger.Info("activated tools",
		slog.String("tier", ts.Tier),
		slog.Any("services", activated),
		slog.Int("tools", len(enabled)),
		slog.Int("skipped", len(registrar.Skipped())),
		slog.Bool("read_only", readOnly))
	return mcpSrv, activated, nil
}

// recordEnabledTools reports the enabled tool count per service. Tools absent
// from the tier table are counted under "other".
func recordEnabledTools(ctx context.Context, metrics *instrumentation.Metrics, table *tiers.Table, tools map[string]*mcpserver.ServerTool) {
	counts := make(map[string]int)
	for name := range tools {
		service := "other"
		if _, svc, ok := table.TierOf(name); ok {
			service = svc
		}
		counts[service]++
	}
	for service, n := range counts {
		metrics.RecordEnabledTools(ctx, service, n)
	}
}

// newHTTPServer builds the OAuth proxy and the HTTP server around mcpSrv.
func newHTTPServer(cfg *config.Config, mcpSrv *mcpserver.MCPServer, backend *credentialBackend, health *server.HealthChecker, metrics *instrumentation.Metrics, logger *slog.Logger) (*server.HTTPServer, *oauth.Handler, error) {
	addr, err := cfg.ListenAddr()
	if err != nil {
		return nil, nil, err
	}
	baseURL := cfg.PublicURL()

	oauthConfig := oauth.Config{
		BaseURL:      baseURL,
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURI:  cfg.RedirectURI(),
		ReadOnly:     cfg.ReadOnly,
		Stateless:    cfg.Stateless(),
		Store:        backend.Store,
		RateLimit: oauth.RateLimitConfig{
			Rate:       cfg.RateLimit.Rate,
			Burst:      cfg.RateLimit.Burst,
			TrustProxy: cfg.RateLimit.TrustProxy,
		},
		Logger:  logger,
		Metrics: metrics,
	}
	if backend.Sessions != nil {
		oauthConfig.Sessions = backend.Sessions
	}

	oauthHandler, err := oauth.NewHandler(oauthConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OAuth handler: %w", err)
	}

	httpServer, err := server.NewHTTPServer(server.HTTPServerConfig{
		Addr:      addr,
		BaseURL:   baseURL,
		MCPServer: mcpSrv,
		OAuth:     oauthHandler,
		Health:    health,
		Sessions:  server.NewSessionIDManager(cfg.Session.TTL, metrics, logger),
		Metrics:   metrics,
		Logger:    logger,
	})
	if err != nil {
		oauthHandler.Close()
		return nil, nil, fmt.Errorf("failed to create HTTP server: %w", err)
	}

	logger.Info("registered routes",
		slog.Any("routes", httpServer.Routes()),
		slog.String("base_url", baseURL))
	return httpServer, oauthHandler, nil
}

// serveHTTP runs s until ctx is cancelled, then shuts it down gracefully.
func serveHTTP(ctx context.Context, s *server.HTTPServer, health *server.HealthChecker, logger *slog.Logger) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := s.Start(); err != nil {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		health.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server stopped")
	return nil
}

func startMetricsServer(addr string, provider *instrumentation.Provider, logger *slog.Logger) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		InstrumentationProvider: provider,
		Logger:                  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	ready := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(ready); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-ready:
		// ready is also closed when binding fails.
		if metricsServer.ListenAddr() == "" {
			return nil, fmt.Errorf("metrics server failed to start: %w", <-metricsErr)
		}
		logger.Info("metrics server started", slog.String("addr", metricsServer.Addr()))
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, errors.New("metrics server startup timed out")
	}
}
