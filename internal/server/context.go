package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/teemow/workspace-mcp/internal/config"
	"github.com/teemow/workspace-mcp/internal/google"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
)

// ErrShutdown is returned for calls made after Shutdown.
var ErrShutdown = errors.New("server is shutting down")

// ServerContext holds what tool handlers need to reach Google on behalf of a user.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	tokens        google.TokenProvider
	authMode      config.AuthMode
	readOnly      bool
	search        config.SearchConfig
	clientOptions []option.ClientOption

	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	logger      *slog.Logger

	mu       sync.RWMutex
	shutdown bool
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithTokenProvider sets how tokens are resolved. The default uses the request token only.
func WithTokenProvider(tp google.TokenProvider) Option {
	return func(sc *ServerContext) { sc.tokens = tp }
}

// WithAuthMode records the credential mode for audit records and health output.
func WithAuthMode(mode config.AuthMode) Option {
	return func(sc *ServerContext) { sc.authMode = mode }
}

// WithReadOnly marks the server as read-only.
func WithReadOnly(readOnly bool) Option {
	return func(sc *ServerContext) { sc.readOnly = readOnly }
}

// WithSearchConfig sets the Programmable Search Engine credentials.
func WithSearchConfig(cfg config.SearchConfig) Option {
	return func(sc *ServerContext) { sc.search = cfg }
}

// WithClientOptions adds options to every Google API client, after the
// authenticated HTTP client. Tests point clients at a fake endpoint with it.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(sc *ServerContext) { sc.clientOptions = append(sc.clientOptions, opts...) }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(sc *ServerContext) { sc.metrics = m }
}

// WithAuditLogger sets the tool audit logger.
func WithAuditLogger(al *instrumentation.AuditLogger) Option {
	return func(sc *ServerContext) { sc.auditLogger = al }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(sc *ServerContext) { sc.logger = l }
}

// NewServerContext creates a server context bound to ctx.
func NewServerContext(ctx context.Context, opts ...Option) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)
	sc := &ServerContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		tokens:   google.ContextTokenProvider{},
		authMode: config.AuthModeStateless,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(sc)
	}
	if sc.tokens == nil {
		cancel()
		return nil, errors.New("token provider is required")
	}
	return sc, nil
}

// Context returns the server context. It is cancelled on Shutdown.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// AuthMode returns the credential mode.
func (sc *ServerContext) AuthMode() config.AuthMode {
	return sc.authMode
}

// ReadOnly reports whether write tools are disabled.
func (sc *ServerContext) ReadOnly() bool {
	return sc.readOnly
}

// SearchConfig returns the Programmable Search Engine credentials.
func (sc *ServerContext) SearchConfig() config.SearchConfig {
	return sc.search
}

// Metrics returns the metrics recorder, which may be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger, which may be nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// Logger returns the logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// TokenForAccount resolves the Google token to act as account.
func (sc *ServerContext) TokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	if sc.IsShutdown() {
		return nil, ErrShutdown
	}
	tok, err := sc.tokens.TokenForAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	return tok, nil
}

// ClientOptionsForAccount returns the options to build a Google API service
// authenticated as account.
func (sc *ServerContext) ClientOptionsForAccount(ctx context.Context, account string) ([]option.ClientOption, error) {
	tok, err := sc.TokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google credentials for %s: %w", displayAccount(account), err)
	}
	client := google.NewHTTPClient(ctx, oauth2.StaticTokenSource(tok))
	return append([]option.ClientOption{option.WithHTTPClient(client)}, sc.clientOptions...), nil
}

// APIKeyClientOptions returns options for APIs authenticated with an API key
// instead of a user token.
func (sc *ServerContext) APIKeyClientOptions(apiKey string) []option.ClientOption {
	return append([]option.ClientOption{option.WithAPIKey(apiKey)}, sc.clientOptions...)
}

func displayAccount(account string) string {
	if account == "" {
		return "the authenticated user"
	}
	return account
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context. Repeated calls are no-ops.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}
	sc.shutdown = true
	sc.cancel()
	return nil
}
