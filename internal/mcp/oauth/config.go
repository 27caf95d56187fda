package oauth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/teemow/workspace-mcp/internal/google"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
)

// Config configures the OAuth proxy handler.
type Config struct {
	// BaseURL is the public URL of this server. It is the resource identifier
	// and the issuer of the authorization server metadata.
	BaseURL string

	// Google OAuth client the proxy hands out and authenticates with.
	ClientID     string
	ClientSecret string

	// Scopes returns the scopes to request when the client asks for none.
	// Default: google.EnabledScopes(ReadOnly)
	Scopes   func() []string
	ReadOnly bool

	// Stateless disables persisting tokens returned by the token endpoint.
	Stateless bool

	// Store receives tokens from the token endpoint and validated bearer
	// tokens. Ignored when Stateless.
	Store google.CredentialStore

	// Sessions binds MCP session ids to users. Optional; set in session mode.
	Sessions SessionBinder

	// Validator identifies the user behind a bearer token.
	// Default: a cached validator calling Google's userinfo endpoint.
	Validator TokenValidator

	// RedirectURI is the Google redirect URI advertised to clients that do
	// not bring their own. Default: BaseURL + PathCallback.
	RedirectURI string

	// Upstream endpoints. Defaults are Google's.
	AuthorizationEndpoint string
	TokenEndpoint         string

	RateLimit RateLimitConfig

	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string

	HTTPClient  *http.Client
	Logger      *slog.Logger
	Metrics     *instrumentation.Metrics
	AuditLogger *AuditLogger
}

// RateLimitConfig configures per-IP rate limiting of the OAuth endpoints.
type RateLimitConfig struct {
	// Rate is requests per second per IP. 0 disables rate limiting.
	Rate  int
	Burst int

	// TrustProxy makes X-Forwarded-For and X-Real-IP authoritative for the client IP.
	TrustProxy bool

	CleanupInterval time.Duration
}
