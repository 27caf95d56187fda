package oauth

import "time"

// Route paths served by the proxy.
const (
	PathProtectedResource   = "/.well-known/oauth-protected-resource"
	PathAuthorizationServer = "/.well-known/oauth-authorization-server"
	PathOAuthClient         = "/.well-known/oauth-client"
	PathAuthorize           = "/oauth2/authorize"
	PathToken               = "/oauth2/token"
	PathRegister            = "/oauth2/register"

	// PathCallback is the default path of the server-side consent callback.
	PathCallback = "/oauth2callback"
)

// Google endpoints.
const (
	GoogleAuthorizationEndpoint = "https://accounts.google.com/o/oauth2/v2/auth"
	GoogleTokenEndpoint         = "https://oauth2.googleapis.com/token"
	GoogleIssuer                = "https://accounts.google.com"
)

// Defaults.
const (
	DefaultRateLimitRate  = 10
	DefaultRateLimitBurst = 20

	// DefaultRateLimitCleanupInterval is how often idle limiters are swept.
	DefaultRateLimitCleanupInterval = 5 * time.Minute

	// InactiveLimiterCleanupWindow is how long a limiter may stay idle before removal.
	InactiveLimiterCleanupWindow = 10 * time.Minute

	// DefaultTokenCacheTTL bounds how long a validated bearer token is trusted
	// without asking Google again.
	DefaultTokenCacheTTL = 5 * time.Minute

	// maxTokenRequestBytes caps the body of a token request.
	maxTokenRequestBytes = 64 << 10

	// upstreamTimeout bounds calls to Google's token endpoint.
	upstreamTimeout = 30 * time.Second

	clientName = "Google Workspace MCP"
)

// HeaderSessionID carries the MCP session id on streamable HTTP requests.
const HeaderSessionID = "Mcp-Session-Id"

var (
	supportedGrantTypes           = []string{"authorization_code", "refresh_token"}
	supportedResponseTypes        = []string{"code"}
	supportedCodeChallengeMethods = []string{"S256"}
	supportedTokenAuthMethods     = []string{"client_secret_post", "client_secret_basic"}
	bearerMethodsSupported        = []string{"header"}
)
