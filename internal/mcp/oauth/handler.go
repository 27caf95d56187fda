package oauth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/teemow/workspace-mcp/internal/google"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
)

// Handler serves the OAuth 2.1 discovery and proxy endpoints. The server
// never issues tokens of its own: authorization and token requests are
// forwarded to Google with the configured client credentials filled in.
type Handler struct {
	config      Config
	resource    string
	rateLimiter *RateLimiter
	httpClient  *http.Client
	validator   TokenValidator
	logger      *slog.Logger
	metrics     *instrumentation.Metrics
	audit       *AuditLogger
}

// Route is one OAuth endpoint with the methods it accepts besides OPTIONS.
type Route struct {
	Path    string
	Methods []string
	Name    string
	Handler http.HandlerFunc
}

// NewHandler validates config and applies defaults.
func NewHandler(config Config) (*Handler, error) {
	if config.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	if _, err := url.ParseRequestURI(config.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if config.ClientID == "" {
		return nil, errors.New("GOOGLE_OAUTH_CLIENT_ID is required for the OAuth endpoints")
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	if config.Scopes == nil {
		readOnly := config.ReadOnly
		config.Scopes = func() []string { return google.EnabledScopes(readOnly) }
	}
	if config.RedirectURI == "" {
		config.RedirectURI = config.BaseURL + PathCallback
	}
	if config.AuthorizationEndpoint == "" {
		config.AuthorizationEndpoint = GoogleAuthorizationEndpoint
	}
	if config.TokenEndpoint == "" {
		config.TokenEndpoint = GoogleTokenEndpoint
	}
	if config.Stateless {
		config.Store = nil
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "oauth")

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: upstreamTimeout}
	}

	audit := config.AuditLogger
	if audit == nil {
		audit = NewAuditLogger(logger)
	}

	validator := config.Validator
	if validator == nil {
		validator = NewCachedValidator(nil, DefaultTokenCacheTTL)
	}

	var rateLimiter *RateLimiter
	if config.RateLimit.Rate > 0 {
		burst := config.RateLimit.Burst
		if burst == 0 {
			burst = config.RateLimit.Rate * 2
		}
		rateLimiter = NewRateLimiter(config.RateLimit.Rate, burst, config.RateLimit.TrustProxy, config.RateLimit.CleanupInterval)
		logger.Info("OAuth endpoint rate limiting enabled", "rate", config.RateLimit.Rate, "burst", burst)
	}

	return &Handler{
		config:      config,
		resource:    config.BaseURL + "/mcp",
		rateLimiter: rateLimiter,
		httpClient:  httpClient,
		validator:   validator,
		logger:      logger,
		metrics:     config.Metrics,
		audit:       audit,
	}, nil
}

// Routes returns the six OAuth routes in registration order.
func (h *Handler) Routes() []Route {
	return []Route{
		{Path: PathProtectedResource, Methods: []string{http.MethodGet}, Name: "protected_resource", Handler: h.ServeProtectedResourceMetadata},
		{Path: PathAuthorizationServer, Methods: []string{http.MethodGet}, Name: "authorization_server", Handler: h.ServeAuthorizationServerMetadata},
		{Path: PathOAuthClient, Methods: []string{http.MethodGet}, Name: "client_config", Handler: h.ServeOAuthClientConfig},
		{Path: PathAuthorize, Methods: []string{http.MethodGet}, Name: "authorize", Handler: h.ServeAuthorize},
		{Path: PathToken, Methods: []string{http.MethodPost}, Name: "token", Handler: h.ServeToken},
		{Path: PathRegister, Methods: []string{http.MethodPost}, Name: "register", Handler: h.ServeRegister},
	}
}

// Close stops background goroutines.
func (h *Handler) Close() {
	if h.rateLimiter != nil {
		h.rateLimiter.Stop()
	}
}

// ResourceMetadataURL is advertised in WWW-Authenticate challenges.
func (h *Handler) ResourceMetadataURL() string {
	return h.config.BaseURL + PathProtectedResource
}

func (h *Handler) scopes() []string {
	return h.config.Scopes()
}

func (h *Handler) redirectURIs() []string {
	return []string{h.config.RedirectURI}
}

// ServeProtectedResourceMetadata serves RFC 9728 metadata.
func (h *Handler) ServeProtectedResourceMetadata(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ProtectedResourceMetadata{
		Resource:               h.resource,
		AuthorizationServers:   []string{h.config.BaseURL},
		BearerMethodsSupported: bearerMethodsSupported,
		ScopesSupported:        h.scopes(),
		ResourceName:           clientName,
	})
}

// ServeAuthorizationServerMetadata serves RFC 8414 metadata pointing at the proxy endpoints.
func (h *Handler) ServeAuthorizationServerMetadata(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, AuthorizationServerMetadata{
		Issuer:                            h.config.BaseURL,
		AuthorizationEndpoint:             h.config.BaseURL + PathAuthorize,
		TokenEndpoint:                     h.config.BaseURL + PathToken,
		RegistrationEndpoint:              h.config.BaseURL + PathRegister,
		ScopesSupported:                   h.scopes(),
		ResponseTypesSupported:            supportedResponseTypes,
		GrantTypesSupported:               supportedGrantTypes,
		CodeChallengeMethodsSupported:     supportedCodeChallengeMethods,
		TokenEndpointAuthMethodsSupported: supportedTokenAuthMethods,
	})
}

// ServeOAuthClientConfig describes the preconfigured Google client. The secret is not included.
func (h *Handler) ServeOAuthClientConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ClientMetadata{
		ClientID:                h.config.ClientID,
		ClientName:              clientName,
		ClientURI:               h.config.BaseURL,
		RedirectURIs:            h.redirectURIs(),
		GrantTypes:              supportedGrantTypes,
		ResponseTypes:           supportedResponseTypes,
		Scope:                   strings.Join(h.scopes(), " "),
		TokenEndpointAuthMethod: "client_secret_post",
	})
}

// ServeAuthorize redirects to Google's consent screen. client_id and scope
// are filled in when the client omits them, and offline access is always
// requested so Google returns a refresh token.
func (h *Handler) ServeAuthorize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("client_id") == "" {
		q.Set("client_id", h.config.ClientID)
	}
	if q.Get("scope") == "" {
		q.Set("scope", strings.Join(h.scopes(), " "))
	}
	if q.Get("response_type") == "" {
		q.Set("response_type", "code")
	}
	q.Set("access_type", "offline")

	h.audit.LogAuthorizeRedirect(q.Get("client_id"), getClientIP(r, h.trustProxy()))
	h.metrics.RecordOAuthProxyRequest(r.Context(), "authorize", instrumentation.OAuthResultSuccess)

	http.Redirect(w, r, h.config.AuthorizationEndpoint+"?"+q.Encode(), http.StatusFound)
}

func (h *Handler) trustProxy() bool {
	return h.config.RateLimit.TrustProxy
}
