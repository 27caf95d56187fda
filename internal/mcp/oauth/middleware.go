package oauth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/workspace-mcp/internal/google"
	"github.com/teemow/workspace-mcp/internal/logging"
	"github.com/teemow/workspace-mcp/internal/session"
)

// ErrNoAuthorizationHeader is returned when a request carries no bearer token.
var ErrNoAuthorizationHeader = errors.New("missing Authorization header")

// TokenValidator identifies the Google user behind an access token.
type TokenValidator interface {
	Validate(ctx context.Context, accessToken string) (*google.UserInfo, error)
}

// SessionBinder remembers which user opened an MCP session. UserForSession
// returns session.ErrSessionNotFound for ids that were never bound.
type SessionBinder interface {
	BindSession(ctx context.Context, sessionID, user string) error
	UserForSession(ctx context.Context, sessionID string) (string, error)
}

// UserInfoFunc fetches user info for a token.
type UserInfoFunc func(ctx context.Context, tok *oauth2.Token) (*google.UserInfo, error)

type cachedUser struct {
	user      *google.UserInfo
	expiresAt time.Time
}

// CachedValidator validates tokens with Google and caches the result for ttl.
type CachedValidator struct {
	fetch UserInfoFunc
	ttl   time.Duration
	now   func() time.Time

	mu    sync.Mutex
	cache map[string]cachedUser
}

const maxCachedTokens = 1024

// NewCachedValidator returns a validator using fetch, or google.FetchUserInfo when fetch is nil.
func NewCachedValidator(fetch UserInfoFunc, ttl time.Duration) *CachedValidator {
	if fetch == nil {
		fetch = func(ctx context.Context, tok *oauth2.Token) (*google.UserInfo, error) {
			return google.FetchUserInfo(ctx, tok)
		}
	}
	return &CachedValidator{
		fetch: fetch,
		ttl:   ttl,
		now:   time.Now,
		cache: make(map[string]cachedUser),
	}
}

func tokenKey(accessToken string) string {
	sum := sha256.Sum256([]byte(accessToken))
	return hex.EncodeToString(sum[:])
}

// Validate returns the user for accessToken.
func (v *CachedValidator) Validate(ctx context.Context, accessToken string) (*google.UserInfo, error) {
	key := tokenKey(accessToken)
	now := v.now()

	v.mu.Lock()
	if entry, ok := v.cache[key]; ok && now.Before(entry.expiresAt) {
		v.mu.Unlock()
		return entry.user, nil
	}
	v.mu.Unlock()

	user, err := v.fetch(ctx, &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.cache) >= maxCachedTokens {
		for k, e := range v.cache {
			if !now.Before(e.expiresAt) {
				delete(v.cache, k)
			}
		}
		if len(v.cache) >= maxCachedTokens {
			v.cache = make(map[string]cachedUser)
		}
	}
	v.cache[key] = cachedUser{user: user, expiresAt: now.Add(v.ttl)}
	return user, nil
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrNoAuthorizationHeader
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", errors.New("authorization header must use the Bearer scheme")
	}
	return token, nil
}

func (h *Handler) challenge(w http.ResponseWriter, oauthErr *OAuthError) {
	value := fmt.Sprintf(`Bearer resource_metadata=%q`, h.ResourceMetadataURL())
	if oauthErr.Code == codeInvalidToken {
		value += fmt.Sprintf(`, error="invalid_token", error_description=%q`, oauthErr.Description)
	}
	w.Header().Set("WWW-Authenticate", value)
	writeOAuthError(w, oauthErr)
}

// RequireBearer authenticates requests to the MCP endpoint.
//
// The bearer token is validated against Google and placed in the request
// context together with the user. When a SessionBinder is configured the
// Mcp-Session-Id header is bound to the first user that presents it, and
// later requests for that session from another user are rejected.
func (h *Handler) RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := getClientIP(r, h.trustProxy())

		accessToken, err := bearerToken(r)
		if errors.Is(err, ErrNoAuthorizationHeader) {
			h.challenge(w, NewOAuthError(codeUnauthorized, "authentication required", http.StatusUnauthorized))
			return
		}
		if err != nil {
			h.audit.LogInvalidToken(ip, err.Error())
			h.challenge(w, ErrInvalidToken(err.Error()))
			return
		}

		user, err := h.validator.Validate(r.Context(), accessToken)
		if err != nil {
			h.logger.Debug("bearer token rejected", logging.Err(err))
			h.audit.LogInvalidToken(ip, "token rejected by Google")
			h.challenge(w, ErrInvalidToken("Google token is invalid or expired, re-authenticate through your MCP client"))
			return
		}

		if sessionID := r.Header.Get(HeaderSessionID); sessionID != "" && h.config.Sessions != nil {
			if oauthErr := h.bindSession(r.Context(), sessionID, user.Email, ip); oauthErr != nil {
				writeOAuthError(w, oauthErr)
				return
			}
		}

		ctx := google.ContextWithToken(r.Context(), &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
		ctx = google.ContextWithUser(ctx, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) bindSession(ctx context.Context, sessionID, email, ip string) *OAuthError {
	bound, err := h.config.Sessions.UserForSession(ctx, sessionID)
	switch {
	case err == nil:
		if !strings.EqualFold(bound, email) {
			h.audit.LogSessionMismatch(email, ip, sessionID)
			return NewOAuthError(codeAccessDenied, "session belongs to a different user", http.StatusForbidden)
		}
		return nil
	case !errors.Is(err, session.ErrSessionNotFound):
		h.logger.Error("failed to look up session", logging.Session(sessionID), logging.Err(err))
		return ErrTemporarilyUnavailable("session store is unavailable")
	}

	if err := h.config.Sessions.BindSession(ctx, sessionID, email); err != nil {
		h.logger.Error("failed to bind session", logging.Session(sessionID), logging.Err(err))
		return ErrServerError("failed to record session")
	}
	h.logger.Debug("bound session to user", logging.Session(sessionID), logging.UserHash(email))
	return nil
}
