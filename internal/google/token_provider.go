package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/oauth2"

	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/logging"
)

// TokenProvider supplies the Google token to use for a user.
// An empty account means the authenticated user of the request.
type TokenProvider interface {
	TokenForAccount(ctx context.Context, account string) (*oauth2.Token, error)
}

// ContextTokenProvider returns the bearer token of the current request.
// It never persists anything.
type ContextTokenProvider struct{}

// TokenForAccount returns the context token. A request for a different
// account than the authenticated user is rejected.
func (ContextTokenProvider) TokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	tok, ok := TokenFromContext(ctx)
	if !ok {
		return nil, errors.New("no Google access token on the request, authenticate with a bearer token")
	}
	if err := checkAccount(ctx, account); err != nil {
		return nil, err
	}
	return tok, nil
}

func checkAccount(ctx context.Context, account string) error {
	if account == "" {
		return nil
	}
	user, ok := UserFromContext(ctx)
	if !ok {
		return nil
	}
	if !strings.EqualFold(user.Email, account) {
		return fmt.Errorf("authenticated as %s, cannot act on behalf of %s", user.Email, account)
	}
	return nil
}

// StoreTokenProvider loads tokens from a CredentialStore and refreshes them.
type StoreTokenProvider struct {
	store   CredentialStore
	config  *oauth2.Config
	metrics *instrumentation.Metrics
	logger  *slog.Logger
}

// NewStoreTokenProvider creates a provider. config is used for refresh and
// may be nil, in which case expired tokens are returned as errors.
func NewStoreTokenProvider(store CredentialStore, config *oauth2.Config, metrics *instrumentation.Metrics, logger *slog.Logger) *StoreTokenProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreTokenProvider{
		store:   store,
		config:  config,
		metrics: metrics,
		logger:  logger.With("component", "token_provider"),
	}
}

// TokenForAccount returns a valid token for account.
//
// Stored credentials are used first. When none exist and the request carries
// a token for the same user, that token is saved and returned.
func (p *StoreTokenProvider) TokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	if err := checkAccount(ctx, account); err != nil {
		return nil, err
	}
	if account == "" {
		user, ok := UserFromContext(ctx)
		if !ok {
			return nil, errors.New("user_google_email is required when the request is not authenticated")
		}
		account = user.Email
	}
	account = strings.ToLower(account)

	creds, err := p.store.LoadCredentials(ctx, account)
	if errors.Is(err, ErrTokenNotFound) {
		return p.fromContext(ctx, account)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials for %s: %w", logging.AnonymizeEmail(account), err)
	}

	tok := creds.OAuth2Token()
	if tok.Valid() {
		return tok, nil
	}
	if reqTok, ok := requestToken(ctx, account); ok {
		return reqTok, nil
	}
	return p.refresh(ctx, account, creds)
}

// requestToken returns the request's bearer token when it belongs to account.
func requestToken(ctx context.Context, account string) (*oauth2.Token, bool) {
	tok, ok := TokenFromContext(ctx)
	if !ok {
		return nil, false
	}
	user, ok := UserFromContext(ctx)
	if !ok || !strings.EqualFold(user.Email, account) {
		return nil, false
	}
	return tok, true
}

func (p *StoreTokenProvider) fromContext(ctx context.Context, account string) (*oauth2.Token, error) {
	tok, ok := requestToken(ctx, account)
	if !ok {
		return nil, fmt.Errorf("%w: %s, complete the OAuth flow first", ErrTokenNotFound, account)
	}

	var clientID string
	if p.config != nil {
		clientID = p.config.ClientID
	}
	if err := p.store.SaveCredentials(ctx, account, NewCredentials(tok, clientID, EnabledScopes(false))); err != nil {
		p.logger.Warn("failed to persist request token", logging.UserHash(account), logging.Err(err))
	}
	return tok, nil
}

func (p *StoreTokenProvider) refresh(ctx context.Context, account string, creds *Credentials) (*oauth2.Token, error) {
	if creds.RefreshToken == "" || p.config == nil {
		p.metrics.RecordOAuthTokenRefresh(ctx, instrumentation.OAuthResultExpired)
		return nil, fmt.Errorf("stored token for %s expired and cannot be refreshed", account)
	}

	tok, err := p.config.TokenSource(ctx, creds.OAuth2Token()).Token()
	if err != nil {
		p.metrics.RecordOAuthTokenRefresh(ctx, instrumentation.OAuthResultFailure)
		return nil, fmt.Errorf("failed to refresh token for %s: %w", account, err)
	}
	p.metrics.RecordOAuthTokenRefresh(ctx, instrumentation.OAuthResultSuccess)

	if tok.RefreshToken == "" {
		tok.RefreshToken = creds.RefreshToken
	}
	refreshed := NewCredentials(tok, creds.ClientID, creds.Scopes)
	if err := p.store.SaveCredentials(ctx, account, refreshed); err != nil {
		p.logger.Warn("failed to persist refreshed token", logging.UserHash(account), logging.Err(err))
	}

	p.logger.Debug("refreshed Google token", logging.UserHash(account))
	return tok, nil
}
