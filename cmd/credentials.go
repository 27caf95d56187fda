package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"

	"github.com/teemow/workspace-mcp/internal/config"
	"github.com/teemow/workspace-mcp/internal/google"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/session"
)

// credentialBackend is what an auth mode contributes to the server: where
// tokens are persisted and how tool handlers obtain them.
type credentialBackend struct {
	// Store is nil in stateless mode.
	Store google.CredentialStore

	// Sessions is set in session mode only.
	Sessions session.Store

	Tokens google.TokenProvider
}

// Close releases the session store, if any.
func (b *credentialBackend) Close() error {
	if b.Sessions != nil {
		return b.Sessions.Close()
	}
	return nil
}

// newCredentialBackend builds the backend for cfg's auth mode. The credentials
// directory must already have been checked in file mode.
func newCredentialBackend(ctx context.Context, cfg *config.Config, metrics *instrumentation.Metrics, logger *slog.Logger) (*credentialBackend, error) {
	// Refresh reuses the scopes of the stored grant, so none are set here.
	var refresh *oauth2.Config
	if cfg.Google.ClientID != "" {
		refresh = google.NewOAuthConfig(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.RedirectURI(), nil)
	}

	switch cfg.AuthMode() {
	case config.AuthModeStateless:
		return &credentialBackend{Tokens: google.ContextTokenProvider{}}, nil

	case config.AuthModeFile:
		store := google.NewInstrumentedStore(google.NewFileCredentialStore(cfg.CredentialsDir), "file", metrics)
		logger.Info("using file credential store", slog.String("dir", cfg.CredentialsDir))
		return &credentialBackend{
			Store:  store,
			Tokens: google.NewStoreTokenProvider(store, refresh, metrics, logger),
		}, nil

	case config.AuthModeSession:
		sessions, err := session.New(ctx, cfg.Session)
		if err != nil {
			return nil, fmt.Errorf("failed to create session store: %w", err)
		}
		backend := cfg.Session.Store
		if backend == "" {
			backend = session.BackendMemory
		}
		store := google.NewInstrumentedStore(sessions, backend, metrics)
		logger.Info("using session credential store", slog.String("backend", backend))
		return &credentialBackend{
			Store:    store,
			Sessions: sessions,
			Tokens:   google.NewStoreTokenProvider(store, refresh, metrics, logger),
		}, nil
	}
	return nil, fmt.Errorf("unsupported auth mode %q", cfg.AuthMode())
}
