package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/teemow/workspace-mcp/internal/instrumentation"
)

// ErrTokenNotFound is returned when no credentials are stored for a user.
var ErrTokenNotFound = errors.New("no stored Google credentials for user")

// Credentials is the persisted form of a user's Google token.
type Credentials struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenURI     string    `json:"token_uri"`
	ClientID     string    `json:"client_id,omitempty"`
	Scopes       []string  `json:"scopes,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// NewCredentials converts an OAuth token into storable credentials.
func NewCredentials(tok *oauth2.Token, clientID string, scopes []string) *Credentials {
	return &Credentials{
		Token:        tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenURI:     google.Endpoint.TokenURL,
		ClientID:     clientID,
		Scopes:       scopes,
		Expiry:       tok.Expiry,
	}
}

// OAuth2Token returns the credentials as an oauth2.Token.
func (c *Credentials) OAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.Token,
		TokenType:    "Bearer",
		RefreshToken: c.RefreshToken,
		Expiry:       c.Expiry,
	}
}

// CredentialStore persists Google credentials keyed by user email.
type CredentialStore interface {
	LoadCredentials(ctx context.Context, user string) (*Credentials, error)
	SaveCredentials(ctx context.Context, user string, creds *Credentials) error
	DeleteCredentials(ctx context.Context, user string) error
}

// CheckCredentialsDir makes sure dir exists with 0700 permissions and is writable.
func CheckCredentialsDir(dir string) error {
	if dir == "" {
		return errors.New("credentials directory is not set")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create credentials directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write-test-*")
	if err != nil {
		return fmt.Errorf("credentials directory %s is not writable: %w", dir, err)
	}
	name := probe.Name()
	_ = probe.Close()
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("failed to remove probe file in %s: %w", dir, err)
	}
	return nil
}

// FileCredentialStore keeps one <email>.json file per user.
type FileCredentialStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileCredentialStore returns a store rooted at dir. Call CheckCredentialsDir first.
func NewFileCredentialStore(dir string) *FileCredentialStore {
	return &FileCredentialStore{dir: dir}
}

func (s *FileCredentialStore) path(user string) (string, error) {
	user = strings.ToLower(strings.TrimSpace(user))
	if user == "" || !strings.Contains(user, "@") {
		return "", fmt.Errorf("invalid user email %q", user)
	}
	if user != filepath.Base(user) || strings.HasPrefix(user, ".") {
		return "", fmt.Errorf("invalid user email %q", user)
	}
	return filepath.Join(s.dir, user+".json"), nil
}

// LoadCredentials reads the credentials of user.
func (s *FileCredentialStore) LoadCredentials(_ context.Context, user string) (*Credentials, error) {
	path, err := s.path(user)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	data, err := os.ReadFile(path)
	s.mu.Unlock()
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file %s: %w", path, err)
	}
	return &creds, nil
}

// SaveCredentials writes the credentials of user with 0600 permissions.
func (s *FileCredentialStore) SaveCredentials(_ context.Context, user string, creds *Credentials) error {
	path, err := s.path(user)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// DeleteCredentials removes the credentials of user. Missing files are not an error.
func (s *FileCredentialStore) DeleteCredentials(_ context.Context, user string) error {
	path, err := s.path(user)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	return nil
}

// InstrumentedStore records a metric for every operation on the wrapped store.
type InstrumentedStore struct {
	CredentialStore
	backend string
	metrics *instrumentation.Metrics
}

// NewInstrumentedStore wraps store. backend labels the metrics ("file", "memory", "redis").
func NewInstrumentedStore(store CredentialStore, backend string, metrics *instrumentation.Metrics) *InstrumentedStore {
	return &InstrumentedStore{CredentialStore: store, backend: backend, metrics: metrics}
}

func (s *InstrumentedStore) record(ctx context.Context, op string, err error) {
	status := instrumentation.StatusSuccess
	if err != nil && !errors.Is(err, ErrTokenNotFound) {
		status = instrumentation.StatusError
	}
	s.metrics.RecordSessionStoreOperation(ctx, s.backend, op, status)
}

func (s *InstrumentedStore) LoadCredentials(ctx context.Context, user string) (*Credentials, error) {
	creds, err := s.CredentialStore.LoadCredentials(ctx, user)
	s.record(ctx, instrumentation.StoreOpLoad, err)
	return creds, err
}

func (s *InstrumentedStore) SaveCredentials(ctx context.Context, user string, creds *Credentials) error {
	err := s.CredentialStore.SaveCredentials(ctx, user, creds)
	s.record(ctx, instrumentation.StoreOpSave, err)
	return err
}

func (s *InstrumentedStore) DeleteCredentials(ctx context.Context, user string) error {
	err := s.CredentialStore.DeleteCredentials(ctx, user)
	s.record(ctx, instrumentation.StoreOpDelete, err)
	return err
}
