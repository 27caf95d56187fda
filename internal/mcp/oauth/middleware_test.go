package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/workspace-mcp/internal/google"
	"github.com/teemow/workspace-mcp/internal/session"
)

type fakeSessions struct {
	bound     map[string]string
	lookupErr error
}

func (f *fakeSessions) BindSession(_ context.Context, sessionID, user string) error {
	if f.bound == nil {
		f.bound = make(map[string]string)
	}
	f.bound[sessionID] = user
	return nil
}

func (f *fakeSessions) UserForSession(_ context.Context, sessionID string) (string, error) {
	if f.lookupErr != nil {
		return "", f.lookupErr
	}
	if u, ok := f.bound[sessionID]; ok {
		return u, nil
	}
	return "", session.ErrSessionNotFound
}

func protectedEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := google.UserFromContext(r.Context())
		if !ok {
			http.Error(w, "no user", http.StatusInternalServerError)
			return
		}
		tok, ok := google.TokenFromContext(r.Context())
		if !ok {
			http.Error(w, "no token", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(user.Email + " " + tok.AccessToken))
	})
}

func TestRequireBearer(t *testing.T) {
	tests := []struct {
		name          string
		authorization string
		wantStatus    int
		wantChallenge string
		wantBody      string
	}{
		{
			name:          "missing header",
			wantStatus:    http.StatusUnauthorized,
			wantChallenge: `Bearer resource_metadata="https://mcp.example.com/.well-known/oauth-protected-resource"`,
		},
		{
			name:          "wrong scheme",
			authorization: "Basic Zm9vOmJhcg==",
			wantStatus:    http.StatusUnauthorized,
			wantChallenge: `error="invalid_token"`,
		},
		{
			name:          "unknown token",
			authorization: "Bearer nope",
			wantStatus:    http.StatusUnauthorized,
			wantChallenge: `error="invalid_token"`,
		},
		{
			name:          "valid token",
			authorization: "Bearer good-token",
			wantStatus:    http.StatusOK,
			wantBody:      "jane@example.com good-token",
		},
		{
			name:          "scheme is case insensitive",
			authorization: "bearer good-token",
			wantStatus:    http.StatusOK,
			wantBody:      "jane@example.com good-token",
		},
	}

	h := newTestHandler(t, nil)
	protected := h.RequireBearer(protectedEcho())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}
			w := httptest.NewRecorder()
			protected.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantChallenge != "" && !strings.Contains(w.Header().Get("WWW-Authenticate"), tt.wantChallenge) {
				t.Errorf("WWW-Authenticate = %q, want it to contain %q", w.Header().Get("WWW-Authenticate"), tt.wantChallenge)
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRequireBearer_MissingHeaderHasNoErrorParameter(t *testing.T) {
	h := newTestHandler(t, nil)
	w := httptest.NewRecorder()
	h.RequireBearer(protectedEcho()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mcp", nil))

	if strings.Contains(w.Header().Get("WWW-Authenticate"), "error=") {
		t.Errorf("challenge without credentials should not carry an error, got %q", w.Header().Get("WWW-Authenticate"))
	}
}

func TestRequireBearer_SessionBinding(t *testing.T) {
	sessions := &fakeSessions{}
	h := newTestHandler(t, func(c *Config) { c.Sessions = sessions })
	protected := h.RequireBearer(protectedEcho())

	do := func(token string) int {
		req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set(HeaderSessionID, "session-1")
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, req)
		return w.Code
	}

	if code := do("good-token"); code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", code)
	}
	if sessions.bound["session-1"] != "jane@example.com" {
		t.Fatalf("session bound to %q, want jane@example.com", sessions.bound["session-1"])
	}
	if code := do("good-token"); code != http.StatusOK {
		t.Errorf("same user status = %d, want 200", code)
	}
	if code := do("bob-token"); code != http.StatusForbidden {
		t.Errorf("other user status = %d, want 403", code)
	}
}

func TestRequireBearer_SessionLookupFailure(t *testing.T) {
	sessions := &fakeSessions{lookupErr: errors.New("dial tcp 10.0.0.5:6379: connection refused")}
	h := newTestHandler(t, func(c *Config) { c.Sessions = sessions })

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	req.Header.Set(HeaderSessionID, "session-1")
	w := httptest.NewRecorder()
	h.RequireBearer(protectedEcho()).ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if !strings.Contains(w.Body.String(), "temporarily_unavailable") {
		t.Errorf("body = %s, want temporarily_unavailable error", w.Body.String())
	}
	if _, ok := sessions.bound["session-1"]; ok {
		t.Error("session must not be rebound when the lookup fails")
	}
}

func TestRequireBearer_NoSessionsConfigured(t *testing.T) {
	h := newTestHandler(t, nil)
	protected := h.RequireBearer(protectedEcho())

	for _, token := range []string{"good-token", "bob-token"} {
		req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set(HeaderSessionID, "session-1")
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("token %s: status = %d, want 200", token, w.Code)
		}
	}
}

func TestCachedValidator(t *testing.T) {
	calls := 0
	fetch := func(_ context.Context, tok *oauth2.Token) (*google.UserInfo, error) {
		calls++
		if tok.AccessToken == "bad" {
			return nil, errors.New("invalid")
		}
		return &google.UserInfo{Email: "jane@example.com"}, nil
	}

	v := NewCachedValidator(fetch, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	v.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		user, err := v.Validate(ctx, "tok")
		if err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if user.Email != "jane@example.com" {
			t.Errorf("email = %q", user.Email)
		}
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}

	now = now.Add(2 * time.Minute)
	if _, err := v.Validate(ctx, "tok"); err != nil {
		t.Fatalf("Validate() after expiry error = %v", err)
	}
	if calls != 2 {
		t.Errorf("fetch called %d times after expiry, want 2", calls)
	}

	if _, err := v.Validate(ctx, "bad"); err == nil {
		t.Error("expected error for bad token")
	}
	if _, err := v.Validate(ctx, "bad"); err == nil {
		t.Error("failed validations must not be cached")
	}
	if calls != 4 {
		t.Errorf("fetch called %d times, want 4", calls)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{header: "Bearer abc", want: "abc"},
		{header: "BEARER  abc ", want: "abc"},
		{header: "", wantErr: true},
		{header: "Bearer", wantErr: true},
		{header: "Bearer ", wantErr: true},
		{header: "Token abc", wantErr: true},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		got, err := bearerToken(req)
		if (err != nil) != tt.wantErr {
			t.Errorf("bearerToken(%q) error = %v, wantErr %v", tt.header, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("bearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
