package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// UserInfo identifies the Google account behind a token.
type UserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name,omitempty"`
	HostedDomain  string `json:"hd,omitempty"`
}

// FetchUserInfo calls the Google userinfo endpoint with tok.
// opts are appended to the client options, tests use option.WithEndpoint.
func FetchUserInfo(ctx context.Context, tok *oauth2.Token, opts ...option.ClientOption) (*UserInfo, error) {
	client := NewHTTPClient(ctx, oauth2.StaticTokenSource(tok))
	svc, err := oauth2api.NewService(ctx, append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	if info.Email == "" {
		return nil, errors.New("token has no email claim, the userinfo.email scope is required")
	}

	user := &UserInfo{
		ID:           info.Id,
		Email:        strings.ToLower(info.Email),
		Name:         info.Name,
		HostedDomain: info.Hd,
	}
	if info.VerifiedEmail != nil {
		user.VerifiedEmail = *info.VerifiedEmail
	}
	return user, nil
}

// NewHTTPClient returns an HTTP client that authenticates with ts.
// HTTP/2 is disabled; some Google endpoints reset long-lived HTTP/2 streams.
func NewHTTPClient(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	client := oauth2.NewClient(ctx, ts)
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			ForceAttemptHTTP2: false,
		}
	}
	return client
}
