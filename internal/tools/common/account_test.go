package common

import (
	"context"
	"testing"

	"github.com/teemow/workspace-mcp/internal/google"
)

func TestAccountFromArgs(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		args     map[string]any
		expected string
	}{
		{
			name:     "no account specified returns empty",
			args:     map[string]any{},
			expected: "",
		},
		{
			name:     "explicit email is normalized",
			args:     map[string]any{ArgUserEmail: "  Jane@Example.com "},
			expected: "jane@example.com",
		},
		{
			name:     "nil args",
			args:     nil,
			expected: "",
		},
		{
			name:     "non-string value is ignored",
			args:     map[string]any{ArgUserEmail: 123},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AccountFromArgs(ctx, tt.args); got != tt.expected {
				t.Errorf("AccountFromArgs() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestAccountFromArgs_AuthenticatedUserWins(t *testing.T) {
	ctx := google.ContextWithUser(context.Background(), &google.UserInfo{Email: "OAuth-User@example.com"})

	got := AccountFromArgs(ctx, map[string]any{ArgUserEmail: "someone-else@example.com"})
	if got != "oauth-user@example.com" {
		t.Errorf("AccountFromArgs() = %q, expected the authenticated user", got)
	}
}

func TestAccountFromArgs_EmptyAuthenticatedEmail(t *testing.T) {
	ctx := google.ContextWithUser(context.Background(), &google.UserInfo{ID: "123"})

	got := AccountFromArgs(ctx, map[string]any{ArgUserEmail: "fallback@example.com"})
	if got != "fallback@example.com" {
		t.Errorf("AccountFromArgs() = %q, expected fallback", got)
	}
}
