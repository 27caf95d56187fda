package common

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/workspace-mcp/internal/google"
)

// ArgUserEmail is the argument every Google tool accepts to name the account.
const ArgUserEmail = "user_google_email"

// WithUserEmail adds the user_google_email argument to a tool definition.
func WithUserEmail() mcp.ToolOption {
	return mcp.WithString(ArgUserEmail,
		mcp.Description("The user's Google email address. Defaults to the authenticated user."),
	)
}

// AccountFromArgs returns the Google account a tool call acts on.
//
// Priority order:
//  1. The authenticated user of the request (set by the bearer middleware)
//  2. The user_google_email argument
//  3. "" (the token provider decides)
func AccountFromArgs(ctx context.Context, args map[string]any) string {
	if user, ok := google.UserFromContext(ctx); ok && user.Email != "" {
		return strings.ToLower(user.Email)
	}
	if email, ok := args[ArgUserEmail].(string); ok {
		return strings.ToLower(strings.TrimSpace(email))
	}
	return ""
}
