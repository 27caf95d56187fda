package google

import (
	"context"

	"golang.org/x/oauth2"
)

type contextKey int

const (
	tokenKey contextKey = iota
	userKey
)

// ContextWithToken returns a context carrying the request's Google token.
func ContextWithToken(ctx context.Context, tok *oauth2.Token) context.Context {
	return context.WithValue(ctx, tokenKey, tok)
}

// TokenFromContext returns the token set by ContextWithToken.
func TokenFromContext(ctx context.Context) (*oauth2.Token, bool) {
	tok, ok := ctx.Value(tokenKey).(*oauth2.Token)
	return tok, ok && tok != nil
}

// ContextWithUser returns a context carrying the authenticated user.
func ContextWithUser(ctx context.Context, user *UserInfo) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the user set by ContextWithUser.
func UserFromContext(ctx context.Context) (*UserInfo, bool) {
	user, ok := ctx.Value(userKey).(*UserInfo)
	return user, ok && user != nil
}
