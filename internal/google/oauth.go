package google

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// UserInfoEndpoint is queried to identify the owner of a bearer token.
const UserInfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

// NewOAuthConfig returns the Google OAuth client configuration used for token refresh.
func NewOAuthConfig(clientID, clientSecret, redirectURL string, scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       scopes,
	}
}
