// Package oauth serves the OAuth 2.1 endpoints MCP clients use to obtain
// Google credentials for this server.
//
// The server is a pass-through proxy, not an authorization server of its own:
//
//   - /.well-known/oauth-protected-resource (RFC 9728) and
//     /.well-known/oauth-authorization-server (RFC 8414) point clients at the
//     proxy endpoints
//   - /.well-known/oauth-client and /oauth2/register (RFC 7591) hand out the
//     configured Google OAuth client
//   - /oauth2/authorize redirects to Google's consent screen
//   - /oauth2/token forwards the code or refresh token exchange to Google,
//     adding the client secret, and relays Google's response
//
// The access tokens clients receive are Google access tokens. RequireBearer
// validates them against Google's userinfo endpoint before MCP requests reach
// the tools.
package oauth
