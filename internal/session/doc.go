// Package session implements the session-store auth mode: Google credentials
// and MCP session bindings kept in memory or in Redis instead of files.
//
// A Store satisfies google.CredentialStore, so the token provider treats it
// like the file store. In addition it remembers which Google user opened each
// MCP session, which lets the HTTP layer refuse a session id presented with
// another user's token.
package session
