// Package google resolves OAuth scopes for the enabled Workspace services and
// supplies Google credentials to the tool handlers.
//
// Three credential paths exist, matching the server's auth modes:
//
//   - stateless: ContextTokenProvider hands the request's bearer token to the
//     tools and nothing is persisted
//   - file: StoreTokenProvider backed by a FileCredentialStore, one JSON file
//     per user in the credentials directory
//   - session: StoreTokenProvider backed by a session store (see internal/session)
//
// Stored tokens are refreshed with the configured OAuth client when they expire
// and the refreshed token is written back to the store.
package google
