// Package logging provides structured logging helpers for workspace-mcp.
//
// All logging goes through log/slog. This package centralizes attribute
// names, process logger setup (level, format, optional log file) and the
// sanitizers used to keep PII and credentials out of log output.
//
// # Usage Patterns
//
//	logger := logging.WithService(slog.Default(), "gmail")
//	logger.Info("message sent", logging.UserHash(email), logging.Tool("send_gmail_message"))
//
// # Security Considerations
//
//   - User emails are hashed to allow correlation without exposing PII
//   - Tokens are never logged; SanitizeToken reports only their length
//   - Session ids are hashed before they reach a log line
package logging
