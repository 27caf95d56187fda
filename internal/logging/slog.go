package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
)

// Common log attribute keys.
const (
	KeyOperation = "operation"
	KeyService   = "service"
	KeyAccount   = "account"
	KeyUserHash  = "user_hash"
	KeyStatus    = "status"
	KeyError     = "error"
	KeyTool      = "tool"
	KeyTier      = "tier"
	KeyAuthMode  = "auth_mode"
	KeySession   = "session"
	KeyRequestID = "request_id"
)

// Status values. Kept in sync with the instrumentation package, which imports this one.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// WithService returns a logger with the service attribute set.
func WithService(logger *slog.Logger, service string) *slog.Logger {
	return logger.With(slog.String(KeyService, service))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Service returns a slog attribute for the Google service name.
func Service(svc string) slog.Attr {
	return slog.String(KeyService, svc)
}

// Tool returns a slog attribute for the tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// Tier returns a slog attribute for the tool tier.
func Tier(tier string) slog.Attr {
	return slog.String(KeyTier, tier)
}

// AuthMode returns a slog attribute for the credential mode.
func AuthMode(mode string) slog.Attr {
	return slog.String(KeyAuthMode, mode)
}

// Session returns a slog attribute with a hashed session id.
func Session(sessionID string) slog.Attr {
	return slog.String(KeySession, HashID(sessionID))
}

// Err returns a slog attribute for an error.
// A nil error yields an empty group, which slog drops from the output.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeEmail returns a stable, non-reversible identifier for an email address.
func AnonymizeEmail(email string) string {
	if email == "" {
		return ""
	}
	return "user:" + HashID(strings.ToLower(email))
}

// UserHash returns a slog attribute with the anonymized user email.
func UserHash(email string) slog.Attr {
	return slog.String(KeyUserHash, AnonymizeEmail(email))
}

// HashID returns the first 16 hex characters of the SHA-256 of s, or "" for "".
func HashID(s string) string {
	if s == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}

// SanitizeToken returns a length indicator for a token without any of its content.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}

// ExtractDomain returns the domain part of an email address, or "".
func ExtractDomain(email string) string {
	_, domain, ok := strings.Cut(email, "@")
	if !ok || domain == "" || strings.Contains(domain, "@") {
		return ""
	}
	return domain
}
