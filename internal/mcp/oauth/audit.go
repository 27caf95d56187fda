package oauth

import (
	"context"
	"log/slog"

	"github.com/teemow/workspace-mcp/internal/logging"
)

// AuditEventType names a security-relevant OAuth event.
type AuditEventType string

const (
	AuditEventAuthorizeRedirect AuditEventType = "authorize_redirect"
	AuditEventTokenIssued       AuditEventType = "token_issued"
	AuditEventTokenRefreshed    AuditEventType = "token_refreshed"
	AuditEventAuthFailure       AuditEventType = "auth_failure"
	AuditEventInvalidToken      AuditEventType = "invalid_token"
	AuditEventClientRegistered  AuditEventType = "client_registered"
	AuditEventRateLimitExceeded AuditEventType = "rate_limit_exceeded"
	AuditEventSessionMismatch   AuditEventType = "session_mismatch"
)

// AuditEvent is one audit record. User emails are hashed before logging.
type AuditEvent struct {
	Type      AuditEventType
	UserEmail string
	ClientID  string
	IPAddress string
	Success   bool
	Error     string
	Metadata  map[string]string
}

// AuditLogger writes OAuth audit events. A nil *AuditLogger discards them.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates an audit logger. A nil logger uses slog.Default.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{logger: logger}
}

// LogEvent logs event. Failures are logged at warn level.
func (a *AuditLogger) LogEvent(event AuditEvent) {
	if a == nil {
		return
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}

	attrs := []slog.Attr{
		slog.String("event_type", string(event.Type)),
		slog.Bool("success", event.Success),
	}
	if event.UserEmail != "" {
		attrs = append(attrs, logging.UserHash(event.UserEmail))
	}
	if event.ClientID != "" {
		attrs = append(attrs, slog.String("client_id", event.ClientID))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.Error != "" {
		attrs = append(attrs, slog.String(logging.KeyError, event.Error))
	}
	for k, v := range event.Metadata {
		attrs = append(attrs, slog.String("meta_"+k, v))
	}

	a.logger.LogAttrs(context.Background(), level, "audit_event", attrs...)
}

func (a *AuditLogger) LogAuthorizeRedirect(clientID, ip string) {
	a.LogEvent(AuditEvent{Type: AuditEventAuthorizeRedirect, ClientID: clientID, IPAddress: ip, Success: true})
}

func (a *AuditLogger) LogTokenIssued(email, clientID, ip, scope string) {
	a.LogEvent(AuditEvent{
		Type:      AuditEventTokenIssued,
		UserEmail: email,
		ClientID:  clientID,
		IPAddress: ip,
		Success:   true,
		Metadata:  map[string]string{"scope": scope},
	})
}

func (a *AuditLogger) LogTokenRefreshed(email, clientID, ip string) {
	a.LogEvent(AuditEvent{Type: AuditEventTokenRefreshed, UserEmail: email, ClientID: clientID, IPAddress: ip, Success: true})
}

func (a *AuditLogger) LogAuthFailure(email, clientID, ip, reason string) {
	a.LogEvent(AuditEvent{Type: AuditEventAuthFailure, UserEmail: email, ClientID: clientID, IPAddress: ip, Error: reason})
}

func (a *AuditLogger) LogInvalidToken(ip, reason string) {
	a.LogEvent(AuditEvent{Type: AuditEventInvalidToken, IPAddress: ip, Error: reason})
}

func (a *AuditLogger) LogClientRegistered(clientName, ip string) {
	a.LogEvent(AuditEvent{
		Type:      AuditEventClientRegistered,
		IPAddress: ip,
		Success:   true,
		Metadata:  map[string]string{"client_name": clientName},
	})
}

func (a *AuditLogger) LogRateLimitExceeded(ip, path string) {
	a.LogEvent(AuditEvent{
		Type:      AuditEventRateLimitExceeded,
		IPAddress: ip,
		Error:     "rate limit exceeded",
		Metadata:  map[string]string{"path": path},
	})
}

func (a *AuditLogger) LogSessionMismatch(email, ip, sessionID string) {
	a.LogEvent(AuditEvent{
		Type:      AuditEventSessionMismatch,
		UserEmail: email,
		IPAddress: ip,
		Error:     "session bound to another user",
		Metadata:  map[string]string{"session": logging.HashID(sessionID)},
	})
}
