package oauth

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestAuditLogger_LogEvent(t *testing.T) {
	var buf bytes.Buffer
	audit := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	audit.LogTokenIssued("jane@example.com", "client-1", "192.0.2.1", "openid")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log line: %v", err)
	}
	if entry["event_type"] != string(AuditEventTokenIssued) {
		t.Errorf("event_type = %v", entry["event_type"])
	}
	if entry["level"] != "INFO" {
		t.Errorf("level = %v, want INFO", entry["level"])
	}
	if strings.Contains(buf.String(), "jane@example.com") {
		t.Error("audit log must not contain the raw email")
	}
	if entry["client_id"] != "client-1" {
		t.Errorf("client_id = %v", entry["client_id"])
	}
}

func TestAuditLogger_FailuresLogAtWarn(t *testing.T) {
	var buf bytes.Buffer
	audit := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	audit.LogInvalidToken("192.0.2.1", "expired")

	if !strings.Contains(buf.String(), `"level":"WARN"`) {
		t.Errorf("expected WARN level, got %s", buf.String())
	}
}

func TestAuditLogger_Nil(t *testing.T) {
	var audit *AuditLogger
	audit.LogEvent(AuditEvent{Type: AuditEventAuthFailure})
	audit.LogRateLimitExceeded("192.0.2.1", PathToken)
}
