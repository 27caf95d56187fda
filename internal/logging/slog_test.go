package logging

import (
	"errors"
	"log/slog"
	"testing"
)

func TestAttrs(t *testing.T) {
	tests := []struct {
		name    string
		attr    slog.Attr
		wantKey string
		wantVal string
	}{
		{name: "operation", attr: Operation("tiers.resolve"), wantKey: KeyOperation, wantVal: "tiers.resolve"},
		{name: "service", attr: Service("gmail"), wantKey: KeyService, wantVal: "gmail"},
		{name: "tool", attr: Tool("search_gmail_messages"), wantKey: KeyTool, wantVal: "search_gmail_messages"},
		{name: "tier", attr: Tier("core"), wantKey: KeyTier, wantVal: "core"},
		{name: "auth mode", attr: AuthMode("stateless"), wantKey: KeyAuthMode, wantVal: "stateless"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.wantKey {
				t.Errorf("key = %q, want %q", tt.attr.Key, tt.wantKey)
			}
			if tt.attr.Value.String() != tt.wantVal {
				t.Errorf("value = %q, want %q", tt.attr.Value.String(), tt.wantVal)
			}
		})
	}
}

func TestWithHelpers(t *testing.T) {
	if WithService(slog.Default(), "drive") == nil {
		t.Error("WithService returned nil")
	}
	if WithTool(slog.Default(), "create_doc") == nil {
		t.Error("WithTool returned nil")
	}
}

func TestSessionAttr(t *testing.T) {
	attr := Session("session-123")
	if attr.Key != KeySession {
		t.Errorf("Session key = %q, want %q", attr.Key, KeySession)
	}
	if attr.Value.String() == "session-123" {
		t.Error("Session attribute must not contain the raw session id")
	}
	if len(attr.Value.String()) != 16 {
		t.Errorf("Session value length = %d, want 16", len(attr.Value.String()))
	}
}

func TestErr(t *testing.T) {
	attr := Err(errors.New("boom"))
	if attr.Key != KeyError || attr.Value.String() != "boom" {
		t.Errorf("Err() = %v, want error=boom", attr)
	}

	// nil yields an empty group that slog omits
	if attr := Err(nil); attr.Key != "" {
		t.Errorf("Err(nil) key = %q, want empty", attr.Key)
	}
}

func TestAnonymizeEmail(t *testing.T) {
	tests := []struct {
		email   string
		wantLen int
	}{
		{"jane@example.com", 21},
		{"user@gmail.com", 21},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			result := AnonymizeEmail(tt.email)
			if len(result) != tt.wantLen {
				t.Errorf("AnonymizeEmail(%q) length = %d, want %d", tt.email, len(result), tt.wantLen)
			}
			if tt.wantLen > 0 && result[:5] != "user:" {
				t.Errorf("AnonymizeEmail(%q) should start with 'user:', got %q", tt.email, result)
			}
		})
	}

	if AnonymizeEmail("Jane@Example.com") != AnonymizeEmail("jane@example.com") {
		t.Error("AnonymizeEmail should be case-insensitive")
	}
	if AnonymizeEmail("a@example.com") == AnonymizeEmail("b@example.com") {
		t.Error("different emails should produce different hashes")
	}
}

func TestUserHash(t *testing.T) {
	attr := UserHash("jane@example.com")
	if attr.Key != KeyUserHash {
		t.Errorf("UserHash key = %q, want %q", attr.Key, KeyUserHash)
	}
	if attr.Value.String() != AnonymizeEmail("jane@example.com") {
		t.Errorf("UserHash value = %q", attr.Value.String())
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		token    string
		expected string
	}{
		{"", "<empty>"},
		{"ya29.abc", "[token:8 chars]"},
		{"a_very_long_token_string", "[token:24 chars]"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := SanitizeToken(tt.token); got != tt.expected {
				t.Errorf("SanitizeToken(%q) = %q, want %q", tt.token, got, tt.expected)
			}
		})
	}
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		email    string
		expected string
	}{
		{"jane@example.com", "example.com"},
		{"invalid", ""},
		{"", ""},
		{"@", ""},
		{"user@", ""},
		{"a@b@c", ""},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := ExtractDomain(tt.email); got != tt.expected {
				t.Errorf("ExtractDomain(%q) = %q, want %q", tt.email, got, tt.expected)
			}
		})
	}
}
