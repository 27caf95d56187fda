package gmail

import (
	"encoding/base64"
	"mime"
	"strings"
	"testing"
)

func TestEncodeRFC2047(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantASCII bool
	}{
		{name: "plain ASCII text", input: "Simple Subject", wantASCII: true},
		{name: "German umlauts", input: "Rückerstattung €115 - Überweisung"},
		{name: "Japanese characters", input: "こんにちは"},
		{name: "Emoji", input: "Subject with emoji 🎉"},
		{name: "Empty string", input: "", wantASCII: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := encodeRFC2047(tt.input)

			if tt.wantASCII {
				if result != tt.input {
					t.Errorf("encodeRFC2047() = %v, want %v (should not encode ASCII)", result, tt.input)
				}
				return
			}
			if !strings.HasPrefix(result, "=?UTF-8?") || !strings.HasSuffix(result, "?=") {
				t.Errorf("encodeRFC2047() = %v, want an encoded word", result)
			}
		})
	}
}

func TestEncodeRFC2047Roundtrip(t *testing.T) {
	for _, original := range []string{"Rückerstattung €115", "Äpfel und Öl", "Größe"} {
		t.Run(original, func(t *testing.T) {
			encoded := encodeRFC2047(original)

			decoded, err := new(mime.WordDecoder).DecodeHeader(encoded)
			if err != nil {
				t.Fatalf("Failed to decode %v: %v", encoded, err)
			}
			if decoded != original {
				t.Errorf("Roundtrip failed: original=%v, encoded=%v, decoded=%v", original, encoded, decoded)
			}
		})
	}
}

func TestAppendSignature(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		signature string
		isHTML    bool
		want      string
	}{
		{
			name:      "plain text with signature",
			body:      "Hello,\n\nThis is my message.",
			signature: "Best regards,\nSender Name",
			want:      "Hello,\n\nThis is my message.\n\n-- \nBest regards,\nSender Name",
		},
		{
			name:      "HTML with signature",
			body:      "<p>Hello</p>",
			signature: "<p>Sender Name</p>",
			isHTML:    true,
			want:      "<p>Hello</p><br><br>-- <br><p>Sender Name</p>",
		},
		{
			name: "no signature",
			body: "Body",
			want: "Body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := appendSignature(tt.body, tt.signature, tt.isHTML); got != tt.want {
				t.Errorf("appendSignature() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	valid := func() *EmailMessage {
		return &EmailMessage{To: []string{"bob@example.com"}, Subject: "Hi", Body: "Hello"}
	}

	tests := []struct {
		name        string
		mutate      func(*EmailMessage)
		errContains string
	}{
		{name: "valid", mutate: func(*EmailMessage) {}},
		{name: "no recipients", mutate: func(m *EmailMessage) { m.To = nil }, errContains: "at least one recipient"},
		{name: "no subject", mutate: func(m *EmailMessage) { m.Subject = "" }, errContains: "subject is required"},
		{name: "no body", mutate: func(m *EmailMessage) { m.Body = "" }, errContains: "body is required"},
		{name: "header injection in recipient", mutate: func(m *EmailMessage) { m.Cc = []string{"a@example.com\r\nBcc: evil@example.com"} }, errContains: "invalid recipient"},
		{name: "header injection in subject", mutate: func(m *EmailMessage) { m.Subject = "Hi\nBcc: evil@example.com" }, errContains: "line breaks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := valid()
			tt.mutate(msg)
			err := validateEmail(msg)
			if tt.errContains == "" {
				if err != nil {
					t.Errorf("validateEmail() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("validateEmail() error = %v, should contain %q", err, tt.errContains)
			}
		})
	}
}

func decodeRaw(t *testing.T, raw string) string {
	t.Helper()
	data, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		t.Fatalf("raw message is not base64url: %v", err)
	}
	return string(data)
}

func TestBuildRawMessage(t *testing.T) {
	raw := decodeRaw(t, buildRawMessage(&EmailMessage{
		To:      []string{"bob@example.com", "carol@example.com"},
		Cc:      []string{"dave@example.com"},
		Subject: "Größe",
		Body:    "Hello",
	}, "Jane"))

	headers, body, ok := strings.Cut(raw, "\r\n\r\n")
	if !ok {
		t.Fatalf("no header/body separator in %q", raw)
	}
	for _, want := range []string{
		"To: bob@example.com, carol@example.com\r\n",
		"Cc: dave@example.com\r\n",
		"Subject: =?UTF-8?",
		`Content-Type: text/plain; charset="UTF-8"`,
		"MIME-Version: 1.0",
	} {
		if !strings.Contains(headers, want) {
			t.Errorf("headers missing %q:\n%s", want, headers)
		}
	}
	if strings.Contains(headers, "Bcc:") || strings.Contains(headers, "In-Reply-To:") {
		t.Errorf("unexpected headers:\n%s", headers)
	}
	if body != "Hello\n\n-- \nJane" {
		t.Errorf("body = %q", body)
	}
}

func TestBuildRawMessage_Reply(t *testing.T) {
	tests := []struct {
		name           string
		subject        string
		references     string
		wantSubject    string
		wantReferences string
	}{
		{
			name:           "first reply",
			subject:        "Lunch",
			wantSubject:    "Subject: Re: Lunch\r\n",
			wantReferences: "References: <m1@example.com>\r\n",
		},
		{
			name:           "existing chain",
			subject:        "RE: Lunch",
			references:     "<m0@example.com>",
			wantSubject:    "Subject: RE: Lunch\r\n",
			wantReferences: "References: <m0@example.com> <m1@example.com>\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := decodeRaw(t, buildRawMessage(&EmailMessage{
				To:         []string{"alice@example.com"},
				Subject:    tt.subject,
				Body:       "Sure",
				IsHTML:     true,
				InReplyTo:  "<m1@example.com>",
				References: tt.references,
			}, ""))

			for _, want := range []string{
				tt.wantSubject,
				"In-Reply-To: <m1@example.com>\r\n",
				tt.wantReferences,
				`Content-Type: text/html; charset="UTF-8"`,
			} {
				if !strings.Contains(raw, want) {
					t.Errorf("message missing %q:\n%s", want, raw)
				}
			}
		})
	}
}
