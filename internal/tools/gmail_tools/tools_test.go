package gmail_tools

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"testing"

	gmail "google.golang.org/api/gmail/v1"

	"github.com/teemow/workspace-mcp/internal/tools/tooltest"
)

func TestRegisterGmailTools(t *testing.T) {
	tests := []struct {
		name     string
		readOnly bool
		want     []string
	}{
		{
			name: "read-write",
			want: []string{"search_gmail_messages", "get_gmail_message_content", "send_gmail_message", "list_gmail_labels", "modify_gmail_message_labels"},
		},
		{
			name:     "read-only",
			readOnly: true,
			want:     []string{"search_gmail_messages", "get_gmail_message_content", "list_gmail_labels"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tooltest.NewRecorder()
			if err := RegisterGmailTools(rec, tooltest.NoAPI(t), tt.readOnly); err != nil {
				t.Fatalf("RegisterGmailTools() error = %v", err)
			}
			if got := rec.Names(); !slices.Equal(got, tt.want) {
				t.Errorf("registered %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegisterGmailTools_NilContext(t *testing.T) {
	if err := RegisterGmailTools(tooltest.NewRecorder(), nil, false); err == nil {
		t.Error("expected error for nil server context")
	}
}

func TestSearchGmailMessages_NoResults(t *testing.T) {
	sc := tooltest.NewAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		tooltest.JSON(w, `{"resultSizeEstimate":0}`)
	}))

	rec := tooltest.NewRecorder()
	if err := RegisterGmailTools(rec, sc, true); err != nil {
		t.Fatal(err)
	}

	text := tooltest.Text(rec.Call(t, "search_gmail_messages", map[string]any{"query": "from:nobody"}))
	if !strings.Contains(text, "No messages found") {
		t.Errorf("unexpected result %s", text)
	}
}

func TestSendGmailMessage(t *testing.T) {
	var sent gmail.Message
	sc := tooltest.NewAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gmail/v1/users/me/settings/sendAs":
			tooltest.JSON(w, `{"sendAs":[]}`)
		case "/gmail/v1/users/me/messages/send":
			if err := json.NewDecoder(r.Body).Decode(&sent); err != nil {
				t.Errorf("decode request: %v", err)
			}
			tooltest.JSON(w, `{"id":"sent-1","threadId":"t1"}`)
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
		}
	}))

	rec := tooltest.NewRecorder()
	if err := RegisterGmailTools(rec, sc, false); err != nil {
		t.Fatal(err)
	}

	text := tooltest.Text(rec.Call(t, "send_gmail_message", map[string]any{
		"to":          "bob@example.com, carol@example.com",
		"subject":     "Status",
		"body":        "<p>Done</p>",
		"body_format": "html",
	}))
	if !strings.Contains(text, "Message ID: sent-1") {
		t.Errorf("unexpected result %s", text)
	}

	raw, err := base64.URLEncoding.DecodeString(sent.Raw)
	if err != nil {
		t.Fatalf("decode raw: %v", err)
	}
	for _, want := range []string{"To: bob@example.com, carol@example.com", "text/html"} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("raw message missing %q:\n%s", want, raw)
		}
	}
}

func TestSendGmailMessage_Validation(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{name: "missing to", args: map[string]any{"subject": "s", "body": "b"}, want: "'to' field is required"},
		{name: "blank to", args: map[string]any{"to": " , ", "subject": "s", "body": "b"}, want: "'to' field is required"},
		{name: "missing subject", args: map[string]any{"to": "a@example.com", "body": "b"}, want: "'subject' field is required"},
		{name: "bad format", args: map[string]any{"to": "a@example.com", "subject": "s", "body": "b", "body_format": "rtf"}, want: "Invalid body_format"},
	}

	rec := tooltest.NewRecorder()
	if err := RegisterGmailTools(rec, tooltest.NoAPI(t), false); err != nil {
		t.Fatal(err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := rec.Call(t, "send_gmail_message", tt.args)
			if !result.IsError || !strings.Contains(tooltest.Text(result), tt.want) {
				t.Errorf("result = %s, want error containing %q", tooltest.Text(result), tt.want)
			}
		})
	}
}

func TestModifyGmailMessageLabels(t *testing.T) {
	sc := tooltest.NewAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req gmail.ModifyMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if !slices.Equal(req.RemoveLabelIds, []string{"INBOX", "UNREAD"}) {
			t.Errorf("RemoveLabelIds = %v", req.RemoveLabelIds)
		}
		tooltest.JSON(w, `{"id":"m1","labelIds":["IMPORTANT"]}`)
	}))

	rec := tooltest.NewRecorder()
	if err := RegisterGmailTools(rec, sc, false); err != nil {
		t.Fatal(err)
	}

	text := tooltest.Text(rec.Call(t, "modify_gmail_message_labels", map[string]any{
		"message_id":       "m1",
		"remove_label_ids": "INBOX,UNREAD",
	}))
	if !strings.Contains(text, "Labels updated:") || !strings.Contains(text, "IMPORTANT") {
		t.Errorf("unexpected result %s", text)
	}
}

func TestModifyGmailMessageLabels_AcceptsArrayIDs(t *testing.T) {
	var modified []string
	sc := tooltest.NewAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// .../messages/{id}/modify
		parts := strings.Split(r.URL.Path, "/")
		modified = append(modified, parts[len(parts)-2])
		tooltest.JSON(w, `{"id":"x","labelIds":[]}`)
	}))

	rec := tooltest.NewRecorder()
	if err := RegisterGmailTools(rec, sc, false); err != nil {
		t.Fatal(err)
	}

	schema, err := json.Marshal(rec.Tool(t, "modify_gmail_message_labels").InputSchema)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(schema), `"type":"array"`) {
		t.Errorf("message_id schema should allow arrays: %s", schema)
	}

	text := tooltest.Text(rec.Call(t, "modify_gmail_message_labels", map[string]any{
		"message_id":       []any{"m1", "m2"},
		"remove_label_ids": "INBOX",
	}))
	if !strings.Contains(text, "2 of 2") {
		t.Errorf("unexpected result %s", text)
	}
	if !slices.Equal(modified, []string{"m1", "m2"}) {
		t.Errorf("modified %v, want [m1 m2]", modified)
	}
}

func TestModifyGmailMessageLabels_NoLabels(t *testing.T) {
	rec := tooltest.NewRecorder()
	if err := RegisterGmailTools(rec, tooltest.NoAPI(t), false); err != nil {
		t.Fatal(err)
	}

	result := rec.Call(t, "modify_gmail_message_labels", map[string]any{"message_id": "m1"})
	if !result.IsError {
		t.Error("expected error result")
	}
}

func TestModifyGmailMessageLabels_Batch(t *testing.T) {
	sc := tooltest.NewAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/messages/missing/") {
			http.Error(w, `{"error":{"code":404,"message":"Requested entity was not found."}}`, http.StatusNotFound)
			return
		}
		tooltest.JSON(w, `{"id":"m1","labelIds":[]}`)
	}))

	rec := tooltest.NewRecorder()
	if err := RegisterGmailTools(rec, sc, false); err != nil {
		t.Fatal(err)
	}

	result := rec.Call(t, "modify_gmail_message_labels", map[string]any{
		"message_id":       []any{"m1", "missing"},
		"remove_label_ids": "INBOX",
	})
	text := tooltest.Text(result)
	if result.IsError {
		t.Fatalf("unexpected error result %s", text)
	}
	for _, want := range []string{"Updated labels on 1 of 2 messages:", `"failed": 1`, `"id": "missing"`} {
		if !strings.Contains(text, want) {
			t.Errorf("result missing %q: %s", want, text)
		}
	}
}
