package forms_tools

import (
	"net/http"
	"slices"
	"strings"
	"testing"

	"github.com/teemow/workspace-mcp/internal/tools/tooltest"
)

func TestRegisterFormsTools(t *testing.T) {
	tests := []struct {
		name     string
		readOnly bool
		want     []string
	}{
		{name: "read-write", want: []string{"create_form", "get_form", "list_form_responses"}},
		{name: "read-only", readOnly: true, want: []string{"get_form", "list_form_responses"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tooltest.NewRecorder()
			if err := RegisterFormsTools(rec, tooltest.NoAPI(t), tt.readOnly); err != nil {
				t.Fatalf("RegisterFormsTools() error = %v", err)
			}
			if got := rec.Names(); !slices.Equal(got, tt.want) {
				t.Errorf("registered %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetForm(t *testing.T) {
	sc := tooltest.NewAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tooltest.JSON(w, `{"formId":"f1","info":{"title":"Feedback"},"items":[{"itemId":"i1","title":"Name","questionItem":{"question":{"questionId":"q1","textQuestion":{"paragraph":true}}}}]}`)
	}))

	rec := tooltest.NewRecorder()
	if err := RegisterFormsTools(rec, sc, true); err != nil {
		t.Fatal(err)
	}

	text := tooltest.Text(rec.Call(t, "get_form", map[string]any{"form_id": "f1"}))
	for _, want := range []string{`"title": "Feedback"`, `"type": "PARAGRAPH"`, `"editUrl": "https://docs.google.com/forms/d/f1/edit"`} {
		if !strings.Contains(text, want) {
			t.Errorf("result missing %s:\n%s", want, text)
		}
	}
}

func TestListFormResponses_None(t *testing.T) {
	sc := tooltest.NewAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/responses") {
			tooltest.JSON(w, `{}`)
			return
		}
		tooltest.JSON(w, `{"formId":"f1"}`)
	}))

	rec := tooltest.NewRecorder()
	if err := RegisterFormsTools(rec, sc, true); err != nil {
		t.Fatal(err)
	}

	text := tooltest.Text(rec.Call(t, "list_form_responses", map[string]any{"form_id": "f1"}))
	if text != "No responses for form f1" {
		t.Errorf("unexpected result %q", text)
	}
}

func TestCreateForm_MissingTitle(t *testing.T) {
	rec := tooltest.NewRecorder()
	if err := RegisterFormsTools(rec, tooltest.NoAPI(t), false); err != nil {
		t.Fatal(err)
	}

	if result := rec.Call(t, "create_form", map[string]any{}); !result.IsError {
		t.Error("expected error result")
	}
}
