package tasks_tools

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"testing"

	"github.com/teemow/workspace-mcp/internal/tools/tooltest"
)

func TestRegisterTasksTools(t *testing.T) {
	tests := []struct {
		name     string
		readOnly bool
		want     []string
	}{
		{
			name: "read-write",
			want: []string{"list_task_lists", "list_tasks", "get_task", "create_task", "complete_task", "update_task", "delete_task"},
		},
		{
			name:     "read-only",
			readOnly: true,
			want:     []string{"list_task_lists", "list_tasks", "get_task"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tooltest.NewRecorder()
			if err := RegisterTasksTools(rec, tooltest.NoAPI(t), tt.readOnly); err != nil {
				t.Fatalf("RegisterTasksTools() error = %v", err)
			}
			if got := rec.Names(); !slices.Equal(got, tt.want) {
				t.Errorf("registered %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegisterTasksTools_NilContext(t *testing.T) {
	if err := RegisterTasksTools(tooltest.NewRecorder(), nil, false); err == nil {
		t.Error("expected error for nil server context")
	}
}

func TestListTasks(t *testing.T) {
	sc := tooltest.NewAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tasks/v1/lists/work/tasks" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("dueMax"); got != "2025-11-30T00:00:00Z" {
			t.Errorf("dueMax = %q", got)
		}
		tooltest.JSON(w, `{"items":[{"id":"t1","title":"Pay rent","status":"needsAction"}]}`)
	}))

	rec := tooltest.NewRecorder()
	if err := RegisterTasksTools(rec, sc, false); err != nil {
		t.Fatal(err)
	}

	result := rec.Call(t, "list_tasks", map[string]any{
		"task_list_id": "work",
		"due_max":      "2025-11-30",
	})
	if result.IsError {
		t.Fatalf("unexpected error: %s", tooltest.Text(result))
	}
	if !strings.Contains(tooltest.Text(result), `"title": "Pay rent"`) {
		t.Errorf("unexpected result %s", tooltest.Text(result))
	}
}

func TestListTasks_InvalidDue(t *testing.T) {
	rec := tooltest.NewRecorder()
	if err := RegisterTasksTools(rec, tooltest.NoAPI(t), true); err != nil {
		t.Fatal(err)
	}

	result := rec.Call(t, "list_tasks", map[string]any{"due_min": "soon"})
	if !result.IsError {
		t.Error("expected error result for invalid due_min")
	}
}

func TestCreateTask(t *testing.T) {
	sc := tooltest.NewAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/tasks/v1/lists/@default/tasks" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		tooltest.JSON(w, `{"id":"new","title":"Write report","status":"needsAction"}`)
	}))

	rec := tooltest.NewRecorder()
	if err := RegisterTasksTools(rec, sc, false); err != nil {
		t.Fatal(err)
	}

	result := rec.Call(t, "create_task", map[string]any{"title": "Write report"})
	if result.IsError {
		t.Fatalf("unexpected error: %s", tooltest.Text(result))
	}
	if !strings.HasPrefix(tooltest.Text(result), "Task created successfully:") {
		t.Errorf("unexpected result %s", tooltest.Text(result))
	}
}

func TestCreateTask_MissingTitle(t *testing.T) {
	rec := tooltest.NewRecorder()
	if err := RegisterTasksTools(rec, tooltest.NoAPI(t), false); err != nil {
		t.Fatal(err)
	}

	result := rec.Call(t, "create_task", map[string]any{})
	if !result.IsError || !strings.Contains(tooltest.Text(result), "title is required") {
		t.Errorf("unexpected result %s", tooltest.Text(result))
	}
}

func TestCompleteTask_APIError(t *testing.T) {
	sc := tooltest.NewAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Task not found"}}`))
	}))

	rec := tooltest.NewRecorder()
	if err := RegisterTasksTools(rec, sc, false); err != nil {
		t.Fatal(err)
	}

	result := rec.Call(t, "complete_task", map[string]any{"task_id": "missing"})
	if !result.IsError {
		t.Fatal("expected error result")
	}
	if !strings.HasPrefix(tooltest.Text(result), "Failed to complete task:") {
		t.Errorf("unexpected message %s", tooltest.Text(result))
	}
}

func TestCompleteTask_Batch(t *testing.T) {
	sc := tooltest.NewAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		tooltest.JSON(w, `{"id":"`+id+`","title":"Task `+id+`","status":"completed"}`)
	}))

	rec := tooltest.NewRecorder()
	if err := RegisterTasksTools(rec, sc, false); err != nil {
		t.Fatal(err)
	}

	text := tooltest.Text(rec.Call(t, "complete_task", map[string]any{"task_id": "t1,t2"}))
	if !strings.Contains(text, "Completed 2 of 2 tasks:") || !strings.Contains(text, `"id": "t2"`) {
		t.Errorf("unexpected result %s", text)
	}
}

func TestUpdateTask(t *testing.T) {
	sc := tooltest.NewAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/tasks/v1/lists/@default/tasks/t1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["status"] != "needsAction" || body["notes"] != "" {
			t.Errorf("unexpected patch %v", body)
		}
		if _, ok := body["title"]; ok {
			t.Errorf("title sent although not given: %v", body)
		}
		tooltest.JSON(w, `{"id":"t1","title":"Pay rent","status":"needsAction"}`)
	}))

	rec := tooltest.NewRecorder()
	if err := RegisterTasksTools(rec, sc, false); err != nil {
		t.Fatal(err)
	}

	result := rec.Call(t, "update_task", map[string]any{"task_id": "t1", "status": "needsAction", "notes": ""})
	if result.IsError {
		t.Fatalf("unexpected error: %s", tooltest.Text(result))
	}
	if !strings.HasPrefix(tooltest.Text(result), "Task updated:") {
		t.Errorf("unexpected result %s", tooltest.Text(result))
	}
}

func TestUpdateTask_NothingToChange(t *testing.T) {
	rec := tooltest.NewRecorder()
	if err := RegisterTasksTools(rec, tooltest.NoAPI(t), false); err != nil {
		t.Fatal(err)
	}

	result := rec.Call(t, "update_task", map[string]any{"task_id": "t1"})
	if !result.IsError || !strings.Contains(tooltest.Text(result), "at least one of") {
		t.Errorf("unexpected result %s", tooltest.Text(result))
	}

	result = rec.Call(t, "update_task", map[string]any{"task_id": "t1", "due": "someday"})
	if !result.IsError {
		t.Error("expected error for invalid due date")
	}
}

func TestDeleteTask_Batch(t *testing.T) {
	sc := tooltest.NewAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		if strings.HasSuffix(r.URL.Path, "/gone") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Task not found"}}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := tooltest.NewRecorder()
	if err := RegisterTasksTools(rec, sc, false); err != nil {
		t.Fatal(err)
	}

	if text := tooltest.Text(rec.Call(t, "delete_task", map[string]any{"task_id": "t1"})); text != "Task t1 deleted" {
		t.Errorf("single delete = %q", text)
	}

	text := tooltest.Text(rec.Call(t, "delete_task", map[string]any{"task_id": []any{"t1", "gone"}}))
	if !strings.HasPrefix(text, "Deleted 1 of 2 tasks:") || !strings.Contains(text, "Task not found") {
		t.Errorf("unexpected result %s", text)
	}
}
