package tasks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"
)

func TestToTask(t *testing.T) {
	completed := "2025-10-31T10:00:00Z"
	badCompleted := "yesterday"

	tests := []struct {
		name  string
		in    *tasks.Task
		check func(t *testing.T, got Task)
	}{
		{
			name:  "nil",
			in:    nil,
			check: func(t *testing.T, got Task) { assert.Equal(t, Task{}, got) },
		},
		{
			name: "all fields",
			in: &tasks.Task{
				Id: "t1", Title: "Review budget", Notes: "Q4 numbers", Status: StatusCompleted,
				Due: "2025-11-07T00:00:00Z", Completed: &completed, Updated: "2025-10-31T10:00:01Z",
				Parent: "p1", Position: "00000000000000000001",
				Links: []*tasks.TaskLinks{{Type: "email", Description: "Budget thread", Link: "https://mail.google.com/mail/#all/abc"}},
			},
			check: func(t *testing.T, got Task) {
				assert.Equal(t, "t1", got.ID)
				assert.Equal(t, "p1", got.Parent)
				assert.True(t, got.IsCompleted())
				assert.Equal(t, time.Date(2025, 11, 7, 0, 0, 0, 0, time.UTC), got.Due)
				assert.Equal(t, time.Date(2025, 10, 31, 10, 0, 0, 0, time.UTC), got.Completed)
				assert.False(t, got.Updated.IsZero())
				require.Len(t, got.Links, 1)
				assert.Equal(t, "Budget thread", got.Links[0].Description)
			},
		},
		{
			name: "malformed dates stay zero",
			in:   &tasks.Task{Id: "t2", Due: "next week", Completed: &badCompleted},
			check: func(t *testing.T, got Task) {
				assert.True(t, got.Due.IsZero())
				assert.True(t, got.Completed.IsZero())
				assert.False(t, got.IsCompleted())
			},
		},
		{
			name: "links absent or empty",
			in:   &tasks.Task{Id: "t3", Links: []*tasks.TaskLinks{}},
			check: func(t *testing.T, got Task) {
				assert.NotNil(t, got.Links)
				assert.Empty(t, got.Links)
				assert.Nil(t, toTask(&tasks.Task{Id: "t4"}).Links)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, toTask(tt.in))
		})
	}
}

func TestToTaskList(t *testing.T) {
	assert.Equal(t, TaskList{}, toTaskList(nil))

	got := toTaskList(&tasks.TaskList{Id: "l1", Title: "Errands", Updated: "2025-10-31T14:00:00Z"})
	assert.Equal(t, "Errands", got.Title)
	assert.Equal(t, time.Date(2025, 10, 31, 14, 0, 0, 0, time.UTC), got.Updated)

	assert.True(t, toTaskList(&tasks.TaskList{Id: "l2", Updated: "n/a"}).Updated.IsZero())
}

// fakeTasksAPI serves handler as the Tasks API and returns a client bound to it.
func fakeTasksAPI(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	c.now = func() time.Time { return time.Date(2025, 11, 2, 8, 30, 0, 0, time.UTC) }
	return c
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, body)
}

// patchBody decodes a PATCH request into a raw map so null fields stay visible.
func patchBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func TestClient_ListTaskLists(t *testing.T) {
	c := fakeTasksAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tasks/v1/users/@me/lists", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("maxResults"))
		writeJSON(w, `{"items":[{"id":"l1","title":"Inbox","updated":"2025-10-31T14:00:00Z"},{"id":"l2","title":"Work"}]}`)
	})

	lists, err := c.ListTaskLists(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.False(t, lists[0].Updated.IsZero())
	assert.Equal(t, "Work", lists[1].Title)
}

func TestClient_ListTasks(t *testing.T) {
	tests := []struct {
		name     string
		listID   string
		opts     ListOptions
		wantPath string
		wantQ    map[string]string
	}{
		{
			name:     "default list hides completed",
			wantPath: "/tasks/v1/lists/@default/tasks",
			wantQ:    map[string]string{"showCompleted": "false", "showHidden": "false"},
		},
		{
			name:     "due window",
			listID:   "l1",
			opts:     ListOptions{ShowCompleted: true, DueMin: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), MaxResults: 20},
			wantPath: "/tasks/v1/lists/l1/tasks",
			wantQ:    map[string]string{"showCompleted": "true", "showHidden": "", "dueMin": "2025-11-01T00:00:00Z", "maxResults": "20"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := fakeTasksAPI(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.wantPath, r.URL.Path)
				for k, v := range tt.wantQ {
					assert.Equal(t, v, r.URL.Query().Get(k), "query %s", k)
				}
				writeJSON(w, `{"items":[{"id":"t1","title":"Pay rent","status":"needsAction","due":"2025-11-03T00:00:00Z"}]}`)
			})

			got, err := c.ListTasks(context.Background(), tt.listID, tt.opts)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.False(t, got[0].Due.IsZero())
		})
	}
}

func TestClient_GetTask(t *testing.T) {
	c := fakeTasksAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/tasks/v1/lists/l1/tasks/t1", r.URL.Path)
		writeJSON(w, `{"id":"t1","title":"Book flights","status":"needsAction"}`)
	})

	got, err := c.GetTask(context.Background(), "l1", "t1")
	require.NoError(t, err)
	assert.Equal(t, "Book flights", got.Title)
}

func TestClient_CreateTask(t *testing.T) {
	c := fakeTasksAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "p1", r.URL.Query().Get("parent"))
		assert.Equal(t, "s1", r.URL.Query().Get("previous"))

		var body tasks.Task
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Write report", body.Title)
		assert.Equal(t, "2025-11-07T09:00:00Z", body.Due)
		writeJSON(w, `{"id":"new","title":"Write report","status":"needsAction","parent":"p1"}`)
	})

	got, err := c.CreateTask(context.Background(), "l1", TaskInput{
		Title:    "Write report",
		Due:      time.Date(2025, 11, 7, 9, 0, 0, 0, time.UTC),
		Parent:   "p1",
		Previous: "s1",
	})
	require.NoError(t, err)
	assert.Equal(t, "new", got.ID)
	assert.Equal(t, "p1", got.Parent)
}

func TestClient_UpdateTask(t *testing.T) {
	title := "Renamed"
	noDue := time.Time{}

	tests := []struct {
		name  string
		patch TaskPatch
		want  map[string]any
		unset []string
	}{
		{
			name:  "title and cleared due",
			patch: TaskPatch{Title: &title, Due: &noDue},
			want:  map[string]any{"title": "Renamed", "due": nil},
			unset: []string{"status", "notes"},
		},
		{
			name:  "complete",
			patch: TaskPatch{Status: StatusCompleted},
			want:  map[string]any{"status": "completed", "completed": "2025-11-02T08:30:00Z"},
			unset: []string{"title"},
		},
		{
			name:  "reopen",
			patch: TaskPatch{Status: StatusNeedsAction},
			want:  map[string]any{"status": "needsAction", "completed": nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := fakeTasksAPI(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPatch, r.Method)
				assert.Equal(t, "/tasks/v1/lists/@default/tasks/t1", r.URL.Path)
				body := patchBody(t, r)
				for k, v := range tt.want {
					got, ok := body[k]
					assert.True(t, ok, "field %s not sent", k)
					assert.Equal(t, v, got, "field %s", k)
				}
				for _, k := range tt.unset {
					assert.NotContains(t, body, k)
				}
				writeJSON(w, `{"id":"t1","title":"Renamed","status":"needsAction"}`)
			})

			got, err := c.UpdateTask(context.Background(), "", "t1", tt.patch)
			require.NoError(t, err)
			assert.Equal(t, "t1", got.ID)
		})
	}
}

func TestClient_UpdateTask_Invalid(t *testing.T) {
	c := fakeTasksAPI(t, func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.UpdateTask(context.Background(), "", "t1", TaskPatch{})
	assert.ErrorIs(t, err, ErrEmptyPatch)

	_, err = c.UpdateTask(context.Background(), "", "t1", TaskPatch{Status: "done"})
	assert.ErrorContains(t, err, `invalid task status "done"`)
}

func TestClient_CompleteTask(t *testing.T) {
	c := fakeTasksAPI(t, func(w http.ResponseWriter, r *http.Request) {
		body := patchBody(t, r)
		assert.Equal(t, "completed", body["status"])
		writeJSON(w, `{"id":"t1","status":"completed","completed":"2025-11-02T08:30:00Z"}`)
	})

	got, err := c.CompleteTask(context.Background(), "", "t1")
	require.NoError(t, err)
	assert.True(t, got.IsCompleted())
	assert.False(t, got.Completed.IsZero())
}

func TestClient_DeleteTask(t *testing.T) {
	c := fakeTasksAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/tasks/v1/lists/l1/tasks/t9", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.DeleteTask(context.Background(), "l1", "t9"))
}

func TestClient_APIError(t *testing.T) {
	c := fakeTasksAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":403,"message":"insufficient scopes"}}`)
	})

	_, err := c.ListTaskLists(context.Background(), 0)
	assert.ErrorContains(t, err, "failed to list task lists")

	err = c.DeleteTask(context.Background(), "", "t1")
	assert.ErrorContains(t, err, "failed to delete task t1")
}
