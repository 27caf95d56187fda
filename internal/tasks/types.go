package tasks

import (
	"time"

	tasks "google.golang.org/api/tasks/v1"
)

// Task status values used by the Tasks API.
const (
	StatusNeedsAction = "needsAction"
	StatusCompleted   = "completed"
)

type TaskList struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Updated time.Time `json:"updated,omitzero"`
}

// Task is a single to-do item. Subtasks carry the ID of their parent;
// Position orders siblings lexicographically.
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Notes     string    `json:"notes,omitempty"`
	Status    string    `json:"status"`
	Due       time.Time `json:"due,omitzero"`
	Completed time.Time `json:"completed,omitzero"`
	Updated   time.Time `json:"updated,omitzero"`
	Parent    string    `json:"parent,omitempty"`
	Position  string    `json:"position,omitempty"`
	Links     []Link    `json:"links,omitempty"`
}

func (t *Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// Link points at the resource a task was created from, e.g. an email.
type Link struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link"`
}

// TaskInput describes a new task. Parent makes it a subtask and Previous
// places it after the given sibling.
type TaskInput struct {
	Title    string
	Notes    string
	Due      time.Time
	Parent   string
	Previous string
}

// TaskPatch changes selected fields of a task. Nil fields are left alone;
// a non-nil zero Due removes the due date. Status is empty, StatusCompleted
// or StatusNeedsAction.
type TaskPatch struct {
	Title  *string
	Notes  *string
	Due    *time.Time
	Status string
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Notes == nil && p.Due == nil && p.Status == ""
}

// ListOptions filters ListTasks. Completed and hidden tasks are skipped
// unless ShowCompleted is set.
type ListOptions struct {
	ShowCompleted bool
	DueMin        time.Time
	DueMax        time.Time
	MaxResults    int64
}

func toTaskList(tl *tasks.TaskList) TaskList {
	if tl == nil {
		return TaskList{}
	}
	return TaskList{ID: tl.Id, Title: tl.Title, Updated: parseTime(tl.Updated)}
}

func toTask(t *tasks.Task) Task {
	if t == nil {
		return Task{}
	}

	task := Task{
		ID:       t.Id,
		Title:    t.Title,
		Notes:    t.Notes,
		Status:   t.Status,
		Due:      parseTime(t.Due),
		Updated:  parseTime(t.Updated),
		Parent:   t.Parent,
		Position: t.Position,
	}
	if t.Completed != nil {
		task.Completed = parseTime(*t.Completed)
	}
	if t.Links != nil {
		task.Links = make([]Link, 0, len(t.Links))
		for _, l := range t.Links {
			task.Links = append(task.Links, Link{Type: l.Type, Description: l.Description, Link: l.Link})
		}
	}
	return task
}

// parseTime yields the zero time for empty or malformed RFC 3339 values.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
