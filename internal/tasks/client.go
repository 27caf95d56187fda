package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"
)

// DefaultTaskList is the alias of the user's default task list.
const DefaultTaskList = "@default"

// ErrEmptyPatch is returned by UpdateTask when the patch changes nothing.
var ErrEmptyPatch = errors.New("no task fields to update")

// Client wraps the Google Tasks v1 service.
type Client struct {
	svc *tasks.Service

	// now is replaced in tests
	now func() time.Time
}

// NewClient creates a Tasks client. opts must carry authentication,
// usually option.WithHTTPClient with an OAuth2 client.
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Tasks service: %w", err)
	}
	return &Client{svc: svc, now: time.Now}, nil
}

func (c *Client) ListTaskLists(ctx context.Context, maxResults int64) ([]TaskList, error) {
	call := c.svc.Tasklists.List().Context(ctx)
	if maxResults > 0 {
		call = call.MaxResults(maxResults)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list task lists: %w", err)
	}

	lists := make([]TaskList, 0, len(resp.Items))
	for _, tl := range resp.Items {
		lists = append(lists, toTaskList(tl))
	}
	return lists, nil
}

// ListTasks returns the tasks of a list. An empty listID means the default list.
func (c *Client) ListTasks(ctx context.Context, listID string, opts ListOptions) ([]Task, error) {
	call := c.svc.Tasks.List(listOrDefault(listID)).Context(ctx).ShowCompleted(opts.ShowCompleted)
	if !opts.ShowCompleted {
		call = call.ShowHidden(false)
	}
	if !opts.DueMin.IsZero() {
		call = call.DueMin(opts.DueMin.Format(time.RFC3339))
	}
	if !opts.DueMax.IsZero() {
		call = call.DueMax(opts.DueMax.Format(time.RFC3339))
	}
	if opts.MaxResults > 0 {
		call = call.MaxResults(opts.MaxResults)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	items := make([]Task, 0, len(resp.Items))
	for _, t := range resp.Items {
		items = append(items, toTask(t))
	}
	return items, nil
}

func (c *Client) GetTask(ctx context.Context, listID, taskID string) (*Task, error) {
	t, err := c.svc.Tasks.Get(listOrDefault(listID), taskID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get task %s: %w", taskID, err)
	}
	task := toTask(t)
	return &task, nil
}

func (c *Client) CreateTask(ctx context.Context, listID string, input TaskInput) (*Task, error) {
	body := &tasks.Task{Title: input.Title, Notes: input.Notes}
	if !input.Due.IsZero() {
		body.Due = input.Due.Format(time.RFC3339)
	}

	call := c.svc.Tasks.Insert(listOrDefault(listID), body).Context(ctx)
	if input.Parent != "" {
		call = call.Parent(input.Parent)
	}
	if input.Previous != "" {
		call = call.Previous(input.Previous)
	}

	t, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	task := toTask(t)
	return &task, nil
}

// UpdateTask applies patch to a task. Reopening a completed task clears its
// completion time.
func (c *Client) UpdateTask(ctx context.Context, listID, taskID string, patch TaskPatch) (*Task, error) {
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}

	body := &tasks.Task{}
	if patch.Title != nil {
		body.Title = *patch.Title
		body.ForceSendFields = append(body.ForceSendFields, "Title")
	}
	if patch.Notes != nil {
		body.Notes = *patch.Notes
		body.ForceSendFields = append(body.ForceSendFields, "Notes")
	}
	if patch.Due != nil {
		if patch.Due.IsZero() {
			body.NullFields = append(body.NullFields, "Due")
		} else {
			body.Due = patch.Due.Format(time.RFC3339)
		}
	}

	switch patch.Status {
	case "":
	case StatusCompleted:
		completed := c.now().UTC().Format(time.RFC3339)
		body.Status = StatusCompleted
		body.Completed = &completed
	case StatusNeedsAction:
		body.Status = StatusNeedsAction
		body.NullFields = append(body.NullFields, "Completed")
	default:
		return nil, fmt.Errorf("invalid task status %q, must be %s or %s", patch.Status, StatusNeedsAction, StatusCompleted)
	}

	t, err := c.svc.Tasks.Patch(listOrDefault(listID), taskID, body).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update task %s: %w", taskID, err)
	}
	task := toTask(t)
	return &task, nil
}

// CompleteTask marks a task as completed now.
func (c *Client) CompleteTask(ctx context.Context, listID, taskID string) (*Task, error) {
	return c.UpdateTask(ctx, listID, taskID, TaskPatch{Status: StatusCompleted})
}

func (c *Client) DeleteTask(ctx context.Context, listID, taskID string) error {
	if err := c.svc.Tasks.Delete(listOrDefault(listID), taskID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete task %s: %w", taskID, err)
	}
	return nil
}

func listOrDefault(id string) string {
	if id == "" {
		return DefaultTaskList
	}
	return id
}
