package forms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	forms "google.golang.org/api/forms/v1"
	"google.golang.org/api/option"
)

// DefaultPageSize is used when listing responses without a page size.
const DefaultPageSize = 50

// Client wraps the Forms service
type Client struct {
	svc *forms.Service
}

// NewClient creates a Forms client. opts carry the caller's credentials.
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := forms.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Forms service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// CreateForm creates an empty form. The Forms API accepts only titles on
// creation, so a description is applied with a follow-up update.
func (c *Client) CreateForm(ctx context.Context, title, description, documentTitle string) (*Form, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errors.New("title is required")
	}

	created, err := c.svc.Forms.Create(&forms.Form{
		Info: &forms.Info{Title: title, DocumentTitle: documentTitle},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create form: %w", err)
	}

	if description != "" {
		_, err := c.svc.Forms.BatchUpdate(created.FormId, &forms.BatchUpdateFormRequest{
			Requests: []*forms.Request{{
				UpdateFormInfo: &forms.UpdateFormInfoRequest{
					Info:       &forms.Info{Description: description},
					UpdateMask: "description",
				},
			}},
		}).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("form %s created but setting the description failed: %w", created.FormId, err)
		}
		if created.Info == nil {
			created.Info = &forms.Info{}
		}
		created.Info.Description = description
	}
	return toForm(created), nil
}

// GetForm returns a form with its questions.
func (c *Client) GetForm(ctx context.Context, formID string) (*Form, error) {
	if formID == "" {
		return nil, errors.New("form id is required")
	}
	f, err := c.svc.Forms.Get(formID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get form %s: %w", formID, err)
	}
	return toForm(f), nil
}

// ListResponses returns one page of responses with answers labeled by question title.
func (c *Client) ListResponses(ctx context.Context, formID string, pageSize int64, pageToken string) (*ResponsePage, error) {
	form, err := c.GetForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	call := c.svc.Forms.Responses.List(formID).PageSize(min(pageSize, 5000)).Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	res, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list responses of form %s: %w", formID, err)
	}

	titles := form.QuestionTitles()
	page := &ResponsePage{Responses: []Response{}, NextPageToken: res.NextPageToken}
	for _, r := range res.Responses {
		page.Responses = append(page.Responses, toResponse(r, titles))
	}
	return page, nil
}
