package slides

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	slides "google.golang.org/api/slides/v1"
)

// Client wraps the Slides service
type Client struct {
	svc *slides.Service
}

// NewClient creates a Slides client. opts carry the caller's credentials.
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := slides.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Slides service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// CreatePresentation creates a presentation with a single blank slide.
func (c *Client) CreatePresentation(ctx context.Context, title string) (*Presentation, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errors.New("title is required")
	}
	p, err := c.svc.Presentations.Create(&slides.Presentation{Title: title}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create presentation: %w", err)
	}
	return toPresentation(p), nil
}

// GetPresentation returns a presentation with the text of each slide.
func (c *Client) GetPresentation(ctx context.Context, presentationID string) (*Presentation, error) {
	p, err := c.svc.Presentations.Get(presentationID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get presentation %s: %w", presentationID, err)
	}
	return toPresentation(p), nil
}

// GetPage returns one page of a presentation.
func (c *Client) GetPage(ctx context.Context, presentationID, pageID string) (*Page, error) {
	p, err := c.svc.Presentations.Pages.Get(presentationID, pageID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get page %s of presentation %s: %w", pageID, presentationID, err)
	}
	return toPage(p), nil
}
