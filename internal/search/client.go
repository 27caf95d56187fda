package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	customsearch "google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

const (
	// DefaultNum is the number of results returned when none is requested.
	DefaultNum = 10
	// maxNum is the API's per-request limit.
	maxNum = 10
	// maxStart is the last start index the API accepts for num=10.
	maxStart = 91
)

// ErrNotConfigured is returned when the API key or engine id is missing.
var ErrNotConfigured = errors.New("custom search is not configured, set GOOGLE_PSE_API_KEY and GOOGLE_PSE_ENGINE_ID")

// Client wraps the Custom Search service for one engine.
type Client struct {
	svc      *customsearch.Service
	engineID string
}

// NewClient creates a client for engineID. opts must carry the API key.
func NewClient(ctx context.Context, engineID string, opts ...option.ClientOption) (*Client, error) {
	if engineID == "" {
		return nil, ErrNotConfigured
	}
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Custom Search service: %w", err)
	}
	return &Client{svc: svc, engineID: engineID}, nil
}

// Search runs query against the engine.
func (c *Client) Search(ctx context.Context, query string, opts Options) (*Results, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query is required")
	}

	num := opts.Num
	if num <= 0 {
		num = DefaultNum
	}
	num = min(num, maxNum)

	call := c.svc.Cse.List().Cx(c.engineID).Q(query).Num(num).Context(ctx)
	if opts.Start > 0 {
		call = call.Start(min(opts.Start, maxStart))
	}
	if opts.SafeSearch {
		call = call.Safe("active")
	}
	if opts.SiteSearch != "" {
		call = call.SiteSearch(opts.SiteSearch).SiteSearchFilter("i")
	}
	if opts.FileType != "" {
		call = call.FileType(opts.FileType)
	}
	if opts.DateRestrict != "" {
		call = call.DateRestrict(opts.DateRestrict)
	}
	if opts.Language != "" {
		call = call.Lr("lang_" + opts.Language)
	}

	res, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to search for %q: %w", query, err)
	}
	return toResults(query, res), nil
}

// EngineInfo returns the engine's title and facets. The API has no metadata
// endpoint, so they are read from the context of a one-result probe query.
func (c *Client) EngineInfo(ctx context.Context) (*EngineInfo, error) {
	res, err := c.svc.Cse.List().Cx(c.engineID).Q("test").Num(1).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to query search engine %s: %w", c.engineID, err)
	}
	return toEngineInfo(c.engineID, res), nil
}
