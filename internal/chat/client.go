package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	chat "google.golang.org/api/chat/v1"
	"google.golang.org/api/option"
)

const (
	// DefaultPageSize is used when no page size is given.
	DefaultPageSize = 50
	maxPageSize     = 1000

	// maxSearchSpaces bounds the spaces scanned by a search across all spaces.
	maxSearchSpaces = 20
)

// Space types accepted by ListSpaces.
const (
	SpaceTypeAll    = "all"
	SpaceTypeSpace  = "SPACE"
	SpaceTypeGroup  = "GROUP_CHAT"
	SpaceTypeDirect = "DIRECT_MESSAGE"
)

// Client wraps the Chat service
type Client struct {
	svc *chat.Service
}

// NewClient creates a Chat client. opts carry the caller's credentials.
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := chat.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Chat service: %w", err)
	}
	return &Client{svc: svc}, nil
}

func pageSizeOrDefault(n int64) int64 {
	if n <= 0 {
		return DefaultPageSize
	}
	return min(n, maxPageSize)
}

// ListSpaces returns the spaces the user is a member of. spaceType is one of
// the SpaceType constants; SpaceTypeAll or "" applies no filter.
func (c *Client) ListSpaces(ctx context.Context, spaceType string, pageSize int64) ([]Space, error) {
	call := c.svc.Spaces.List().PageSize(pageSizeOrDefault(pageSize)).Context(ctx)
	switch spaceType {
	case "", SpaceTypeAll:
	case SpaceTypeSpace, SpaceTypeGroup, SpaceTypeDirect:
		call = call.Filter(fmt.Sprintf("spaceType = %q", spaceType))
	default:
		return nil, fmt.Errorf("invalid space type %q", spaceType)
	}

	res, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list spaces: %w", err)
	}
	spaces := make([]Space, 0, len(res.Spaces))
	for _, s := range res.Spaces {
		spaces = append(spaces, toSpace(s))
	}
	return spaces, nil
}

// ListMessages returns the newest messages of a space.
func (c *Client) ListMessages(ctx context.Context, spaceID string, pageSize int64) ([]Message, error) {
	space := SpaceName(spaceID)
	if space == "" {
		return nil, errors.New("space is required")
	}

	res, err := c.svc.Spaces.Messages.List(space).
		PageSize(pageSizeOrDefault(pageSize)).
		OrderBy("createTime desc").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages of %s: %w", space, err)
	}
	messages := make([]Message, 0, len(res.Messages))
	for _, m := range res.Messages {
		messages = append(messages, toMessage(m))
	}
	return messages, nil
}

// SendMessage posts text to a space. A thread name replies in that thread,
// falling back to a new thread if it no longer exists.
func (c *Client) SendMessage(ctx context.Context, spaceID, text, thread string) (*Message, error) {
	space := SpaceName(spaceID)
	if space == "" {
		return nil, errors.New("space is required")
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("message text is required")
	}

	msg := &chat.Message{Text: text}
	call := c.svc.Spaces.Messages.Create(space, msg).Context(ctx)
	if thread != "" {
		msg.Thread = &chat.Thread{Name: thread}
		call = call.MessageReplyOption("REPLY_MESSAGE_FALLBACK_TO_NEW_THREAD")
	}

	sent, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to send message to %s: %w", space, err)
	}
	out := toMessage(sent)
	return &out, nil
}

// SearchMessages returns messages whose text contains query, ignoring case.
// Without a space the newest messages of the user's first spaces are searched.
func (c *Client) SearchMessages(ctx context.Context, query, spaceID string, pageSize int64) ([]Message, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query is required")
	}

	spaces := []string{SpaceName(spaceID)}
	if spaceID == "" {
		all, err := c.ListSpaces(ctx, SpaceTypeAll, maxSearchSpaces)
		if err != nil {
			return nil, err
		}
		spaces = spaces[:0]
		for _, s := range all {
			spaces = append(spaces, s.Name)
		}
	}

	limit := pageSizeOrDefault(pageSize)
	needle := strings.ToLower(query)
	var matches []Message
	for _, space := range spaces {
		messages, err := c.ListMessages(ctx, space, maxPageSize)
		if err != nil {
			if spaceID != "" {
				return nil, err
			}
			// Spaces the user cannot read are skipped.
			continue
		}
		for _, m := range messages {
			if strings.Contains(strings.ToLower(m.Text), needle) {
				matches = append(matches, m)
				if int64(len(matches)) >= limit {
					return matches, nil
				}
			}
		}
	}
	return matches, nil
}
