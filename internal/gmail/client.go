package gmail

import (
	"context"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const (
	me = "me"

	// DefaultPageSize is the number of messages a search returns by default.
	DefaultPageSize = 10
	maxPageSize     = 100
)

var summaryHeaders = []string{"From", "To", "Subject", "Date"}

// Client wraps the Gmail Users service
type Client struct {
	svc *gmail.UsersService
}

// NewClient creates a Gmail client. opts carry the caller's credentials.
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return &Client{svc: svc.Users}, nil
}

// SearchMessages returns the messages matching a Gmail search query, newest first.
// Each result is fetched with its summary headers.
func (c *Client) SearchMessages(ctx context.Context, query string, pageSize int64) ([]MessageSummary, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pageSize = min(pageSize, maxPageSize)

	res, err := c.svc.Messages.List(me).Q(query).MaxResults(pageSize).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}

	summaries := make([]MessageSummary, 0, len(res.Messages))
	for _, m := range res.Messages {
		msg, err := c.svc.Messages.Get(me, m.Id).
			Format("metadata").
			MetadataHeaders(summaryHeaders...).
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get message %s: %w", m.Id, err)
		}
		summaries = append(summaries, toMessageSummary(msg))
	}
	return summaries, nil
}

// GetMessage retrieves a full Gmail message
func (c *Client) GetMessage(ctx context.Context, messageID string) (*gmail.Message, error) {
	if messageID == "" {
		return nil, fmt.Errorf("messageID is required")
	}
	msg, err := c.svc.Messages.Get(me, messageID).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}
	return msg, nil
}

// GetMessageContent returns a message with its decoded body and attachment list.
func (c *Client) GetMessageContent(ctx context.Context, messageID string) (*MessageContent, error) {
	msg, err := c.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}

	content := &MessageContent{
		MessageSummary: toMessageSummary(msg),
		Cc:             HeaderValue(msg, "Cc"),
		MessageID:      HeaderValue(msg, "Message-ID"),
		Attachments:    listAttachments(msg.Payload),
	}

	body, format, err := extractBody(msg)
	if err != nil {
		// Messages consisting only of attachments have no body.
		content.Body = msg.Snippet
		content.BodyFormat = "snippet"
		return content, nil
	}
	content.Body = body
	content.BodyFormat = format
	return content, nil
}

// Signature returns the signature of the primary send-as address. Failures
// yield an empty signature so sending is never blocked by it.
func (c *Client) Signature(ctx context.Context) string {
	sendAs, err := c.svc.Settings.SendAs.List(me).Context(ctx).Do()
	if err != nil {
		return ""
	}
	for _, sa := range sendAs.SendAs {
		if sa.IsPrimary {
			return sa.Signature
		}
	}
	return ""
}

// SendEmail sends msg. When msg.ThreadID is set the message is added to that thread.
func (c *Client) SendEmail(ctx context.Context, msg *EmailMessage) (*SentMessage, error) {
	if err := validateEmail(msg); err != nil {
		return nil, err
	}

	gmailMsg := &gmail.Message{
		Raw:      buildRawMessage(msg, c.Signature(ctx)),
		ThreadId: msg.ThreadID,
	}
	sent, err := c.svc.Messages.Send(me, gmailMsg).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to send email: %w", err)
	}
	return &SentMessage{ID: sent.Id, ThreadID: sent.ThreadId}, nil
}

// ListLabels returns all labels of the mailbox.
func (c *Client) ListLabels(ctx context.Context) ([]Label, error) {
	res, err := c.svc.Labels.List(me).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	labels := make([]Label, 0, len(res.Labels))
	for _, l := range res.Labels {
		labels = append(labels, toLabel(l))
	}
	return labels, nil
}

// ModifyLabels adds and removes labels on a message. Archiving is removing INBOX.
func (c *Client) ModifyLabels(ctx context.Context, messageID string, add, remove []string) (*LabelChange, error) {
	if messageID == "" {
		return nil, fmt.Errorf("messageID is required")
	}
	if len(add) == 0 && len(remove) == 0 {
		return nil, fmt.Errorf("at least one label to add or remove is required")
	}

	msg, err := c.svc.Messages.Modify(me, messageID, &gmail.ModifyMessageRequest{
		AddLabelIds:    add,
		RemoveLabelIds: remove,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to modify labels of message %s: %w", messageID, err)
	}
	return &LabelChange{ID: msg.Id, LabelIDs: msg.LabelIds}, nil
}
