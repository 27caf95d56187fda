package gmail

import "fmt"

// MessageSummary is the header view of a message returned by searches.
type MessageSummary struct {
	ID       string   `json:"id"`
	ThreadID string   `json:"threadId"`
	From     string   `json:"from,omitempty"`
	To       string   `json:"to,omitempty"`
	Subject  string   `json:"subject,omitempty"`
	Date     string   `json:"date,omitempty"`
	Snippet  string   `json:"snippet,omitempty"`
	LabelIDs []string `json:"labelIds,omitempty"`
	WebLink  string   `json:"webLink"`
}

// MessageContent is a full message with its decoded body.
type MessageContent struct {
	MessageSummary
	Cc          string           `json:"cc,omitempty"`
	MessageID   string           `json:"messageIdHeader,omitempty"`
	Body        string           `json:"body"`
	BodyFormat  string           `json:"bodyFormat"`
	Attachments []AttachmentInfo `json:"attachments,omitempty"`
}

// AttachmentInfo describes an attachment part of a message.
type AttachmentInfo struct {
	PartID       string `json:"partId"`
	AttachmentID string `json:"attachmentId"`
	Filename     string `json:"filename"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
}

// Label is a Gmail system or user label.
type Label struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	MessagesTotal  int64  `json:"messagesTotal,omitempty"`
	MessagesUnread int64  `json:"messagesUnread,omitempty"`
}

// EmailMessage represents an email to be sent
type EmailMessage struct {
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	Body    string
	IsHTML  bool

	// ThreadID, InReplyTo and References make the message a reply.
	ThreadID   string
	InReplyTo  string
	References string
}

// SentMessage identifies a sent message.
type SentMessage struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
}

// LabelChange is the label state of a message after a modification.
type LabelChange struct {
	ID       string   `json:"id"`
	LabelIDs []string `json:"labelIds"`
}

// MessageURL returns the Gmail web link of a message.
func MessageURL(messageID string) string {
	return fmt.Sprintf("https://mail.google.com/mail/u/0/#all/%s", messageID)
}
