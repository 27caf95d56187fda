package docs

import (
	"fmt"
	"regexp"
	"strings"
)

// DocumentMimeType is the Drive MIME type of Google Docs.
const DocumentMimeType = "application/vnd.google-apps.document"

// Format selects how GetDocumentContent renders a document.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// DocumentMetadata represents metadata about a Google Drive file
type DocumentMetadata struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	CreatedTime  string `json:"createdTime,omitempty"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
	WebViewLink  string `json:"webViewLink,omitempty"`
	Owners       []User `json:"owners,omitempty"`
}

// User represents a Google Drive user
type User struct {
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

// DocumentInfo describes a created or edited document.
type DocumentInfo struct {
	ID         string `json:"documentId"`
	Title      string `json:"title,omitempty"`
	RevisionID string `json:"revisionId,omitempty"`
	URL        string `json:"url"`
}

// TextEdit describes a modify_doc_text change. With Find set every match is
// replaced by Text; otherwise Text is inserted at Index, or appended when
// Index is zero.
type TextEdit struct {
	Text      string
	Index     int64
	Find      string
	MatchCase bool
}

// EditResult reports what a TextEdit changed.
type EditResult struct {
	DocumentInfo
	Inserted     bool  `json:"inserted,omitempty"`
	Replacements int64 `json:"replacements,omitempty"`
}

// DocumentURL returns the edit URL of a document.
func DocumentURL(id string) string {
	return fmt.Sprintf("https://docs.google.com/document/d/%s/edit", id)
}

var documentURLPattern = regexp.MustCompile(`/document/(?:u/\d+/)?d/([a-zA-Z0-9_-]+)`)

// ExtractDocumentID accepts a document ID or a docs.google.com URL.
func ExtractDocumentID(value string) string {
	value = strings.TrimSpace(value)
	if m := documentURLPattern.FindStringSubmatch(value); m != nil {
		return m[1]
	}
	return value
}
