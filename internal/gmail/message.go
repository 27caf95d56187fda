package gmail

import (
	"encoding/base64"
	"fmt"
	"html"
	"regexp"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

const (
	mimeTextPlain = "text/plain"
	mimeTextHTML  = "text/html"
)

var (
	htmlBlockEnd  = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|li|tr|h[1-6])>`)
	htmlDropped   = regexp.MustCompile(`(?is)<(script|style|head)[^>]*>.*?</(script|style|head)>`)
	htmlTag       = regexp.MustCompile(`<[^>]*>`)
	multipleBlank = regexp.MustCompile(`\n{3,}`)
)

// HeaderValue extracts a header value from a Gmail message. Header names
// are matched case-insensitively.
func HeaderValue(m *gmail.Message, header string) string {
	if m == nil || m.Payload == nil {
		return ""
	}
	for _, mph := range m.Payload.Headers {
		if strings.EqualFold(mph.Name, header) {
			return mph.Value
		}
	}
	return ""
}

// walkParts visits part and all of its nested parts depth-first.
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}
	fn(part)
	for _, subpart := range part.Parts {
		walkParts(subpart, fn)
	}
}

// findBody returns the encoded data of the first non-attachment part with mimeType.
func findBody(payload *gmail.MessagePart, mimeType string) string {
	var data string
	walkParts(payload, func(part *gmail.MessagePart) {
		if data != "" || part.Filename != "" || part.Body == nil {
			return
		}
		if part.MimeType == mimeType && part.Body.Data != "" {
			data = part.Body.Data
		}
	})
	return data
}

// extractBody returns the decoded body of msg. text/plain is preferred; an
// HTML-only message is reduced to text. The second value is the source format.
func extractBody(msg *gmail.Message) (string, string, error) {
	if msg == nil || msg.Payload == nil {
		return "", "", fmt.Errorf("message has no payload")
	}

	if data := findBody(msg.Payload, mimeTextPlain); data != "" {
		body, err := decodeBase64URL(data)
		return body, "text", err
	}
	if data := findBody(msg.Payload, mimeTextHTML); data != "" {
		body, err := decodeBase64URL(data)
		if err != nil {
			return "", "", err
		}
		return htmlToText(body), "html", nil
	}
	return "", "", fmt.Errorf("no text or html body found in message %s", msg.Id)
}

// decodeBase64URL decodes Gmail body data. Gmail uses base64url but padding varies.
func decodeBase64URL(data string) (string, error) {
	for _, enc := range []*base64.Encoding{base64.URLEncoding, base64.RawURLEncoding, base64.StdEncoding} {
		if decoded, err := enc.DecodeString(data); err == nil {
			return string(decoded), nil
		}
	}
	return "", fmt.Errorf("failed to decode message body")
}

func htmlToText(s string) string {
	s = htmlDropped.ReplaceAllString(s, "")
	s = htmlBlockEnd.ReplaceAllString(s, "\n")
	s = htmlTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	return strings.TrimSpace(multipleBlank.ReplaceAllString(s, "\n\n"))
}

// listAttachments collects the attachment parts of payload.
func listAttachments(payload *gmail.MessagePart) []AttachmentInfo {
	var attachments []AttachmentInfo
	walkParts(payload, func(part *gmail.MessagePart) {
		if part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "" {
			attachments = append(attachments, AttachmentInfo{
				PartID:       part.PartId,
				AttachmentID: part.Body.AttachmentId,
				Filename:     part.Filename,
				MimeType:     part.MimeType,
				Size:         part.Body.Size,
			})
		}
	})
	return attachments
}

func toMessageSummary(m *gmail.Message) MessageSummary {
	if m == nil {
		return MessageSummary{}
	}
	return MessageSummary{
		ID:       m.Id,
		ThreadID: m.ThreadId,
		From:     HeaderValue(m, "From"),
		To:       HeaderValue(m, "To"),
		Subject:  HeaderValue(m, "Subject"),
		Date:     HeaderValue(m, "Date"),
		Snippet:  html.UnescapeString(m.Snippet),
		LabelIDs: m.LabelIds,
		WebLink:  MessageURL(m.Id),
	}
}

func toLabel(l *gmail.Label) Label {
	if l == nil {
		return Label{}
	}
	return Label{
		ID:             l.Id,
		Name:           l.Name,
		Type:           l.Type,
		MessagesTotal:  l.MessagesTotal,
		MessagesUnread: l.MessagesUnread,
	}
}
