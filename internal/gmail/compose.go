package gmail

import (
	"encoding/base64"
	"fmt"
	"mime"
	"slices"
	"strings"
)

// encodeRFC2047 encodes a string for use in email headers according to RFC 2047.
// ASCII input is returned unchanged.
func encodeRFC2047(s string) string {
	for _, r := range s {
		if r > 127 {
			return mime.BEncoding.Encode("UTF-8", s)
		}
	}
	return s
}

// appendSignature adds signature to the email body
func appendSignature(body, signature string, isHTML bool) string {
	if signature == "" {
		return body
	}
	if isHTML {
		return body + "<br><br>-- <br>" + signature
	}
	return body + "\n\n-- \n" + signature
}

// replySubject adds "Re: " unless the subject already carries it.
func replySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}

func validateEmail(msg *EmailMessage) error {
	if msg == nil {
		return fmt.Errorf("message is required")
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	if msg.Subject == "" {
		return fmt.Errorf("subject is required")
	}
	if msg.Body == "" {
		return fmt.Errorf("body is required")
	}
	for _, addr := range slices.Concat(msg.To, msg.Cc, msg.Bcc) {
		if strings.ContainsAny(addr, "\r\n") {
			return fmt.Errorf("invalid recipient %q", addr)
		}
	}
	if strings.ContainsAny(msg.Subject+msg.InReplyTo+msg.References, "\r\n") {
		return fmt.Errorf("headers must not contain line breaks")
	}
	return nil
}

// buildRawMessage renders msg in RFC 2822 format, base64url encoded for the
// Gmail API.
func buildRawMessage(msg *EmailMessage, signature string) string {
	var b strings.Builder
	header := func(name, value string) {
		if value == "" {
			return
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\r\n")
	}

	header("To", strings.Join(msg.To, ", "))
	header("Cc", strings.Join(msg.Cc, ", "))
	header("Bcc", strings.Join(msg.Bcc, ", "))

	subject := msg.Subject
	if msg.InReplyTo != "" {
		subject = replySubject(subject)
	}
	header("Subject", encodeRFC2047(subject))

	if msg.InReplyTo != "" {
		header("In-Reply-To", msg.InReplyTo)
		references := msg.References
		if references == "" {
			references = msg.InReplyTo
		} else if !strings.Contains(references, msg.InReplyTo) {
			references += " " + msg.InReplyTo
		}
		header("References", references)
	}

	contentType := `text/plain; charset="UTF-8"`
	if msg.IsHTML {
		contentType = `text/html; charset="UTF-8"`
	}
	header("Content-Type", contentType)
	header("MIME-Version", "1.0")
	b.WriteString("\r\n")
	b.WriteString(appendSignature(msg.Body, signature, msg.IsHTML))

	return base64.URLEncoding.EncodeToString([]byte(b.String()))
}
