package chat

import (
	"strings"
	"time"

	chat "google.golang.org/api/chat/v1"
)

// Space is a Chat space, group chat or direct message.
type Space struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Type        string `json:"type"`
	Threaded    bool   `json:"threaded,omitempty"`
}

// Message is a Chat message.
type Message struct {
	Name       string    `json:"name"`
	Space      string    `json:"space,omitempty"`
	Text       string    `json:"text"`
	Sender     string    `json:"sender,omitempty"`
	SenderName string    `json:"senderName,omitempty"`
	Thread     string    `json:"thread,omitempty"`
	CreateTime time.Time `json:"createTime,omitzero"`
}

// SpaceName normalizes a space id to its resource name.
func SpaceName(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || strings.HasPrefix(id, "spaces/") {
		return id
	}
	return "spaces/" + id
}

func toSpace(s *chat.Space) Space {
	if s == nil {
		return Space{}
	}
	spaceType := s.SpaceType
	if spaceType == "" {
		spaceType = s.Type
	}
	return Space{
		Name:        s.Name,
		DisplayName: s.DisplayName,
		Type:        spaceType,
		Threaded:    s.SpaceThreadingState == "THREADED_MESSAGES",
	}
}

func toMessage(m *chat.Message) Message {
	if m == nil {
		return Message{}
	}
	msg := Message{
		Name: m.Name,
		Text: m.Text,
	}
	if i := strings.Index(m.Name, "/messages/"); i > 0 {
		msg.Space = m.Name[:i]
	}
	if m.Sender != nil {
		msg.Sender = m.Sender.Name
		msg.SenderName = m.Sender.DisplayName
	}
	if m.Thread != nil {
		msg.Thread = m.Thread.Name
	}
	if t, err := time.Parse(time.RFC3339Nano, m.CreateTime); err == nil {
		msg.CreateTime = t
	}
	return msg
}
