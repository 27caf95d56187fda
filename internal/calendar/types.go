package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// Values for the sendUpdates parameter of event writes.
const (
	SendUpdatesAll      = "all"
	SendUpdatesExternal = "externalOnly"
	SendUpdatesNone     = "none"
)

// Calendar is an entry of the user's calendar list. AccessRole is one of
// owner, writer, reader or freeBusyReader.
type Calendar struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	TimeZone    string `json:"timeZone,omitempty"`
	Primary     bool   `json:"primary,omitempty"`
	AccessRole  string `json:"accessRole,omitempty"`
}

// Event is a single calendar event. For all-day events Start and End are
// midnight UTC of the first day and of the day after the last.
type Event struct {
	ID          string     `json:"id"`
	Summary     string     `json:"summary"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	Start       time.Time  `json:"start"`
	End         time.Time  `json:"end"`
	AllDay      bool       `json:"allDay,omitempty"`
	Status      string     `json:"status,omitempty"`
	Creator     string     `json:"creator,omitempty"`
	Organizer   string     `json:"organizer,omitempty"`
	Attendees   []Attendee `json:"attendees,omitempty"`
	Recurrence  []string   `json:"recurrence,omitempty"`
	MeetLink    string     `json:"meetLink,omitempty"`
	HTMLLink    string     `json:"htmlLink,omitempty"`
	EventType   string     `json:"eventType,omitempty"`
}

type Attendee struct {
	Email          string `json:"email"`
	DisplayName    string `json:"displayName,omitempty"`
	ResponseStatus string `json:"responseStatus,omitempty"`
	Optional       bool   `json:"optional,omitempty"`
	Organizer      bool   `json:"organizer,omitempty"`
}

// NewEvent describes an event to create. TimeZone applies to timed events
// and defaults to UTC. Recurrence holds RRULE, EXRULE, RDATE or EXDATE lines.
type NewEvent struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	AllDay      bool
	TimeZone    string
	Attendees   []string
	Recurrence  []string

	// AddMeet requests a Google Meet conference for the event.
	AddMeet bool

	// SendUpdates controls invitation emails, empty leaves it to the API.
	SendUpdates string
}

// EventQuery filters ListEvents. A zero TimeMin means now.
type EventQuery struct {
	TimeMin    time.Time
	TimeMax    time.Time
	Query      string
	MaxResults int64
}

// eventTime returns the instant of t and whether it is a date without time.
func eventTime(t *calendar.EventDateTime) (time.Time, bool) {
	switch {
	case t == nil:
		return time.Time{}, false
	case t.DateTime != "":
		parsed, err := time.Parse(time.RFC3339, t.DateTime)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, false
	case t.Date != "":
		parsed, err := time.Parse(time.DateOnly, t.Date)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Time{}, false
}

// meetLink prefers the video entry point of the conference over the legacy
// hangout link.
func meetLink(e *calendar.Event) string {
	if e.ConferenceData != nil {
		for _, ep := range e.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" {
				return ep.Uri
			}
		}
	}
	return e.HangoutLink
}

func toEvent(e *calendar.Event) Event {
	if e == nil {
		return Event{}
	}

	event := Event{
		ID:          e.Id,
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
		Status:      e.Status,
		Recurrence:  e.Recurrence,
		MeetLink:    meetLink(e),
		HTMLLink:    e.HtmlLink,
		EventType:   e.EventType,
	}
	event.Start, event.AllDay = eventTime(e.Start)
	event.End, _ = eventTime(e.End)

	if e.Creator != nil {
		event.Creator = e.Creator.Email
	}
	if e.Organizer != nil {
		event.Organizer = e.Organizer.Email
	}
	for _, a := range e.Attendees {
		event.Attendees = append(event.Attendees, Attendee{
			Email:          a.Email,
			DisplayName:    a.DisplayName,
			ResponseStatus: a.ResponseStatus,
			Optional:       a.Optional,
			Organizer:      a.Organizer,
		})
	}
	return event
}

func toCalendar(entry *calendar.CalendarListEntry) Calendar {
	if entry == nil {
		return Calendar{}
	}
	return Calendar{
		ID:          entry.Id,
		Summary:     entry.Summary,
		Description: entry.Description,
		TimeZone:    entry.TimeZone,
		Primary:     entry.Primary,
		AccessRole:  entry.AccessRole,
	}
}
