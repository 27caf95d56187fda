package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// PrimaryCalendar is the alias of the user's main calendar.
const PrimaryCalendar = "primary"

// DefaultMaxEvents caps ListEvents when no limit is given.
const DefaultMaxEvents = 25

// Client wraps the Google Calendar v3 service.
type Client struct {
	svc *calendar.Service
	now func() time.Time
}

// NewClient creates a Calendar client from authenticated client options.
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return &Client{svc: svc, now: time.Now}, nil
}

func (c *Client) ListCalendars(ctx context.Context) ([]Calendar, error) {
	list, err := c.svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	calendars := make([]Calendar, 0, len(list.Items))
	for _, entry := range list.Items {
		calendars = append(calendars, toCalendar(entry))
	}
	return calendars, nil
}

// ListEvents returns the events of a calendar in start order with recurring
// events expanded into their instances.
func (c *Client) ListEvents(ctx context.Context, calendarID string, q EventQuery) ([]Event, error) {
	timeMin := q.TimeMin
	if timeMin.IsZero() {
		timeMin = c.now()
	}
	maxResults := q.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxEvents
	}

	call := c.svc.Events.List(calendarOrPrimary(calendarID)).
		Context(ctx).
		TimeMin(timeMin.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxResults)
	if !q.TimeMax.IsZero() {
		call = call.TimeMax(q.TimeMax.Format(time.RFC3339))
	}
	if q.Query != "" {
		call = call.Q(q.Query)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]Event, 0, len(resp.Items))
	for _, e := range resp.Items {
		events = append(events, toEvent(e))
	}
	return events, nil
}

func (c *Client) GetEvent(ctx context.Context, calendarID, eventID string) (*Event, error) {
	e, err := c.svc.Events.Get(calendarOrPrimary(calendarID), eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", eventID, err)
	}
	event := toEvent(e)
	return &event, nil
}

func (c *Client) CreateEvent(ctx context.Context, calendarID string, in NewEvent) (*Event, error) {
	if in.End.Before(in.Start) {
		return nil, fmt.Errorf("event end %s is before start %s", in.End.Format(time.RFC3339), in.Start.Format(time.RFC3339))
	}

	body := &calendar.Event{
		Summary:     in.Summary,
		Description: in.Description,
		Location:    in.Location,
		Recurrence:  in.Recurrence,
		Start:       eventDateTime(in.Start, in.AllDay, in.TimeZone),
		End:         eventDateTime(in.End, in.AllDay, in.TimeZone),
	}
	for _, email := range in.Attendees {
		body.Attendees = append(body.Attendees, &calendar.EventAttendee{Email: email})
	}

	call := c.svc.Events.Insert(calendarOrPrimary(calendarID), body).Context(ctx)
	if in.AddMeet {
		body.ConferenceData = &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId:             uuid.NewString(),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		}
		call = call.ConferenceDataVersion(1)
	}
	if in.SendUpdates != "" {
		call = call.SendUpdates(in.SendUpdates)
	}

	created, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	event := toEvent(created)
	return &event, nil
}

// DeleteEvent removes an event. sendUpdates may be empty.
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID, sendUpdates string) error {
	call := c.svc.Events.Delete(calendarOrPrimary(calendarID), eventID).Context(ctx)
	if sendUpdates != "" {
		call = call.SendUpdates(sendUpdates)
	}
	if err := call.Do(); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// eventDateTime uses Date for all-day events and DateTime with a zone otherwise.
func eventDateTime(t time.Time, allDay bool, tz string) *calendar.EventDateTime {
	if allDay {
		return &calendar.EventDateTime{Date: t.Format(time.DateOnly)}
	}
	if tz == "" {
		tz = "UTC"
	}
	return &calendar.EventDateTime{DateTime: t.Format(time.RFC3339), TimeZone: tz}
}

func calendarOrPrimary(id string) string {
	if id == "" {
		return PrimaryCalendar
	}
	return id
}
