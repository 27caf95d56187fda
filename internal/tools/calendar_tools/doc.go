// Package calendar_tools provides MCP tools for Google Calendar.
//
// list_calendars and get_events are always available; get_events returns a
// single event when event_id is given. create_event and delete_event are only
// registered when the server is not read-only, and both accept send_updates
// to control invitation emails.
package calendar_tools
