package calendar_tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/workspace-mcp/internal/calendar"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/registry"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

// RegisterEventTools registers event-related tools with the MCP server
func RegisterEventTools(s registry.ToolAdder, sc *server.ServerContext, readOnly bool) error {
	getEventsTool := mcp.NewTool("get_events",
		mcp.WithDescription("List events from a calendar within a time range, or get a single event by ID"),
		common.WithUserEmail(),
		mcp.WithString("calendar_id",
			mcp.Description("Calendar ID (default: 'primary')"),
		),
		mcp.WithString("event_id",
			mcp.Description("Return only this event; the range and query are ignored"),
		),
		mcp.WithString("time_min",
			mcp.Description("Start of the range (RFC 3339 or YYYY-MM-DD, default: now)"),
		),
		mcp.WithString("time_max",
			mcp.Description("End of the range (RFC 3339 or YYYY-MM-DD)"),
		),
		mcp.WithString("query",
			mcp.Description("Free text search over event fields"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of events to return (default: 25)"),
		),
	)

	s.AddTool(getEventsTool, common.InstrumentedToolHandler("get_events", service, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEvents(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createEventTool := mcp.NewTool("create_event",
		mcp.WithDescription("Create a new calendar event, optionally with a Google Meet link"),
		common.WithUserEmail(),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("Event title"),
		),
		mcp.WithString("start_time",
			mcp.Required(),
			mcp.Description("Start time (RFC 3339, e.g. '2025-01-15T14:00:00Z', or YYYY-MM-DD for all-day events)"),
		),
		mcp.WithString("end_time",
			mcp.Required(),
			mcp.Description("End time (RFC 3339, or YYYY-MM-DD for all-day events)"),
		),
		mcp.WithString("calendar_id",
			mcp.Description("Calendar ID (default: 'primary')"),
		),
		mcp.WithString("description",
			mcp.Description("Event description"),
		),
		mcp.WithString("location",
			mcp.Description("Event location"),
		),
		mcp.WithString("timezone",
			mcp.Description("Time zone (e.g. 'America/New_York'). Defaults to UTC."),
		),
		mcp.WithString("attendees",
			mcp.Description("Comma-separated list of attendee email addresses"),
		),
		mcp.WithString("recurrence",
			mcp.Description("Recurrence rule (e.g. 'RRULE:FREQ=WEEKLY;BYDAY=MO,WE,FR')"),
		),
		mcp.WithBoolean("add_google_meet",
			mcp.Description("Add a Google Meet link to the event"),
		),
		sendUpdatesOption(),
	)

	s.AddTool(createEventTool, common.InstrumentedToolHandler("create_event", service, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateEvent(ctx, request, sc)
		}))

	deleteEventTool := mcp.NewTool("delete_event",
		mcp.WithDescription("Delete a calendar event"),
		common.WithUserEmail(),
		mcp.WithString("event_id",
			mcp.Required(),
			mcp.Description("ID of the event to delete"),
		),
		mcp.WithString("calendar_id",
			mcp.Description("Calendar ID (default: 'primary')"),
		),
		sendUpdatesOption(),
	)

	s.AddTool(deleteEventTool, common.InstrumentedToolHandler("delete_event", service, instrumentation.OperationDelete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteEvent(ctx, request, sc)
		}))

	return nil
}

func sendUpdatesOption() mcp.ToolOption {
	return mcp.WithString("send_updates",
		mcp.Description("Who receives invitation or cancellation emails (default: the calendar's setting)"),
		mcp.Enum(calendar.SendUpdatesAll, calendar.SendUpdatesExternal, calendar.SendUpdatesNone),
	)
}

func handleGetEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	calendarID := request.GetString("calendar_id", calendar.PrimaryCalendar)
	if eventID := request.GetString("event_id", ""); eventID != "" {
		client, err := getCalendarClient(ctx, common.AccountFromArgs(ctx, request.GetArguments()), sc)
		if err != nil {
			return common.ErrorResult("create Calendar client", err)
		}
		event, err := client.GetEvent(ctx, calendarID, eventID)
		if err != nil {
			return common.ErrorResult("get event", err)
		}
		return common.JSONResult(event)
	}

	timeMin, err := common.ParseTime(request.GetString("time_min", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeMax, err := common.ParseTime(request.GetString("time_max", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !timeMin.IsZero() && !timeMax.IsZero() && !timeMax.After(timeMin) {
		return mcp.NewToolResultError("time_max must be after time_min"), nil
	}

	client, err := getCalendarClient(ctx, common.AccountFromArgs(ctx, request.GetArguments()), sc)
	if err != nil {
		return common.ErrorResult("create Calendar client", err)
	}

	events, err := client.ListEvents(ctx, calendarID, calendar.EventQuery{
		TimeMin:    timeMin,
		TimeMax:    timeMax,
		Query:      request.GetString("query", ""),
		MaxResults: int64(request.GetInt("max_results", calendar.DefaultMaxEvents)),
	})
	if err != nil {
		return common.ErrorResult("list events", err)
	}
	return common.JSONResult(events)
}

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	summary, err := request.RequireString("summary")
	if err != nil || summary == "" {
		return mcp.NewToolResultError("summary is required"), nil
	}
	startStr, _ := request.RequireString("start_time")
	endStr, _ := request.RequireString("end_time")
	if startStr == "" || endStr == "" {
		return mcp.NewToolResultError("start_time and end_time are required"), nil
	}

	start, err := common.ParseTime(startStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid start_time: %v", err)), nil
	}
	end, err := common.ParseTime(endStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid end_time: %v", err)), nil
	}

	input := calendar.NewEvent{
		Summary:     summary,
		Description: request.GetString("description", ""),
		Location:    request.GetString("location", ""),
		Start:       start,
		End:         end,
		AllDay:      isDateOnly(startStr) && isDateOnly(endStr),
		TimeZone:    request.GetString("timezone", ""),
		Attendees:   common.SplitList(request.GetString("attendees", "")),
		AddMeet:     request.GetBool("add_google_meet", false),
		SendUpdates: request.GetString("send_updates", ""),
	}
	if rule := request.GetString("recurrence", ""); rule != "" {
		input.Recurrence = []string{rule}
	}

	client, err := getCalendarClient(ctx, common.AccountFromArgs(ctx, request.GetArguments()), sc)
	if err != nil {
		return common.ErrorResult("create Calendar client", err)
	}

	event, err := client.CreateEvent(ctx, request.GetString("calendar_id", calendar.PrimaryCalendar), input)
	if err != nil {
		return common.ErrorResult("create event", err)
	}
	return common.JSONResultWithMessage("Event created successfully:", event)
}

func handleDeleteEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	eventID, err := request.RequireString("event_id")
	if err != nil || eventID == "" {
		return mcp.NewToolResultError("event_id is required"), nil
	}

	client, err := getCalendarClient(ctx, common.AccountFromArgs(ctx, request.GetArguments()), sc)
	if err != nil {
		return common.ErrorResult("create Calendar client", err)
	}

	calendarID := request.GetString("calendar_id", calendar.PrimaryCalendar)
	if err := client.DeleteEvent(ctx, calendarID, eventID, request.GetString("send_updates", "")); err != nil {
		return common.ErrorResult("delete event", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Event %s deleted.", eventID)), nil
}

func isDateOnly(value string) bool {
	_, err := time.Parse(time.DateOnly, value)
	return err == nil
}
