package calendar_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/registry"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

// RegisterCalendarListTools registers calendar list tools with the MCP server
func RegisterCalendarListTools(s registry.ToolAdder, sc *server.ServerContext) error {
	listCalendarsTool := mcp.NewTool("list_calendars",
		mcp.WithDescription("List all calendars the user can access"),
		common.WithUserEmail(),
	)

	s.AddTool(listCalendarsTool, common.InstrumentedToolHandler("list_calendars", service, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, err := getCalendarClient(ctx, common.AccountFromArgs(ctx, request.GetArguments()), sc)
			if err != nil {
				return common.ErrorResult("create Calendar client", err)
			}

			calendars, err := client.ListCalendars(ctx)
			if err != nil {
				return common.ErrorResult("list calendars", err)
			}
			return common.JSONResult(calendars)
		}))

	return nil
}
