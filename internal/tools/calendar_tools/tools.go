package calendar_tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/teemow/workspace-mcp/internal/calendar"
	"github.com/teemow/workspace-mcp/internal/registry"
	"github.com/teemow/workspace-mcp/internal/server"
)

const service = "calendar"

// getCalendarClient creates a calendar client for the account of the request
func getCalendarClient(ctx context.Context, account string, sc *server.ServerContext) (*calendar.Client, error) {
	opts, err := sc.ClientOptionsForAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	return calendar.NewClient(ctx, opts...)
}

// RegisterCalendarTools registers all Calendar-related tools with the MCP server
func RegisterCalendarTools(s registry.ToolAdder, sc *server.ServerContext, readOnly bool) error {
	if sc == nil {
		return errors.New("server context is required")
	}

	if err := RegisterCalendarListTools(s, sc); err != nil {
		return fmt.Errorf("failed to register calendar list tools: %w", err)
	}

	if err := RegisterEventTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register event tools: %w", err)
	}

	return nil
}
