package drive_tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/teemow/workspace-mcp/internal/drive"
	"github.com/teemow/workspace-mcp/internal/registry"
	"github.com/teemow/workspace-mcp/internal/server"
)

const service = "drive"

// getDriveClient creates a drive client for the account of the request
func getDriveClient(ctx context.Context, account string, sc *server.ServerContext) (*drive.Client, error) {
	opts, err := sc.ClientOptionsForAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	return drive.NewClient(ctx, opts...)
}

// RegisterDriveTools registers all Drive-related tools with the MCP server
func RegisterDriveTools(s registry.ToolAdder, sc *server.ServerContext, readOnly bool) error {
	if sc == nil {
		return errors.New("server context is required")
	}

	if err := registerFileTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register file tools: %w", err)
	}

	if err := registerFolderTools(s, sc); err != nil {
		return fmt.Errorf("failed to register folder tools: %w", err)
	}

	return nil
}
