package gmail_tools

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/workspace-mcp/internal/gmail"
	"github.com/teemow/workspace-mcp/internal/registry"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

const service = "gmail"

func getGmailClient(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*gmail.Client, error) {
	opts, err := sc.ClientOptionsForAccount(ctx, common.AccountFromArgs(ctx, request.GetArguments()))
	if err != nil {
		return nil, err
	}
	return gmail.NewClient(ctx, opts...)
}

// RegisterGmailTools registers all Gmail-related tools with the MCP server
func RegisterGmailTools(s registry.ToolAdder, sc *server.ServerContext, readOnly bool) error {
	if sc == nil {
		return errors.New("server context is required")
	}

	registerMessageTools(s, sc, readOnly)
	registerLabelTools(s, sc, readOnly)
	return nil
}
