package gmail_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/registry"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tools/batch"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

func registerLabelTools(s registry.ToolAdder, sc *server.ServerContext, readOnly bool) {
	listLabelsTool := mcp.NewTool("list_gmail_labels",
		mcp.WithDescription("List all Gmail labels, both system labels and user labels"),
		common.WithUserEmail(),
	)
	s.AddTool(listLabelsTool, common.InstrumentedToolHandler("list_gmail_labels", service, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListLabels(ctx, request, sc)
		}))

	if readOnly {
		return
	}

	modifyLabelsTool := mcp.NewTool("modify_gmail_message_labels",
		mcp.WithDescription("Add or remove labels on one or more Gmail messages. Remove INBOX to archive, add TRASH to delete."),
		common.WithUserEmail(),
		batch.WithIDs("message_id", "Message ID, a comma-separated list or an array of message IDs"),
		mcp.WithString("add_label_ids",
			mcp.Description("Label IDs to add, comma-separated"),
		),
		mcp.WithString("remove_label_ids",
			mcp.Description("Label IDs to remove, comma-separated"),
		),
	)
	s.AddTool(modifyLabelsTool, common.InstrumentedToolHandler("modify_gmail_message_labels", service, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleModifyLabels(ctx, request, sc)
		}))
}

func handleListLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client, err := getGmailClient(ctx, request, sc)
	if err != nil {
		return common.ErrorResult("create Gmail client", err)
	}

	labels, err := client.ListLabels(ctx)
	if err != nil {
		return common.ErrorResult("list labels", err)
	}
	return common.JSONResultWithMessage(fmt.Sprintf("Found %d labels:", len(labels)), labels)
}

func handleModifyLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	messageIDs, err := batch.ParseIDs(request.GetArguments()["message_id"], "message_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	add := common.SplitList(request.GetString("add_label_ids", ""))
	remove := common.SplitList(request.GetString("remove_label_ids", ""))
	if len(add) == 0 && len(remove) == 0 {
		return mcp.NewToolResultError("add_label_ids or remove_label_ids is required"), nil
	}

	client, err := getGmailClient(ctx, request, sc)
	if err != nil {
		return common.ErrorResult("create Gmail client", err)
	}

	if len(messageIDs) == 1 {
		change, err := client.ModifyLabels(ctx, messageIDs[0], add, remove)
		if err != nil {
			return common.ErrorResult("modify labels", err)
		}
		return common.JSONResultWithMessage("Labels updated:", change)
	}

	report := batch.Run(ctx, messageIDs, func(ctx context.Context, id string) (any, error) {
		return client.ModifyLabels(ctx, id, add, remove)
	})
	return common.JSONResultWithMessage(report.Summary("Updated labels on", "messages"), report)
}
