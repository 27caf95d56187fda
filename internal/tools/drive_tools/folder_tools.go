package drive_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/workspace-mcp/internal/drive"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/registry"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

// registerFolderTools registers folder-related tools
func registerFolderTools(s registry.ToolAdder, sc *server.ServerContext) error {
	listItemsTool := mcp.NewTool("list_drive_items",
		mcp.WithDescription("List files and folders inside a Drive folder, folders first"),
		common.WithUserEmail(),
		mcp.WithString("folder_id",
			mcp.Description("Folder ID (default: 'root', the top of My Drive)"),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Maximum number of items to return (default: 100)"),
		),
		mcp.WithString("page_token",
			mcp.Description("Page token for retrieving the next page of results"),
		),
	)

	s.AddTool(listItemsTool, common.InstrumentedToolHandler("list_drive_items", service, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, err := getDriveClient(ctx, common.AccountFromArgs(ctx, request.GetArguments()), sc)
			if err != nil {
				return common.ErrorResult("create Drive client", err)
			}

			folderID := request.GetString("folder_id", "root")
			files, nextPageToken, err := client.ListFiles(ctx, &drive.ListOptions{
				Query:               drive.FolderQuery(folderID),
				PageSize:            request.GetInt("page_size", 100),
				OrderBy:             "folder,name",
				PageToken:           request.GetString("page_token", ""),
				IncludeSharedDrives: folderID != "root",
			})
			if err != nil {
				return common.ErrorResult("list folder items", err)
			}

			return common.JSONResult(map[string]any{
				"folderId":      folderID,
				"items":         files,
				"nextPageToken": nextPageToken,
			})
		}))

	return nil
}
