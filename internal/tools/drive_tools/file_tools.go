package drive_tools

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/workspace-mcp/internal/drive"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/registry"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

// registerFileTools registers file-related tools
func registerFileTools(s registry.ToolAdder, sc *server.ServerContext, readOnly bool) error {
	searchFilesTool := mcp.NewTool("search_drive_files",
		mcp.WithDescription("Search Google Drive files. Plain text searches file names and content; Drive query syntax (e.g. \"mimeType='application/pdf'\") is passed through."),
		common.WithUserEmail(),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search text or Drive query"),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Maximum number of files to return (default: 10, max: 1000)"),
		),
		mcp.WithString("page_token",
			mcp.Description("Page token for retrieving the next page of results"),
		),
		mcp.WithBoolean("include_shared_drives",
			mcp.Description("Search shared drives as well (default: true)"),
		),
	)

	s.AddTool(searchFilesTool, common.InstrumentedToolHandler("search_drive_files", service, instrumentation.OperationSearch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			query, err := request.RequireString("query")
			if err != nil || strings.TrimSpace(query) == "" {
				return mcp.NewToolResultError("query is required"), nil
			}

			client, err := getDriveClient(ctx, common.AccountFromArgs(ctx, request.GetArguments()), sc)
			if err != nil {
				return common.ErrorResult("create Drive client", err)
			}

			files, nextPageToken, err := client.ListFiles(ctx, &drive.ListOptions{
				Query:               drive.SearchQuery(query),
				PageSize:            request.GetInt("page_size", 10),
				PageToken:           request.GetString("page_token", ""),
				IncludeSharedDrives: request.GetBool("include_shared_drives", true),
			})
			if err != nil {
				return common.ErrorResult("search files", err)
			}

			return common.JSONResult(map[string]any{
				"files":         files,
				"nextPageToken": nextPageToken,
			})
		}))

	getContentTool := mcp.NewTool("get_drive_file_content",
		mcp.WithDescription("Get the content of a Drive file. Google Docs and Slides are returned as plain text, Sheets as CSV."),
		common.WithUserEmail(),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The Drive file ID"),
		),
	)

	s.AddTool(getContentTool, common.InstrumentedToolHandler("get_drive_file_content", service, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			fileID, err := request.RequireString("file_id")
			if err != nil || fileID == "" {
				return mcp.NewToolResultError("file_id is required"), nil
			}

			client, err := getDriveClient(ctx, common.AccountFromArgs(ctx, request.GetArguments()), sc)
			if err != nil {
				return common.ErrorResult("create Drive client", err)
			}

			content, err := client.GetFileContent(ctx, fileID)
			if err != nil {
				return common.ErrorResult("get file content", err)
			}
			return mcp.NewToolResultText(formatFileContent(content)), nil
		}))

	if readOnly {
		return nil
	}

	createFileTool := mcp.NewTool("create_drive_file",
		mcp.WithDescription("Create a file in Google Drive"),
		common.WithUserEmail(),
		mcp.WithString("file_name",
			mcp.Required(),
			mcp.Description("The name of the file"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The file content, plain text or base64 when is_base64 is set"),
		),
		mcp.WithString("folder_id",
			mcp.Description("Parent folder ID (default: My Drive root)"),
		),
		mcp.WithString("mime_type",
			mcp.Description("The MIME type of the file (default: text/plain)"),
		),
		mcp.WithBoolean("is_base64",
			mcp.Description("Whether content is base64-encoded (default: false)"),
		),
	)

	s.AddTool(createFileTool, common.InstrumentedToolHandler("create_drive_file", service, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			name, err := request.RequireString("file_name")
			if err != nil || name == "" {
				return mcp.NewToolResultError("file_name is required"), nil
			}
			contentStr, err := request.RequireString("content")
			if err != nil {
				return mcp.NewToolResultError("content is required"), nil
			}

			var content io.Reader = strings.NewReader(contentStr)
			if request.GetBool("is_base64", false) {
				decoded, err := base64.StdEncoding.DecodeString(contentStr)
				if err != nil {
					return mcp.NewToolResultError(fmt.Sprintf("Failed to decode base64 content: %v", err)), nil
				}
				content = strings.NewReader(string(decoded))
			}

			options := &drive.UploadOptions{
				MimeType: request.GetString("mime_type", "text/plain"),
			}
			if folderID := request.GetString("folder_id", ""); folderID != "" {
				options.Parents = []string{folderID}
			}

			client, err := getDriveClient(ctx, common.AccountFromArgs(ctx, request.GetArguments()), sc)
			if err != nil {
				return common.ErrorResult("create Drive client", err)
			}

			fileInfo, err := client.UploadFile(ctx, name, content, options)
			if err != nil {
				return common.ErrorResult("create file", err)
			}
			return common.JSONResultWithMessage("File created successfully:", fileInfo)
		}))

	return nil
}

func formatFileContent(c *drive.FileContent) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "File: %s (ID: %s)\n", c.File.Name, c.File.ID)
	fmt.Fprintf(&sb, "MIME Type: %s\n", c.File.MimeType)
	if c.ExportedAs != "" {
		fmt.Fprintf(&sb, "Exported as: %s\n", c.ExportedAs)
	}
	if c.File.WebViewLink != "" {
		fmt.Fprintf(&sb, "Link: %s\n", c.File.WebViewLink)
	}
	sb.WriteString("\n")

	if c.Binary {
		fmt.Fprintf(&sb, "[Binary content, %d bytes, not shown]", c.Size)
		return sb.String()
	}
	sb.WriteString(c.Content)
	if c.Truncated {
		fmt.Fprintf(&sb, "\n\n[Content truncated at %d KB]", drive.MaxContentBytes/1024)
	}
	return sb.String()
}
