package chat_tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/workspace-mcp/internal/chat"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/registry"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

const service = "chat"

func getChatClient(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*chat.Client, error) {
	opts, err := sc.ClientOptionsForAccount(ctx, common.AccountFromArgs(ctx, request.GetArguments()))
	if err != nil {
		return nil, err
	}
	return chat.NewClient(ctx, opts...)
}

// RegisterChatTools registers Google Chat tools with the MCP server
func RegisterChatTools(s registry.ToolAdder, sc *server.ServerContext, readOnly bool) error {
	if sc == nil {
		return errors.New("server context is required")
	}

	listSpacesTool := mcp.NewTool("list_spaces",
		mcp.WithDescription("List the Chat spaces, group chats and direct messages of the user"),
		common.WithUserEmail(),
		mcp.WithString("space_type",
			mcp.Description("Filter by type (default: all)"),
			mcp.Enum(chat.SpaceTypeAll, chat.SpaceTypeSpace, chat.SpaceTypeGroup, chat.SpaceTypeDirect),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Maximum number of spaces to return (default: 50)"),
		),
	)
	s.AddTool(listSpacesTool, common.InstrumentedToolHandler("list_spaces", service, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListSpaces(ctx, request, sc)
		}))

	getMessagesTool := mcp.NewTool("get_messages",
		mcp.WithDescription("Get the newest messages of a Chat space"),
		common.WithUserEmail(),
		mcp.WithString("space_id",
			mcp.Required(),
			mcp.Description("Space resource name ('spaces/AAAA') or id"),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Maximum number of messages to return (default: 50)"),
		),
	)
	s.AddTool(getMessagesTool, common.InstrumentedToolHandler("get_messages", service, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetMessages(ctx, request, sc)
		}))

	searchTool := mcp.NewTool("search_messages",
		mcp.WithDescription("Search recent Chat messages for text, in one space or across the user's spaces"),
		common.WithUserEmail(),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to search for, case insensitive"),
		),
		mcp.WithString("space_id",
			mcp.Description("Limit the search to this space"),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Maximum number of matches to return (default: 50)"),
		),
	)
	s.AddTool(searchTool, common.InstrumentedToolHandler("search_messages", service, instrumentation.OperationSearch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchMessages(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	sendTool := mcp.NewTool("send_message",
		mcp.WithDescription("Send a message to a Chat space"),
		common.WithUserEmail(),
		mcp.WithString("space_id",
			mcp.Required(),
			mcp.Description("Space resource name ('spaces/AAAA') or id"),
		),
		mcp.WithString("message_text",
			mcp.Required(),
			mcp.Description("Text of the message"),
		),
		mcp.WithString("thread_name",
			mcp.Description("Reply in this thread ('spaces/AAAA/threads/BBBB')"),
		),
	)
	s.AddTool(sendTool, common.InstrumentedToolHandler("send_message", service, instrumentation.OperationSend, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSendMessage(ctx, request, sc)
		}))

	return nil
}

func handleListSpaces(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client, err := getChatClient(ctx, request, sc)
	if err != nil {
		return common.ErrorResult("create Chat client", err)
	}

	spaces, err := client.ListSpaces(ctx, request.GetString("space_type", chat.SpaceTypeAll), int64(request.GetInt("page_size", chat.DefaultPageSize)))
	if err != nil {
		return common.ErrorResult("list spaces", err)
	}
	return common.JSONResultWithMessage(fmt.Sprintf("Found %d spaces:", len(spaces)), spaces)
}

func handleGetMessages(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	spaceID, err := request.RequireString("space_id")
	if err != nil || spaceID == "" {
		return mcp.NewToolResultError("space_id is required"), nil
	}

	client, err := getChatClient(ctx, request, sc)
	if err != nil {
		return common.ErrorResult("create Chat client", err)
	}

	messages, err := client.ListMessages(ctx, spaceID, int64(request.GetInt("page_size", chat.DefaultPageSize)))
	if err != nil {
		return common.ErrorResult("get messages", err)
	}
	if len(messages) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No messages in %s", chat.SpaceName(spaceID))), nil
	}
	return common.JSONResult(messages)
}

func handleSearchMessages(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil || query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	client, err := getChatClient(ctx, request, sc)
	if err != nil {
		return common.ErrorResult("create Chat client", err)
	}

	matches, err := client.SearchMessages(ctx, query, request.GetString("space_id", ""), int64(request.GetInt("page_size", chat.DefaultPageSize)))
	if err != nil {
		return common.ErrorResult("search messages", err)
	}
	if len(matches) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No messages found matching %q", query)), nil
	}
	return common.JSONResultWithMessage(fmt.Sprintf("Found %d messages:", len(matches)), matches)
}

func handleSendMessage(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	spaceID, err := request.RequireString("space_id")
	if err != nil || spaceID == "" {
		return mcp.NewToolResultError("space_id is required"), nil
	}
	text, err := request.RequireString("message_text")
	if err != nil || text == "" {
		return mcp.NewToolResultError("message_text is required"), nil
	}

	client, err := getChatClient(ctx, request, sc)
	if err != nil {
		return common.ErrorResult("create Chat client", err)
	}

	sent, err := client.SendMessage(ctx, spaceID, text, request.GetString("thread_name", ""))
	if err != nil {
		return common.ErrorResult("send message", err)
	}
	return common.JSONResultWithMessage("Message sent successfully:", sent)
}
