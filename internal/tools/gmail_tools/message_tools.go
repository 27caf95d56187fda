package gmail_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/workspace-mcp/internal/gmail"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/registry"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

func registerMessageTools(s registry.ToolAdder, sc *server.ServerContext, readOnly bool) {
	searchTool := mcp.NewTool("search_gmail_messages",
		mcp.WithDescription("Search Gmail messages using Gmail query syntax"),
		common.WithUserEmail(),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Gmail search query (e.g., 'in:inbox is:unread', 'from:user@example.com newer_than:7d')"),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Maximum number of messages to return (default: 10, max: 100)"),
		),
	)
	s.AddTool(searchTool, common.InstrumentedToolHandler("search_gmail_messages", service, instrumentation.OperationSearch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchMessages(ctx, request, sc)
		}))

	getContentTool := mcp.NewTool("get_gmail_message_content",
		mcp.WithDescription("Get the headers, body and attachment list of a Gmail message"),
		common.WithUserEmail(),
		mcp.WithString("message_id",
			mcp.Required(),
			mcp.Description("The ID of the message"),
		),
	)
	s.AddTool(getContentTool, common.InstrumentedToolHandler("get_gmail_message_content", service, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetMessageContent(ctx, request, sc)
		}))

	if readOnly {
		return
	}

	sendTool := mcp.NewTool("send_gmail_message",
		mcp.WithDescription("Send an email through Gmail. Set thread_id and in_reply_to to reply within a thread."),
		common.WithUserEmail(),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient email address(es), comma-separated for multiple recipients"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Email body content"),
		),
		mcp.WithString("body_format",
			mcp.Description("Format of body: 'plain' (default) or 'html'"),
			mcp.Enum("plain", "html"),
		),
		mcp.WithString("cc",
			mcp.Description("CC email address(es), comma-separated"),
		),
		mcp.WithString("bcc",
			mcp.Description("BCC email address(es), comma-separated"),
		),
		mcp.WithString("thread_id",
			mcp.Description("Thread to add the message to when replying"),
		),
		mcp.WithString("in_reply_to",
			mcp.Description("Message-ID header of the message being replied to"),
		),
		mcp.WithString("references",
			mcp.Description("References header of the message being replied to"),
		),
	)
	s.AddTool(sendTool, common.InstrumentedToolHandler("send_gmail_message", service, instrumentation.OperationSend, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSendMessage(ctx, request, sc)
		}))
}

func handleSearchMessages(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil || strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	client, err := getGmailClient(ctx, request, sc)
	if err != nil {
		return common.ErrorResult("create Gmail client", err)
	}

	messages, err := client.SearchMessages(ctx, query, int64(request.GetInt("page_size", gmail.DefaultPageSize)))
	if err != nil {
		return common.ErrorResult("search messages", err)
	}
	if len(messages) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No messages found for query %q", query)), nil
	}
	return common.JSONResultWithMessage(fmt.Sprintf("Found %d messages:", len(messages)), messages)
}

func handleGetMessageContent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	messageID, err := request.RequireString("message_id")
	if err != nil || messageID == "" {
		return mcp.NewToolResultError("message_id is required"), nil
	}

	client, err := getGmailClient(ctx, request, sc)
	if err != nil {
		return common.ErrorResult("create Gmail client", err)
	}

	content, err := client.GetMessageContent(ctx, messageID)
	if err != nil {
		return common.ErrorResult("get message", err)
	}
	return common.JSONResult(content)
}

func handleSendMessage(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	to := common.SplitList(request.GetString("to", ""))
	if len(to) == 0 {
		return mcp.NewToolResultError("'to' field is required"), nil
	}
	subject := request.GetString("subject", "")
	if subject == "" {
		return mcp.NewToolResultError("'subject' field is required"), nil
	}
	body := request.GetString("body", "")
	if body == "" {
		return mcp.NewToolResultError("'body' field is required"), nil
	}

	format := request.GetString("body_format", "plain")
	if format != "plain" && format != "html" {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid body_format '%s', must be 'plain' or 'html'", format)), nil
	}

	msg := &gmail.EmailMessage{
		To:         to,
		Cc:         common.SplitList(request.GetString("cc", "")),
		Bcc:        common.SplitList(request.GetString("bcc", "")),
		Subject:    subject,
		Body:       body,
		IsHTML:     format == "html",
		ThreadID:   request.GetString("thread_id", ""),
		InReplyTo:  request.GetString("in_reply_to", ""),
		References: request.GetString("references", ""),
	}

	client, err := getGmailClient(ctx, request, sc)
	if err != nil {
		return common.ErrorResult("create Gmail client", err)
	}

	sent, err := client.SendEmail(ctx, msg)
	if err != nil {
		return common.ErrorResult("send email", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Email sent successfully to %s. Message ID: %s", strings.Join(to, ", "), sent.ID)), nil
}
