package docs_tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/workspace-mcp/internal/docs"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/registry"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

const service = "docs"

func getDocsClient(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*docs.Client, error) {
	opts, err := sc.ClientOptionsForAccount(ctx, common.AccountFromArgs(ctx, request.GetArguments()))
	if err != nil {
		return nil, err
	}
	return docs.NewClient(ctx, opts...)
}

// RegisterDocsTools registers Google Docs tools with the MCP server
func RegisterDocsTools(s registry.ToolAdder, sc *server.ServerContext, readOnly bool) error {
	if sc == nil {
		return errors.New("server context is required")
	}

	searchDocsTool := mcp.NewTool("search_docs",
		mcp.WithDescription("Search Google Docs by name"),
		common.WithUserEmail(),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text the document name contains"),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Maximum number of documents to return (default: 10)"),
		),
	)
	s.AddTool(searchDocsTool, common.InstrumentedToolHandler("search_docs", service, instrumentation.OperationSearch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchDocs(ctx, request, sc)
		}))

	getContentTool := mcp.NewTool("get_doc_content",
		mcp.WithDescription("Get the content of a Google Doc as Markdown or plain text. Tabbed documents include all tabs."),
		common.WithUserEmail(),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("The document ID or its docs.google.com URL"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: 'markdown' (default) or 'text'"),
			mcp.Enum(string(docs.FormatMarkdown), string(docs.FormatText)),
		),
	)
	s.AddTool(getContentTool, common.InstrumentedToolHandler("get_doc_content", service, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetDocContent(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createDocTool := mcp.NewTool("create_doc",
		mcp.WithDescription("Create a new Google Doc"),
		common.WithUserEmail(),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Title of the document"),
		),
		mcp.WithString("content",
			mcp.Description("Initial text of the document"),
		),
	)
	s.AddTool(createDocTool, common.InstrumentedToolHandler("create_doc", service, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateDoc(ctx, request, sc)
		}))

	modifyTextTool := mcp.NewTool("modify_doc_text",
		mcp.WithDescription("Insert text into a Google Doc, or replace every occurrence of find_text"),
		common.WithUserEmail(),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("The document ID or its docs.google.com URL"),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text to insert, or the replacement when find_text is set"),
		),
		mcp.WithString("find_text",
			mcp.Description("Replace all occurrences of this text instead of inserting"),
		),
		mcp.WithBoolean("match_case",
			mcp.Description("Case sensitive matching for find_text (default: false)"),
		),
		mcp.WithNumber("index",
			mcp.Description("Character index to insert at, 1 is the start of the body (default: append at the end)"),
		),
	)
	s.AddTool(modifyTextTool, common.InstrumentedToolHandler("modify_doc_text", service, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleModifyDocText(ctx, request, sc)
		}))

	return nil
}

func handleSearchDocs(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil || query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	client, err := getDocsClient(ctx, request, sc)
	if err != nil {
		return common.ErrorResult("create Docs client", err)
	}

	results, err := client.SearchDocuments(ctx, query, int64(request.GetInt("page_size", 10)))
	if err != nil {
		return common.ErrorResult("search documents", err)
	}
	return common.JSONResult(results)
}

func handleGetDocContent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("document_id")
	if err != nil || raw == "" {
		return mcp.NewToolResultError("document_id is required"), nil
	}
	documentID := docs.ExtractDocumentID(raw)

	format := docs.Format(request.GetString("format", string(docs.FormatMarkdown)))
	if format != docs.FormatMarkdown && format != docs.FormatText {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid format '%s', must be 'markdown' or 'text'", format)), nil
	}

	client, err := getDocsClient(ctx, request, sc)
	if err != nil {
		return common.ErrorResult("create Docs client", err)
	}

	content, err := client.GetDocumentContent(ctx, documentID, format)
	if err != nil {
		return common.ErrorResult("get document", err)
	}

	label := "Markdown"
	if format == docs.FormatText {
		label = "plain text"
	}
	return mcp.NewToolResultText(fmt.Sprintf("Document %s (%s, %d bytes)\nLink: %s\n\n%s",
		documentID, label, len(content), docs.DocumentURL(documentID), content)), nil
}

func handleCreateDoc(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil || title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}

	client, err := getDocsClient(ctx, request, sc)
	if err != nil {
		return common.ErrorResult("create Docs client", err)
	}

	info, err := client.CreateDocument(ctx, title, request.GetString("content", ""))
	if err != nil {
		return common.ErrorResult("create document", err)
	}
	return common.JSONResultWithMessage("Document created successfully:", info)
}

func handleModifyDocText(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("document_id")
	if err != nil || raw == "" {
		return mcp.NewToolResultError("document_id is required"), nil
	}
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text is required"), nil
	}
	index := request.GetInt("index", 0)
	if index < 0 {
		return mcp.NewToolResultError("index must be at least 1"), nil
	}

	client, err := getDocsClient(ctx, request, sc)
	if err != nil {
		return common.ErrorResult("create Docs client", err)
	}

	result, err := client.ModifyText(ctx, docs.ExtractDocumentID(raw), docs.TextEdit{
		Text:      text,
		Index:     int64(index),
		Find:      request.GetString("find_text", ""),
		MatchCase: request.GetBool("match_case", false),
	})
	if err != nil {
		return common.ErrorResult("modify document", err)
	}
	return common.JSONResultWithMessage("Document updated:", result)
}
