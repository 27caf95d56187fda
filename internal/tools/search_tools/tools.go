package search_tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/registry"
	"github.com/teemow/workspace-mcp/internal/search"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

const service = "search"

// getSearchClient builds a client from the server's API key. The user's
// Google token is not used.
func getSearchClient(ctx context.Context, sc *server.ServerContext) (*search.Client, error) {
	cfg := sc.SearchConfig()
	if cfg.APIKey == "" || cfg.EngineID == "" {
		return nil, search.ErrNotConfigured
	}
	return search.NewClient(ctx, cfg.EngineID, sc.APIKeyClientOptions(cfg.APIKey)...)
}

// RegisterSearchTools registers Programmable Search tools with the MCP
// server. Both are read-only.
func RegisterSearchTools(s registry.ToolAdder, sc *server.ServerContext, _ bool) error {
	if sc == nil {
		return errors.New("server context is required")
	}

	searchTool := mcp.NewTool("search_custom",
		mcp.WithDescription("Search the web with the configured Programmable Search Engine"),
		mcp.WithString("q",
			mcp.Required(),
			mcp.Description("Search query"),
		),
		mcp.WithNumber("num",
			mcp.Description("Number of results, 1 to 10 (default: 10)"),
		),
		mcp.WithNumber("start",
			mcp.Description("Index of the first result, for paging (1-based)"),
		),
		mcp.WithBoolean("safe",
			mcp.Description("Enable SafeSearch filtering (default: false)"),
		),
		mcp.WithString("site_search",
			mcp.Description("Restrict results to this site"),
		),
		mcp.WithString("file_type",
			mcp.Description("Restrict results to a file extension, e.g. pdf"),
		),
		mcp.WithString("date_restrict",
			mcp.Description("Restrict by date, e.g. d5 (days), w2 (weeks), m1 (months), y1 (years)"),
		),
		mcp.WithString("language",
			mcp.Description("Restrict results to a language code, e.g. en"),
		),
	)
	s.AddTool(searchTool, common.InstrumentedToolHandler("search_custom", service, instrumentation.OperationSearch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearch(ctx, request, sc)
		}))

	infoTool := mcp.NewTool("get_search_engine_info",
		mcp.WithDescription("Describe the configured Programmable Search Engine"),
	)
	s.AddTool(infoTool, common.InstrumentedToolHandler("get_search_engine_info", service, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, err := getSearchClient(ctx, sc)
			if err != nil {
				return common.ErrorResult("create search client", err)
			}
			info, err := client.EngineInfo(ctx)
			if err != nil {
				return common.ErrorResult("get search engine info", err)
			}
			return common.JSONResult(info)
		}))

	return nil
}

func handleSearch(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("q")
	if err != nil || query == "" {
		return mcp.NewToolResultError("q is required"), nil
	}

	client, err := getSearchClient(ctx, sc)
	if err != nil {
		return common.ErrorResult("create search client", err)
	}

	res, err := client.Search(ctx, query, search.Options{
		Num:          int64(request.GetInt("num", search.DefaultNum)),
		Start:        int64(request.GetInt("start", 0)),
		SafeSearch:   request.GetBool("safe", false),
		SiteSearch:   request.GetString("site_search", ""),
		FileType:     request.GetString("file_type", ""),
		DateRestrict: request.GetString("date_restrict", ""),
		Language:     request.GetString("language", ""),
	})
	if err != nil {
		return common.ErrorResult("search", err)
	}
	if len(res.Items) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No results found for %q", query)), nil
	}
	return common.JSONResultWithMessage(fmt.Sprintf("Found %d results:", len(res.Items)), res)
}
