package slides_tools

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/registry"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/slides"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

const service = "slides"

func getSlidesClient(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*slides.Client, error) {
	opts, err := sc.ClientOptionsForAccount(ctx, common.AccountFromArgs(ctx, request.GetArguments()))
	if err != nil {
		return nil, err
	}
	return slides.NewClient(ctx, opts...)
}

// RegisterSlidesTools registers Google Slides tools with the MCP server
func RegisterSlidesTools(s registry.ToolAdder, sc *server.ServerContext, readOnly bool) error {
	if sc == nil {
		return errors.New("server context is required")
	}

	if !readOnly {
		createTool := mcp.NewTool("create_presentation",
			mcp.WithDescription("Create a new Google Slides presentation"),
			common.WithUserEmail(),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("Title of the presentation"),
			),
		)
		s.AddTool(createTool, common.InstrumentedToolHandler("create_presentation", service, instrumentation.OperationCreate, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				title, err := request.RequireString("title")
				if err != nil || title == "" {
					return mcp.NewToolResultError("title is required"), nil
				}
				client, err := getSlidesClient(ctx, request, sc)
				if err != nil {
					return common.ErrorResult("create Slides client", err)
				}
				p, err := client.CreatePresentation(ctx, title)
				if err != nil {
					return common.ErrorResult("create presentation", err)
				}
				return common.JSONResultWithMessage("Presentation created successfully:", p)
			}))
	}

	getTool := mcp.NewTool("get_presentation",
		mcp.WithDescription("Get a presentation with the text of each slide"),
		common.WithUserEmail(),
		mcp.WithString("presentation_id",
			mcp.Required(),
			mcp.Description("The ID of the presentation"),
		),
	)
	s.AddTool(getTool, common.InstrumentedToolHandler("get_presentation", service, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := request.RequireString("presentation_id")
			if err != nil || id == "" {
				return mcp.NewToolResultError("presentation_id is required"), nil
			}
			client, err := getSlidesClient(ctx, request, sc)
			if err != nil {
				return common.ErrorResult("create Slides client", err)
			}
			p, err := client.GetPresentation(ctx, id)
			if err != nil {
				return common.ErrorResult("get presentation", err)
			}
			return common.JSONResult(p)
		}))

	getPageTool := mcp.NewTool("get_page",
		mcp.WithDescription("Get the elements of one slide of a presentation"),
		common.WithUserEmail(),
		mcp.WithString("presentation_id",
			mcp.Required(),
			mcp.Description("The ID of the presentation"),
		),
		mcp.WithString("page_object_id",
			mcp.Required(),
			mcp.Description("The object ID of the slide, as returned by get_presentation"),
		),
	)
	s.AddTool(getPageTool, common.InstrumentedToolHandler("get_page", service, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := request.RequireString("presentation_id")
			if err != nil || id == "" {
				return mcp.NewToolResultError("presentation_id is required"), nil
			}
			pageID, err := request.RequireString("page_object_id")
			if err != nil || pageID == "" {
				return mcp.NewToolResultError("page_object_id is required"), nil
			}
			client, err := getSlidesClient(ctx, request, sc)
			if err != nil {
				return common.ErrorResult("create Slides client", err)
			}
			page, err := client.GetPage(ctx, id, pageID)
			if err != nil {
				return common.ErrorResult("get page", err)
			}
			return common.JSONResult(page)
		}))

	return nil
}
