package forms_tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/workspace-mcp/internal/forms"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/registry"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

const service = "forms"

func getFormsClient(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*forms.Client, error) {
	opts, err := sc.ClientOptionsForAccount(ctx, common.AccountFromArgs(ctx, request.GetArguments()))
	if err != nil {
		return nil, err
	}
	return forms.NewClient(ctx, opts...)
}

// RegisterFormsTools registers Google Forms tools with the MCP server
func RegisterFormsTools(s registry.ToolAdder, sc *server.ServerContext, readOnly bool) error {
	if sc == nil {
		return errors.New("server context is required")
	}

	if !readOnly {
		createTool := mcp.NewTool("create_form",
			mcp.WithDescription("Create a new, empty Google Form"),
			common.WithUserEmail(),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("Title shown to respondents"),
			),
			mcp.WithString("description",
				mcp.Description("Description shown below the title"),
			),
			mcp.WithString("document_title",
				mcp.Description("Title of the form file in Drive (default: the title)"),
			),
		)
		s.AddTool(createTool, common.InstrumentedToolHandler("create_form", service, instrumentation.OperationCreate, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleCreateForm(ctx, request, sc)
			}))
	}

	getTool := mcp.NewTool("get_form",
		mcp.WithDescription("Get a form with its questions and links"),
		common.WithUserEmail(),
		mcp.WithString("form_id",
			mcp.Required(),
			mcp.Description("The ID of the form"),
		),
	)
	s.AddTool(getTool, common.InstrumentedToolHandler("get_form", service, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetForm(ctx, request, sc)
		}))

	listResponsesTool := mcp.NewTool("list_form_responses",
		mcp.WithDescription("List the responses of a form with answers labeled by question"),
		common.WithUserEmail(),
		mcp.WithString("form_id",
			mcp.Required(),
			mcp.Description("The ID of the form"),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Maximum number of responses to return (default: 50)"),
		),
		mcp.WithString("page_token",
			mcp.Description("Token of the page to return, from a previous call"),
		),
	)
	s.AddTool(listResponsesTool, common.InstrumentedToolHandler("list_form_responses", service, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListResponses(ctx, request, sc)
		}))

	return nil
}

func handleCreateForm(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil || title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}

	client, err := getFormsClient(ctx, request, sc)
	if err != nil {
		return common.ErrorResult("create Forms client", err)
	}

	form, err := client.CreateForm(ctx, title, request.GetString("description", ""), request.GetString("document_title", ""))
	if err != nil {
		return common.ErrorResult("create form", err)
	}
	return common.JSONResultWithMessage("Form created successfully:", form)
}

func handleGetForm(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	formID, err := request.RequireString("form_id")
	if err != nil || formID == "" {
		return mcp.NewToolResultError("form_id is required"), nil
	}

	client, err := getFormsClient(ctx, request, sc)
	if err != nil {
		return common.ErrorResult("create Forms client", err)
	}

	form, err := client.GetForm(ctx, formID)
	if err != nil {
		return common.ErrorResult("get form", err)
	}
	return common.JSONResult(form)
}

func handleListResponses(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	formID, err := request.RequireString("form_id")
	if err != nil || formID == "" {
		return mcp.NewToolResultError("form_id is required"), nil
	}

	client, err := getFormsClient(ctx, request, sc)
	if err != nil {
		return common.ErrorResult("create Forms client", err)
	}

	page, err := client.ListResponses(ctx, formID, int64(request.GetInt("page_size", forms.DefaultPageSize)), request.GetString("page_token", ""))
	if err != nil {
		return common.ErrorResult("list responses", err)
	}
	if len(page.Responses) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No responses for form %s", formID)), nil
	}
	return common.JSONResultWithMessage(fmt.Sprintf("Found %d responses:", len(page.Responses)), page)
}
