package sheets_tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/registry"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/sheets"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

const service = "sheets"

func getSheetsClient(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*sheets.Client, error) {
	opts, err := sc.ClientOptionsForAccount(ctx, common.AccountFromArgs(ctx, request.GetArguments()))
	if err != nil {
		return nil, err
	}
	return sheets.NewClient(ctx, opts...)
}

// RegisterSheetsTools registers Google Sheets tools with the MCP server
func RegisterSheetsTools(s registry.ToolAdder, sc *server.ServerContext, readOnly bool) error {
	if sc == nil {
		return errors.New("server context is required")
	}

	listTool := mcp.NewTool("list_spreadsheets",
		mcp.WithDescription("List the most recently modified spreadsheets"),
		common.WithUserEmail(),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of spreadsheets to return (default: 25)"),
		),
	)
	s.AddTool(listTool, common.InstrumentedToolHandler("list_spreadsheets", service, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListSpreadsheets(ctx, request, sc)
		}))

	infoTool := mcp.NewTool("get_spreadsheet_info",
		mcp.WithDescription("Get the title and the sheets of a spreadsheet"),
		common.WithUserEmail(),
		mcp.WithString("spreadsheet_id",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
	)
	s.AddTool(infoTool, common.InstrumentedToolHandler("get_spreadsheet_info", service, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetSpreadsheetInfo(ctx, request, sc)
		}))

	readTool := mcp.NewTool("read_sheet_values",
		mcp.WithDescription("Read cell values from a range of a spreadsheet"),
		common.WithUserEmail(),
		mcp.WithString("spreadsheet_id",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
		mcp.WithString("range_name",
			mcp.Description("A1 notation range, e.g. 'Sheet1!A1:C10' (default: A1:Z1000)"),
		),
	)
	s.AddTool(readTool, common.InstrumentedToolHandler("read_sheet_values", service, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReadValues(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	modifyTool := mcp.NewTool("modify_sheet_values",
		mcp.WithDescription("Write values to a range of a spreadsheet, or clear the range"),
		common.WithUserEmail(),
		mcp.WithString("spreadsheet_id",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
		mcp.WithString("range_name",
			mcp.Required(),
			mcp.Description("A1 notation range, e.g. 'Sheet1!A1'"),
		),
		mcp.WithString("values",
			mcp.Description(`JSON array of rows, e.g. [["Name","Age"],["Ada",36]]. Required unless clear_values is true.`),
		),
		mcp.WithString("value_input_option",
			mcp.Description("USER_ENTERED (default) parses formulas and numbers, RAW stores the input as is"),
			mcp.Enum(sheets.InputUserEntered, sheets.InputRaw),
		),
		mcp.WithBoolean("clear_values",
			mcp.Description("Clear the range instead of writing (default: false)"),
		),
	)
	s.AddTool(modifyTool, common.InstrumentedToolHandler("modify_sheet_values", service, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleModifyValues(ctx, request, sc)
		}))

	createTool := mcp.NewTool("create_spreadsheet",
		mcp.WithDescription("Create a new spreadsheet"),
		common.WithUserEmail(),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Title of the spreadsheet"),
		),
		mcp.WithString("sheet_names",
			mcp.Description("Names of the sheets to create, comma-separated"),
		),
	)
	s.AddTool(createTool, common.InstrumentedToolHandler("create_spreadsheet", service, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateSpreadsheet(ctx, request, sc)
		}))

	return nil
}

func handleListSpreadsheets(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client, err := getSheetsClient(ctx, request, sc)
	if err != nil {
		return common.ErrorResult("create Sheets client", err)
	}

	files, err := client.ListSpreadsheets(ctx, int64(request.GetInt("max_results", 25)))
	if err != nil {
		return common.ErrorResult("list spreadsheets", err)
	}
	return common.JSONResult(files)
}

func handleGetSpreadsheetInfo(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	spreadsheetID, err := request.RequireString("spreadsheet_id")
	if err != nil || spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheet_id is required"), nil
	}

	client, err := getSheetsClient(ctx, request, sc)
	if err != nil {
		return common.ErrorResult("create Sheets client", err)
	}

	info, err := client.GetSpreadsheetInfo(ctx, spreadsheetID)
	if err != nil {
		return common.ErrorResult("get spreadsheet", err)
	}
	return common.JSONResult(info)
}

func handleReadValues(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	spreadsheetID, err := request.RequireString("spreadsheet_id")
	if err != nil || spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheet_id is required"), nil
	}

	client, err := getSheetsClient(ctx, request, sc)
	if err != nil {
		return common.ErrorResult("create Sheets client", err)
	}

	values, err := client.ReadValues(ctx, spreadsheetID, request.GetString("range_name", sheets.DefaultRange))
	if err != nil {
		return common.ErrorResult("read values", err)
	}
	if len(values.Values) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No data found in %s.", values.Range)), nil
	}
	return common.JSONResultWithMessage(fmt.Sprintf("Read %d rows from %s:", len(values.Values), values.Range), values.Values)
}

func handleModifyValues(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	spreadsheetID, err := request.RequireString("spreadsheet_id")
	if err != nil || spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheet_id is required"), nil
	}
	rangeName, err := request.RequireString("range_name")
	if err != nil || rangeName == "" {
		return mcp.NewToolResultError("range_name is required"), nil
	}

	clearRange := request.GetBool("clear_values", false)
	var values [][]any
	if !clearRange {
		raw := request.GetString("values", "")
		if raw == "" {
			return mcp.NewToolResultError("values is required unless clear_values is true"), nil
		}
		if values, err = sheets.ParseValues(raw); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	client, err := getSheetsClient(ctx, request, sc)
	if err != nil {
		return common.ErrorResult("create Sheets client", err)
	}

	if clearRange {
		result, err := client.ClearValues(ctx, spreadsheetID, rangeName)
		if err != nil {
			return common.ErrorResult("clear values", err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Cleared %s.", result.Range)), nil
	}

	result, err := client.UpdateValues(ctx, spreadsheetID, rangeName, values, request.GetString("value_input_option", sheets.InputUserEntered))
	if err != nil {
		return common.ErrorResult("update values", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Updated %d cells in %s (%d rows, %d columns).", result.Cells, result.Range, result.Rows, result.Columns)), nil
}

func handleCreateSpreadsheet(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil || title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}

	client, err := getSheetsClient(ctx, request, sc)
	if err != nil {
		return common.ErrorResult("create Sheets client", err)
	}

	info, err := client.CreateSpreadsheet(ctx, title, common.SplitList(request.GetString("sheet_names", "")))
	if err != nil {
		return common.ErrorResult("create spreadsheet", err)
	}
	return common.JSONResultWithMessage("Spreadsheet created successfully:", info)
}
