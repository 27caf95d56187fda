package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// DefaultRange is read when no range is given.
const DefaultRange = "A1:Z1000"

const infoFields = "spreadsheetId,spreadsheetUrl,properties(title,locale,timeZone),sheets(properties(sheetId,title,index,gridProperties(rowCount,columnCount)))"

// Client wraps the Sheets and Drive services
type Client struct {
	sheetsService *sheets.Service
	driveService  *drive.Service
}

// NewClient creates a Sheets client. opts carry the caller's credentials.
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	sheetsService, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}
	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return &Client{sheetsService: sheetsService, driveService: driveService}, nil
}

// ListSpreadsheets returns the most recently modified spreadsheets.
func (c *Client) ListSpreadsheets(ctx context.Context, pageSize int64) ([]SpreadsheetFile, error) {
	if pageSize <= 0 {
		pageSize = 25
	}
	res, err := c.driveService.Files.List().
		Q(fmt.Sprintf("mimeType='%s' and trashed=false", SpreadsheetMimeType)).
		PageSize(min(pageSize, 1000)).
		OrderBy("modifiedTime desc").
		Fields("files(id,name,modifiedTime,webViewLink)").
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list spreadsheets: %w", err)
	}

	files := make([]SpreadsheetFile, 0, len(res.Files))
	for _, f := range res.Files {
		files = append(files, toSpreadsheetFile(f))
	}
	return files, nil
}

// GetSpreadsheetInfo returns the title and sheets of a spreadsheet.
func (c *Client) GetSpreadsheetInfo(ctx context.Context, spreadsheetID string) (*SpreadsheetInfo, error) {
	s, err := c.sheetsService.Spreadsheets.Get(spreadsheetID).Fields(infoFields).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet %s: %w", spreadsheetID, err)
	}
	return toSpreadsheetInfo(s), nil
}

// ReadValues returns the formatted values of rangeName, DefaultRange when empty.
func (c *Client) ReadValues(ctx context.Context, spreadsheetID, rangeName string) (*Values, error) {
	if strings.TrimSpace(rangeName) == "" {
		rangeName = DefaultRange
	}
	vr, err := c.sheetsService.Spreadsheets.Values.Get(spreadsheetID, rangeName).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rangeName, err)
	}
	values := vr.Values
	if values == nil {
		values = [][]any{}
	}
	return &Values{Range: vr.Range, Values: values}, nil
}

// UpdateValues writes values to rangeName. inputOption is InputUserEntered or InputRaw.
func (c *Client) UpdateValues(ctx context.Context, spreadsheetID, rangeName string, values [][]any, inputOption string) (*UpdateResult, error) {
	if rangeName == "" {
		return nil, errors.New("range is required")
	}
	if len(values) == 0 {
		return nil, errors.New("values are required")
	}
	switch inputOption {
	case "":
		inputOption = InputUserEntered
	case InputUserEntered, InputRaw:
	default:
		return nil, fmt.Errorf("invalid value input option %q, use %s or %s", inputOption, InputUserEntered, InputRaw)
	}

	res, err := c.sheetsService.Spreadsheets.Values.Update(spreadsheetID, rangeName, &sheets.ValueRange{Values: values}).
		ValueInputOption(inputOption).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", rangeName, err)
	}
	return &UpdateResult{
		Range:   res.UpdatedRange,
		Rows:    res.UpdatedRows,
		Columns: res.UpdatedColumns,
		Cells:   res.UpdatedCells,
	}, nil
}

// ClearValues clears the values of rangeName, keeping formatting.
func (c *Client) ClearValues(ctx context.Context, spreadsheetID, rangeName string) (*UpdateResult, error) {
	if rangeName == "" {
		return nil, errors.New("range is required")
	}
	res, err := c.sheetsService.Spreadsheets.Values.Clear(spreadsheetID, rangeName, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to clear %s: %w", rangeName, err)
	}
	return &UpdateResult{Range: res.ClearedRange, Cleared: true}, nil
}

// CreateSpreadsheet creates a spreadsheet. Without sheet names it gets the default first sheet.
func (c *Client) CreateSpreadsheet(ctx context.Context, title string, sheetNames []string) (*SpreadsheetInfo, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errors.New("title is required")
	}

	req := &sheets.Spreadsheet{Properties: &sheets.SpreadsheetProperties{Title: title}}
	for _, name := range sheetNames {
		req.Sheets = append(req.Sheets, &sheets.Sheet{Properties: &sheets.SheetProperties{Title: name}})
	}

	s, err := c.sheetsService.Spreadsheets.Create(req).Fields(infoFields).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create spreadsheet: %w", err)
	}
	return toSpreadsheetInfo(s), nil
}
