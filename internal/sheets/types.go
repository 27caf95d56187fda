package sheets

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"
)

// SpreadsheetMimeType is the Drive MIME type of Google Sheets files.
const SpreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// Value input options accepted by ModifyValues.
const (
	InputUserEntered = "USER_ENTERED"
	InputRaw         = "RAW"
)

// SpreadsheetFile is a spreadsheet as listed by Drive.
type SpreadsheetFile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ModifiedTime time.Time `json:"modifiedTime,omitzero"`
	WebViewLink  string    `json:"webViewLink,omitempty"`
}

// SpreadsheetInfo describes a spreadsheet and its sheets.
type SpreadsheetInfo struct {
	ID       string      `json:"spreadsheetId"`
	Title    string      `json:"title"`
	Locale   string      `json:"locale,omitempty"`
	TimeZone string      `json:"timeZone,omitempty"`
	URL      string      `json:"url"`
	Sheets   []SheetInfo `json:"sheets"`
}

// SheetInfo describes one sheet (tab) of a spreadsheet.
type SheetInfo struct {
	ID          int64  `json:"sheetId"`
	Title       string `json:"title"`
	Index       int64  `json:"index"`
	RowCount    int64  `json:"rowCount"`
	ColumnCount int64  `json:"columnCount"`
}

// Values is the content of a range.
type Values struct {
	Range  string  `json:"range"`
	Values [][]any `json:"values"`
}

// UpdateResult reports what a modification changed.
type UpdateResult struct {
	Range   string `json:"range"`
	Rows    int64  `json:"updatedRows,omitempty"`
	Columns int64  `json:"updatedColumns,omitempty"`
	Cells   int64  `json:"updatedCells,omitempty"`
	Cleared bool   `json:"cleared,omitempty"`
}

// ParseValues parses a JSON array of rows. A flat array is a single row.
func ParseValues(data string) ([][]any, error) {
	var rows [][]any
	if err := json.Unmarshal([]byte(data), &rows); err == nil {
		if len(rows) == 0 {
			return nil, errors.New("values must not be empty")
		}
		return rows, nil
	}

	var row []any
	if err := json.Unmarshal([]byte(data), &row); err != nil {
		return nil, fmt.Errorf("values must be a JSON array of rows, e.g. [[\"A1\", \"B1\"], [\"A2\", \"B2\"]]: %w", err)
	}
	if len(row) == 0 {
		return nil, errors.New("values must not be empty")
	}
	return [][]any{row}, nil
}

// SpreadsheetURL returns the web link of a spreadsheet.
func SpreadsheetURL(id string) string {
	return "https://docs.google.com/spreadsheets/d/" + id + "/edit"
}

func toSpreadsheetFile(f *drive.File) SpreadsheetFile {
	if f == nil {
		return SpreadsheetFile{}
	}
	file := SpreadsheetFile{ID: f.Id, Name: f.Name, WebViewLink: f.WebViewLink}
	if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
		file.ModifiedTime = t
	}
	return file
}

func toSpreadsheetInfo(s *sheets.Spreadsheet) *SpreadsheetInfo {
	if s == nil {
		return &SpreadsheetInfo{}
	}
	info := &SpreadsheetInfo{
		ID:  s.SpreadsheetId,
		URL: s.SpreadsheetUrl,
	}
	if info.URL == "" {
		info.URL = SpreadsheetURL(s.SpreadsheetId)
	}
	if p := s.Properties; p != nil {
		info.Title = p.Title
		info.Locale = p.Locale
		info.TimeZone = p.TimeZone
	}
	for _, sh := range s.Sheets {
		if sh == nil || sh.Properties == nil {
			continue
		}
		sheet := SheetInfo{
			ID:    sh.Properties.SheetId,
			Title: sh.Properties.Title,
			Index: sh.Properties.Index,
		}
		if g := sh.Properties.GridProperties; g != nil {
			sheet.RowCount = g.RowCount
			sheet.ColumnCount = g.ColumnCount
		}
		info.Sheets = append(info.Sheets, sheet)
	}
	return info
}
