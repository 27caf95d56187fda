package sheets_tools

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"testing"

	"github.com/teemow/workspace-mcp/internal/tools/tooltest"
)

func TestRegisterSheetsTools(t *testing.T) {
	tests := []struct {
		name     string
		readOnly bool
		want     []string
	}{
		{
			name: "read-write",
			want: []string{"list_spreadsheets", "get_spreadsheet_info", "read_sheet_values", "modify_sheet_values", "create_spreadsheet"},
		},
		{
			name:     "read-only",
			readOnly: true,
			want:     []string{"list_spreadsheets", "get_spreadsheet_info", "read_sheet_values"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tooltest.NewRecorder()
			if err := RegisterSheetsTools(rec, tooltest.NoAPI(t), tt.readOnly); err != nil {
				t.Fatalf("RegisterSheetsTools() error = %v", err)
			}
			if got := rec.Names(); !slices.Equal(got, tt.want) {
				t.Errorf("registered %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadSheetValues(t *testing.T) {
	sc := tooltest.NewAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tooltest.JSON(w, `{"range":"Sheet1!A1:B2","values":[["Name","Age"],["Ada","36"]]}`)
	}))

	rec := tooltest.NewRecorder()
	if err := RegisterSheetsTools(rec, sc, true); err != nil {
		t.Fatal(err)
	}

	text := tooltest.Text(rec.Call(t, "read_sheet_values", map[string]any{"spreadsheet_id": "s1", "range_name": "Sheet1!A1:B2"}))
	if !strings.HasPrefix(text, "Read 2 rows from Sheet1!A1:B2:") || !strings.Contains(text, `"Ada"`) {
		t.Errorf("unexpected result %s", text)
	}
}

func TestModifySheetValues(t *testing.T) {
	tests := []struct {
		name       string
		args       map[string]any
		handler    http.HandlerFunc
		wantError  bool
		wantOutput string
	}{
		{
			name: "write",
			args: map[string]any{"spreadsheet_id": "s1", "range_name": "A1", "values": `[["x"]]`},
			handler: func(w http.ResponseWriter, r *http.Request) {
				var body map[string]any
				_ = json.NewDecoder(r.Body).Decode(&body)
				if r.URL.Query().Get("valueInputOption") != "USER_ENTERED" {
					t.Errorf("query = %s", r.URL.RawQuery)
				}
				tooltest.JSON(w, `{"updatedRange":"Sheet1!A1","updatedRows":1,"updatedColumns":1,"updatedCells":1}`)
			},
			wantOutput: "Updated 1 cells in Sheet1!A1",
		},
		{
			name: "clear",
			args: map[string]any{"spreadsheet_id": "s1", "range_name": "A1:B2", "clear_values": true},
			handler: func(w http.ResponseWriter, r *http.Request) {
				if !strings.HasSuffix(r.URL.Path, ":clear") {
					t.Errorf("path = %s", r.URL.Path)
				}
				tooltest.JSON(w, `{"clearedRange":"Sheet1!A1:B2"}`)
			},
			wantOutput: "Cleared Sheet1!A1:B2.",
		},
		{
			name:       "missing values",
			args:       map[string]any{"spreadsheet_id": "s1", "range_name": "A1"},
			wantError:  true,
			wantOutput: "values is required",
		},
		{
			name:       "invalid values",
			args:       map[string]any{"spreadsheet_id": "s1", "range_name": "A1", "values": "x,y"},
			wantError:  true,
			wantOutput: "JSON array of rows",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := tooltest.NoAPI(t)
			if tt.handler != nil {
				sc = tooltest.NewAPI(t, tt.handler)
			}
			rec := tooltest.NewRecorder()
			if err := RegisterSheetsTools(rec, sc, false); err != nil {
				t.Fatal(err)
			}

			result := rec.Call(t, "modify_sheet_values", tt.args)
			if result.IsError != tt.wantError {
				t.Errorf("IsError = %v, want %v: %s", result.IsError, tt.wantError, tooltest.Text(result))
			}
			if !strings.Contains(tooltest.Text(result), tt.wantOutput) {
				t.Errorf("result %q does not contain %q", tooltest.Text(result), tt.wantOutput)
			}
		})
	}
}

func TestCreateSpreadsheet(t *testing.T) {
	sc := tooltest.NewAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tooltest.JSON(w, `{"spreadsheetId":"new","properties":{"title":"Plan"},"sheets":[{"properties":{"title":"Q1"}}]}`)
	}))

	rec := tooltest.NewRecorder()
	if err := RegisterSheetsTools(rec, sc, false); err != nil {
		t.Fatal(err)
	}

	text := tooltest.Text(rec.Call(t, "create_spreadsheet", map[string]any{"title": "Plan", "sheet_names": "Q1"}))
	if !strings.Contains(text, "Spreadsheet created successfully:") || !strings.Contains(text, `"spreadsheetId": "new"`) {
		t.Errorf("unexpected result %s", text)
	}
}
