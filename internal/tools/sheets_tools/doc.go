// Package sheets_tools provides MCP tools for Google Sheets.
package sheets_tools
