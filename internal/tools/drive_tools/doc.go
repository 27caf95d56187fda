// Package drive_tools provides MCP tools for Google Drive.
//
// # Available Tools
//
//   - search_drive_files: Search files by free text or Drive query syntax
//   - get_drive_file_content: Read a file; Docs, Sheets and Slides are exported to text
//   - list_drive_items: List the contents of a folder
//   - create_drive_file: Create a file from text or base64 content (not in read-only mode)
package drive_tools
