// Package gmail_tools provides MCP tools for Gmail.
//
// Read-only tools:
//   - search_gmail_messages: search with Gmail query syntax
//   - get_gmail_message_content: full message with decoded body
//   - list_gmail_labels: system and user labels
//
// Write tools, omitted in read-only mode:
//   - send_gmail_message: send a new message or a reply within a thread
//   - modify_gmail_message_labels: add or remove labels, for example to archive
package gmail_tools
