// Package chat_tools provides MCP tools for Google Chat.
package chat_tools
