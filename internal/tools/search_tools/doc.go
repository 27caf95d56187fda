// Package search_tools provides MCP tools for Google Programmable Search.
package search_tools
