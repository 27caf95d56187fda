// Package slides_tools provides MCP tools for Google Slides.
package slides_tools
