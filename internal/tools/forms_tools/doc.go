// Package forms_tools provides MCP tools for Google Forms.
package forms_tools
