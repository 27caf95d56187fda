// Package cmd implements the command-line interface for workspace-mcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server (streamable HTTP or stdio)
//   - tiers: Show which tools a tier and services selection enables
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
// Its settings come from the environment (optionally a .env file) and can be
// overridden with flags.
package cmd
