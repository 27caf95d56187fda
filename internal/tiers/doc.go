// Package tiers resolves tool tiers into the set of enabled tool names.
//
// The table is a YAML document keyed by service, listing the tools that
// become available at each of the core, extended and complete tiers. A
// built-in table is embedded; WORKSPACE_MCP_TOOL_TIERS_FILE may point at a
// replacement with the same shape.
package tiers
