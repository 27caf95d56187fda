// Package config decodes the server configuration from the process environment.
//
// Variables are declared as envdecode struct tags on Config. A dotenv file is
// loaded first (WORKSPACE_MCP_ENV_FILE, or ./.env when present) without
// overriding variables that are already set.
//
// The bootstrap-relevant variables are:
//   - TOOL_TIER: core, extended or complete; empty means no tier
//   - TOOLS: services filter, comma and/or space separated
//   - PORT, falling back to WORKSPACE_MCP_PORT, then 8000
package config
