// Package registry decides which MCP tools a server exposes.
//
// A Filter holds the set of enabled tool names resolved from the tool tier.
// Registrar wraps an MCP server so that tool modules register through it and
// tools outside the filter are skipped at registration time. Activator maps
// service keys such as "gmail" or "drive" to the functions that register the
// tools of that service, and activates them in a stable order.
package registry
