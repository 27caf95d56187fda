// Package server wires the MCP server to HTTP.
//
// ServerContext carries what tool handlers need at call time: the token
// provider for the configured auth mode, the read-only flag, search
// credentials and the instrumentation sinks. ClientOptionsForAccount turns
// the resolved Google token into client options for any Google API package.
//
// HTTPServer mounts the six OAuth proxy routes, the streamable HTTP MCP
// endpoint at /mcp behind bearer authentication, and the health endpoints.
// Every request gets an X-Request-ID and, when metrics are enabled, is
// counted per normalized path.
//
// MetricsServer exposes Prometheus metrics on a separate listener.
package server
