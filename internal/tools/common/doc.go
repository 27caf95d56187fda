// Package common holds helpers shared by the service tool packages: the
// user_google_email argument, instrumentation of tool handlers, and the
// conversion of results and errors into MCP tool results.
package common
