package registry

import (
	"log/slog"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-mcp/internal/logging"
)

// ToolAdder is the registration surface tool modules depend on.
// *mcpserver.MCPServer and *Registrar both satisfy it.
type ToolAdder interface {
	AddTool(tool mcp.Tool, handler mcpserver.ToolHandlerFunc)
}

// Registrar forwards AddTool to an MCP server, dropping tools the filter does not enable.
type Registrar struct {
	server *mcpserver.MCPServer
	filter Filter
	logger *slog.Logger

	mu         sync.Mutex
	registered []string
	skipped    []string
}

// NewRegistrar wraps s. A nil filter registers everything.
func NewRegistrar(s *mcpserver.MCPServer, filter Filter, logger *slog.Logger) *Registrar {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registrar{server: s, filter: filter, logger: logger}
}

// AddTool registers tool when it is enabled.
func (r *Registrar) AddTool(tool mcp.Tool, handler mcpserver.ToolHandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.filter.Enabled(tool.Name) {
		r.skipped = append(r.skipped, tool.Name)
		r.logger.Debug("skipping tool outside the enabled set", logging.Tool(tool.Name))
		return
	}
	r.registered = append(r.registered, tool.Name)
	r.server.AddTool(tool, handler)
}

// Registered returns the names of the registered tools in registration order.
func (r *Registrar) Registered() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.registered...)
}

// Skipped returns the names of the tools the filter rejected.
func (r *Registrar) Skipped() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.skipped...)
}

// Server returns the wrapped MCP server.
func (r *Registrar) Server() *mcpserver.MCPServer {
	return r.server
}
