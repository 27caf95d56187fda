package registry

import (
	"log/slog"
	"sort"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-mcp/internal/logging"
)

// Filter is the set of enabled tool names. A nil Filter enables every tool.
type Filter map[string]struct{}

// NewFilter returns a filter enabling exactly tools.
func NewFilter(tools []string) Filter {
	f := make(Filter, len(tools))
	for _, t := range tools {
		f[t] = struct{}{}
	}
	return f
}

// Enabled reports whether the tool may be registered.
func (f Filter) Enabled(name string) bool {
	if f == nil {
		return true
	}
	_, ok := f[name]
	return ok
}

// Names returns the enabled tool names in sorted order, or nil for an unrestricted filter.
func (f Filter) Names() []string {
	if f == nil {
		return nil
	}
	names := make([]string, 0, len(f))
	for n := range f {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// FilterServerTools removes every registered tool the filter does not enable
// and returns the names it removed. It is the last pass after all modules are
// activated and catches tools registered without going through a Registrar.
func FilterServerTools(s *mcpserver.MCPServer, filter Filter, logger *slog.Logger) []string {
	if filter == nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	var removed []string
	for name := range s.ListTools() {
		if !filter.Enabled(name) {
			removed = append(removed, name)
		}
	}
	if len(removed) == 0 {
		return nil
	}
	sort.Strings(removed)
	s.DeleteTools(removed...)

	for _, name := range removed {
		logger.Debug("removed tool outside the enabled set", logging.Tool(name))
	}
	return removed
}
