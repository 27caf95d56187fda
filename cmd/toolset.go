package cmd

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/teemow/workspace-mcp/internal/registry"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tiers"
	"github.com/teemow/workspace-mcp/internal/tools/calendar_tools"
	"github.com/teemow/workspace-mcp/internal/tools/chat_tools"
	"github.com/teemow/workspace-mcp/internal/tools/docs_tools"
	"github.com/teemow/workspace-mcp/internal/tools/drive_tools"
	"github.com/teemow/workspace-mcp/internal/tools/forms_tools"
	"github.com/teemow/workspace-mcp/internal/tools/gmail_tools"
	"github.com/teemow/workspace-mcp/internal/tools/search_tools"
	"github.com/teemow/workspace-mcp/internal/tools/sheets_tools"
	"github.com/teemow/workspace-mcp/internal/tools/slides_tools"
	"github.com/teemow/workspace-mcp/internal/tools/tasks_tools"
)

// toolset is the result of combining TOOL_TIER with the TOOLS filter.
type toolset struct {
	Tier     string
	Services []string

	// Filter is nil when every tool of the selected services is enabled.
	Filter registry.Filter
}

// resolveToolset decides which services to activate and which tools to keep.
//
// With a tier, the enabled tools are the tier's tools restricted to the
// services filter, and the services are the filter or, without one, the
// services contributing to the tier. Without a tier, the services are the
// filter or every known service and no per-tool filter applies.
func resolveToolset(table *tiers.Table, tier string, services []string) (toolset, error) {
	ts := toolset{Tier: tier}

	if tier == "" {
		ts.Services = slices.Clone(services)
		if len(ts.Services) == 0 {
			ts.Services = slices.Clone(registry.KnownServices)
		}
		return ts, nil
	}

	tools, suggested, err := table.Resolve(tier, services)
	if err != nil {
		return toolset{}, err
	}
	ts.Filter = registry.NewFilter(tools)
	ts.Services = slices.Clone(services)
	if len(ts.Services) == 0 {
		ts.Services = suggested
	}
	return ts, nil
}

// newActivator binds every service tool module to sc.
func newActivator(sc *server.ServerContext, readOnly bool, logger *slog.Logger) *registry.Activator {
	a := registry.NewActivator(logger)
	modules := map[string]func(registry.ToolAdder, *server.ServerContext, bool) error{
		"gmail":    gmail_tools.RegisterGmailTools,
		"drive":    drive_tools.RegisterDriveTools,
		"calendar": calendar_tools.RegisterCalendarTools,
		"docs":     docs_tools.RegisterDocsTools,
		"sheets":   sheets_tools.RegisterSheetsTools,
		"chat":     chat_tools.RegisterChatTools,
		"forms":    forms_tools.RegisterFormsTools,
		"slides":   slides_tools.RegisterSlidesTools,
		"tasks":    tasks_tools.RegisterTasksTools,
		"search":   search_tools.RegisterSearchTools,
	}
	for service, register := range modules {
		a.Register(service, func(s registry.ToolAdder) error {
			return register(s, sc, readOnly)
		})
	}
	return a
}

// activateTools registers the tools of ts on the registrar's server and
// removes anything outside the enabled set. It returns the activated services.
func activateTools(r *registry.Registrar, a *registry.Activator, ts toolset, logger *slog.Logger) ([]string, error) {
	activated, err := a.Activate(r, ts.Services)
	if err != nil {
		return nil, fmt.Errorf("failed to activate tools: %w", err)
	}
	registry.FilterServerTools(r.Server(), ts.Filter, logger)
	return activated, nil
}
