package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/workspace-mcp/internal/registry"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tiers"
)

// serviceTitles are the section headings of the generated reference.
var serviceTitles = map[string]string{
	"gmail":    "Gmail Tools",
	"drive":    "Google Drive Tools",
	"calendar": "Google Calendar Tools",
	"docs":     "Google Docs Tools",
	"sheets":   "Google Sheets Tools",
	"chat":     "Google Chat Tools",
	"forms":    "Google Forms Tools",
	"slides":   "Google Slides Tools",
	"tasks":    "Google Tasks Tools",
	"search":   "Google Custom Search Tools",
}

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
		tiersFile  string
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
This command introspects the registered tools and outputs their documentation
in markdown format, ensuring the documentation is always accurate and in sync
with the actual tool implementations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := tiers.Load(tiersFile)
			if err != nil {
				return err
			}

			tools, err := collectTools(cmd.Context())
			if err != nil {
				return err
			}
			markdown := generateToolsMarkdown(tools, table)

			if outputFile == "" {
				_, err := io.WriteString(cmd.OutOrStdout(), markdown)
				return err
			}
			if err := os.WriteFile(outputFile, []byte(markdown), 0o644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Documentation written to: %s\n", outputFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&tiersFile, "tiers-file", "", "Tool tiers YAML file (default: built-in table)")

	return cmd
}

// collectTools registers every service with write tools enabled and returns
// the resulting tool definitions. No credentials are needed for this.
func collectTools(ctx context.Context) ([]mcp.Tool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	sc, err := server.NewServerContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = sc.Shutdown()
	}()

	mcpSrv := mcpserver.NewMCPServer(serverName, version,
		mcpserver.WithToolCapabilities(true),
	)

	logger := slog.New(slog.DiscardHandler)
	if _, err := newActivator(sc, false, logger).Activate(mcpSrv, registry.KnownServices); err != nil {
		return nil, err
	}

	serverTools := mcpSrv.ListTools()
	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, serverTool := range serverTools {
		tools = append(tools, serverTool.Tool)
	}
	return tools, nil
}

func generateToolsMarkdown(tools []mcp.Tool, table *tiers.Table) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document provides a complete reference of all tools available when running workspace-mcp.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	toolsByCategory := groupToolsByCategory(tools, table)

	// Table of contents
	sb.WriteString("## Table of Contents\n\n")
	categories := make([]string, 0, len(toolsByCategory))
	for category := range toolsByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		anchor := strings.ToLower(strings.ReplaceAll(category, " ", "-"))
		fmt.Fprintf(&sb, "- [%s](#%s)\n", category, anchor)
	}
	sb.WriteString("\n")

	sb.WriteString("## Tool Tiers\n\n")
	sb.WriteString("`TOOL_TIER` limits the enabled tools to a tier. Tiers are cumulative:\n\n")
	sb.WriteString("- **core:** the essential tools of each service\n")
	sb.WriteString("- **extended:** core plus listing and editing tools\n")
	sb.WriteString("- **complete:** every tool\n\n")
	sb.WriteString("`TOOLS` restricts the services, e.g. `TOOLS=gmail,drive`. Write tools are not registered in read-only mode.\n\n")

	sb.WriteString("## Account Selection\n\n")
	sb.WriteString("Google tools accept an optional `user_google_email` parameter:\n\n")
	sb.WriteString("- **Default behavior:** the authenticated user of the request is used\n")
	sb.WriteString("- **Stored credentials:** in file and session mode a stored account can be named explicitly\n\n")

	for _, category := range categories {
		categoryTools := toolsByCategory[category]
		sort.Slice(categoryTools, func(i, j int) bool {
			return categoryTools[i].Name < categoryTools[j].Name
		})

		fmt.Fprintf(&sb, "## %s\n\n", category)

		for _, tool := range categoryTools {
			sb.WriteString(generateToolMarkdown(tool, table))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func groupToolsByCategory(tools []mcp.Tool, table *tiers.Table) map[string][]mcp.Tool {
	categories := make(map[string][]mcp.Tool)
	for _, tool := range tools {
		category := "Other"
		if _, service, ok := table.TierOf(tool.Name); ok {
			if title, ok := serviceTitles[service]; ok {
				category = title
			}
		}
		categories[category] = append(categories[category], tool)
	}
	return categories
}

func generateToolMarkdown(tool mcp.Tool, table *tiers.Table) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### %s\n\n", tool.Name)

	if tool.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", tool.Description)
	}
	if tier, _, ok := table.TierOf(tool.Name); ok {
		fmt.Fprintf(&sb, "**Tier:** %s\n\n", tier)
	}

	if len(tool.InputSchema.Properties) > 0 {
		sb.WriteString("**Arguments:**\n")

		// Sort properties for consistent output
		propNames := make([]string, 0, len(tool.InputSchema.Properties))
		for name := range tool.InputSchema.Properties {
			propNames = append(propNames, name)
		}
		sort.Strings(propNames)

		for _, name := range propNames {
			propMap, ok := tool.InputSchema.Properties[name].(map[string]any)
			if !ok {
				continue
			}

			requiredStr := "optional"
			if slices.Contains(tool.InputSchema.Required, name) {
				requiredStr = "required"
			}

			fmt.Fprintf(&sb, "- `%s` (%s): ", name, requiredStr)
			if desc, ok := propMap["description"].(string); ok {
				sb.WriteString(desc)
			} else {
				fmt.Fprintf(&sb, "%s parameter", getPropertyType(propMap))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func getPropertyType(prop map[string]any) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	if alts, ok := prop["oneOf"].([]any); ok {
		types := make([]string, 0, len(alts))
		for _, alt := range alts {
			if m, ok := alt.(map[string]any); ok {
				types = append(types, getPropertyType(m))
			}
		}
		return strings.Join(types, " or ")
	}
	return "any"
}
