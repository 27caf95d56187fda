package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/teemow/workspace-mcp/internal/config"
	"github.com/teemow/workspace-mcp/internal/tiers"
)

func newTiersCmd() *cobra.Command {
	var (
		tier  string
		tools string
		file  string
	)

	cmd := &cobra.Command{
		Use:   "tiers",
		Short: "Show the tools enabled by a tier and services selection",
		Long: `Show which services and tools the server would enable for a given
TOOL_TIER and TOOLS combination, without starting it.

Flags default to the environment, so running "workspace-mcp tiers" prints
what "workspace-mcp serve" would register.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("tier") {
				cfg.ToolTier = tier
			}
			if cmd.Flags().Changed("tools") {
				cfg.Tools = tools
			}
			if cmd.Flags().Changed("file") {
				cfg.ToolTiersFile = file
			}
			if err := cfg.Normalize(); err != nil {
				return err
			}

			table, err := tiers.Load(cfg.ToolTiersFile)
			if err != nil {
				return err
			}
			return writeTierReport(cmd.OutOrStdout(), table, cfg.Tier(), cfg.Services())
		},
	}

	cmd.Flags().StringVar(&tier, "tier", "", "Tool tier: core, extended or complete")
	cmd.Flags().StringVar(&tools, "tools", "", "Services, comma or space separated")
	cmd.Flags().StringVar(&file, "file", "", "Tool tiers YAML file (default: built-in table)")

	return cmd
}

// writeTierReport prints one line per enabled tool with its service and the
// tier that introduces it.
func writeTierReport(w io.Writer, table *tiers.Table, tier string, services []string) error {
	ts, err := resolveToolset(table, tier, services)
	if err != nil {
		return err
	}

	upTo := tier
	if upTo == "" {
		upTo = tiers.TierComplete
		fmt.Fprintln(w, "Tier: none (all tools of the selected services)")
	} else {
		fmt.Fprintf(w, "Tier: %s\n", tier)
	}
	fmt.Fprintf(w, "Services: %s\n\n", strings.Join(ts.Services, ", "))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SERVICE\tTOOL\tTIER")

	total := 0
	for _, service := range ts.Services {
		names, err := table.ToolsForService(service, upTo)
		if err != nil {
			return err
		}
		for _, name := range names {
			if !ts.Filter.Enabled(name) {
				continue
			}
			introduced, _, _ := table.TierOf(name)
			fmt.Fprintf(tw, "%s\t%s\t%s\n", service, name, introduced)
			total++
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d tools\n", total)
	return nil
}
