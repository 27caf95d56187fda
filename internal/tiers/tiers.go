package tiers

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sort"

	"sigs.k8s.io/yaml"

	"github.com/teemow/workspace-mcp/internal/registry"
)

// Tier names in ascending order. Each tier includes the tools of the tiers before it.
const (
	TierCore     = "core"
	TierExtended = "extended"
	TierComplete = "complete"
)

// Names lists the valid tiers in ascending order.
var Names = []string{TierCore, TierExtended, TierComplete}

// ErrUnknownTier is returned when a tier name is not one of Names.
var ErrUnknownTier = errors.New("unknown tool tier")

//go:embed tool_tiers.yaml
var defaultTable []byte

// serviceTiers holds the tools introduced at each tier for one service.
type serviceTiers struct {
	Core     []string `json:"core"`
	Extended []string `json:"extended"`
	Complete []string `json:"complete"`
}

func (s serviceTiers) introducedAt(tier string) []string {
	switch tier {
	case TierCore:
		return s.Core
	case TierExtended:
		return s.Extended
	case TierComplete:
		return s.Complete
	}
	return nil
}

// Table maps services to their tiered tool lists.
type Table struct {
	services map[string]serviceTiers
}

// Default returns the table compiled into the binary.
func Default() (*Table, error) {
	return Parse(defaultTable)
}

// Load reads the tier table from path, or returns the built-in table when path is empty.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tool tiers file: %w", err)
	}
	table, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid tool tiers file %s: %w", path, err)
	}
	return table, nil
}

// Parse decodes a YAML tier table. A tool may appear only once across all
// services and tiers.
func Parse(data []byte) (*Table, error) {
	services := make(map[string]serviceTiers)
	if err := yaml.Unmarshal(data, &services); err != nil {
		return nil, fmt.Errorf("failed to parse tool tiers: %w", err)
	}
	if len(services) == 0 {
		return nil, errors.New("tool tiers table is empty")
	}

	seen := make(map[string]string)
	for service, st := range services {
		for _, tier := range Names {
			for _, tool := range st.introducedAt(tier) {
				if prev, ok := seen[tool]; ok {
					return nil, fmt.Errorf("tool %q listed twice (%s and %s/%s)", tool, prev, service, tier)
				}
				seen[tool] = service + "/" + tier
			}
		}
	}

	return &Table{services: services}, nil
}

// ValidTier reports whether tier is one of Names.
func ValidTier(tier string) bool {
	return slices.Contains(Names, tier)
}

// Services returns the services present in the table in activation order
// (registry.KnownServices). Services the registry does not know follow,
// sorted by name.
func (t *Table) Services() []string {
	names := make([]string, 0, len(t.services))
	for _, name := range registry.KnownServices {
		if _, ok := t.services[name]; ok {
			names = append(names, name)
		}
	}
	var extra []string
	for name := range t.services {
		if !slices.Contains(registry.KnownServices, name) {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

// ToolsForService returns every tool available to service at tier, lower tiers first.
func (t *Table) ToolsForService(service, tier string) ([]string, error) {
	if !ValidTier(tier) {
		return nil, fmt.Errorf("%w: %q (valid: %v)", ErrUnknownTier, tier, Names)
	}
	st, ok := t.services[service]
	if !ok {
		return nil, nil
	}

	var tools []string
	for _, name := range Names {
		tools = append(tools, st.introducedAt(name)...)
		if name == tier {
			break
		}
	}
	return tools, nil
}

// TierOf returns the tier at which tool is introduced and the service it belongs to.
func (t *Table) TierOf(tool string) (tier, service string, ok bool) {
	for svc, st := range t.services {
		for _, name := range Names {
			if slices.Contains(st.introducedAt(name), tool) {
				return name, svc, true
			}
		}
	}
	return "", "", false
}

// Resolve returns the tools enabled at tier and the services that contribute
// at least one of them.
//
// When services is non-empty only those services are considered. Services
// missing from the table are logged and ignored. Both results follow the
// order of Services, whatever the order of the filter.
func (t *Table) Resolve(tier string, services []string) (tools []string, suggested []string, err error) {
	if !ValidTier(tier) {
		return nil, nil, fmt.Errorf("%w: %q (valid: %v)", ErrUnknownTier, tier, Names)
	}

	candidates := t.Services()
	if len(services) > 0 {
		for _, s := range services {
			if _, ok := t.services[s]; !ok {
				slog.Warn("ignoring unknown service in tier resolution", "service", s, "tier", tier)
			}
		}
		candidates = slices.DeleteFunc(candidates, func(s string) bool {
			return !slices.Contains(services, s)
		})
	}

	for _, service := range candidates {
		serviceTools, _ := t.ToolsForService(service, tier)
		if len(serviceTools) == 0 {
			continue
		}
		tools = append(tools, serviceTools...)
		suggested = append(suggested, service)
	}

	slog.Debug("resolved tool tier",
		"tier", tier,
		"tools", len(tools),
		"services", suggested)

	return tools, suggested, nil
}
