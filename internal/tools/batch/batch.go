package batch

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Item is the outcome for one ID.
type Item struct {
	ID     string `json:"id"`
	Status string `json:"status"` // "success" or "error"
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Report aggregates the items of a batch.
type Report struct {
	Total     int    `json:"total"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Items     []Item `json:"items"`
}

// WithIDs declares a required ID parameter that accepts a string, possibly
// comma-separated, or an array of strings, matching what ParseIDs reads.
func WithIDs(name, description string) mcp.ToolOption {
	return func(t *mcp.Tool) {
		t.InputSchema.Properties[name] = map[string]any{
			"description": description,
			"oneOf": []any{
				map[string]any{"type": "string"},
				map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "minItems": 1},
			},
		}
		t.InputSchema.Required = append(t.InputSchema.Required, name)
	}
}

// ParseIDs reads the named parameter as a string, a comma-separated string
// or an array of strings. Duplicates are dropped, order is kept.
func ParseIDs(param any, name string) ([]string, error) {
	var raw []string
	switch v := param.(type) {
	case nil:
		return nil, fmt.Errorf("%s is required", name)
	case string:
		raw = strings.Split(v, ",")
	case []string:
		raw = v
	case []any:
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", name, i)
			}
			if strings.TrimSpace(s) == "" {
				return nil, fmt.Errorf("%s[%d] cannot be empty", name, i)
			}
			raw = append(raw, s)
		}
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", name)
	}

	seen := make(map[string]bool, len(raw))
	ids := make([]string, 0, len(raw))
	for _, id := range raw {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%s cannot be empty", name)
	}
	return ids, nil
}

// Run calls fn for each ID in order. Once ctx is done the remaining IDs are
// reported as failed with the context error.
func Run(ctx context.Context, ids []string, fn func(ctx context.Context, id string) (any, error)) Report {
	report := Report{Total: len(ids), Items: make([]Item, 0, len(ids))}
	for _, id := range ids {
		var (
			result any
			err    = ctx.Err()
		)
		if err == nil {
			result, err = fn(ctx, id)
		}

		if err != nil {
			report.Failed++
			report.Items = append(report.Items, Item{ID: id, Status: "error", Error: err.Error()})
			continue
		}
		report.Succeeded++
		report.Items = append(report.Items, Item{ID: id, Status: "success", Result: result})
	}
	return report
}

// Summary is a one-line description such as "Updated 2 of 3 messages:".
func (r Report) Summary(verb, noun string) string {
	return fmt.Sprintf("%s %d of %d %s:", verb, r.Succeeded, r.Total, noun)
}
