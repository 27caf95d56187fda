package tiers

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/workspace-mcp/internal/registry"
)

func TestDefault(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)

	assert.Equal(t, registry.KnownServices, table.Services())
}

func TestToolsForService_Cumulative(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)

	core, err := table.ToolsForService("gmail", TierCore)
	require.NoError(t, err)
	extended, err := table.ToolsForService("gmail", TierExtended)
	require.NoError(t, err)
	complete, err := table.ToolsForService("gmail", TierComplete)
	require.NoError(t, err)

	assert.Subset(t, extended, core)
	assert.Subset(t, complete, extended)
	assert.Contains(t, core, "search_gmail_messages")
	assert.NotContains(t, core, "list_gmail_labels")
	assert.Contains(t, extended, "list_gmail_labels")
	assert.Contains(t, complete, "modify_gmail_message_labels")

	unknown, err := table.ToolsForService("meet", TierCore)
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestResolve(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)

	tests := []struct {
		name          string
		tier          string
		services      []string
		wantTools     []string
		wantNoTools   []string
		wantSuggested []string
	}{
		{
			name:          "core with filter",
			tier:          TierCore,
			services:      []string{"gmail", "tasks"},
			wantTools:     []string{"search_gmail_messages", "create_task"},
			wantNoTools:   []string{"list_task_lists", "search_drive_files"},
			wantSuggested: []string{"gmail", "tasks"},
		},
		{
			name:          "unknown services are ignored",
			tier:          TierExtended,
			services:      []string{"gmail", "meet"},
			wantTools:     []string{"list_gmail_labels"},
			wantSuggested: []string{"gmail"},
		},
		{
			name:          "duplicate filter entries collapse",
			tier:          TierCore,
			services:      []string{"docs", "docs"},
			wantTools:     []string{"get_doc_content", "create_doc"},
			wantSuggested: []string{"docs"},
		},
		{
			name:          "no filter covers every service",
			tier:          TierComplete,
			wantTools:     []string{"get_search_engine_info", "list_spaces", "get_page"},
			wantSuggested: []string{"gmail", "drive", "calendar", "docs", "sheets", "chat", "forms", "slides", "tasks", "search"},
		},
		{
			name:          "filter order does not matter",
			tier:          TierCore,
			services:      []string{"search", "tasks", "gmail"},
			wantTools:     []string{"search_gmail_messages", "list_tasks"},
			wantSuggested: []string{"gmail", "tasks", "search"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tools, suggested, err := table.Resolve(tt.tier, tt.services)
			require.NoError(t, err)
			assert.Subset(t, tools, tt.wantTools)
			for _, tool := range tt.wantNoTools {
				assert.NotContains(t, tools, tool)
			}
			assert.Equal(t, tt.wantSuggested, suggested)
		})
	}
}

func TestResolve_UnknownTier(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)

	_, _, err = table.Resolve("premium", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownTier))
}

func TestResolve_ServiceWithoutToolsAtTier(t *testing.T) {
	table, err := Parse([]byte(`
alpha:
  core: [a1]
beta:
  core: []
  extended: [b1]
`))
	require.NoError(t, err)

	tools, suggested, err := table.Resolve(TierCore, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, tools)
	assert.Equal(t, []string{"alpha"}, suggested)
}

func TestServices_UnknownServicesFollowKnownOnes(t *testing.T) {
	table, err := Parse([]byte(`
zeta:
  core: [z1]
tasks:
  core: [list_tasks]
alpha:
  core: [a1]
gmail:
  core: [search_gmail_messages]
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"gmail", "tasks", "alpha", "zeta"}, table.Services())

	tools, suggested, err := table.Resolve(TierCore, []string{"zeta", "tasks", "gmail"})
	require.NoError(t, err)
	assert.Equal(t, []string{"gmail", "tasks", "zeta"}, suggested)
	assert.Equal(t, []string{"search_gmail_messages", "list_tasks", "z1"}, tools)
}

func TestTierOf(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)

	tier, service, ok := table.TierOf("list_spaces")
	require.True(t, ok)
	assert.Equal(t, TierExtended, tier)
	assert.Equal(t, "chat", service)

	_, _, ok = table.TierOf("does_not_exist")
	assert.False(t, ok)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: ""},
		{name: "not yaml", data: "{{{"},
		{name: "duplicate tool", data: "a:\n  core: [x]\nb:\n  extended: [x]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gmail:\n  core: [search_gmail_messages]\n"), 0600))

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"gmail"}, table.Services())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	table, err = Load("")
	require.NoError(t, err)
	assert.Len(t, table.Services(), 10)
}
