package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yectos/projects-api/internal/domain"
)

const exportYAML = `exportedAt: 2024-06-01T00:05:00Z
userId: alice
projects:
  - id: 7f1c3b7e-2a41-4b8e-9d43-0c6c5b1a9e10
    name: Website redesign
    client: Acme
    totalCost: 1000
    amountPaid: 400
    priority: high
    tags: [web]
    stages:
      - {id: s1, name: Design, completed: true, order: 0}
      - {id: s2, name: Build, completed: false, order: 1}
    createdAt: 2024-03-10T09:00:00Z
    updatedAt: 2024-03-12T09:00:00Z
  - id: 2b9d0f4a-6c0e-4f55-8b8e-3f1d2c7a5e21
    name: Logo
    client: Globex
    totalCost: 300
    amountPaid: 300
    priority: low
    tags: [branding]
    stages:
      - {id: s1, name: Sketch, completed: true, order: 0}
    createdAt: 2024-04-02T09:00:00Z
    updatedAt: 2024-04-05T09:00:00Z
  - id: 0d6e5a3c-9b72-4c1f-a6d8-51e4f3b2c8a7
    name: Mobile app
    client: Initech
    totalCost: 5000
    amountPaid: 0
    status: on_hold
    stages: []
    createdAt: 2024-05-20T09:00:00Z
    updatedAt: 2024-05-20T09:00:00Z
`

func writeExport(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestStatsCommand(t *testing.T) {
	path := writeExport(t, "projects.yaml", exportYAML)

	out, err := execute(t, "stats", path)
	require.NoError(t, err)

	var got domain.DashboardStats
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 3, got.TotalProjects)
	assert.Equal(t, 1, got.CompletedProjects)
	assert.Equal(t, 1, got.InProgressProjects)
	assert.Equal(t, 1, got.OnHoldProjects)
	assert.InDelta(t, 6300.0, got.TotalRevenue, 0.001)
	assert.InDelta(t, 700.0, got.PaidAmount, 0.001)
	assert.InDelta(t, 5600.0, got.PendingAmount, 0.001)
}

func TestStatsCommand_FilteredYAMLOutput(t *testing.T) {
	path := writeExport(t, "projects.yml", exportYAML)

	out, err := execute(t, "stats", "--tags", "web,branding", "-o", "yaml", path)
	require.NoError(t, err)
	assert.Contains(t, out, "totalProjects: 2")
}

func TestStatsCommand_Charts(t *testing.T) {
	path := writeExport(t, "projects.yaml", exportYAML)

	out, err := execute(t, "stats", "--charts", path)
	require.NoError(t, err)

	var got struct {
		Charts domain.DashboardCharts `json:"charts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Charts.RecentProjects, 3)
	assert.Equal(t, "Mobile app", got.Charts.RecentProjects[0].Name)
}

func TestListCommand_SortAndFilter(t *testing.T) {
	path := writeExport(t, "projects.yaml", exportYAML)

	out, err := execute(t, "list", "--sort", "totalCost", "--order", "asc", "-o", "json", path)
	require.NoError(t, err)

	var got []domain.ProjectDTO
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 3)
	assert.Equal(t, []string{"Logo", "Website redesign", "Mobile app"},
		[]string{got[0].Name, got[1].Name, got[2].Name})
	assert.Equal(t, 50, got[1].Progress)

	out, err = execute(t, "list", "--status", "in_progress", path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Website redesign")
	assert.Contains(t, lines[1], "50%")
}

func TestCommands_InvalidInput(t *testing.T) {
	path := writeExport(t, "projects.yaml", exportYAML)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown sort field", []string{"list", "--sort", "color", path}},
		{"unknown order", []string{"list", "--order", "sideways", path}},
		{"unknown status", []string{"list", "--status", "archived", path}},
		{"unknown priority", []string{"stats", "--priority", "urgent", path}},
		{"unknown output", []string{"stats", "-o", "xml", path}},
		{"missing file", []string{"stats", filepath.Join(t.TempDir(), "nope.json")}},
		{"no file argument", []string{"stats"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestCommands_MalformedExport(t *testing.T) {
	path := writeExport(t, "broken.json", `{"projects": [{"id": "not-a-uuid", "name": "x"}]}`)

	_, err := execute(t, "stats", path)
	assert.Error(t, err)
}
