package export_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yectos/projects-api/internal/domain"
	"github.com/yectos/projects-api/internal/export"
)

func sampleProjects() []domain.Project {
	created := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	held := domain.Project{
		Name:       "Mobile",
		Client:     "Globex",
		TotalCost:  800,
		AmountPaid: 100,
		Status:     domain.StatusExplicit(domain.ProjectStatusOnHold),
		Stages:     []domain.Stage{{ID: "s1", Name: "Spec", Completed: true}},
	}
	held.ID = uuid.New()
	held.CreatedAt = created
	held.UpdatedAt = created

	plain := domain.Project{
		Name:      "Web",
		Client:    "Acme",
		TotalCost: 1200,
		Priority:  domain.ProjectPriorityHigh,
		Tags:      []string{"web"},
	}
	plain.ID = uuid.New()
	plain.CreatedAt = created.Add(time.Hour)
	plain.UpdatedAt = plain.CreatedAt

	return []domain.Project{held, plain}
}

func TestRoundTrip(t *testing.T) {
	for _, format := range []export.Format{export.FormatJSON, export.FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			projects := sampleProjects()
			doc := export.NewDocument("alice", projects, time.Now())

			var buf bytes.Buffer
			require.NoError(t, export.Encode(&buf, doc, format))

			decoded, err := export.Decode(&buf, format)
			require.NoError(t, err)

			got, err := decoded.DomainProjects()
			require.NoError(t, err)
			require.Len(t, got, 2)

			assert.Equal(t, projects[0].ID, got[0].ID)
			status, ok := got[0].Status.Explicit()
			assert.True(t, ok)
			assert.Equal(t, domain.ProjectStatusOnHold, status)
			assert.True(t, got[1].Status.IsDerived())
			assert.Equal(t, domain.ProjectPriorityHigh, got[1].Priority)
			assert.True(t, projects[1].CreatedAt.Equal(got[1].CreatedAt))
			require.Len(t, got[0].Stages, 1)
			assert.True(t, got[0].Stages[0].Completed)
		})
	}
}

func TestDecode_HandWrittenYAML(t *testing.T) {
	input := `
projects:
  - name: Kitchen remodel
    client: Smith
    totalCost: 5000
    amountPaid: 1000
    stages:
      - {id: a, name: Demolition, completed: true}
      - {id: b, name: Cabinets, completed: false}
`
	doc, err := export.Decode(strings.NewReader(input), export.FormatYAML)
	require.NoError(t, err)

	projects, err := doc.DomainProjects()
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Kitchen remodel", projects[0].Name)
	assert.Len(t, projects[0].Stages, 2)
}

func TestDomainProjects_RejectsInvalidValues(t *testing.T) {
	doc := &export.Document{Projects: []export.Project{{Name: "x", Status: "archived"}}}
	_, err := doc.DomainProjects()
	assert.Error(t, err)

	doc = &export.Document{Projects: []export.Project{{Name: "x", Priority: "urgent"}}}
	_, err = doc.DomainProjects()
	assert.Error(t, err)

	doc = &export.Document{Projects: []export.Project{{ID: "nope", Name: "x"}}}
	_, err = doc.DomainProjects()
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := export.ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, export.FormatYAML, f)

	f, err = export.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, export.FormatJSON, f)

	_, err = export.ParseFormat("xml")
	assert.Error(t, err)

	assert.Equal(t, export.FormatYAML, export.FormatFromPath("data/projects.yaml"))
	assert.Equal(t, export.FormatJSON, export.FormatFromPath("projects.txt"))
}
