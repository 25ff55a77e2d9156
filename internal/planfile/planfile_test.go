package planfile

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/planning"
)

func samplePlan() *planning.Plan {
	return &planning.Plan{
		ProjectName:  "Inventory app",
		DurationDays: 10,
		Model:        "gemini-2.5-flash",
		Drafts: []domain.TaskDraft{
			{Title: "Set up repository", Description: "- Create repo\n- Add CI", Priority: domain.PriorityHigh, DaysFromNow: 1},
			{Title: "Design schema", Description: "Draw ERD", Priority: domain.PriorityNormal, DaysFromNow: 2},
		},
		Anomalies: []planning.Anomaly{{Index: 1, Field: "priority", Reason: "invalid priority urgent, using normal"}},
	}
}

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans", "inventory.yaml")
	generated := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

	require.NoError(t, Write(path, FromPlan(samplePlan(), generated)))

	doc, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, Version, doc.Version)
	assert.Equal(t, "Inventory app", doc.ProjectName)
	assert.Equal(t, 10, doc.DurationDays)
	assert.True(t, generated.Equal(doc.GeneratedAt))
	assert.Equal(t, samplePlan().Drafts, doc.Drafts)
	assert.Equal(t, []string{"record 1: priority: invalid priority urgent, using normal"}, doc.Anomalies)
}

func TestEncode_UsesSnakeCaseKeys(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FromPlan(samplePlan(), time.Now())))

	out := buf.String()
	assert.Contains(t, out, "project_name: Inventory app")
	assert.Contains(t, out, "days_from_now: 2")
	assert.Contains(t, out, "tasks:")
}

func TestDecode_HandEditedPlanIsRepaired(t *testing.T) {
	in := `
project_name: Inventory app
tasks:
  - title: "  Kickoff  "
    description: meet the team
    priority: urgent
    days_from_now: 0
  - title: Ship
    description: |
      - tag release
      - announce
    priority: low
    days_from_now: 5
`
	doc, err := Decode(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, doc.Drafts, 2)

	assert.Equal(t, "Kickoff", doc.Drafts[0].Title)
	assert.Equal(t, domain.PriorityNormal, doc.Drafts[0].Priority)
	assert.Equal(t, 1, doc.Drafts[0].DaysFromNow)
	assert.Equal(t, "- tag release\n- announce\n", doc.Drafts[1].Description)
	assert.Equal(t, domain.PriorityLow, doc.Drafts[1].Priority)
}

func TestDecode_BoundsOffsetsAndFillsDescription(t *testing.T) {
	in := `
project_name: Inventory app
tasks:
  - title: Far out
    description: someday
    days_from_now: 9223372036854775807
  - title: Bare
    days_from_now: 2
`
	doc, err := Decode(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, doc.Drafts, 2)

	assert.Equal(t, domain.MaxDayOffset, doc.Drafts[0].DaysFromNow)
	assert.Equal(t, "someday", doc.Drafts[0].Description)
	assert.True(t, strings.HasPrefix(doc.Drafts[1].Description, planning.MissingDescriptionPrefix), doc.Drafts[1].Description)
	assert.Equal(t, 2, doc.Drafts[1].DaysFromNow)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"missing title", "tasks:\n  - description: x\n"},
		{"unknown field", "tasks:\n  - title: a\n    owner: bob\n"},
		{"future version", "version: 9\ntasks: []\n"},
		{"not yaml", "tasks: [unclosed"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tc.in))
			assert.ErrorIs(t, err, ErrInvalidPlanFile)
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
