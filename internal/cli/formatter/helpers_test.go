package formatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alexanderramin/planpilot/internal/domain"
)

func TestRelativeDateFrom(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input time.Time
		want  string
	}{
		{"today", now, "Today"},
		{"later today", now.Add(5 * time.Hour), "Today"},
		{"tomorrow", now.Add(24 * time.Hour), "Tomorrow"},
		{"yesterday", now.Add(-24 * time.Hour), "Yesterday"},
		{"3 days future", now.AddDate(0, 0, 3), "In 3d"},
		{"3 days past", now.AddDate(0, 0, -3), "3d ago"},
		{"3 weeks future", now.AddDate(0, 0, 21), "In 3w"},
		{"3 months future", now.AddDate(0, 0, 90), "In 3mo"},
		{"2 weeks past", now.AddDate(0, 0, -14), "2w ago"},
		{"3 months past", now.AddDate(0, 0, -90), "3mo ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeDateFrom(tt.input, now))
		})
	}
}

func TestDueStyled(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -2)
	soon := now.AddDate(0, 0, 5)

	assert.Contains(t, DueStyled(nil, domain.TaskPending, now), "--")
	assert.Contains(t, DueStyled(&past, domain.TaskPending, now), "overdue")
	assert.NotContains(t, DueStyled(&past, domain.TaskCompleted, now), "overdue")
	assert.Contains(t, DueStyled(&soon, domain.TaskPending, now), "In 5d")
}

func TestHumanDate(t *testing.T) {
	assert.Equal(t, "Sep 30, 2022", HumanDate(time.Date(2022, 9, 30, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "--", HumanDate(time.Time{}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	assert.Equal(t, "ünïc…", Truncate("ünïcödé", 5))
	assert.Equal(t, "anything", Truncate("anything", 0))
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "one", FirstLine("one\ntwo"))
	assert.Equal(t, "single", FirstLine("single"))
}

func TestRenderProgress(t *testing.T) {
	assert.Contains(t, RenderProgress(0, 10), "  0%")
	assert.Contains(t, RenderProgress(45, 10), " 45%")
	assert.Contains(t, RenderProgress(150, 10), "100%")
	assert.Contains(t, RenderProgress(-5, 10), "  0%")
	assert.Contains(t, RenderProgress(100, 4), filledBlock)
	assert.Contains(t, RenderProgress(0, 4), emptyBlock)
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := RenderTable([]string{"A", "B"}, [][]string{{"long cell", "x"}, {"s"}})
	assert.Contains(t, out, "long cell  x")
	assert.Contains(t, out, "─────────")
	assert.Empty(t, RenderTable(nil, nil))
}
