package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/planning"
)

// FormatPlan renders generated drafts with their projected due dates. A zero
// start shows day offsets instead of dates.
func FormatPlan(plan *planning.Plan, start time.Time) string {
	headers := []string{"#", "TITLE", "PRIORITY", "DUE"}
	rows := make([][]string, 0, len(plan.Drafts))

	for i, d := range plan.Drafts {
		due := fmt.Sprintf("day %d", d.DaysFromNow)
		if !start.IsZero() {
			due = domain.DueDateFromOffset(start, d.DaysFromNow).Format(domain.DateLayout)
		}
		rows = append(rows, []string{
			Dim(fmt.Sprintf("%d", i+1)),
			Bold(Truncate(d.Title, 48)),
			PriorityBadge(d.Priority),
			due,
		})
	}

	var b strings.Builder
	b.WriteString(RenderTable(headers, rows))
	if plan.Model != "" {
		b.WriteString("\n" + Dim("model: "+plan.Model))
	}
	if len(plan.Anomalies) > 0 {
		b.WriteString("\n\n" + StyleYellow.Render(fmt.Sprintf("%d normalization warning(s):", len(plan.Anomalies))))
		for _, a := range plan.Anomalies {
			b.WriteString("\n  " + Dim(Truncate(a.String(), 100)))
		}
	}

	title := "Plan"
	if plan.ProjectName != "" {
		title = "Plan: " + plan.ProjectName
	}
	return RenderBox(title, strings.TrimRight(b.String(), "\n"))
}

// FormatCommitResult summarizes a commit tally and lists each failure.
func FormatCommitResult(res *planning.CommitResult) string {
	var b strings.Builder
	b.WriteString(StyleGreen.Render(fmt.Sprintf("✔ %d created", res.Success)))
	if res.Failed == 0 {
		return b.String()
	}
	b.WriteString("  " + StyleRed.Render(fmt.Sprintf("✖ %d failed", res.Failed)))
	for _, f := range res.Failures {
		fmt.Fprintf(&b, "\n  %s %s %s", Dim(fmt.Sprintf("#%d", f.Index+1)), f.Title, Dim(f.Reason))
	}
	return b.String()
}
