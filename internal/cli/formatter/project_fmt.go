package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/planpilot/internal/domain"
)

// FormatProjectList renders projects as a table inside a bordered box.
func FormatProjectList(projects []*domain.Project) string {
	headers := []string{"ID", "NAME", "START", "END", "DAYS", "STATUS"}
	rows := make([][]string, 0, len(projects))

	for _, p := range projects {
		rows = append(rows, []string{
			TruncID(p.ID),
			Bold(Truncate(p.Name, 40)),
			p.StartDate.Format(domain.DateLayout),
			endDate(p),
			fmt.Sprintf("%d", p.Duration()),
			StatusPill(p.Status),
		})
	}

	return RenderBox("Projects", RenderTable(headers, rows))
}

// FormatProjectDetail renders one project's metadata and completion stats.
func FormatProjectDetail(p *domain.Project, stats *domain.ProjectStats) string {
	var b strings.Builder

	b.WriteString(StyleBold.Render(p.Name) + "\n")
	if p.Description != "" {
		b.WriteString(StyleFg.Render(p.Description) + "\n")
	}
	b.WriteString("\n")

	field := func(label, value string) {
		fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render(fmt.Sprintf("%-8s", label)), value)
	}
	field("STATUS", StatusPill(p.Status))
	field("ID", Dim(p.ID))
	field("OWNER", StyleFg.Render(p.OwnerID))
	field("START", StyleFg.Render(HumanDate(p.StartDate)))
	field("END", StyleFg.Render(HumanDate(p.EndDate)))
	field("DAYS", StyleFg.Render(fmt.Sprintf("%d", p.Duration())))

	if stats != nil {
		b.WriteString("\n" + FormatProjectStats(stats))
	}
	return RenderBox("", strings.TrimRight(b.String(), "\n"))
}

// FormatProjectStats renders task counts and a progress bar.
func FormatProjectStats(s *domain.ProjectStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render("PROGRESS"), RenderProgress(s.Progress(), 20))
	fmt.Fprintf(&b, "%s  %d total · %s · %s",
		StyleDim.Render("TASKS   "),
		s.TaskCount,
		StyleGreen.Render(fmt.Sprintf("%d done", s.CompletedCount)),
		StyleBlue.Render(fmt.Sprintf("%d open", s.PendingCount)),
	)
	if s.OverdueCount > 0 {
		b.WriteString(" · " + StyleRed.Render(fmt.Sprintf("%d overdue", s.OverdueCount)))
	}
	return b.String() + "\n"
}

func endDate(p *domain.Project) string {
	if p.EndDate.IsZero() {
		return Dim("--")
	}
	return p.EndDate.Format(domain.DateLayout)
}
