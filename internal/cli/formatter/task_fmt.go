package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/planpilot/internal/domain"
)

// FormatTaskList renders tasks as a table, with due dates relative to now.
func FormatTaskList(tasks []*domain.Task, now time.Time) string {
	headers := []string{"ID", "TITLE", "PRIORITY", "STATUS", "DUE", "ASSIGNEE"}
	rows := make([][]string, 0, len(tasks))

	for _, t := range tasks {
		title := Truncate(t.Title, 48)
		if t.Status == domain.TaskCompleted {
			title = Dim(title)
		}
		rows = append(rows, []string{
			TruncID(t.ID),
			title,
			PriorityBadge(t.Priority),
			TaskStatusPill(t.Status),
			DueStyled(t.DueDate, t.Status, now),
			Dim(t.Assignee),
		})
	}

	return RenderBox("Tasks", RenderTable(headers, rows))
}

// FormatTaskDetail renders a single task including its full description.
func FormatTaskDetail(t *domain.Task, now time.Time) string {
	var b strings.Builder
	b.WriteString(StyleBold.Render(t.Title) + "\n\n")
	fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render("STATUS  "), TaskStatusPill(t.Status))
	fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render("PRIORITY"), PriorityBadge(t.Priority))
	fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render("DUE     "), DueStyled(t.DueDate, t.Status, now))
	fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render("ASSIGNEE"), StyleFg.Render(t.Assignee))
	if t.Description != "" {
		b.WriteString("\n" + StyleFg.Render(t.Description))
	}
	return RenderBox("", strings.TrimRight(b.String(), "\n"))
}
