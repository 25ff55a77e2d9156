package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultProjectSpanDays is how far the end date is placed after the start
// date when a project is created without one.
const DefaultProjectSpanDays = 7

type Project struct {
	ID          string
	Name        string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	Status      ProjectStatus
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the fields every stored project must carry.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("project name is required")
	}
	if p.StartDate.IsZero() {
		return fmt.Errorf("project start date is required")
	}
	if !p.EndDate.IsZero() && DaySpan(p.StartDate, p.EndDate) < 1 {
		return fmt.Errorf("end date %s must not be before start date %s",
			p.EndDate.Format(DateLayout), p.StartDate.Format(DateLayout))
	}
	return nil
}

// Duration returns the inclusive number of calendar days the project covers.
func (p *Project) Duration() int {
	if p.EndDate.IsZero() {
		return DefaultProjectSpanDays
	}
	return DaySpan(p.StartDate, p.EndDate)
}

// ProjectStats summarizes task completion for one project.
type ProjectStats struct {
	ProjectID      string
	TaskCount      int
	CompletedCount int
	PendingCount   int
	OverdueCount   int
}

// Progress returns the completed share of tasks as a whole percentage.
func (s ProjectStats) Progress() int {
	if s.TaskCount == 0 {
		return 0
	}
	return s.CompletedCount * 100 / s.TaskCount
}
