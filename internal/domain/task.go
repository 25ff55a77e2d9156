package domain

import (
	"fmt"
	"strings"
	"time"
)

// TaskDraft is an unpersisted candidate task produced by plan generation.
type TaskDraft struct {
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Priority    Priority `json:"priority" yaml:"priority"`
	DaysFromNow int      `json:"daysFromNow" yaml:"days_from_now"`
}

type Task struct {
	ID          string
	ProjectID   string
	Title       string
	Description string
	Assignee    string
	Priority    Priority
	Status      TaskStatus
	DueDate     *time.Time
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the fields every stored task must carry.
func (t *Task) Validate() error {
	if t.ProjectID == "" {
		return fmt.Errorf("task project ID is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("task title is required")
	}
	if !ValidPriorities[string(t.Priority)] {
		return fmt.Errorf("invalid priority %q", t.Priority)
	}
	if !ValidTaskStatuses[string(t.Status)] {
		return fmt.Errorf("invalid task status %q", t.Status)
	}
	return nil
}

// IsOverdue reports whether the task is unfinished past its due date.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.Status != TaskCompleted && t.DueDate != nil && t.DueDate.Before(now)
}

// ToggledStatus flips a task between completed and pending.
func (t *Task) ToggledStatus() TaskStatus {
	if t.Status == TaskCompleted {
		return TaskPending
	}
	return TaskCompleted
}
