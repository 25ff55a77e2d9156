package testutil

import (
	"strconv"
	"time"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/google/uuid"
)

// Project options
type ProjectOption func(*domain.Project)

func WithStartDate(d time.Time) ProjectOption {
	return func(p *domain.Project) {
		p.StartDate = d
	}
}

func WithEndDate(d time.Time) ProjectOption {
	return func(p *domain.Project) {
		p.EndDate = d
	}
}

func WithProjectOwner(ownerID string) ProjectOption {
	return func(p *domain.Project) {
		p.OwnerID = ownerID
	}
}

func WithProjectStatus(s domain.ProjectStatus) ProjectOption {
	return func(p *domain.Project) {
		p.Status = s
	}
}

func NewTestProject(name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC().Truncate(time.Second)
	start := domain.CalendarDate(now)
	p := &domain.Project{
		ID:        uuid.New().String(),
		Name:      name,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, domain.DefaultProjectSpanDays-1),
		Status:    domain.ProjectActive,
		OwnerID:   domain.GuestOwnerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Task options
type TaskOption func(*domain.Task)

func WithPriority(pr domain.Priority) TaskOption {
	return func(t *domain.Task) {
		t.Priority = pr
	}
}

func WithTaskStatus(s domain.TaskStatus) TaskOption {
	return func(t *domain.Task) {
		t.Status = s
	}
}

func WithDueDate(d time.Time) TaskOption {
	return func(t *domain.Task) {
		t.DueDate = &d
	}
}

func WithTaskOwner(ownerID string) TaskOption {
	return func(t *domain.Task) {
		t.OwnerID = ownerID
	}
}

func WithDescription(desc string) TaskOption {
	return func(t *domain.Task) {
		t.Description = desc
	}
}

func NewTestTask(projectID, title string, opts ...TaskOption) *domain.Task {
	now := time.Now().UTC().Truncate(time.Second)
	t := &domain.Task{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Title:     title,
		Assignee:  domain.UnassignedAssignee,
		Priority:  domain.PriorityNormal,
		Status:    domain.TaskPending,
		OwnerID:   domain.GuestOwnerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewTestDrafts builds n drafts titled "Task 1".."Task n" on consecutive days.
func NewTestDrafts(n int) []domain.TaskDraft {
	drafts := make([]domain.TaskDraft, n)
	for i := range drafts {
		drafts[i] = domain.TaskDraft{
			Title:       "Task " + strconv.Itoa(i+1),
			Description: "- step one\n- step two",
			Priority:    domain.PriorityNormal,
			DaysFromNow: i + 1,
		}
	}
	return drafts
}
