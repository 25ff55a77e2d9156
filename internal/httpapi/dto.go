package httpapi

import (
	"fmt"
	"time"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/service"
)

type projectDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	DurationDays int    `json:"durationDays"`
	Status       string `json:"status"`
	OwnerID      string `json:"ownerId"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

func toProjectDTO(p *domain.Project) projectDTO {
	dto := projectDTO{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		StartDate:    p.StartDate.Format(domain.DateLayout),
		DurationDays: p.Duration(),
		Status:       string(p.Status),
		OwnerID:      p.OwnerID,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    p.UpdatedAt.Format(time.RFC3339),
	}
	if !p.EndDate.IsZero() {
		dto.EndDate = p.EndDate.Format(domain.DateLayout)
	}
	return dto
}

type taskDTO struct {
	ID          string  `json:"id"`
	ProjectID   string  `json:"projectId"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Assignee    string  `json:"assignee"`
	Priority    string  `json:"priority"`
	Status      string  `json:"status"`
	DueDate     *string `json:"dueDate"`
	OwnerID     string  `json:"ownerId"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toTaskDTO(t *domain.Task) taskDTO {
	dto := taskDTO{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Assignee:    t.Assignee,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		OwnerID:     t.OwnerID,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
	if t.DueDate != nil {
		s := t.DueDate.UTC().Format(time.RFC3339)
		dto.DueDate = &s
	}
	return dto
}

func toTaskDTOs(tasks []*domain.Task) []taskDTO {
	out := make([]taskDTO, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskDTO(t))
	}
	return out
}

type userDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Role      string `json:"role"`
}

func toUserDTO(u *domain.User) userDTO {
	return userDTO{ID: u.ID, Name: u.Name, Email: u.Email, AvatarURL: u.AvatarURL, Role: string(u.Role)}
}

type statsDTO struct {
	ProjectID      string `json:"projectId"`
	TaskCount      int    `json:"taskCount"`
	CompletedCount int    `json:"completedCount"`
	PendingCount   int    `json:"pendingCount"`
	OverdueCount   int    `json:"overdueCount"`
	Progress       int    `json:"progress"`
}

// parseOptionalDate accepts YYYY-MM-DD or RFC 3339; empty means zero.
func parseOptionalDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if d, err := domain.ParseDate(s); err == nil {
		return d, nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", service.ErrInvalidInput, field)
}
