package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/repository"
)

type taskService struct {
	tasks    repository.TaskRepo
	projects repository.ProjectRepo
	observer UseCaseObserver
	now      func() time.Time
}

func NewTaskService(tasks repository.TaskRepo, projects repository.ProjectRepo, observers ...UseCaseObserver) TaskService {
	return &taskService{
		tasks:    tasks,
		projects: projects,
		observer: useCaseObserverOrNoop(observers),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *taskService) Create(ctx context.Context, projectID string, in TaskInput) (*domain.Task, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	t := &domain.Task{
		ID:          uuid.New().String(),
		ProjectID:   project.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Assignee:    domain.CoalesceStr(strings.TrimSpace(in.Assignee), domain.UnassignedAssignee),
		Priority:    domain.Priority(domain.CoalesceStr(string(in.Priority), string(domain.PriorityNormal))),
		Status:      domain.TaskPending,
		DueDate:     in.DueDate,
		OwnerID:     domain.CoalesceStr(in.OwnerID, project.OwnerID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *taskService) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

func (s *taskService) ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error) {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.tasks.ListByProject(ctx, projectID)
}

func (s *taskService) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	return s.tasks.ListByOwner(ctx, ownerID)
}

func (s *taskService) Update(ctx context.Context, id string, upd TaskUpdate) (*domain.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		t.Title = strings.TrimSpace(*upd.Title)
	}
	if upd.Description != nil {
		t.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.Assignee != nil {
		t.Assignee = domain.CoalesceStr(strings.TrimSpace(*upd.Assignee), domain.UnassignedAssignee)
	}
	if upd.Priority != nil {
		t.Priority = *upd.Priority
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	if upd.ClearDueDate {
		t.DueDate = nil
	} else if upd.DueDate != nil {
		due := *upd.DueDate
		t.DueDate = &due
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	t.UpdatedAt = s.now()
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *taskService) Toggle(ctx context.Context, id string) (t *domain.Task, err error) {
	fields := map[string]any{"task_id": id}
	defer observe(ctx, s.observer, "toggle-task", time.Now(), fields, &err)

	t, err = s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Status = t.ToggledStatus()
	t.UpdatedAt = s.now()
	fields["status"] = string(t.Status)
	if err = s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *taskService) Delete(ctx context.Context, id string) error {
	return s.tasks.Delete(ctx, id)
}
