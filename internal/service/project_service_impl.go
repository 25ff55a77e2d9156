package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/planpilot/internal/db"
	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/repository"
)

type projectService struct {
	projects repository.ProjectRepo
	tasks    repository.TaskRepo
	uow      db.UnitOfWork
	dialect  db.Dialect
	observer UseCaseObserver
	now      func() time.Time
}

func NewProjectService(
	projects repository.ProjectRepo,
	tasks repository.TaskRepo,
	uow db.UnitOfWork,
	dialect db.Dialect,
	observers ...UseCaseObserver,
) ProjectService {
	return &projectService{
		projects: projects,
		tasks:    tasks,
		uow:      uow,
		dialect:  dialect,
		observer: useCaseObserverOrNoop(observers),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// newProject applies the creation defaults to in.
func newProject(in NewProjectInput, now time.Time) (*domain.Project, error) {
	start := in.StartDate
	if start.IsZero() {
		start = now
	}
	start = domain.CalendarDate(start)

	end := in.EndDate
	if end.IsZero() {
		end = start.AddDate(0, 0, domain.DefaultProjectSpanDays-1)
	}
	end = domain.CalendarDate(end)

	p := &domain.Project{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		StartDate:   start,
		EndDate:     end,
		Status:      domain.ProjectActive,
		OwnerID:     domain.CoalesceStr(in.OwnerID, domain.GuestOwnerID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return p, nil
}

func (s *projectService) Create(ctx context.Context, in NewProjectInput) (p *domain.Project, err error) {
	fields := map[string]any{"project": in.Name}
	defer observe(ctx, s.observer, "create-project", time.Now(), fields, &err)

	p, err = newProject(in, s.now())
	if err != nil {
		return nil, err
	}
	fields["project_id"] = p.ID
	fields["duration_days"] = p.Duration()
	if err = s.projects.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *projectService) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return s.projects.GetByID(ctx, id)
}

func (s *projectService) List(ctx context.Context, ownerID string, includeArchived bool) ([]*domain.Project, error) {
	if ownerID == "" {
		return s.projects.List(ctx, includeArchived)
	}
	return s.projects.ListByOwner(ctx, ownerID, includeArchived)
}

func (s *projectService) Update(ctx context.Context, id string, upd ProjectUpdate) (*domain.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		p.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Description != nil {
		p.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.StartDate != nil {
		p.StartDate = domain.CalendarDate(*upd.StartDate)
	}
	if upd.EndDate != nil {
		p.EndDate = domain.CalendarDate(*upd.EndDate)
	}
	if upd.Status != nil {
		if *upd.Status != domain.ProjectActive && *upd.Status != domain.ProjectArchived {
			return nil, fmt.Errorf("%w: invalid project status %q", ErrInvalidInput, *upd.Status)
		}
		p.Status = *upd.Status
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	p.UpdatedAt = s.now()
	if err := s.projects.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *projectService) Archive(ctx context.Context, id string) error {
	return s.projects.Archive(ctx, id)
}

func (s *projectService) Delete(ctx context.Context, id string) (deleted int, err error) {
	fields := map[string]any{"project_id": id}
	defer observe(ctx, s.observer, "delete-project", time.Now(), fields, &err)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txProjects := repository.NewSQLProjectRepo(tx, s.dialect)
		txTasks := repository.NewSQLTaskRepo(tx, s.dialect)

		if _, err := txProjects.GetByID(ctx, id); err != nil {
			return err
		}
		n, err := txTasks.DeleteByProject(ctx, id)
		if err != nil {
			return err
		}
		deleted = n
		return txProjects.Delete(ctx, id)
	})
	if err != nil {
		return 0, err
	}
	fields["tasks_deleted"] = deleted
	return deleted, nil
}

func (s *projectService) Stats(ctx context.Context, id string) (*domain.ProjectStats, error) {
	if _, err := s.projects.GetByID(ctx, id); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByProject(ctx, id)
	if err != nil {
		return nil, err
	}
	stats := aggregateProjectStats(id, tasks, s.now())
	return &stats, nil
}

// aggregateProjectStats tallies task completion for one project.
func aggregateProjectStats(projectID string, tasks []*domain.Task, now time.Time) domain.ProjectStats {
	st := domain.ProjectStats{ProjectID: projectID, TaskCount: len(tasks)}
	for _, t := range tasks {
		if t.Status == domain.TaskCompleted {
			st.CompletedCount++
			continue
		}
		st.PendingCount++
		if t.IsOverdue(now) {
			st.OverdueCount++
		}
	}
	return st
}
