package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/planning"
	"github.com/alexanderramin/planpilot/internal/repository"
)

type planService struct {
	generator *planning.Generator
	committer *planning.Committer
	describer *planning.Describer
	projects  ProjectService
	projRepo  repository.ProjectRepo
	tasks     repository.TaskRepo
	observer  UseCaseObserver
}

func NewPlanService(
	generator *planning.Generator,
	committer *planning.Committer,
	describer *planning.Describer,
	projects ProjectService,
	projRepo repository.ProjectRepo,
	tasks repository.TaskRepo,
	observers ...UseCaseObserver,
) PlanService {
	return &planService{
		generator: generator,
		committer: committer,
		describer: describer,
		projects:  projects,
		projRepo:  projRepo,
		tasks:     tasks,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *planService) GeneratePlan(ctx context.Context, projectName string, durationDays int) (plan *planning.Plan, err error) {
	fields := map[string]any{"project": projectName, "duration_days": durationDays}
	defer observe(ctx, s.observer, "generate-plan", time.Now(), fields, &err)

	plan, err = s.generator.GeneratePlan(ctx, projectName, durationDays)
	if err != nil {
		return nil, err
	}
	fields["drafts"] = len(plan.Drafts)
	fields["anomalies"] = len(plan.Anomalies)
	fields["model"] = plan.Model
	return plan, nil
}

func (s *planService) CommitPlan(ctx context.Context, projectID string, startDate time.Time, drafts []domain.TaskDraft) (res *planning.CommitResult, err error) {
	fields := map[string]any{"project_id": projectID, "drafts": len(drafts)}
	defer observe(ctx, s.observer, "commit-plan", time.Now(), fields, &err)

	if projectID == "" {
		return nil, fmt.Errorf("%w: project ID is required", planning.ErrInvalidCommit)
	}
	project, err := s.projRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, project, startDate, drafts, fields)
}

func (s *planService) commit(ctx context.Context, project *domain.Project, startDate time.Time, drafts []domain.TaskDraft, fields map[string]any) (*planning.CommitResult, error) {
	if startDate.IsZero() {
		startDate = project.StartDate
	}
	res, err := s.committer.CommitPlan(ctx, planning.CommitRequest{
		ProjectID: project.ID,
		OwnerID:   project.OwnerID,
		StartDate: startDate,
		Drafts:    drafts,
	})
	if err != nil {
		return nil, err
	}
	fields["success"] = res.Success
	fields["failed"] = res.Failed
	return res, nil
}

// CreateProjectWithPlan saves the project first, then generates and commits
// its plan. If generation fails the project stays in place and the error is
// returned together with the partial result.
func (s *planService) CreateProjectWithPlan(ctx context.Context, in NewProjectInput) (out *ProjectPlanResult, err error) {
	fields := map[string]any{"project": in.Name}
	defer observe(ctx, s.observer, "create-project-with-plan", time.Now(), fields, &err)

	project, err := s.projects.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	out = &ProjectPlanResult{Project: project}
	fields["project_id"] = project.ID

	plan, err := s.generator.GeneratePlan(ctx, project.Name, project.Duration())
	if err != nil {
		return out, err
	}
	out.Plan = plan
	fields["drafts"] = len(plan.Drafts)

	res, err := s.commit(ctx, project, project.StartDate, plan.Drafts, fields)
	if err != nil {
		return out, err
	}
	out.Commit = res
	return out, nil
}

func (s *planService) SuggestProjectDescription(ctx context.Context, projectName string) (string, error) {
	return s.describer.SuggestProjectDescription(ctx, projectName)
}

func (s *planService) GenerateTaskDescription(ctx context.Context, projectName, taskTitle string) (string, error) {
	return s.describer.GenerateTaskDescription(ctx, projectName, taskTitle)
}

func (s *planService) DescribeTask(ctx context.Context, taskID string) (t *domain.Task, err error) {
	fields := map[string]any{"task_id": taskID}
	defer observe(ctx, s.observer, "describe-task", time.Now(), fields, &err)

	t, err = s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	project, err := s.projRepo.GetByID(ctx, t.ProjectID)
	if err != nil {
		return nil, err
	}
	desc, err := s.describer.GenerateTaskDescription(ctx, project.Name, t.Title)
	if err != nil {
		return nil, err
	}
	t.Description = desc
	t.UpdatedAt = time.Now().UTC()
	if err = s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}
