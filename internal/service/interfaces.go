package service

import (
	"context"
	"time"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/planning"
)

// NewProjectInput describes a project to create. Zero dates take defaults:
// start is today and the project spans DefaultProjectSpanDays.
type NewProjectInput struct {
	Name        string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	OwnerID     string
}

// ProjectUpdate carries optional changes; nil fields are left untouched.
type ProjectUpdate struct {
	Name        *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	Status      *domain.ProjectStatus
}

type ProjectService interface {
	Create(ctx context.Context, in NewProjectInput) (*domain.Project, error)
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	// List returns every project when ownerID is empty.
	List(ctx context.Context, ownerID string, includeArchived bool) ([]*domain.Project, error)
	Update(ctx context.Context, id string, upd ProjectUpdate) (*domain.Project, error)
	Archive(ctx context.Context, id string) error
	// Delete removes the project and its tasks in one transaction and
	// reports how many tasks went with it.
	Delete(ctx context.Context, id string) (int, error)
	Stats(ctx context.Context, id string) (*domain.ProjectStats, error)
}

// TaskInput describes a manually created task.
type TaskInput struct {
	Title       string
	Description string
	Assignee    string
	Priority    domain.Priority
	DueDate     *time.Time
	OwnerID     string
}

// TaskUpdate carries optional changes; nil fields are left untouched.
type TaskUpdate struct {
	Title        *string
	Description  *string
	Assignee     *string
	Priority     *domain.Priority
	Status       *domain.TaskStatus
	DueDate      *time.Time
	ClearDueDate bool
}

type TaskService interface {
	Create(ctx context.Context, projectID string, in TaskInput) (*domain.Task, error)
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Task, error)
	Update(ctx context.Context, id string, upd TaskUpdate) (*domain.Task, error)
	// Toggle flips a task between completed and pending.
	Toggle(ctx context.Context, id string) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
}

// ProjectPlanResult is the outcome of creating a project and planning it.
// Plan and Commit are nil when generation failed after the project was saved.
type ProjectPlanResult struct {
	Project *domain.Project
	Plan    *planning.Plan
	Commit  *planning.CommitResult
}

type PlanService interface {
	GeneratePlan(ctx context.Context, projectName string, durationDays int) (*planning.Plan, error)
	// CommitPlan stores drafts as tasks of an existing project. A zero
	// startDate uses the project's own start date.
	CommitPlan(ctx context.Context, projectID string, startDate time.Time, drafts []domain.TaskDraft) (*planning.CommitResult, error)
	CreateProjectWithPlan(ctx context.Context, in NewProjectInput) (*ProjectPlanResult, error)
	SuggestProjectDescription(ctx context.Context, projectName string) (string, error)
	GenerateTaskDescription(ctx context.Context, projectName, taskTitle string) (string, error)
	// DescribeTask writes a generated description onto a stored task.
	DescribeTask(ctx context.Context, taskID string) (*domain.Task, error)
}

type UserService interface {
	// EnsureUser records a user seen through authentication and returns the
	// stored record, whose role is authoritative.
	EnsureUser(ctx context.Context, u *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, actor *domain.User) ([]*domain.User, error)
	SetRole(ctx context.Context, actor *domain.User, userID string, role domain.Role) error
}
