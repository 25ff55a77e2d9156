package planning

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/planpilot/internal/domain"
)

// DefaultMaxInFlight caps concurrent task creates per commit.
const DefaultMaxInFlight = 16

// TaskCreator persists one task. Implementations must be safe for
// concurrent use.
type TaskCreator interface {
	Create(ctx context.Context, t *domain.Task) error
}

// CommitRequest names the project a plan is committed into.
type CommitRequest struct {
	ProjectID string
	OwnerID   string
	// StartDate is the project's first day; a zero value means today (UTC).
	StartDate time.Time
	Drafts    []domain.TaskDraft
}

// CommitFailure describes one draft that could not be stored.
type CommitFailure struct {
	Index  int    `json:"index"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// CommitResult tallies a commit. Success+Failed always equals the number of
// drafts. TaskIDs and Failures are in draft order.
type CommitResult struct {
	Success  int             `json:"success"`
	Failed   int             `json:"failed"`
	TaskIDs  []string        `json:"taskIds"`
	Failures []CommitFailure `json:"failures,omitempty"`
}

// Committer turns drafts into tasks and stores them concurrently.
type Committer struct {
	store       TaskCreator
	logger      *slog.Logger
	maxInFlight int
	newID       func() string
	now         func() time.Time
}

// CommitterOption configures a Committer.
type CommitterOption func(*Committer)

// WithMaxInFlight bounds concurrent creates. Zero or less means unbounded.
func WithMaxInFlight(n int) CommitterOption {
	return func(c *Committer) { c.maxInFlight = n }
}

// WithLogger sets the logger used for per-item failures.
func WithLogger(l *slog.Logger) CommitterOption {
	return func(c *Committer) { c.logger = l }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) CommitterOption {
	return func(c *Committer) { c.now = now }
}

// NewCommitter creates a Committer writing through store.
func NewCommitter(store TaskCreator, opts ...CommitterOption) *Committer {
	c := &Committer{
		store:       store,
		logger:      slog.Default(),
		maxInFlight: DefaultMaxInFlight,
		newID:       uuid.NewString,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BuildTask converts a draft into a pending, unassigned task due on the
// draft's day offset from start.
func BuildTask(req CommitRequest, draft domain.TaskDraft, id string, now time.Time) *domain.Task {
	priority := draft.Priority
	if !domain.ValidPriorities[string(priority)] {
		priority = domain.PriorityNormal
	}
	owner := req.OwnerID
	if owner == "" {
		owner = domain.GuestOwnerID
	}
	due := domain.DueDateFromOffset(req.StartDate, draft.DaysFromNow)
	return &domain.Task{
		ID:          id,
		ProjectID:   req.ProjectID,
		Title:       strings.TrimSpace(draft.Title),
		Description: DraftDescription(draft),
		Assignee:    domain.UnassignedAssignee,
		Priority:    priority,
		Status:      domain.TaskPending,
		DueDate:     &due,
		OwnerID:     owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

type commitOutcome struct {
	id  string
	err error
}

// CommitPlan creates one task per draft. All creates are in flight at once
// (up to the configured bound) and the call returns once every one has
// settled. Individual failures are logged and tallied, never returned; the
// only error is ErrInvalidCommit for a request without a project.
//
// Creates are detached from ctx cancellation so an abandoned caller does not
// turn in-flight writes into spurious failures. Nothing is rolled back.
func (c *Committer) CommitPlan(ctx context.Context, req CommitRequest) (*CommitResult, error) {
	if strings.TrimSpace(req.ProjectID) == "" {
		return nil, fmt.Errorf("%w: project ID is required", ErrInvalidCommit)
	}
	if req.StartDate.IsZero() {
		req.StartDate = domain.CalendarDate(c.now())
	}

	outcomes := make([]commitOutcome, len(req.Drafts))
	writeCtx := context.WithoutCancel(ctx)
	now := c.now()

	var sem chan struct{}
	if c.maxInFlight > 0 {
		sem = make(chan struct{}, c.maxInFlight)
	}

	var wg sync.WaitGroup
	for i, draft := range req.Drafts {
		task := BuildTask(req, draft, c.newID(), now)
		if sem != nil {
			sem <- struct{}{}
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if sem != nil {
				defer func() { <-sem }()
			}
			outcomes[i] = c.createOne(writeCtx, task)
		}()
	}
	wg.Wait()

	result := &CommitResult{TaskIDs: make([]string, 0, len(outcomes))}
	for i, o := range outcomes {
		if o.err != nil {
			result.Failed++
			result.Failures = append(result.Failures, CommitFailure{
				Index:  i,
				Title:  req.Drafts[i].Title,
				Reason: o.err.Error(),
				Err:    o.err,
			})
			c.logger.Warn("commit_task_failed",
				"project_id", req.ProjectID,
				"index", i,
				"title", req.Drafts[i].Title,
				"error", o.err,
			)
			continue
		}
		result.Success++
		result.TaskIDs = append(result.TaskIDs, o.id)
	}

	c.logger.Info("commit_plan",
		"project_id", req.ProjectID,
		"drafts", len(req.Drafts),
		"success", result.Success,
		"failed", result.Failed,
	)
	return result, nil
}

func (c *Committer) createOne(ctx context.Context, task *domain.Task) (out commitOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = commitOutcome{err: fmt.Errorf("task create panicked: %v", r)}
		}
	}()
	if err := task.Validate(); err != nil {
		return commitOutcome{err: err}
	}
	if err := c.store.Create(ctx, task); err != nil {
		return commitOutcome{err: err}
	}
	return commitOutcome{id: task.ID}
}
