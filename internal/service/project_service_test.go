package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/repository"
	"github.com/alexanderramin/planpilot/internal/testutil"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestProjectService_Create_SafeDefaults(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	p, err := env.projects.Create(ctx, NewProjectInput{Name: "  Website redesign  "})
	require.NoError(t, err)

	today := domain.CalendarDate(time.Now().UTC())
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Website redesign", p.Name)
	assert.True(t, today.Equal(p.StartDate))
	assert.Equal(t, domain.DefaultProjectSpanDays, p.Duration())
	assert.Equal(t, domain.ProjectActive, p.Status)
	assert.Equal(t, domain.GuestOwnerID, p.OwnerID)

	fetched, err := env.projects.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, fetched.Name)
	assert.True(t, p.EndDate.Equal(fetched.EndDate))

	assert.Contains(t, env.logs.String(), "use_case=create-project")
}

func TestProjectService_Create_ExplicitDates(t *testing.T) {
	env := setupEnv(t)

	p, err := env.projects.Create(context.Background(), NewProjectInput{
		Name:      "Launch",
		StartDate: date(2024, 1, 10),
		EndDate:   date(2024, 1, 19),
		OwnerID:   "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, 10, p.Duration())
	assert.Equal(t, "u1", p.OwnerID)
}

func TestProjectService_Create_Invalid(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	_, err := env.projects.Create(ctx, NewProjectInput{Name: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.projects.Create(ctx, NewProjectInput{Name: "Backwards", StartDate: date(2024, 1, 10), EndDate: date(2024, 1, 9)})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "must not be before start date")
}

func TestProjectService_ListByOwner(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	_, err := env.projects.Create(ctx, NewProjectInput{Name: "Mine", OwnerID: "alice"})
	require.NoError(t, err)
	_, err = env.projects.Create(ctx, NewProjectInput{Name: "Theirs", OwnerID: "bob"})
	require.NoError(t, err)

	mine, err := env.projects.List(ctx, "alice", false)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Mine", mine[0].Name)

	all, err := env.projects.List(ctx, "", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestProjectService_Update(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	p, err := env.projects.Create(ctx, NewProjectInput{Name: "Old", StartDate: date(2024, 1, 10)})
	require.NoError(t, err)

	name, desc := "New", "Now with a description"
	updated, err := env.projects.Update(ctx, p.ID, ProjectUpdate{Name: &name, Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)

	fetched, err := env.projects.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", fetched.Name)
	assert.Equal(t, desc, fetched.Description)

	early := date(2023, 12, 1)
	_, err = env.projects.Update(ctx, p.ID, ProjectUpdate{EndDate: &early})
	assert.ErrorIs(t, err, ErrInvalidInput)

	bogus := domain.ProjectStatus("paused")
	_, err = env.projects.Update(ctx, p.ID, ProjectUpdate{Status: &bogus})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.projects.Update(ctx, "missing", ProjectUpdate{Name: &name})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProjectService_Delete_CascadesTasks(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	keep, err := env.projects.Create(ctx, NewProjectInput{Name: "Keep"})
	require.NoError(t, err)
	doomed, err := env.projects.Create(ctx, NewProjectInput{Name: "Doomed"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, env.taskRepo.Create(ctx, testutil.NewTestTask(doomed.ID, "t")))
	}
	require.NoError(t, env.taskRepo.Create(ctx, testutil.NewTestTask(keep.ID, "survivor")))

	n, err := env.projects.Delete(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = env.projects.GetByID(ctx, doomed.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	left, err := env.taskRepo.ListByProject(ctx, keep.ID)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestProjectService_Delete_Missing(t *testing.T) {
	env := setupEnv(t)
	_, err := env.projects.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProjectService_Delete_RollsBackOnFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	env := setupEnv(t)
	projectRepo := repository.NewSQLProjectRepo(database, "sqlite")
	taskRepo := repository.NewSQLTaskRepo(database, "sqlite")

	// The second exec inside the transaction is the project delete.
	failing := &testutil.FailOnNthExecUoW{DB: database, FailOn: 2, Err: assert.AnError}
	svc := NewProjectService(projectRepo, taskRepo, failing, "sqlite", NewLogUseCaseObserver(env.logs))

	ctx := context.Background()
	p := testutil.NewTestProject("Fragile")
	require.NoError(t, projectRepo.Create(ctx, p))
	require.NoError(t, taskRepo.Create(ctx, testutil.NewTestTask(p.ID, "t1")))

	_, err := svc.Delete(ctx, p.ID)
	require.ErrorIs(t, err, assert.AnError)

	tasks, err := taskRepo.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 1, "task delete must be rolled back")
	assert.Contains(t, env.logs.String(), "success=false")
}

func TestProjectService_Stats(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	p, err := env.projects.Create(ctx, NewProjectInput{Name: "Stats"})
	require.NoError(t, err)

	past := time.Now().UTC().AddDate(0, 0, -2)
	future := time.Now().UTC().AddDate(0, 0, 2)
	for _, task := range []*domain.Task{
		testutil.NewTestTask(p.ID, "done", testutil.WithTaskStatus(domain.TaskCompleted), testutil.WithDueDate(past)),
		testutil.NewTestTask(p.ID, "late", testutil.WithDueDate(past)),
		testutil.NewTestTask(p.ID, "upcoming", testutil.WithDueDate(future)),
		testutil.NewTestTask(p.ID, "doing", testutil.WithTaskStatus(domain.TaskInProgress)),
	} {
		require.NoError(t, env.taskRepo.Create(ctx, task))
	}

	st, err := env.projects.Stats(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, st.TaskCount)
	assert.Equal(t, 1, st.CompletedCount)
	assert.Equal(t, 3, st.PendingCount)
	assert.Equal(t, 1, st.OverdueCount)
	assert.Equal(t, 25, st.Progress())

	_, err = env.projects.Stats(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
