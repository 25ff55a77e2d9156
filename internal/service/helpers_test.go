package service

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/alexanderramin/planpilot/internal/db"
	"github.com/alexanderramin/planpilot/internal/llm"
	"github.com/alexanderramin/planpilot/internal/planning"
	"github.com/alexanderramin/planpilot/internal/repository"
	"github.com/alexanderramin/planpilot/internal/testutil"
)

type testEnv struct {
	projectRepo *repository.SQLProjectRepo
	taskRepo    *repository.SQLTaskRepo
	userRepo    *repository.SQLUserRepo
	uow         db.UnitOfWork
	logs        *bytes.Buffer

	projects ProjectService
	tasks    TaskService
	users    UserService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	env := &testEnv{
		projectRepo: repository.NewSQLProjectRepo(database, db.DialectSQLite),
		taskRepo:    repository.NewSQLTaskRepo(database, db.DialectSQLite),
		userRepo:    repository.NewSQLUserRepo(database, db.DialectSQLite),
		uow:         testutil.NewTestUoW(database),
		logs:        &bytes.Buffer{},
	}
	obs := NewLogUseCaseObserver(env.logs)
	env.projects = NewProjectService(env.projectRepo, env.taskRepo, env.uow, db.DialectSQLite, obs)
	env.tasks = NewTaskService(env.taskRepo, env.projectRepo, obs)
	env.users = NewUserService(env.userRepo, obs)
	return env
}

// planServiceWith wires a PlanService around the given model client and
// task store, so commit failures can be injected.
func (e *testEnv) planServiceWith(client llm.LLMClient, store planning.TaskCreator) PlanService {
	if store == nil {
		store = e.taskRepo
	}
	quiet := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewPlanService(
		planning.NewGenerator(client),
		planning.NewCommitter(store, planning.WithLogger(quiet)),
		planning.NewDescriber(client),
		e.projects,
		e.projectRepo,
		e.taskRepo,
		NewLogUseCaseObserver(e.logs),
	)
}
