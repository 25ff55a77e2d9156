package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/alexanderramin/planpilot/internal/cli"
	"github.com/alexanderramin/planpilot/internal/config"
	"github.com/alexanderramin/planpilot/internal/db"
	"github.com/alexanderramin/planpilot/internal/httpapi"
	"github.com/alexanderramin/planpilot/internal/llm"
	"github.com/alexanderramin/planpilot/internal/planning"
	"github.com/alexanderramin/planpilot/internal/repository"
	"github.com/alexanderramin/planpilot/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// CLI commands only surface warnings; serve switches to the configured level.
	level := new(slog.LevelVar)
	level.Set(max(cfg.LogLevel, slog.LevelWarn))
	logger := cfg.NewLoggerWithLevel(os.Stderr, level)
	slog.SetDefault(logger)

	database, err := db.Open(cfg.DBDriver, cfg.DBTarget())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	projectRepo := repository.NewSQLProjectRepo(database, cfg.DBDriver)
	taskRepo := repository.NewSQLTaskRepo(database, cfg.DBDriver)
	userRepo := repository.NewSQLUserRepo(database, cfg.DBDriver)
	uow := db.NewUnitOfWork(database)

	observer := service.NewSlogUseCaseObserver(logger)
	projects := service.NewProjectService(projectRepo, taskRepo, uow, cfg.DBDriver, observer)
	tasks := service.NewTaskService(taskRepo, projectRepo, observer)
	users := service.NewUserService(userRepo, observer)

	app := &cli.App{
		Projects: projects,
		Tasks:    tasks,
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}

	if cfg.LLM.Enabled {
		var llmObserver llm.Observer = llm.NoopObserver{}
		if cfg.LLM.LogCalls {
			llmObserver = llm.NewSlogObserver(logger)
		}
		client, err := llm.NewClient(cfg.LLM, llmObserver)
		if err != nil {
			return err
		}
		committer := planning.NewCommitter(taskRepo,
			planning.WithMaxInFlight(cfg.CommitMaxInFlight),
			planning.WithLogger(logger),
		)
		app.Plans = service.NewPlanService(
			planning.NewGenerator(client),
			committer,
			planning.NewDescriber(client),
			projects, projectRepo, taskRepo,
			observer,
		)
	}

	app.Serve = func(ctx context.Context) error {
		level.Set(cfg.LogLevel)
		if app.Plans == nil {
			logger.Warn("llm_disabled", "detail", "AI endpoints will fail")
		}
		if cfg.JWTSecret == "" {
			logger.Warn("auth_disabled", "detail", "PLANPILOT_JWT_SECRET is empty; every request acts as the guest user")
		}
		srv := httpapi.NewServer(httpapi.Deps{
			Projects: projects,
			Tasks:    tasks,
			Plans:    app.Plans,
			Users:    users,
		}, httpapi.Options{
			JWTSecret:   cfg.JWTSecret,
			CORSOrigins: cfg.CORSOrigins,
			Logger:      logger,
		})
		return srv.Run(ctx, cfg.HTTPAddr)
	}

	return cli.NewRootCmd(app).Execute()
}
