package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/planpilot/internal/service"
)

// App holds the services and hooks CLI commands run against.
type App struct {
	Projects service.ProjectService
	Tasks    service.TaskService
	// Plans is nil when the model integration is disabled.
	Plans service.PlanService

	// Serve runs the HTTP API until ctx is canceled.
	Serve func(ctx context.Context) error

	// IsInteractive reports whether prompts and spinners may be shown.
	IsInteractive func() bool
	Now           func() time.Time
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}

// NewRootCmd creates the top-level "planpilot" command.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "planpilot",
		Short:         "Project and task planner with AI-generated task plans",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newProjectCmd(app),
		newTaskCmd(app),
		newPlanCmd(app),
		newServeCmd(app),
	)

	return root
}
