package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/planpilot/internal/cli/formatter"
	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/planning"
	"github.com/alexanderramin/planpilot/internal/service"
)

// errPlanningDisabled is returned by AI commands when no model is configured.
var errPlanningDisabled = errors.New("AI planning is disabled (set PLANPILOT_LLM_ENABLED=true)")

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"p"},
		Short:   "Manage projects",
	}

	cmd.AddCommand(
		newProjectNewCmd(app),
		newProjectListCmd(app),
		newProjectShowCmd(app),
		newProjectEditCmd(app),
		newProjectDeleteCmd(app),
		newProjectStatsCmd(app),
	)

	return cmd
}

func newProjectNewCmd(app *App) *cobra.Command {
	var name, description, start, end string
	var ai, suggest, yes bool

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a project, optionally with an AI-generated task plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			startDate, err := parseDateFlag("start", start)
			if err != nil {
				return err
			}
			endDate, err := parseDateFlag("end", end)
			if err != nil {
				return err
			}
			if (ai || suggest) && app.Plans == nil {
				return errPlanningDisabled
			}

			if suggest && description == "" {
				err := spin(app, cmd.ErrOrStderr(), "Writing a description...", func() error {
					var err error
					description, err = app.Plans.SuggestProjectDescription(ctx, name)
					return err
				})
				if err != nil {
					return fmt.Errorf("suggesting description: %w", err)
				}
			}

			p, err := app.Projects.Create(ctx, service.NewProjectInput{
				Name:        name,
				Description: description,
				StartDate:   startDate,
				EndDate:     endDate,
				OwnerID:     domain.GuestOwnerID,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Created project %s %s\n", formatter.Bold(p.Name), formatter.TruncID(p.ID))

			if !ai {
				return nil
			}
			return generateAndCommit(cmd, app, p, yes)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&description, "description", "", "Project description")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD, default a 7-day span)")
	cmd.Flags().BoolVar(&ai, "ai", false, "Generate and commit a task plan")
	cmd.Flags().BoolVar(&suggest, "suggest-description", false, "Let the model write the description")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Commit the generated plan without asking")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// generateAndCommit plans an existing project, shows the drafts and commits
// them once confirmed. A declined or failed plan leaves the project as is.
func generateAndCommit(cmd *cobra.Command, app *App, p *domain.Project, yes bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	var plan *planning.Plan
	err := spin(app, cmd.ErrOrStderr(), "Generating task plan...", func() error {
		var err error
		plan, err = app.Plans.GeneratePlan(ctx, p.Name, p.Duration())
		return err
	})
	if err != nil {
		return fmt.Errorf("project %s was created but planning failed: %w", p.ID, err)
	}
	fmt.Fprintln(out, formatter.FormatPlan(plan, p.StartDate))

	if len(plan.Drafts) == 0 {
		fmt.Fprintln(out, "The model returned no usable tasks.")
		return nil
	}
	ok, err := confirm(app, yes, fmt.Sprintf("Create %d tasks?", len(plan.Drafts)), p.Name)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(out, "Plan discarded.")
		return nil
	}

	res, err := app.Plans.CommitPlan(ctx, p.ID, p.StartDate, plan.Drafts)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, formatter.FormatCommitResult(res))
	return nil
}

func newProjectListCmd(app *App) *cobra.Command {
	var archived bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Projects.List(cmd.Context(), "", archived)
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectList(projects))
			return nil
		},
	}

	cmd.Flags().BoolVar(&archived, "archived", false, "Include archived projects")

	return cmd
}

func newProjectShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show PROJECT",
		Short: "Show project details and tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			p, err := app.Projects.GetByID(ctx, id)
			if err != nil {
				return err
			}
			stats, err := app.Projects.Stats(ctx, id)
			if err != nil {
				return err
			}
			tasks, err := app.Tasks.ListByProject(ctx, id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.FormatProjectDetail(p, stats))
			if len(tasks) > 0 {
				fmt.Fprintln(out, formatter.FormatTaskList(tasks, app.now()))
			}
			return nil
		},
	}
}

func newProjectEditCmd(app *App) *cobra.Command {
	var name, description, start, end, status string

	cmd := &cobra.Command{
		Use:   "edit PROJECT",
		Short: "Update project fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}

			var upd service.ProjectUpdate
			flags := cmd.Flags()
			if flags.Changed("name") {
				upd.Name = &name
			}
			if flags.Changed("description") {
				upd.Description = &description
			}
			if flags.Changed("start") {
				d, err := parseDateFlag("start", start)
				if err != nil {
					return err
				}
				upd.StartDate = &d
			}
			if flags.Changed("end") {
				d, err := parseDateFlag("end", end)
				if err != nil {
					return err
				}
				upd.EndDate = &d
			}
			if flags.Changed("status") {
				st := domain.ProjectStatus(status)
				upd.Status = &st
			}

			p, err := app.Projects.Update(ctx, id, upd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated project %s\n", formatter.Bold(p.Name))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&start, "start", "", "New start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "New end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&status, "status", "", "active or archived")

	return cmd
}

func newProjectDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete PROJECT",
		Aliases: []string{"rm"},
		Short:   "Delete a project and all of its tasks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			p, err := app.Projects.GetByID(ctx, id)
			if err != nil {
				return err
			}

			ok, err := confirm(app, yes, fmt.Sprintf("Delete %q?", p.Name), "All of its tasks are deleted too.")
			if err != nil || !ok {
				return err
			}
			n, err := app.Projects.Delete(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s and %d task(s)\n", p.Name, n)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")

	return cmd
}

func newProjectStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats PROJECT",
		Short: "Show task completion for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			stats, err := app.Projects.Stats(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProjectStats(stats))
			return nil
		},
	}
}
