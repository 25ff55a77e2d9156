package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/planpilot/internal/cli/formatter"
	"github.com/alexanderramin/planpilot/internal/planfile"
	"github.com/alexanderramin/planpilot/internal/planning"
)

func newPlanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate task plans and commit them to projects",
	}

	cmd.AddCommand(
		newPlanGenerateCmd(app),
		newPlanCommitCmd(app),
	)

	return cmd
}

func newPlanGenerateCmd(app *App) *cobra.Command {
	var name, project, outPath string
	var days int

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Ask the model for a task plan",
		Long: "Generate a task plan for a project name and duration. With --out the plan\n" +
			"is written as YAML so it can be edited and committed with 'plan commit'.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Plans == nil {
				return errPlanningDisabled
			}
			ctx := cmd.Context()

			start := app.now()
			if project != "" {
				id, err := resolveProjectID(ctx, app, project)
				if err != nil {
					return err
				}
				p, err := app.Projects.GetByID(ctx, id)
				if err != nil {
					return err
				}
				name = p.Name
				start = p.StartDate
				if !cmd.Flags().Changed("days") {
					days = p.Duration()
				}
			}
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("--name or --project is required")
			}

			var plan *planning.Plan
			err := spin(app, cmd.ErrOrStderr(), "Generating task plan...", func() error {
				var err error
				plan, err = app.Plans.GeneratePlan(ctx, name, days)
				return err
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.FormatPlan(plan, start))
			if outPath == "" {
				return nil
			}
			if err := planfile.Write(outPath, planfile.FromPlan(plan, app.now())); err != nil {
				return err
			}
			fmt.Fprintf(out, "Wrote %d task(s) to %s\n", len(plan.Drafts), outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name to plan for")
	cmd.Flags().StringVar(&project, "project", "", "Plan for an existing project (name and duration)")
	cmd.Flags().IntVar(&days, "days", planning.DefaultDurationDays, "Project duration in days")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the plan to a YAML file")

	return cmd
}

func newPlanCommitCmd(app *App) *cobra.Command {
	var file, start string
	var yes bool

	cmd := &cobra.Command{
		Use:   "commit PROJECT",
		Short: "Create tasks from a plan file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Plans == nil {
				return errPlanningDisabled
			}
			ctx := cmd.Context()

			startDate, err := parseDateFlag("start", start)
			if err != nil {
				return err
			}
			id, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			p, err := app.Projects.GetByID(ctx, id)
			if err != nil {
				return err
			}
			doc, err := planfile.Read(file)
			if err != nil {
				return err
			}
			if len(doc.Drafts) == 0 {
				return fmt.Errorf("plan file %s has no tasks", file)
			}

			preview := startDate
			if preview.IsZero() {
				preview = p.StartDate
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.FormatPlan(&planning.Plan{
				ProjectName: p.Name,
				Model:       doc.Model,
				Drafts:      doc.Drafts,
			}, preview))

			ok, err := confirm(app, yes, fmt.Sprintf("Create %d tasks in %q?", len(doc.Drafts), p.Name), "")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, "Nothing committed.")
				return nil
			}

			res, err := app.Plans.CommitPlan(ctx, p.ID, startDate, doc.Drafts)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, formatter.FormatCommitResult(res))
			if res.Failed > 0 {
				return fmt.Errorf("%d of %d tasks failed", res.Failed, len(doc.Drafts))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Plan file written by 'plan generate --out'")
	cmd.Flags().StringVar(&start, "start", "", "Day 1 of the plan (YYYY-MM-DD, default project start)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
