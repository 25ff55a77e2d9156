package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/planpilot/internal/cli/formatter"
	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/service"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"t"},
		Short:   "Manage tasks",
	}

	cmd.AddCommand(
		newTaskListCmd(app),
		newTaskAddCmd(app),
		newTaskShowCmd(app),
		newTaskDoneCmd(app),
		newTaskDeleteCmd(app),
		newTaskDescribeCmd(app),
	)

	return cmd
}

func newTaskListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list [PROJECT]",
		Aliases: []string{"ls"},
		Short:   "List tasks of a project, or all local tasks",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var tasks []*domain.Task
			if len(args) == 1 {
				id, err := resolveProjectID(ctx, app, args[0])
				if err != nil {
					return err
				}
				if tasks, err = app.Tasks.ListByProject(ctx, id); err != nil {
					return err
				}
			} else {
				var err error
				if tasks, err = app.Tasks.ListByOwner(ctx, domain.GuestOwnerID); err != nil {
					return err
				}
			}

			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTaskList(tasks, app.now()))
			return nil
		},
	}
}

func newTaskAddCmd(app *App) *cobra.Command {
	var title, description, priority, due, assignee string

	cmd := &cobra.Command{
		Use:   "add PROJECT",
		Short: "Add a task to a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}

			in := service.TaskInput{
				Title:       title,
				Description: description,
				Assignee:    assignee,
				Priority:    domain.Priority(priority),
			}
			if due != "" {
				d, err := parseDateFlag("due", due)
				if err != nil {
					return err
				}
				dueAt := domain.DueDateFromOffset(d, 1)
				in.DueDate = &dueAt
			}

			t, err := app.Tasks.Create(ctx, projectID, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added task %s %s\n", formatter.Bold(t.Title), formatter.TruncID(t.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().StringVar(&priority, "priority", string(domain.PriorityNormal), "high, normal or low")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newTaskShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show TASK",
		Short: "Show a task with its description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			t, err := app.Tasks.GetByID(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTaskDetail(t, app.now()))
			return nil
		},
	}
}

func newTaskDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done TASK",
		Short: "Toggle a task between completed and pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			t, err := app.Tasks.Toggle(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatter.TaskStatusPill(t.Status), t.Title)
			return nil
		},
	}
}

func newTaskDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete TASK",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			t, err := app.Tasks.GetByID(ctx, id)
			if err != nil {
				return err
			}
			ok, err := confirm(app, yes, fmt.Sprintf("Delete task %q?", t.Title), "")
			if err != nil || !ok {
				return err
			}
			if err := app.Tasks.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", t.Title)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")

	return cmd
}

func newTaskDescribeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "describe TASK",
		Short: "Write an AI-generated description onto a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Plans == nil {
				return errPlanningDisabled
			}
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}

			var t *domain.Task
			err = spin(app, cmd.ErrOrStderr(), "Describing task...", func() error {
				var err error
				t, err = app.Plans.DescribeTask(ctx, id)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTaskDetail(t, app.now()))
			return nil
		},
	}
}
