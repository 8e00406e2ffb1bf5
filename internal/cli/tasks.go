package cli

import (
	"strings"

	"protanni/internal/model"
	"protanni/internal/mutate"
	"protanni/internal/statusutil"

	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Task commands",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksAddCmd(app))
	cmd.AddCommand(newTasksToggleCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))
	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var area string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List open and done tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			if area != "" && statusutil.NormalizeArea(area) == "" {
				return writeErr(cmd, errUnknownArea(area))
			}
			tasks, err := c.Tasks(cmd.Context(), string(statusutil.NormalizeArea(area)))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": tasks})
		},
	}
	cmd.Flags().StringVar(&area, "area", "", "Filter by area (work|personal|mind|body)")
	return cmd
}

func newTasksAddCmd(app *App) *cobra.Command {
	var area string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := c.CreateTask(cmd.Context(), strings.Join(args, " "), area)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": t})
		},
	}
	cmd.Flags().StringVar(&area, "area", "", "Area (work|personal|mind|body); unknown values leave it unfiled")
	return cmd
}

func newTasksToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <task-id>",
		Short: "Flip a task between todo and done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := app.lists(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.Close()
			if err := l.Tasks.Hydrate(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			outcome, err := mutate.Apply(cmd.Context(), l.Tasks, "task", l.ToggleTask(args[0]))
			if err != nil {
				return writeErr(cmd, err)
			}
			t, _ := l.Tasks.Store.Get(args[0])
			return writeResult(cmd, app, t, outcome)
		},
	}
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := app.lists(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.Close()
			if err := l.Tasks.Hydrate(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			outcome, err := mutate.Apply(cmd.Context(), l.Tasks, "task", l.DeleteTask(args[0]))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeResult(cmd, app, map[string]string{"id": args[0]}, outcome)
		},
	}
}

type unknownAreaError string

func (e unknownAreaError) Error() string {
	names := make([]string, 0, len(model.Areas))
	for _, a := range model.Areas {
		names = append(names, string(a))
	}
	return "unknown area: " + string(e) + " (expected " + strings.Join(names, "|") + ")"
}

func errUnknownArea(a string) error { return unknownAreaError(a) }
