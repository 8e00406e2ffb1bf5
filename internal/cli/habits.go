package cli

import (
	"strings"

	"protanni/internal/model"
	"protanni/internal/mutate"

	"github.com/spf13/cobra"
)

func newHabitsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habits",
		Short: "Habit commands",
	}
	cmd.AddCommand(newHabitsListCmd(app))
	cmd.AddCommand(newHabitsAddCmd(app))
	cmd.AddCommand(newHabitsToggleCmd(app))
	cmd.AddCommand(newHabitsDeleteCmd(app))
	return cmd
}

func newHabitsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active habits with today's state",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			habits, err := c.Habits(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": habits})
		},
	}
}

func newHabitsAddCmd(app *App) *cobra.Command {
	var description string
	var frequency string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a habit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			h, err := c.CreateHabit(cmd.Context(), strings.Join(args, " "), description, model.HabitFrequency(frequency))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": h})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&frequency, "frequency", "", "daily|weekly|monthly|custom (default daily)")
	return cmd
}

func newHabitsToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <habit-id>",
		Short: "Mark a habit done or not done for today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := app.lists(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.Close()
			if err := l.Habits.Hydrate(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			outcome, err := mutate.Apply(cmd.Context(), l.Habits, "habit", l.ToggleHabit(args[0]))
			if err != nil {
				return writeErr(cmd, err)
			}
			h, _ := l.Habits.Store.Get(args[0])
			return writeResult(cmd, app, h, outcome)
		},
	}
}

func newHabitsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <habit-id>",
		Short: "Deactivate a habit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := app.lists(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.Close()
			if err := l.Habits.Hydrate(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			outcome, err := mutate.Apply(cmd.Context(), l.Habits, "habit", l.DeleteHabit(args[0]))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeResult(cmd, app, map[string]string{"id": args[0]}, outcome)
		},
	}
}
