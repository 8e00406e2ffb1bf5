package cli

import (
	"fmt"
	"strings"

	"protanni/internal/clock"
	"protanni/internal/model"
	"protanni/internal/mutate"

	"github.com/spf13/cobra"
)

func newTodayCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's mood and focus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := c.Today(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			t.Date = clock.Today(clock.System{}, app.cfg.Timezone)
			return writeOut(cmd, app, map[string]any{"data": t})
		},
	}
}

func newMoodCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mood",
		Short: "Today's mood check-in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showMood(cmd, app)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show today's check-in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showMood(cmd, app)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <level>",
		Short: "Record today's mood (great|good|neutral|low|very_low or 1-5)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level := model.ParseMood(args[0])
			if level == model.MoodNeutral && !isNeutral(args[0]) {
				return writeErr(cmd, fmt.Errorf("unknown mood: %s", args[0]))
			}
			l, err := todayLists(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.Close()
			outcome, err := mutate.Apply(cmd.Context(), l.Mood, "mood", l.SetMood(level))
			if err != nil {
				return writeErr(cmd, err)
			}
			t, _ := l.Today()
			return writeResult(cmd, app, t.Mood, outcome)
		},
	})
	return cmd
}

// isNeutral reports whether s names the neutral level itself, so it is not
// confused with ParseMood's fallback.
func isNeutral(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == string(model.MoodNeutral) || s == "3"
}

func showMood(cmd *cobra.Command, app *App) error {
	c, err := app.client()
	if err != nil {
		return writeErr(cmd, err)
	}
	m, err := c.Mood(cmd.Context())
	if err != nil {
		return writeErr(cmd, err)
	}
	return writeOut(cmd, app, map[string]any{"data": m})
}

func newFocusCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "focus",
		Short: "Today's focus line",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showFocus(cmd, app)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the focus line",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showFocus(cmd, app)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <text>",
		Short: "Set the focus line (empty text clears it)",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := todayLists(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.Close()
			outcome, err := mutate.Apply(cmd.Context(), l.Focus, "focus", l.SetFocus(strings.Join(args, " ")))
			if err != nil {
				return writeErr(cmd, err)
			}
			t, _ := l.Today()
			return writeResult(cmd, app, t.Focus, outcome)
		},
	})
	return cmd
}

func showFocus(cmd *cobra.Command, app *App) error {
	c, err := app.client()
	if err != nil {
		return writeErr(cmd, err)
	}
	f, err := c.DailyFocus(cmd.Context())
	if err != nil {
		return writeErr(cmd, err)
	}
	return writeOut(cmd, app, map[string]any{"data": f})
}

func todayLists(cmd *cobra.Command, app *App) (*mutate.Lists, error) {
	l, err := app.lists(cmd)
	if err != nil {
		return nil, err
	}
	if err := l.HydrateToday(cmd.Context()); err != nil {
		l.Close()
		return nil, err
	}
	return l, nil
}
