package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"protanni/internal/api"
	"protanni/internal/config"
	"protanni/internal/format"
	"protanni/internal/mutate"
	"protanni/internal/optimistic"
	"protanni/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Server     string
	Token      string
	Timezone   string
	PrettyJSON bool
	Format     string

	cfg *config.Config
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "protanni",
		Short:        "Protanni dashboard, CLI and API server",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the dashboard
  protanni

  # Run the API and create a user
  protanni serve
  protanni users add "Ada" --tz Europe/Oslo

  # Point the client at it
  protanni login --server http://localhost:8787 --token pt_...

  # Scriptable commands
  protanni tasks list --area work
  protanni habits toggle <habit-id>
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => dashboard.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd.Context(), app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return writeErr(cmd, err)
		}
		if app.Server != "" {
			cfg.Server = app.Server
		}
		if app.Token != "" {
			cfg.Token = app.Token
		}
		if app.Timezone != "" {
			cfg.Timezone = app.Timezone
		}
		app.cfg = cfg
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Server, "server", "", "API base URL (overrides config and PROTANNI_SERVER)")
	cmd.PersistentFlags().StringVar(&app.Token, "token", "", "Bearer token (overrides config and PROTANNI_TOKEN)")
	cmd.PersistentFlags().StringVar(&app.Timezone, "tz", "", "IANA timezone for today (overrides config and PROTANNI_TZ)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("PROTANNI_FORMAT", "json"), "Output format (json|yaml)")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newUsersCmd(app))
	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newHabitsCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newCapturesCmd(app))
	cmd.AddCommand(newTodayCmd(app))
	cmd.AddCommand(newMoodCmd(app))
	cmd.AddCommand(newFocusCmd(app))
	cmd.AddCommand(newReviewCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func runTUI(ctx context.Context, app *App) error {
	if app.cfg.Token == "" {
		return fmt.Errorf("no token configured; run `protanni login --server URL --token TOKEN`")
	}
	return tui.Run(ctx, app.cfg)
}

func (app *App) client() (*api.Client, error) {
	if app.cfg.Token == "" {
		return nil, fmt.Errorf("no token configured; run `protanni login` or pass --token")
	}
	return api.New(app.cfg.Server, app.cfg.Token), nil
}

// lists builds the optimistic lists for a one-shot command. Nothing is
// hydrated; each command loads the list it works on.
func (app *App) lists(cmd *cobra.Command) (*mutate.Lists, error) {
	c, err := app.client()
	if err != nil {
		return nil, err
	}
	return mutate.NewLists(c, mutate.Options{
		Logger:   newLogger(app.cfg, cmd.ErrOrStderr()),
		Timezone: app.cfg.Timezone,
	}), nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}

// writeResult prints a mutation's record and outcome.
func writeResult(cmd *cobra.Command, app *App, data any, outcome optimistic.Outcome) error {
	return writeOut(cmd, app, format.Result{Data: data, Outcome: string(outcome)})
}
