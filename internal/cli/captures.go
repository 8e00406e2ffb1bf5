package cli

import (
	"strings"

	"protanni/internal/model"
	"protanni/internal/mutate"
	"protanni/internal/statusutil"
	"protanni/internal/viewstate"

	"github.com/spf13/cobra"
)

func newCapturesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "captures",
		Aliases: []string{"inbox"},
		Short:   "Inbox capture commands",
	}
	cmd.AddCommand(newCapturesListCmd(app))
	cmd.AddCommand(newCapturesAddCmd(app))
	cmd.AddCommand(newCapturesMoveCmd(app, "archive", "Archive an inbox capture", model.CaptureInbox, (*mutate.Lists).ArchiveCapture))
	cmd.AddCommand(newCapturesMoveCmd(app, "restore", "Move an archived capture back to the inbox", model.CaptureArchived, (*mutate.Lists).RestoreCapture))
	cmd.AddCommand(newCapturesConvertCmd(app))
	return cmd
}

func newCapturesListCmd(app *App) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List captures in one status",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := statusutil.NormalizeCaptureStatus(status)
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			captures, err := c.Captures(cmd.Context(), st)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": captures})
		},
	}
	cmd.Flags().StringVar(&status, "status", "inbox", "inbox|processed|archived")
	return cmd
}

func newCapturesAddCmd(app *App) *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "add <content>",
		Short: "Capture a thought into the inbox",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			capture, err := c.CreateCapture(cmd.Context(), strings.Join(args, " "), model.CaptureType(typ))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": capture})
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "note|task|goal|project|journal|habit|event|idea|link|other (default note)")
	return cmd
}

// captureLists hydrates an inbox list showing status.
func captureLists(cmd *cobra.Command, app *App, status model.CaptureStatus) (*mutate.Lists, error) {
	c, err := app.client()
	if err != nil {
		return nil, err
	}
	view := *viewstate.Default()
	view.CaptureStatus = string(status)
	l := mutate.NewLists(c, mutate.Options{
		Logger:   newLogger(app.cfg, cmd.ErrOrStderr()),
		Timezone: app.cfg.Timezone,
		View:     func() viewstate.State { return view },
	})
	if err := l.Inbox.Hydrate(cmd.Context()); err != nil {
		l.Close()
		return nil, err
	}
	return l, nil
}

func newCapturesMoveCmd(app *App, use, short string, from model.CaptureStatus, action func(*mutate.Lists, string) mutate.CaptureAction) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <capture-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := captureLists(cmd, app, from)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.Close()
			outcome, err := mutate.Apply(cmd.Context(), l.Inbox, "capture", action(l, args[0]))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeResult(cmd, app, map[string]string{"id": args[0]}, outcome)
		},
	}
}

func newCapturesConvertCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <capture-id>",
		Short: "Turn an inbox capture into a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := captureLists(cmd, app, model.CaptureInbox)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.Close()
			var taskID string
			outcome, err := mutate.Apply(cmd.Context(), l.Inbox, "capture", l.ConvertCapture(args[0], func(id string) { taskID = id }))
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := l.Tasks.Settler.Flush(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			data := map[string]any{"id": args[0], "task_id": taskID}
			if t, ok := l.Tasks.Store.Get(taskID); ok {
				data["task"] = t
			}
			return writeResult(cmd, app, data, outcome)
		},
	}
}
