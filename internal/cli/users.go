package cli

import (
	"protanni/internal/session"

	"github.com/spf13/cobra"
)

func newUsersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Server-side user commands (use the database directly)",
	}
	cmd.AddCommand(newUsersAddCmd(app))
	cmd.AddCommand(newUsersListCmd(app))
	return cmd
}

func newUsersAddCmd(app *App) *cobra.Command {
	var tz string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a user and print a bearer token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openDB(ctx, app.cfg)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()

			u, err := db.CreateUser(ctx, args[0], tz)
			if err != nil {
				return writeErr(cmd, err)
			}
			backend, closeBackend, err := sessionBackend(app.cfg, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeBackend()
			token, err := session.NewManager(backend, session.DefaultTTL).Issue(ctx, u.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   map[string]any{"user": u, "token": token},
				"_hints": []string{"protanni login --token " + token},
			})
		},
	}
	cmd.Flags().StringVar(&tz, "tz", "", "IANA timezone for the user's today (default UTC)")
	return cmd
}

func newUsersListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openDB(ctx, app.cfg)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()
			users, err := db.ListUsers(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": users})
		},
	}
}
