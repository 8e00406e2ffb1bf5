package cli

import (
	"errors"
	"strings"

	"protanni/internal/api"
	"protanni/internal/config"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save the server URL and token into the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(app.Token) == "" {
				return writeErr(cmd, errors.New("--token is required"))
			}
			if verify {
				if _, err := api.New(app.cfg.Server, app.Token).DailyFocus(cmd.Context()); err != nil {
					return writeErr(cmd, err)
				}
			}
			cfg, err := config.ReadFile()
			if err != nil {
				return writeErr(cmd, err)
			}
			if app.Server != "" {
				cfg.Server = app.Server
			}
			cfg.Token = app.Token
			if app.Timezone != "" {
				cfg.Timezone = app.Timezone
			}
			if err := config.Save(cfg); err != nil {
				return writeErr(cmd, err)
			}
			path, _ := config.Path()
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"server": app.cfg.Server, "config": path}})
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", true, "Check the token against the server before saving")
	return cmd
}
