package cli

import (
	"fmt"
	"strings"

	"protanni/internal/publish"

	"github.com/spf13/cobra"
)

func newReviewCmd(app *App) *cobra.Command {
	var (
		markdown  bool
		to        string
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "review",
		Short: "This week's review",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			r, err := c.WeeklyReview(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(to) != "" {
				res, err := publish.WriteReview(r, to, publish.WriteOptions{Overwrite: overwrite})
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"data": res})
			}
			if markdown {
				_, err := fmt.Fprint(cmd.OutOrStdout(), publish.RenderReviewMarkdown(r))
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": r})
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Print the review as markdown")
	cmd.Flags().StringVar(&to, "to", "", "Write the review to <dir>/reviews/<week_start>.md")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing review file")
	return cmd
}
