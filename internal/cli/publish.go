package cli

import (
	"errors"
	"strings"

	"prioritize/internal/model"
	"prioritize/internal/publish"
	"prioritize/internal/tui"

	"github.com/spf13/cobra"
)

func newPublishCmd(app *App) *cobra.Command {
	var toDir string
	var rootID string
	var html bool
	var csv bool
	var overwrite bool
	var render bool
	var width int

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Export derived Markdown/HTML/CSV outlines (not canonical)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer ws.close()

			if render {
				md, err := publish.RenderMarkdown(ws.tree, strings.TrimSpace(rootID))
				if err != nil {
					return writeErr(cmd, err)
				}
				_, err = cmd.OutOrStdout().Write([]byte(tui.RenderMarkdown(md, width) + "\n"))
				return err
			}

			toDir = strings.TrimSpace(toDir)
			if toDir == "" {
				return writeErr(cmd, errors.New("missing --to"))
			}
			res, err := publish.WriteOutline(ws.tree, toDir, publish.WriteOptions{
				RootID:    strings.TrimSpace(rootID),
				HTML:      html,
				CSV:       csv,
				Overwrite: overwrite,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": res,
				"_hints": []string{
					"git status",
					"git add -A",
					"git commit -m \"Publish priorities\"",
				},
			})
		},
	}

	cmd.Flags().StringVar(&toDir, "to", "", "Output directory")
	cmd.Flags().StringVar(&rootID, "root", model.RootID, "Only publish the subtree under this item")
	cmd.Flags().BoolVar(&html, "html", false, "Also write outline.html")
	cmd.Flags().BoolVar(&csv, "csv", false, "Also write outline.csv (sheet layout)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&render, "render", false, "Print the Markdown outline styled for the terminal instead of writing files")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for --render")
	return cmd
}
