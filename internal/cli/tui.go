package cli

import (
	"context"

	"prioritize/internal/tui"

	"github.com/spf13/cobra"
)

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive tree view (default when no command is given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
}

func runTUI(cmd *cobra.Command, app *App) error {
	ws, err := openWorkspace(cmd, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer ws.close()

	err = tui.Run(ws.tree, tui.Options{
		Save:   func(ctx context.Context) error { return ws.save(ctx) },
		Dirty:  ws.dirty(),
		Logger: &app.log,
	})
	if err != nil {
		return writeErr(cmd, err)
	}
	if ws.dirty() {
		app.log.Warn().Msg("quit with unsaved changes")
	}
	return nil
}
