package cli

import (
	"prioritize/internal/model"

	"github.com/spf13/cobra"
)

func newEventsCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List journaled changes (oldest-first)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			evs, err := s.Journal().ReadTail(limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			if evs == nil {
				evs = []model.Event{}
			}
			return writeOut(cmd, app, map[string]any{
				"data": eventsOut(evs),
				"meta": map[string]any{"journal": s.JournalPath(), "enabled": app.cfg.Journal},
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 200, "Max events to return (0 = all)")
	return cmd
}
