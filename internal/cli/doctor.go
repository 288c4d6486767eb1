package cli

import (
	"errors"

	"prioritize/internal/store"
	"prioritize/internal/tree"

	"github.com/spf13/cobra"
)

var errDoctorIssuesFound = errors.New("doctor found issues")

type doctorReport struct {
	Dir      string `json:"dir"`
	Backend  string `json:"backend"`
	OK       bool   `json:"ok"`
	Items    int    `json:"items"`
	Problem  string `json:"problem,omitempty"`
	ItemID   string `json:"itemId,omitempty"`
	Restored bool   `json:"restored,omitempty"`
	Fallback string `json:"fallback,omitempty"`
}

func newDoctorCmd(app *App) *cobra.Command {
	var fail bool
	var restore bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate the stored document; optionally restore the last known good copy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, b, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			report := doctorReport{Dir: s.Dir, Backend: b.Name()}

			t := tree.New(tree.Options{Logger: &app.log})
			loadErr := t.Load(cmd.Context(), b, app.cfg.Timeout)
			var corrupt tree.CorruptDataError
			switch {
			case loadErr == nil:
				report.OK = true
				report.Items = t.Len()
			case errors.As(loadErr, &corrupt):
				report.Problem = corrupt.Error()
				report.ItemID = corrupt.ItemID
			default:
				return writeErr(cmd, loadErr)
			}

			if !report.OK && restore {
				fallback, err := restoreDocument(cmd, app, b, t)
				if err != nil {
					return writeErr(cmd, err)
				}
				report.Restored = true
				report.Fallback = fallback
				report.Items = t.Len()
			}

			hints := []string{"prioritize ls --recursive"}
			if !report.OK && !report.Restored {
				hints = []string{"prioritize doctor --restore"}
			}
			if err := writeOut(cmd, app, map[string]any{
				"data":   report,
				"_hints": hints,
			}); err != nil {
				return err
			}
			if fail && !report.OK && !report.Restored {
				return errDoctorIssuesFound
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fail, "fail", false, "Exit with non-zero status if the document is corrupt")
	cmd.Flags().BoolVar(&restore, "restore", false, "Replace a corrupt document with the backup, or an empty one when there is none")
	return cmd
}

// restoreDocument swaps in the backend's last known good copy, or an empty tree, and saves it.
// It reports which one was used.
func restoreDocument(cmd *cobra.Command, app *App, b store.Backend, t *tree.PriorityTree) (string, error) {
	fallback := "empty"
	if bl, ok := b.(store.BackupLoader); ok {
		if doc, err := bl.LoadBackup(cmd.Context()); err == nil {
			if err := t.Replace(doc); err == nil {
				fallback = "backup"
			} else {
				app.log.Warn().Err(err).Msg("backup is corrupt too")
			}
		} else {
			app.log.Info().Err(err).Msg("no usable backup")
		}
	}
	if err := t.Save(cmd.Context(), b, app.cfg.Timeout); err != nil {
		return "", err
	}
	return fallback, nil
}
