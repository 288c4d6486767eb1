package cli

import (
	"errors"
	"io"
	"os"
	"strings"

	"prioritize/internal/tree"

	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole document as JSON (stdout, or --out)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer ws.close()

			blob, err := ws.tree.Serialize()
			if err != nil {
				return writeErr(cmd, err)
			}
			out = strings.TrimSpace(out)
			if out == "" || out == "-" {
				_, err := cmd.OutOrStdout().Write(blob)
				return err
			}
			if err := os.WriteFile(out, blob, 0o644); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"written": out, "items": ws.tree.Len()},
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "File to write (default: stdout)")
	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the whole document with an exported one (validated first)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := readInput(cmd, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			doc, err := tree.DecodeDocument(blob)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := tree.Validate(doc); err != nil {
				return writeErr(cmd, err)
			}
			if dryRun {
				return writeOut(cmd, app, map[string]any{
					"data": map[string]any{"valid": true, "items": len(doc.Items)},
				})
			}
			_, err = mutateAndSave(cmd, app, func(ws *workspace) (any, error) {
				return nil, ws.tree.Replace(doc)
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"imported": len(doc.Items)},
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only validate the file")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("missing file")
	}
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
