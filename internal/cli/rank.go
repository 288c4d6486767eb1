package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"prioritize/internal/model"
	"prioritize/internal/ranker"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// asker is a ranking run driven one question at a time.
type asker interface {
	Pair() (candidate, pivot model.Item, ok bool, err error)
	Decide(candidateFirst bool) (placed string, err error)
	Remaining() int
	Comparisons() int
}

func newRankCmd(app *App) *cobra.Command {
	var (
		keep      int
		recursive bool
	)

	cmd := &cobra.Command{
		Use:   "rank [parent-id]",
		Short: "Order a list by answering \"which of these two matters more?\"",
		Long: strings.TrimSpace(`
Ranks the children of parent-id (default: the top level) by binary insertion: every answer
places an item or halves the range it can still go to, so n items take about n*log2(n)
questions. Answer 1 or 2; q stops early and keeps what has been placed so far.

With --recursive the children of every ranked item are ranked next, level by level in the
new order. Items with fewer than two children are passed over. The count shown with each
question covers every group still to come.

Questions go to stderr so stdout stays machine-readable.
`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parentID := model.RootID
			if len(args) == 1 {
				parentID = strings.TrimSpace(args[0])
			}
			ws, err := openWorkspace(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer ws.close()

			var (
				run  asker
				walk *ranker.Walk
			)
			if recursive {
				walk, err = ranker.NewWalk(ws.tree, parentID, ranker.SessionOptions{Keep: keep})
				run = walk
			} else {
				run, err = ranker.NewSession(ws.tree, parentID, ranker.SessionOptions{Keep: keep})
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			completed, askErr := askAll(run, bufio.NewReader(cmd.InOrStdin()), cmd.ErrOrStderr())

			// Placements already made are kept even when the session stops on an error.
			if err := ws.save(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			if askErr != nil {
				return writeErr(cmd, askErr)
			}
			order, err := ws.tree.ChildIDs(parentID)
			if err != nil {
				return writeErr(cmd, err)
			}
			data := map[string]any{
				"parentId":    parentID,
				"completed":   completed,
				"comparisons": run.Comparisons(),
				"remaining":   run.Remaining(),
				"order":       order,
			}
			if walk != nil {
				data["groups"] = walk.Groups()
			}
			return writeOut(cmd, app, map[string]any{"data": data})
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 0, "Treat the first N items as already ranked")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Then rank the children of each item, level by level")
	return cmd
}

// askAll runs the session to the end. completed is false when the user quit or input ended.
func askAll(sess asker, in *bufio.Reader, w io.Writer) (completed bool, err error) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	for {
		cand, pivot, ok, err := sess.Pair()
		if err != nil {
			return false, err
		}
		if !ok {
			return true, nil
		}
		fmt.Fprintf(w, "\n%s %s\n  1) %s\n  2) %s\n> ",
			bold.Sprint("Which matters more?"),
			faint.Sprintf("(%d left)", sess.Remaining()),
			displayLabel(cand.Label),
			displayLabel(pivot.Label),
		)
		line, readErr := in.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		if readErr != nil && answer == "" {
			if errors.Is(readErr, io.EOF) {
				fmt.Fprintln(w)
				return false, nil
			}
			return false, readErr
		}
		var candidateFirst bool
		switch answer {
		case "1":
			candidateFirst = true
		case "2":
			candidateFirst = false
		case "q", "quit":
			return false, nil
		default:
			fmt.Fprintln(w, "Please answer 1, 2 or q.")
			continue
		}
		if _, err := sess.Decide(candidateFirst); err != nil {
			return false, err
		}
	}
}
