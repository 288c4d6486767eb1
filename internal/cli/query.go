package cli

import (
	"strings"

	"prioritize/internal/model"

	"github.com/spf13/cobra"
)

func newListCmd(app *App) *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:     "ls [parent-id]",
		Aliases: []string{"list"},
		Short:   "List items in priority order (default: the top level)",
		Args:    cobra.MaximumNArgs(1),
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

			collapsed := map[string]bool{}
			if !recursive {
				ids, err := ws.tree.ChildIDs(parentID)
				if err != nil {
					return writeErr(cmd, err)
				}
				for _, id := range ids {
					collapsed[id] = true
				}
			}
			entries, err := ws.tree.Outline(parentID, collapsed)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": newOutlineOut(entries),
				"meta": map[string]any{"parentId": parentID, "total": ws.tree.Len()},
			})
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Include every descendant")
	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <item-id>",
		Short: "Show an item with its ancestors and children",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer ws.close()

			it, err := ws.tree.Item(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			path, err := pathItems(ws, it.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			children, err := ws.tree.Children(it.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": showOut{Item: it, Path: path, Children: children},
				"_hints": []string{
					"prioritize rank " + it.ID,
					"prioritize add --parent " + it.ID + " <label>",
				},
			})
		},
	}
}

func newPathCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path <item-id>",
		Short: "List the ancestors of an item, top level first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer ws.close()

			path, err := pathItems(ws, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			out := make(outlineOut, 0, len(path))
			for i, it := range path {
				out = append(out, outlineRow{ID: it.ID, Label: it.Label, ParentID: it.ParentID, Rank: it.Rank, Depth: i, HasChildren: i < len(path)-1})
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
}

func pathItems(ws *workspace, id string) ([]model.Item, error) {
	ids, err := ws.tree.Path(id)
	if err != nil {
		return nil, err
	}
	out := make([]model.Item, 0, len(ids))
	for _, pid := range ids {
		it, err := ws.tree.Item(pid)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}
