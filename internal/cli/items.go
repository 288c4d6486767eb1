package cli

import (
	"errors"
	"strings"

	"prioritize/internal/model"

	"github.com/spf13/cobra"
)

type positionFlags struct {
	first  bool
	last   bool
	before string
	after  string
}

func (p *positionFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&p.first, "first", false, "Place at the top of the list")
	cmd.Flags().BoolVar(&p.last, "last", false, "Place at the bottom of the list")
	cmd.Flags().StringVar(&p.before, "before", "", "Place directly above this sibling")
	cmd.Flags().StringVar(&p.after, "after", "", "Place directly below this sibling")
}

func (p positionFlags) given() bool {
	return p.first || p.last || strings.TrimSpace(p.before) != "" || strings.TrimSpace(p.after) != ""
}

// resolve returns the requested position, or def when none was given.
func (p positionFlags) resolve(def model.Position) (model.Position, error) {
	var set []string
	pos := def
	if p.first {
		set = append(set, "--first")
		pos = model.First()
	}
	if p.last {
		set = append(set, "--last")
		pos = model.Last()
	}
	if s := strings.TrimSpace(p.before); s != "" {
		set = append(set, "--before")
		pos = model.Before(s)
	}
	if s := strings.TrimSpace(p.after); s != "" {
		set = append(set, "--after")
		pos = model.After(s)
	}
	if len(set) > 1 {
		return model.Position{}, positionError{flags: set}
	}
	return pos, nil
}

func newAddCmd(app *App) *cobra.Command {
	var parent string
	var pos positionFlags

	cmd := &cobra.Command{
		Use:   "add <label>",
		Short: "Add an item (default: bottom of the top level)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pos.resolve(model.Last())
			if err != nil {
				return writeErr(cmd, err)
			}
			out, err := mutateAndSave(cmd, app, func(ws *workspace) (any, error) {
				parentID := strings.TrimSpace(parent)
				if parentID == "" && p.Sibling != "" {
					sib, err := ws.tree.Item(p.Sibling)
					if err != nil {
						return nil, err
					}
					parentID = sib.ParentID
				}
				it, err := ws.tree.Insert(parentID, args[0], p)
				if err != nil {
					return nil, err
				}
				return itemOut{it}, nil
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "Parent item id (default: top level, or the parent of --before/--after)")
	pos.register(cmd)
	return cmd
}

func newMoveCmd(app *App) *cobra.Command {
	var parent string
	var top bool
	var pos positionFlags

	cmd := &cobra.Command{
		Use:   "mv <item-id>",
		Short: "Move an item within its list or under another parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parent = strings.TrimSpace(parent)
			explicitParent := top || parent != ""
			if !explicitParent && !pos.given() {
				return writeErr(cmd, errors.New("nothing to do: pass --first, --last, --before, --after, --parent or --top"))
			}
			p, err := pos.resolve(model.Last())
			if err != nil {
				return writeErr(cmd, err)
			}
			out, err := mutateAndSave(cmd, app, func(ws *workspace) (any, error) {
				it, err := ws.tree.Item(args[0])
				if err != nil {
					return nil, err
				}
				parentID := it.ParentID
				switch {
				case top:
					parentID = model.RootID
				case parent != "":
					parentID = parent
				case p.Sibling != "":
					sib, err := ws.tree.Item(p.Sibling)
					if err != nil {
						return nil, err
					}
					parentID = sib.ParentID
				}
				if err := ws.tree.Move(it.ID, parentID, p); err != nil {
					return nil, err
				}
				moved, err := ws.tree.Item(it.ID)
				if err != nil {
					return nil, err
				}
				return itemOut{moved}, nil
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "New parent item id")
	cmd.Flags().BoolVar(&top, "top", false, "Move to the top level")
	pos.register(cmd)
	return cmd
}

func newRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <item-id> <label>",
		Short: "Change an item's label",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := mutateAndSave(cmd, app, func(ws *workspace) (any, error) {
				if err := ws.tree.Rename(args[0], args[1]); err != nil {
					return nil, err
				}
				it, err := ws.tree.Item(args[0])
				if err != nil {
					return nil, err
				}
				return itemOut{it}, nil
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	var promote bool

	cmd := &cobra.Command{
		Use:     "rm <item-id>",
		Aliases: []string{"delete"},
		Short:   "Delete an item and its subtree (or keep the children with --promote)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy := model.Cascade
			if promote {
				policy = model.Promote
			}
			removed := []string{args[0]}
			_, err := mutateAndSave(cmd, app, func(ws *workspace) (any, error) {
				if err := ws.tree.Delete(args[0], policy); err != nil {
					return nil, err
				}
				// The cascade change lists the whole subtree.
				if ch, ok := ws.lastChange(); ok && policy == model.Cascade {
					removed = ch.IDs
				}
				return nil, nil
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"deleted": removed, "policy": string(policy)},
			})
		},
	}
	cmd.Flags().BoolVar(&promote, "promote", false, "Keep the children: they take the item's place in its parent")
	return cmd
}
