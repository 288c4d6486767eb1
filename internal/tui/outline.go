package tui

import (
	"prioritize/internal/model"
	"prioritize/internal/tree"
)

// outlineCache mirrors the tree's sibling groups. It is filled once from the tree and then kept
// current from change notifications alone, so redrawing never walks the tree.
type outlineCache struct {
	children map[string][]string
	parent   map[string]string
	labels   map[string]string
}

type row struct {
	id          string
	parentID    string
	label       string
	depth       int
	hasChildren bool
}

func newOutlineCache() *outlineCache {
	return &outlineCache{
		children: map[string][]string{},
		parent:   map[string]string{},
		labels:   map[string]string{},
	}
}

func (c *outlineCache) reload(t *tree.PriorityTree) error {
	entries, err := t.Outline(model.RootID, nil)
	if err != nil {
		return err
	}
	c.children = map[string][]string{model.RootID: {}}
	c.parent = make(map[string]string, len(entries))
	c.labels = make(map[string]string, len(entries))
	for _, e := range entries {
		pid := e.Item.ParentID
		c.children[pid] = append(c.children[pid], e.Item.ID)
		c.parent[e.Item.ID] = pid
		c.labels[e.Item.ID] = e.Item.Label
	}
	return nil
}

func (c *outlineCache) apply(t *tree.PriorityTree, ch model.Change) error {
	if ch.Kind == model.ChangeLoaded || ch.Siblings == nil {
		return c.reload(t)
	}
	for pid, ids := range ch.Siblings {
		c.children[pid] = append([]string(nil), ids...)
		for _, id := range ids {
			c.parent[id] = pid
			if _, ok := c.labels[id]; !ok {
				c.refreshLabel(t, id)
			}
		}
	}
	for _, id := range ch.IDs {
		c.refreshLabel(t, id)
	}
	return nil
}

func (c *outlineCache) refreshLabel(t *tree.PriorityTree, id string) {
	it, err := t.Item(id)
	if err != nil {
		delete(c.labels, id)
		delete(c.children, id)
		delete(c.parent, id)
		return
	}
	c.labels[id] = it.Label
}

// rows flattens the cache depth-first. Children of collapsed items are skipped.
func (c *outlineCache) rows(collapsed map[string]bool) []row {
	var out []row
	var walk func(pid string, depth int)
	walk = func(pid string, depth int) {
		for _, id := range c.children[pid] {
			if _, ok := c.labels[id]; !ok {
				continue
			}
			out = append(out, row{
				id:          id,
				parentID:    pid,
				label:       c.labels[id],
				depth:       depth,
				hasChildren: len(c.children[id]) > 0,
			})
			if !collapsed[id] {
				walk(id, depth+1)
			}
		}
	}
	walk(model.RootID, 0)
	return out
}

func (c *outlineCache) siblings(id string) (parentID string, ids []string, index int) {
	parentID = c.parent[id]
	ids = c.children[parentID]
	for i, sid := range ids {
		if sid == id {
			return parentID, ids, i
		}
	}
	return parentID, ids, -1
}
