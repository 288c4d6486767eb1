// Package tree holds the PriorityTree: an ordered hierarchy of labelled items with
// rank-based sibling ordering, atomic mutations, linear undo/redo, change notifications
// and validated persistence.
package tree

import (
	"sync"

	"prioritize/internal/model"

	"github.com/rs/zerolog"
)

type Options struct {
	// Logger receives commit and persistence diagnostics. Nil means silent.
	Logger *zerolog.Logger

	// HistoryLimit bounds the undo stack. Zero keeps every entry.
	HistoryLimit int

	// NewID overrides id generation (tests). It must return ids that are not in use.
	NewID func() (string, error)
}

type node struct {
	item     model.Item
	children []*node // kept in rank order
}

// PriorityTree owns the item hierarchy.
//
// All mutations are serialized by writeMu, which is also held while listeners run so that
// notifications arrive in commit order. mu guards the data; queries only take its read side.
type PriorityTree struct {
	writeMu sync.Mutex
	mu      sync.RWMutex

	nodes   map[string]*node
	retired map[string]bool
	history history
	seq     uint64

	subs subscribers

	log   zerolog.Logger
	newID func() (string, error)
}

// Entry is one row of a depth-first outline.
type Entry struct {
	Item        model.Item
	Depth       int
	HasChildren bool
}

// New returns an empty tree.
func New(opts Options) *PriorityTree {
	t := &PriorityTree{
		nodes:   map[string]*node{model.RootID: {item: model.Item{ID: model.RootID}}},
		retired: map[string]bool{},
		history: history{limit: opts.HistoryLimit},
		log:     zerolog.Nop(),
		newID:   opts.NewID,
	}
	if opts.Logger != nil {
		t.log = opts.Logger.With().Str("component", "tree").Logger()
	}
	if t.newID == nil {
		t.newID = func() (string, error) { return newRandomID("item") }
	}
	return t
}

// Item returns the item with the given id.
func (t *PriorityTree) Item(id string) (model.Item, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, err := t.itemNode(id)
	if err != nil {
		return model.Item{}, err
	}
	return n.item, nil
}

// Children returns the children of parentID sorted by ascending rank.
func (t *PriorityTree) Children(parentID string) ([]model.Item, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.nodes[parentID]
	if !ok {
		return nil, NotFoundError{Kind: "parent", ID: parentID}
	}
	out := make([]model.Item, 0, len(p.children))
	for _, ch := range p.children {
		out = append(out, ch.item)
	}
	return out, nil
}

// ChildIDs is Children reduced to ids.
func (t *PriorityTree) ChildIDs(parentID string) ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.nodes[parentID]
	if !ok {
		return nil, NotFoundError{Kind: "parent", ID: parentID}
	}
	return childIDs(p), nil
}

// Path returns the ancestor ids of id, from its top-level ancestor down to id itself.
func (t *PriorityTree) Path(id string) ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, err := t.itemNode(id)
	if err != nil {
		return nil, err
	}
	var out []string
	for cur := n; cur.item.ID != model.RootID; cur = t.nodes[cur.item.ParentID] {
		out = append(out, cur.item.ID)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Len returns the number of items, root excluded.
func (t *PriorityTree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.nodes) - 1
}

// Outline flattens the subtree under parentID depth-first in rank order.
// Items whose id is set in collapsed are listed but their descendants are not.
func (t *PriorityTree) Outline(parentID string, collapsed map[string]bool) ([]Entry, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.nodes[parentID]
	if !ok {
		return nil, NotFoundError{Kind: "parent", ID: parentID}
	}

	type frame struct {
		n     *node
		depth int
	}
	var out []Entry
	stack := make([]frame, 0, len(p.children))
	for i := len(p.children) - 1; i >= 0; i-- {
		stack = append(stack, frame{n: p.children[i]})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, Entry{Item: f.n.item, Depth: f.depth, HasChildren: len(f.n.children) > 0})
		if collapsed[f.n.item.ID] {
			continue
		}
		for i := len(f.n.children) - 1; i >= 0; i-- {
			stack = append(stack, frame{n: f.n.children[i], depth: f.depth + 1})
		}
	}
	return out, nil
}

// Snapshot returns the persisted form of the current tree.
func (t *PriorityTree) Snapshot() model.Document {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshotLocked()
}

func (t *PriorityTree) snapshotLocked() model.Document {
	doc := model.Document{Version: model.DocumentVersion, Items: make([]model.Item, 0, len(t.nodes)-1)}
	for id, n := range t.nodes {
		if id == model.RootID {
			continue
		}
		doc.Items = append(doc.Items, n.item)
	}
	sortDocument(&doc)
	return doc
}

// CanUndo reports whether Undo would change anything.
func (t *PriorityTree) CanUndo() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.history.undo) > 0
}

// CanRedo reports whether Redo would change anything.
func (t *PriorityTree) CanRedo() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.history.redo) > 0
}

// itemNode resolves a non-root item.
func (t *PriorityTree) itemNode(id string) (*node, error) {
	if id == model.RootID {
		return nil, NotFoundError{Kind: "item", ID: id}
	}
	n, ok := t.nodes[id]
	if !ok {
		return nil, NotFoundError{Kind: "item", ID: id}
	}
	return n, nil
}

// isAncestor reports whether anc is id itself or one of its ancestors.
func (t *PriorityTree) isAncestor(anc, id string) bool {
	for cur, ok := t.nodes[id]; ok; cur, ok = t.nodes[cur.item.ParentID] {
		if cur.item.ID == anc {
			return true
		}
		if cur.item.ID == model.RootID {
			return false
		}
	}
	return false
}

func childIDs(n *node) []string {
	out := make([]string, 0, len(n.children))
	for _, ch := range n.children {
		out = append(out, ch.item.ID)
	}
	return out
}

func siblingItems(p *node, excludeID string) []model.Item {
	out := make([]model.Item, 0, len(p.children))
	for _, ch := range p.children {
		if ch.item.ID == excludeID {
			continue
		}
		out = append(out, ch.item)
	}
	return out
}
