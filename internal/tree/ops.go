package tree

import (
	"sort"

	"prioritize/internal/model"
	"prioritize/internal/store"
)

type opKind int

const (
	opAdd opKind = iota
	opRemove
	opPlace
	opLabel
)

// op is a primitive state change. Every mutation is planned as a list of ops, and applying an op
// yields its inverse, which is what the undo stack records.
//
//   - opAdd:    item is the full item to attach (it must not have children).
//   - opRemove: item.ID names a childless item to detach.
//   - opPlace:  item.ID moves to item.ParentID with item.Rank.
//   - opLabel:  item.ID gets item.Label.
type op struct {
	kind opKind
	item model.Item
}

// applyOps applies ops in order and returns their inverses in the same order.
// touched counts how many ops hit each sibling group.
func (t *PriorityTree) applyOps(ops []op) (inverse []op, touched map[string]int) {
	inverse = make([]op, 0, len(ops))
	touched = map[string]int{}
	for _, o := range ops {
		inverse = append(inverse, t.applyOp(o, touched))
	}
	// A group touched more than once may have passed through transient rank ties
	// (renumbering, promote); restore its order once everything is in place.
	for pid, n := range touched {
		if n < 2 {
			continue
		}
		if p, ok := t.nodes[pid]; ok {
			sortChildren(p)
		}
	}
	return inverse, touched
}

func (t *PriorityTree) applyOp(o op, touched map[string]int) op {
	switch o.kind {
	case opAdd:
		n := &node{item: o.item}
		t.nodes[o.item.ID] = n
		delete(t.retired, o.item.ID)
		attach(t.nodes[o.item.ParentID], n)
		touched[o.item.ParentID]++
		return op{kind: opRemove, item: o.item}

	case opRemove:
		n := t.nodes[o.item.ID]
		detach(t.nodes[n.item.ParentID], n)
		delete(t.nodes, n.item.ID)
		t.retired[n.item.ID] = true
		touched[n.item.ParentID]++
		return op{kind: opAdd, item: n.item}

	case opPlace:
		n := t.nodes[o.item.ID]
		prev := n.item
		detach(t.nodes[prev.ParentID], n)
		n.item.ParentID = o.item.ParentID
		n.item.Rank = o.item.Rank
		attach(t.nodes[n.item.ParentID], n)
		touched[prev.ParentID]++
		if prev.ParentID != n.item.ParentID {
			touched[n.item.ParentID]++
		}
		return op{kind: opPlace, item: model.Item{ID: prev.ID, ParentID: prev.ParentID, Rank: prev.Rank}}

	case opLabel:
		n := t.nodes[o.item.ID]
		prev := n.item.Label
		n.item.Label = o.item.Label
		touched[n.item.ParentID]++
		return op{kind: opLabel, item: model.Item{ID: n.item.ID, Label: prev}}
	}
	panic("tree: unknown op kind")
}

// attach inserts n into p's children at its rank position.
func attach(p *node, n *node) {
	i := sort.Search(len(p.children), func(i int) bool {
		return store.CompareItemsByRank(p.children[i].item, n.item) > 0
	})
	p.children = append(p.children, nil)
	copy(p.children[i+1:], p.children[i:])
	p.children[i] = n
}

func detach(p *node, n *node) {
	for i, ch := range p.children {
		if ch == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			return
		}
	}
}

func sortChildren(p *node) {
	sort.SliceStable(p.children, func(i, j int) bool {
		return store.CompareItemsByRank(p.children[i].item, p.children[j].item) < 0
	})
}

// renumberOps turns a planner's sibling rewrites into place ops, in a stable order.
func renumberOps(parentID string, rankByID map[string]int64) []op {
	if len(rankByID) == 0 {
		return nil
	}
	ids := make([]string, 0, len(rankByID))
	for id := range rankByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]op, 0, len(ids))
	for _, id := range ids {
		out = append(out, op{kind: opPlace, item: model.Item{ID: id, ParentID: parentID, Rank: rankByID[id]}})
	}
	return out
}

func reversed(ops []op) []op {
	out := make([]op, len(ops))
	for i, o := range ops {
		out[len(ops)-1-i] = o
	}
	return out
}
