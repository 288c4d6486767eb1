package tree

import (
	"fmt"

	"prioritize/internal/model"
	"prioritize/internal/store"
)

// txn is a fully planned mutation. Nothing has been applied when it is built.
type txn struct {
	kind  model.ChangeKind
	ids   []string
	moved []string
	ops   []op
}

// mutate runs plan under the write lock and commits the txn it returns.
// A nil txn with a nil error is a no-op: no history, no notification.
func (t *PriorityTree) mutate(plan func() (*txn, error)) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	t.mu.Lock()
	tx, err := plan()
	if err != nil || tx == nil {
		t.mu.Unlock()
		return err
	}
	inverse, touched := t.applyOps(tx.ops)
	t.history.record(entry{
		kind:     tx.kind,
		undoKind: inverseKind(tx.kind),
		ids:      tx.ids,
		moved:    tx.moved,
		forward:  tx.ops,
		inverse:  inverse,
	})
	ch := t.changeLocked(tx.kind, model.OriginApply, tx.ids, tx.moved, touched)
	t.mu.Unlock()

	t.log.Debug().Str("kind", string(tx.kind)).Strs("ids", tx.ids).Int("ops", len(tx.ops)).Msg("commit")
	t.notify(ch)
	return nil
}

// Insert creates a new item under parentID at pos.
func (t *PriorityTree) Insert(parentID, label string, pos model.Position) (model.Item, error) {
	var created model.Item
	err := t.mutate(func() (*txn, error) {
		parent, ok := t.nodes[parentID]
		if !ok {
			return nil, NotFoundError{Kind: "parent", ID: parentID}
		}
		sibs := siblingItems(parent, "")
		at, err := slotIndex(sibs, pos)
		if err != nil {
			return nil, err
		}
		plan, err := store.PlanReorderRanks(sibs, at)
		if err != nil {
			return nil, fmt.Errorf("plan rank: %w", err)
		}
		id, err := t.freshID()
		if err != nil {
			return nil, err
		}
		created = model.Item{ID: id, Label: label, ParentID: parentID, Rank: plan.Ranks[0]}

		ops := renumberOps(parentID, plan.RankByID)
		ops = append(ops, op{kind: opAdd, item: created})
		return &txn{kind: model.ChangeInserted, ids: []string{id}, ops: ops}, nil
	})
	if err != nil {
		return model.Item{}, err
	}
	return created, nil
}

// Move re-parents and/or reorders id. Moving onto its current slot is a no-op.
func (t *PriorityTree) Move(id, newParentID string, pos model.Position) error {
	return t.mutate(func() (*txn, error) {
		n, err := t.itemNode(id)
		if err != nil {
			return nil, err
		}
		parent, ok := t.nodes[newParentID]
		if !ok {
			return nil, NotFoundError{Kind: "parent", ID: newParentID}
		}
		if t.isAncestor(id, newParentID) {
			return nil, CycleError{ID: id, NewParentID: newParentID}
		}
		if pos.Sibling == id {
			return nil, NotFoundError{Kind: "sibling", ID: pos.Sibling}
		}

		sibs := siblingItems(parent, id)
		at, err := slotIndex(sibs, pos)
		if err != nil {
			return nil, err
		}
		if n.item.ParentID == newParentID && currentIndex(parent, id) == at {
			return nil, nil
		}
		plan, err := store.PlanReorderRanks(sibs, at)
		if err != nil {
			return nil, fmt.Errorf("plan rank: %w", err)
		}

		ops := renumberOps(newParentID, plan.RankByID)
		ops = append(ops, op{kind: opPlace, item: model.Item{ID: id, ParentID: newParentID, Rank: plan.Ranks[0]}})
		return &txn{kind: model.ChangeMoved, ids: []string{id}, ops: ops}, nil
	})
}

// Rename changes the label of id. Renaming to the current label is a no-op.
func (t *PriorityTree) Rename(id, label string) error {
	return t.mutate(func() (*txn, error) {
		n, err := t.itemNode(id)
		if err != nil {
			return nil, err
		}
		if n.item.Label == label {
			return nil, nil
		}
		return &txn{
			kind: model.ChangeRenamed,
			ids:  []string{id},
			ops:  []op{{kind: opLabel, item: model.Item{ID: id, Label: label}}},
		}, nil
	})
}

// Delete removes id. With Cascade the whole subtree goes; with Promote the children take the
// deleted item's place in its parent, keeping their relative order.
func (t *PriorityTree) Delete(id string, policy model.ChildPolicy) error {
	return t.mutate(func() (*txn, error) {
		n, err := t.itemNode(id)
		if err != nil {
			return nil, err
		}
		switch policy {
		case model.Cascade, "":
			return t.planCascade(n), nil
		case model.Promote:
			return t.planPromote(n)
		default:
			return nil, fmt.Errorf("unknown child policy %q", policy)
		}
	})
}

func (t *PriorityTree) planCascade(n *node) *txn {
	var ops []op
	var ids []string
	// Post-order so every removed item is already childless.
	var walk func(x *node)
	walk = func(x *node) {
		for _, ch := range x.children {
			walk(ch)
		}
		ops = append(ops, op{kind: opRemove, item: model.Item{ID: x.item.ID}})
		ids = append(ids, x.item.ID)
	}
	walk(n)
	return &txn{kind: model.ChangeDeleted, ids: ids, ops: ops}
}

func (t *PriorityTree) planPromote(n *node) (*txn, error) {
	parentID := n.item.ParentID
	parent := t.nodes[parentID]
	at := currentIndex(parent, n.item.ID)
	sibs := siblingItems(parent, n.item.ID)

	var moved []string
	var ops []op
	if len(n.children) > 0 {
		plan, err := store.PlanSpliceRanks(sibs, at, len(n.children))
		if err != nil {
			return nil, fmt.Errorf("plan rank: %w", err)
		}
		ops = append(ops, renumberOps(parentID, plan.RankByID)...)
		for i, ch := range n.children {
			ops = append(ops, op{kind: opPlace, item: model.Item{ID: ch.item.ID, ParentID: parentID, Rank: plan.Ranks[i]}})
			moved = append(moved, ch.item.ID)
		}
	}
	ops = append(ops, op{kind: opRemove, item: model.Item{ID: n.item.ID}})
	return &txn{kind: model.ChangeDeleted, ids: []string{n.item.ID}, moved: moved, ops: ops}, nil
}

// slotIndex resolves pos to an index in sibs (which must not contain the item being placed).
func slotIndex(sibs []model.Item, pos model.Position) (int, error) {
	switch pos.Kind {
	case model.PositionFirst:
		return 0, nil
	case model.PositionLast, "":
		return len(sibs), nil
	case model.PositionBefore, model.PositionAfter:
		for i, s := range sibs {
			if s.ID != pos.Sibling {
				continue
			}
			if pos.Kind == model.PositionAfter {
				return i + 1, nil
			}
			return i, nil
		}
		return 0, NotFoundError{Kind: "sibling", ID: pos.Sibling}
	default:
		return 0, fmt.Errorf("unknown position %q", pos.Kind)
	}
}

// currentIndex is the index id would have if it were removed and put back where it is.
func currentIndex(p *node, id string) int {
	for i, ch := range p.children {
		if ch.item.ID == id {
			return i
		}
	}
	return -1
}

func (t *PriorityTree) freshID() (string, error) {
	for i := 0; i < 100; i++ {
		id, err := t.newID()
		if err != nil {
			return "", err
		}
		if id == model.RootID {
			continue
		}
		if _, used := t.nodes[id]; used || t.retired[id] {
			continue
		}
		return id, nil
	}
	return "", fmt.Errorf("unable to allocate a fresh item id")
}
