package ranker

import (
	"errors"
	"fmt"

	"prioritize/internal/model"
	"prioritize/internal/tree"
)

// Walk ranks a whole subtree: first the children of the starting parent, then the children
// of each of those in their new order, level by level. Groups with fewer than two children
// need no questions and are passed over.
type Walk struct {
	tree        *tree.PriorityTree
	cur         *Session
	queue       []string
	groups      int
	comparisons int
}

// NewWalk starts at parentID. opts applies to the first group only.
func NewWalk(t *tree.PriorityTree, parentID string, opts SessionOptions) (*Walk, error) {
	sess, err := NewSession(t, parentID, opts)
	if err != nil {
		return nil, err
	}
	return &Walk{tree: t, cur: sess, groups: 1}, nil
}

// Pair returns the next question across all groups, or ok=false when every group is ranked.
func (w *Walk) Pair() (candidate, pivot model.Item, ok bool, err error) {
	if err := w.advance(); err != nil {
		return model.Item{}, model.Item{}, false, err
	}
	if w.cur == nil {
		return model.Item{}, model.Item{}, false, nil
	}
	return w.cur.Pair()
}

func (w *Walk) Decide(candidateFirst bool) (placed string, err error) {
	if w.cur == nil {
		return "", errors.New("no ranking question pending")
	}
	return w.cur.Decide(candidateFirst)
}

// advance moves past finished groups until one has a question or the queue runs out.
func (w *Walk) advance() error {
	for {
		if w.cur != nil {
			if !w.cur.Done() {
				return nil
			}
			ids, err := w.tree.ChildIDs(w.cur.parentID)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrStale, err)
			}
			w.comparisons += w.cur.Comparisons()
			w.cur = nil
			w.queue = append(w.queue, ids...)
		}
		if len(w.queue) == 0 {
			return nil
		}
		id := w.queue[0]
		w.queue = w.queue[1:]
		ids, err := w.tree.ChildIDs(id)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStale, err)
		}
		if len(ids) < 2 {
			w.queue = append(w.queue, ids...)
			continue
		}
		sess, err := NewSession(w.tree, id, SessionOptions{})
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStale, err)
		}
		w.cur = sess
		w.groups++
	}
}

func (w *Walk) Done() bool { return w.Remaining() == 0 }

// Groups counts the groups opened so far, the starting one included.
func (w *Walk) Groups() int { return w.groups }

func (w *Walk) Comparisons() int {
	n := w.comparisons
	if w.cur != nil {
		n += w.cur.Comparisons()
	}
	return n
}

// Remaining counts the items still to place across the current group and every group below
// or after it.
func (w *Walk) Remaining() int {
	n := 0
	if w.cur != nil {
		n += w.cur.Remaining()
		ids, _ := w.tree.ChildIDs(w.cur.parentID)
		for _, id := range ids {
			n += w.pending(id)
		}
	}
	for _, id := range w.queue {
		n += w.pending(id)
	}
	return n
}

// pending counts the placements left in parentID's group and all groups beneath it.
func (w *Walk) pending(parentID string) int {
	ids, err := w.tree.ChildIDs(parentID)
	if err != nil {
		return 0
	}
	n := 0
	if len(ids) >= 2 {
		n = len(ids) - 1
	}
	for _, id := range ids {
		n += w.pending(id)
	}
	return n
}
