package ranker

import (
	"errors"
	"fmt"

	"prioritize/internal/model"
	"prioritize/internal/tree"
)

// ErrStale reports that the sibling group changed outside the session.
var ErrStale = errors.New("ranking session is stale: the list changed underneath it")

// Session ranks the children of one parent in place.
//
// The placed items always form a prefix of the sibling list; every placement is applied at
// once with Move, so each one is a separate undoable step and an interrupted session keeps the
// progress made so far.
type Session struct {
	tree     *tree.PriorityTree
	parentID string
	sorter   *Sorter
}

type SessionOptions struct {
	// Keep treats the first Keep children as already ranked; only the rest are asked about.
	Keep int
}

func NewSession(t *tree.PriorityTree, parentID string, opts SessionOptions) (*Session, error) {
	ids, err := t.ChildIDs(parentID)
	if err != nil {
		return nil, err
	}
	keep := opts.Keep
	if keep < 0 {
		keep = 0
	}
	if keep > len(ids) {
		keep = len(ids)
	}
	s := &Session{
		tree:     t,
		parentID: parentID,
		sorter:   NewSorter(ids[:keep], ids[keep:]),
	}
	// The first child is already at the front, so seeding needs no move.
	s.sorter.Seed()
	return s, nil
}

// Pair returns the next question, or ok=false when the session is done.
func (s *Session) Pair() (candidate, pivot model.Item, ok bool, err error) {
	cid, pid, ok := s.sorter.Pair()
	if !ok {
		return model.Item{}, model.Item{}, false, nil
	}
	if candidate, err = s.tree.Item(cid); err != nil {
		return model.Item{}, model.Item{}, false, fmt.Errorf("%w: %v", ErrStale, err)
	}
	if pivot, err = s.tree.Item(pid); err != nil {
		return model.Item{}, model.Item{}, false, fmt.Errorf("%w: %v", ErrStale, err)
	}
	return candidate, pivot, true, nil
}

// Decide answers the current question. When the candidate's slot is known it is moved there
// and returned.
func (s *Session) Decide(candidateFirst bool) (placed string, err error) {
	if err := s.checkFresh(); err != nil {
		return "", err
	}
	id, at, done := s.sorter.Decide(candidateFirst)
	if !done {
		return "", nil
	}
	sorted := s.sorter.Sorted()
	pos := model.Before(sorted[1])
	if at > 0 {
		pos = model.After(sorted[at-1])
	}
	if err := s.tree.Move(id, s.parentID, pos); err != nil {
		return "", fmt.Errorf("place %s: %w", id, err)
	}
	return id, nil
}

func (s *Session) Done() bool { return !s.sorter.HasWork() }

// Remaining counts items not placed yet.
func (s *Session) Remaining() int { return len(s.sorter.remaining) }

func (s *Session) Comparisons() int { return s.sorter.Comparisons() }

func (s *Session) checkFresh() error {
	got, err := s.tree.ChildIDs(s.parentID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStale, err)
	}
	want := append(s.sorter.Sorted(), s.sorter.remaining...)
	if len(got) != len(want) {
		return ErrStale
	}
	for i := range got {
		if got[i] != want[i] {
			return ErrStale
		}
	}
	return nil
}
