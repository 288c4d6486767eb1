package tree

import "prioritize/internal/model"

// entry is one undoable mutation. forward replays it, inverse (applied back to front) reverts it.
type entry struct {
	kind     model.ChangeKind
	undoKind model.ChangeKind
	ids      []string
	moved    []string
	forward  []op
	inverse  []op
}

// history is a linear undo/redo log: recording a new entry drops everything redoable.
type history struct {
	limit int
	undo  []entry
	redo  []entry
}

func (h *history) record(e entry) {
	h.undo = append(h.undo, e)
	if h.limit > 0 && len(h.undo) > h.limit {
		drop := len(h.undo) - h.limit
		h.undo = append(h.undo[:0:0], h.undo[drop:]...)
	}
	h.redo = nil
}

func (h *history) popUndo() (entry, bool) {
	if len(h.undo) == 0 {
		return entry{}, false
	}
	e := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	return e, true
}

func (h *history) popRedo() (entry, bool) {
	if len(h.redo) == 0 {
		return entry{}, false
	}
	e := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	return e, true
}

func (h *history) reset() {
	h.undo = nil
	h.redo = nil
}

// Undo reverts the most recent mutation. It returns false when there is nothing to undo.
func (t *PriorityTree) Undo() bool {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	t.mu.Lock()
	e, ok := t.history.popUndo()
	if !ok {
		t.mu.Unlock()
		return false
	}
	_, touched := t.applyOps(reversed(e.inverse))
	t.history.redo = append(t.history.redo, e)
	ch := t.changeLocked(e.undoKind, model.OriginUndo, e.ids, e.moved, touched)
	t.mu.Unlock()

	t.log.Debug().Str("kind", string(e.kind)).Strs("ids", e.ids).Msg("undo")
	t.notify(ch)
	return true
}

// Redo reapplies the most recently undone mutation. It returns false when there is nothing to redo.
func (t *PriorityTree) Redo() bool {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	t.mu.Lock()
	e, ok := t.history.popRedo()
	if !ok {
		t.mu.Unlock()
		return false
	}
	inverse, touched := t.applyOps(e.forward)
	e.inverse = inverse
	t.history.undo = append(t.history.undo, e)
	ch := t.changeLocked(e.kind, model.OriginRedo, e.ids, e.moved, touched)
	t.mu.Unlock()

	t.log.Debug().Str("kind", string(e.kind)).Strs("ids", e.ids).Msg("redo")
	t.notify(ch)
	return true
}

func inverseKind(k model.ChangeKind) model.ChangeKind {
	switch k {
	case model.ChangeInserted:
		return model.ChangeDeleted
	case model.ChangeDeleted:
		return model.ChangeInserted
	}
	return k
}
