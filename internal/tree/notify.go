package tree

import (
	"sort"
	"sync"

	"prioritize/internal/model"
)

type subscribers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(model.Change)
}

// Subscribe registers fn to run after every committed mutation, undo, redo and load.
//
// Listeners run synchronously, in commit order, after the data lock is released: they may query
// the tree but must not mutate it. The returned function unsubscribes and is safe to call twice.
func (t *PriorityTree) Subscribe(fn func(model.Change)) (unsubscribe func()) {
	t.subs.mu.Lock()
	if t.subs.fns == nil {
		t.subs.fns = map[int]func(model.Change){}
	}
	id := t.subs.next
	t.subs.next++
	t.subs.fns[id] = fn
	t.subs.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.subs.mu.Lock()
			delete(t.subs.fns, id)
			t.subs.mu.Unlock()
		})
	}
}

func (t *PriorityTree) hasSubscribers() bool {
	t.subs.mu.Lock()
	defer t.subs.mu.Unlock()
	return len(t.subs.fns) > 0
}

func (t *PriorityTree) notify(ch model.Change) {
	t.subs.mu.Lock()
	keys := make([]int, 0, len(t.subs.fns))
	for k := range t.subs.fns {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	fns := make([]func(model.Change), 0, len(keys))
	for _, k := range keys {
		fns = append(fns, t.subs.fns[k])
	}
	t.subs.mu.Unlock()

	for _, fn := range fns {
		fn(ch)
	}
}

// changeLocked builds the notification for a commit. Sibling orders are only collected when
// someone is listening.
func (t *PriorityTree) changeLocked(kind model.ChangeKind, origin model.ChangeOrigin, ids, moved []string, touched map[string]int) model.Change {
	t.seq++
	ch := model.Change{
		Seq:    t.seq,
		Kind:   kind,
		Origin: origin,
		IDs:    append([]string(nil), ids...),
	}
	if len(moved) > 0 {
		ch.Moved = append([]string(nil), moved...)
	}
	if !t.hasSubscribers() {
		return ch
	}
	ch.Siblings = map[string][]string{}
	for pid := range touched {
		if p, ok := t.nodes[pid]; ok {
			ch.Siblings[pid] = childIDs(p)
		}
	}
	return ch
}
