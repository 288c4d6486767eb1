package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"prioritize/internal/model"
)

// Serialize encodes the tree as a persisted document. Output is deterministic: items are
// sorted by id, so equal trees serialize to equal bytes.
func (t *PriorityTree) Serialize() ([]byte, error) {
	return EncodeDocument(t.Snapshot())
}

// Deserialize replaces the tree with the document in blob. The document is fully validated first;
// on any error the current tree is untouched.
func (t *PriorityTree) Deserialize(blob []byte) error {
	doc, err := DecodeDocument(blob)
	if err != nil {
		return err
	}
	return t.Replace(doc)
}

// Replace swaps in doc after validating it. Undo history is cleared.
func (t *PriorityTree) Replace(doc model.Document) error {
	nodes, err := buildNodes(doc)
	if err != nil {
		return err
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	t.mu.Lock()
	for id := range t.nodes {
		if id != model.RootID {
			t.retired[id] = true
		}
	}
	for id := range nodes {
		delete(t.retired, id)
	}
	t.nodes = nodes
	t.history.reset()
	touched := make(map[string]int, len(nodes))
	for id, n := range nodes {
		if len(n.children) > 0 || id == model.RootID {
			touched[id] = 1
		}
	}
	ch := t.changeLocked(model.ChangeLoaded, model.OriginLoad, nil, nil, touched)
	t.mu.Unlock()

	t.log.Debug().Int("items", len(nodes)-1).Msg("loaded")
	t.notify(ch)
	return nil
}

// EncodeDocument writes doc as indented JSON with items sorted by id.
func EncodeDocument(doc model.Document) ([]byte, error) {
	if doc.Items == nil {
		doc.Items = []model.Item{}
	}
	sortDocument(&doc)
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// DecodeDocument parses blob strictly. Shape problems are reported as CorruptDataError.
func DecodeDocument(blob []byte) (model.Document, error) {
	var doc model.Document
	dec := json.NewDecoder(bytes.NewReader(blob))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return model.Document{}, CorruptDataError{Invariant: InvariantFormat, Detail: err.Error()}
	}
	if dec.More() {
		return model.Document{}, CorruptDataError{Invariant: InvariantFormat, Detail: "trailing data after document"}
	}
	return doc, nil
}

// Validate checks every structural invariant of doc without building a tree.
func Validate(doc model.Document) error {
	_, err := buildNodes(doc)
	return err
}

func buildNodes(doc model.Document) (map[string]*node, error) {
	if doc.Version != model.DocumentVersion {
		return nil, CorruptDataError{
			Invariant: InvariantVersion,
			Detail:    fmt.Sprintf("unsupported version %d (want %d)", doc.Version, model.DocumentVersion),
		}
	}

	items := append([]model.Item(nil), doc.Items...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	nodes := make(map[string]*node, len(items)+1)
	nodes[model.RootID] = &node{item: model.Item{ID: model.RootID}}
	for _, it := range items {
		if it.ID == model.RootID {
			return nil, CorruptDataError{Invariant: InvariantIDPresent, Detail: fmt.Sprintf("item with label %q has no id", it.Label)}
		}
		if _, dup := nodes[it.ID]; dup {
			return nil, CorruptDataError{ItemID: it.ID, Invariant: InvariantIDUnique}
		}
		nodes[it.ID] = &node{item: it}
	}

	for _, it := range items {
		if _, ok := nodes[it.ParentID]; !ok {
			return nil, CorruptDataError{
				ItemID:    it.ID,
				Invariant: InvariantParentExists,
				Detail:    fmt.Sprintf("parent %q does not exist", it.ParentID),
			}
		}
	}

	// Every chain of parents must reach the root. 1 = on the current chain, 2 = reaches root.
	state := make(map[string]int, len(nodes))
	state[model.RootID] = 2
	for _, it := range items {
		var chain []string
		cur := it.ID
		for state[cur] == 0 {
			state[cur] = 1
			chain = append(chain, cur)
			cur = nodes[cur].item.ParentID
		}
		if state[cur] == 1 {
			return nil, CorruptDataError{
				ItemID:    it.ID,
				Invariant: InvariantAcyclic,
				Detail:    fmt.Sprintf("parent chain loops back to %q", cur),
			}
		}
		for _, id := range chain {
			state[id] = 2
		}
	}

	for _, it := range items {
		p := nodes[it.ParentID]
		p.children = append(p.children, nodes[it.ID])
	}
	parentIDs := make([]string, 0, len(nodes))
	for id := range nodes {
		parentIDs = append(parentIDs, id)
	}
	sort.Strings(parentIDs)
	for _, pid := range parentIDs {
		p := nodes[pid]
		sortChildren(p)
		for i := 1; i < len(p.children); i++ {
			if p.children[i].item.Rank == p.children[i-1].item.Rank {
				return nil, CorruptDataError{
					ItemID:    p.children[i].item.ID,
					Invariant: InvariantRankUnique,
					Detail:    fmt.Sprintf("rank %d shared with %q", p.children[i].item.Rank, p.children[i-1].item.ID),
				}
			}
		}
	}
	return nodes, nil
}

func sortDocument(doc *model.Document) {
	sort.Slice(doc.Items, func(i, j int) bool { return doc.Items[i].ID < doc.Items[j].ID })
}
