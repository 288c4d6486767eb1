package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// RootID is the parent id of top-level items. The root itself is implicit and never serialized.
const RootID = ""

// DocumentVersion is the current persisted document version.
const DocumentVersion = 1

type Item struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	ParentID string `json:"parentId"`
	Rank     int64  `json:"rank"`
}

// UnmarshalJSON decodes an item strictly: unknown fields and explicit nulls are errors, so a
// null label or parentId never turns into "" (which would mean "empty" or "top level").
func (it *Item) UnmarshalJSON(b []byte) error {
	if isJSONNull(b) {
		return errors.New("item is null")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	for name, raw := range fields {
		if isJSONNull(raw) {
			return fmt.Errorf("item field %q is null", name)
		}
	}

	type plain Item
	var p plain
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return err
	}
	*it = Item(p)
	return nil
}

func isJSONNull(b []byte) bool {
	return bytes.Equal(bytes.TrimSpace(b), []byte("null"))
}

// ErrMalformed is wrapped by storage backends when stored bytes do not decode as a Document.
var ErrMalformed = errors.New("malformed document")

// Document is the persisted form of a tree. Item order carries no meaning.
type Document struct {
	Version int    `json:"version"`
	Items   []Item `json:"items"`
}

type PositionKind string

const (
	PositionFirst  PositionKind = "first"
	PositionLast   PositionKind = "last"
	PositionBefore PositionKind = "before"
	PositionAfter  PositionKind = "after"
)

// Position selects a slot inside a sibling group.
// Sibling is only used by PositionBefore and PositionAfter.
type Position struct {
	Kind    PositionKind `json:"kind"`
	Sibling string       `json:"sibling,omitempty"`
}

func First() Position           { return Position{Kind: PositionFirst} }
func Last() Position            { return Position{Kind: PositionLast} }
func Before(id string) Position { return Position{Kind: PositionBefore, Sibling: id} }
func After(id string) Position  { return Position{Kind: PositionAfter, Sibling: id} }

func (p Position) String() string {
	if p.Sibling == "" {
		return string(p.Kind)
	}
	return string(p.Kind) + " " + p.Sibling
}

type ChildPolicy string

const (
	// Cascade removes the whole subtree.
	Cascade ChildPolicy = "cascade"
	// Promote re-parents the children to the deleted item's parent, in place.
	Promote ChildPolicy = "promote"
)

type ChangeKind string

const (
	ChangeInserted ChangeKind = "inserted"
	ChangeMoved    ChangeKind = "moved"
	ChangeRenamed  ChangeKind = "renamed"
	ChangeDeleted  ChangeKind = "deleted"
	ChangeLoaded   ChangeKind = "loaded"
)

type ChangeOrigin string

const (
	OriginApply ChangeOrigin = "apply"
	OriginUndo  ChangeOrigin = "undo"
	OriginRedo  ChangeOrigin = "redo"
	OriginLoad  ChangeOrigin = "load"
)

// Change describes one committed mutation.
//
// IDs are the items Kind applies to. Moved lists items that only changed parent as a side
// effect, such as the children of a promote delete (and of its undo).
//
// Siblings maps every touched parent id (RootID included) to its new ordered child ids.
// Parents that no longer exist after the change are omitted.
type Change struct {
	Seq      uint64              `json:"seq"`
	Kind     ChangeKind          `json:"kind"`
	Origin   ChangeOrigin        `json:"origin"`
	IDs      []string            `json:"ids"`
	Moved    []string            `json:"moved,omitempty"`
	Siblings map[string][]string `json:"siblings,omitempty"`
}

// Event is a journal record of a Change.
type Event struct {
	ID      string          `json:"id"`
	TS      time.Time       `json:"ts"`
	Type    string          `json:"type"`
	Origin  string          `json:"origin,omitempty"`
	ItemIDs []string        `json:"itemIds"`
	Payload json.RawMessage `json:"payload,omitempty"`
}
