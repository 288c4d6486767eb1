package tree

import (
	"errors"
	"strings"
	"testing"

	"prioritize/internal/model"
)

func TestSerialize_RoundTripIsStable(t *testing.T) {
	t.Parallel()

	tr := New(Options{})
	a := mustInsert(t, tr, model.RootID, "A", model.Last())
	mustInsert(t, tr, a.ID, "A.1", model.Last())
	mustInsert(t, tr, a.ID, "A.0", model.First())
	mustInsert(t, tr, model.RootID, "", model.First())

	first := serialized(t, tr)
	other := New(Options{})
	if err := other.Deserialize([]byte(first)); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if second := serialized(t, other); second != first {
		t.Fatalf("round trip changed bytes:\n%s\nvs\n%s", first, second)
	}
	if got, want := labelsOf(t, other, a.ID), []string{"A.0", "A.1"}; got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("child order lost: %v", got)
	}
}

func TestDeserialize_RejectsCorruptDocuments(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		blob      string
		invariant string
		itemID    string
	}{
		{
			name:      "missing parent",
			blob:      `{"version":1,"items":[{"id":"a","label":"A","parentId":"ghost","rank":1}]}`,
			invariant: InvariantParentExists,
			itemID:    "a",
		},
		{
			name:      "not json",
			blob:      `{"version":1,"items":[`,
			invariant: InvariantFormat,
		},
		{
			name:      "unknown field",
			blob:      `{"version":1,"items":[],"extra":true}`,
			invariant: InvariantFormat,
		},
		{
			name:      "trailing data",
			blob:      `{"version":1,"items":[]} {}`,
			invariant: InvariantFormat,
		},
		{
			name:      "null label",
			blob:      `{"version":1,"items":[{"id":"a","label":null,"parentId":"","rank":1}]}`,
			invariant: InvariantFormat,
		},
		{
			name:      "null parent",
			blob:      `{"version":1,"items":[{"id":"a","label":"A","parentId":null,"rank":1}]}`,
			invariant: InvariantFormat,
		},
		{
			name:      "unknown item field",
			blob:      `{"version":1,"items":[{"id":"a","label":"A","parentId":"","rank":1,"weight":3}]}`,
			invariant: InvariantFormat,
		},
		{
			name:      "wrong version",
			blob:      `{"version":9,"items":[]}`,
			invariant: InvariantVersion,
		},
		{
			name:      "empty id",
			blob:      `{"version":1,"items":[{"id":"","label":"A","parentId":"","rank":1}]}`,
			invariant: InvariantIDPresent,
		},
		{
			name: "duplicate id",
			blob: `{"version":1,"items":[
				{"id":"a","label":"A","parentId":"","rank":1},
				{"id":"a","label":"B","parentId":"","rank":2}]}`,
			invariant: InvariantIDUnique,
			itemID:    "a",
		},
		{
			name: "cycle",
			blob: `{"version":1,"items":[
				{"id":"a","label":"A","parentId":"b","rank":1},
				{"id":"b","label":"B","parentId":"a","rank":1}]}`,
			invariant: InvariantAcyclic,
			itemID:    "a",
		},
		{
			name:      "self parent",
			blob:      `{"version":1,"items":[{"id":"a","label":"A","parentId":"a","rank":1}]}`,
			invariant: InvariantAcyclic,
			itemID:    "a",
		},
		{
			name: "rank tie",
			blob: `{"version":1,"items":[
				{"id":"a","label":"A","parentId":"","rank":5},
				{"id":"b","label":"B","parentId":"","rank":5}]}`,
			invariant: InvariantRankUnique,
			itemID:    "b",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tr := New(Options{})
			keep := mustInsert(t, tr, model.RootID, "keep", model.Last())
			before := serialized(t, tr)

			err := tr.Deserialize([]byte(tc.blob))
			var ce CorruptDataError
			if !errors.As(err, &ce) {
				t.Fatalf("expected CorruptDataError, got %v", err)
			}
			if ce.Invariant != tc.invariant {
				t.Fatalf("invariant: got %q want %q (%v)", ce.Invariant, tc.invariant, err)
			}
			if tc.itemID != "" && ce.ItemID != tc.itemID {
				t.Fatalf("item: got %q want %q", ce.ItemID, tc.itemID)
			}
			if !strings.Contains(err.Error(), tc.invariant) {
				t.Fatalf("error text should name the invariant: %v", err)
			}
			if got := serialized(t, tr); got != before {
				t.Fatalf("failed load touched the tree")
			}
			if _, err := tr.Item(keep.ID); err != nil {
				t.Fatalf("existing item lost: %v", err)
			}
		})
	}
}

func TestDeserialize_OrderComesFromRanksNotFileOrder(t *testing.T) {
	t.Parallel()

	blob := `{"version":1,"items":[
		{"id":"z","label":"third","parentId":"","rank":30},
		{"id":"x","label":"first","parentId":"","rank":-10},
		{"id":"y","label":"second","parentId":"","rank":20}]}`
	tr := New(Options{})
	if err := tr.Deserialize([]byte(blob)); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	got := labelsOf(t, tr, model.RootID)
	if len(got) != 3 || got[0] != "first" || got[1] != "second" || got[2] != "third" {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestDeserialize_LoadedIDsAreRetiredAfterReplace(t *testing.T) {
	t.Parallel()

	tr := New(Options{NewID: func() (string, error) { return "a", nil }})
	if err := tr.Deserialize([]byte(`{"version":1,"items":[{"id":"a","label":"A","parentId":"","rank":1}]}`)); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if err := tr.Replace(model.Document{Version: model.DocumentVersion}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if _, err := tr.Insert(model.RootID, "again", model.Last()); err == nil {
		t.Fatalf("expected id allocation to refuse the retired id")
	}
}
