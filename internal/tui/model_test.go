package tui

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"prioritize/internal/model"
	"prioritize/internal/tree"

	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"
)

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyEnter    = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab      = tea.KeyMsg{Type: tea.KeyTab}
	keyShiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	keyDown     = tea.KeyMsg{Type: tea.KeyDown}
	keyCtrlR    = tea.KeyMsg{Type: tea.KeyCtrlR}
)

func press(t *testing.T, m appModel, msgs ...tea.Msg) (appModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(appModel)
	}
	return m, cmd
}

func rowsText(m appModel) []string {
	out := make([]string, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, strings.Repeat("  ", r.depth)+r.label)
	}
	return out
}

func selectedLabel(m appModel) string { return m.cache.labels[m.selected] }

func TestEditingKeys_BuildAndReorder(t *testing.T) {
	t.Parallel()

	tr := tree.New(tree.Options{})
	m := newAppModel(tr, Options{})
	defer m.close()

	m, _ = press(t, m,
		keyRunes("a"), keyRunes("Ship"), keyEnter,
		keyRunes("a"), keyRunes("Water"), keyEnter,
		keyRunes("a"), keyRunes("Tag"), keyEnter,
	)
	if got, want := rowsText(m), []string{"Ship", "Water", "Tag"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("rows = %v want %v", got, want)
	}
	if selectedLabel(m) != "Tag" {
		t.Fatalf("expected new item selected, got %q", selectedLabel(m))
	}

	m, _ = press(t, m, keyTab)
	if got, want := rowsText(m), []string{"Ship", "Water", "  Tag"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("after indent rows = %v want %v", got, want)
	}

	m, _ = press(t, m, keyShiftTab)
	if got, want := rowsText(m), []string{"Ship", "Water", "Tag"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("after outdent rows = %v want %v", got, want)
	}

	m, _ = press(t, m, keyRunes("K"))
	if got, want := rowsText(m), []string{"Ship", "Tag", "Water"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("after move up rows = %v want %v", got, want)
	}

	m, _ = press(t, m, keyRunes("u"))
	if got, want := rowsText(m), []string{"Ship", "Water", "Tag"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("after undo rows = %v want %v", got, want)
	}
	m, _ = press(t, m, keyCtrlR)
	if got, want := rowsText(m), []string{"Ship", "Tag", "Water"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("after redo rows = %v want %v", got, want)
	}

	m, _ = press(t, m, keyRunes("r"), keyRunes(" v2"), keyEnter)
	if selectedLabel(m) != "Tag v2" {
		t.Fatalf("rename: selected label %q", selectedLabel(m))
	}

	m, _ = press(t, m, keyRunes("A"), keyRunes("Draft notes"), keyEnter)
	if got, want := rowsText(m), []string{"Ship", "Tag v2", "  Draft notes", "Water"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("after add child rows = %v want %v", got, want)
	}

	// The cache must agree with the tree after all of that.
	ids, err := tr.ChildIDs(model.RootID)
	if err != nil {
		t.Fatalf("ChildIDs: %v", err)
	}
	if !reflect.DeepEqual(ids, m.cache.children[model.RootID]) {
		t.Fatalf("cache %v != tree %v", m.cache.children[model.RootID], ids)
	}
}

func TestEditingKeys_EscCancels(t *testing.T) {
	t.Parallel()

	tr := tree.New(tree.Options{})
	m := newAppModel(tr, Options{})
	defer m.close()

	m, _ = press(t, m, keyRunes("a"), keyRunes("never"), tea.KeyMsg{Type: tea.KeyEsc})
	if tr.Len() != 0 || m.mode != modeBrowse {
		t.Fatalf("esc should cancel: len=%d mode=%v", tr.Len(), m.mode)
	}
}

func buildTree(t *testing.T) (*tree.PriorityTree, map[string]string) {
	t.Helper()
	tr := tree.New(tree.Options{})
	ids := map[string]string{}
	add := func(parent, label string) {
		it, err := tr.Insert(parent, label, model.Last())
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		ids[label] = it.ID
	}
	add(model.RootID, "A")
	add(model.RootID, "B")
	add(ids["B"], "B1")
	add(ids["B"], "B2")
	add(model.RootID, "C")
	return tr, ids
}

func TestDelete_PromoteAndCascade(t *testing.T) {
	t.Parallel()

	tr, ids := buildTree(t)
	m := newAppModel(tr, Options{})
	defer m.close()

	m, _ = press(t, m, keyDown)
	if m.selected != ids["B"] {
		t.Fatalf("expected B selected")
	}
	m, _ = press(t, m, keyRunes("D"))
	if got, want := rowsText(m), []string{"A", "B1", "B2", "C"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("after promote rows = %v want %v", got, want)
	}
	if m.selected != ids["B1"] {
		t.Fatalf("expected first promoted child selected, got %q", selectedLabel(m))
	}

	m, _ = press(t, m, keyRunes("d"))
	if got, want := rowsText(m), []string{"A", "B2", "C"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("after delete rows = %v want %v", got, want)
	}
	if m.selected != ids["B2"] {
		t.Fatalf("expected next row selected, got %q", selectedLabel(m))
	}

	m, _ = press(t, m, keyRunes("u"), keyRunes("u"))
	if got, want := rowsText(m), []string{"A", "B", "  B1", "  B2", "C"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("after undo rows = %v want %v", got, want)
	}
}

func TestFolding(t *testing.T) {
	t.Parallel()

	tr, ids := buildTree(t)
	m := newAppModel(tr, Options{})
	defer m.close()

	m, _ = press(t, m, keyDown, keyEnter)
	if got, want := rowsText(m), []string{"A", "B", "C"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("collapsed rows = %v want %v", got, want)
	}
	m, _ = press(t, m, keyRunes("l"), keyDown, keyRunes("h"))
	if m.selected != ids["B"] {
		t.Fatalf("h on a leaf should select its parent, got %q", selectedLabel(m))
	}

	// Adding a child to a collapsed item unfolds it so the new item is visible.
	m, _ = press(t, m, keyRunes("h"), keyRunes("A"), keyRunes("B3"), keyEnter)
	if got, want := rowsText(m), []string{"A", "B", "  B1", "  B2", "  B3", "C"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("rows = %v want %v", got, want)
	}
}

func TestSaveAndQuit(t *testing.T) {
	t.Parallel()

	tr := tree.New(tree.Options{})
	saves := 0
	failNext := true
	m := newAppModel(tr, Options{Save: func(context.Context) error {
		saves++
		if failNext {
			failNext = false
			return errors.New("disk full")
		}
		return nil
	}})
	defer m.close()

	m, _ = press(t, m, keyRunes("a"), keyRunes("x"), keyEnter)
	if !m.dirty() {
		t.Fatalf("expected dirty after insert")
	}

	m, cmd := press(t, m, keyRunes("q"))
	if cmd != nil || !strings.Contains(m.status, "unsaved") {
		t.Fatalf("first q should warn, status=%q cmd=%v", m.status, cmd != nil)
	}

	m, cmd = press(t, m, keyRunes("s"))
	if cmd == nil {
		t.Fatalf("expected save command")
	}
	m, _ = press(t, m, cmd())
	if !m.statusErr || !m.dirty() {
		t.Fatalf("failed save must keep the tree dirty: status=%q", m.status)
	}

	m, cmd = press(t, m, keyRunes("s"))
	m, _ = press(t, m, cmd())
	if m.dirty() || saves != 2 {
		t.Fatalf("expected clean after second save: dirty=%v saves=%d", m.dirty(), saves)
	}

	_, cmd = press(t, m, keyRunes("q"))
	if cmd == nil {
		t.Fatalf("expected quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestCache_FollowsChangesMadeElsewhere(t *testing.T) {
	t.Parallel()

	tr, ids := buildTree(t)
	m := newAppModel(tr, Options{})
	defer m.close()

	if err := tr.Move(ids["C"], ids["A"], model.First()); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if err := tr.Rename(ids["B1"], "B one"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	m, _ = press(t, m, tea.WindowSizeMsg{Width: 60, Height: 20})
	if got, want := rowsText(m), []string{"A", "  C", "B", "  B one", "  B2"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("rows = %v want %v", got, want)
	}

	// More changes than the channel holds: the view falls back to a full reload.
	for i := 0; i < changeBuffer+10; i++ {
		if _, err := tr.Insert(ids["A"], "bulk", model.Last()); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	m, _ = press(t, m, tea.WindowSizeMsg{Width: 60, Height: 20})
	if got := len(m.rows); got != 5+changeBuffer+10 {
		t.Fatalf("expected %d rows, got %d", 5+changeBuffer+10, got)
	}
}

func TestView_FitsWindow(t *testing.T) {
	t.Parallel()

	tr, _ := buildTree(t)
	m := newAppModel(tr, Options{})
	defer m.close()

	m, _ = press(t, m, tea.WindowSizeMsg{Width: 50, Height: 12})
	out := m.View()
	lines := strings.Split(out, "\n")
	if len(lines) != 12 {
		t.Fatalf("expected 12 lines, got %d:\n%s", len(lines), out)
	}
	for i, ln := range lines {
		if w := xansi.StringWidth(ln); w > 50 {
			t.Fatalf("line %d is %d columns wide: %q", i, w, ln)
		}
	}
	if !strings.Contains(out, "Prioritize!") || !strings.Contains(out, "B2") {
		t.Fatalf("unexpected view:\n%s", out)
	}
}

func TestFitPane(t *testing.T) {
	t.Parallel()

	got := fitPane("abcdefgh\nxy", 5, 3)
	want := "abcd…\nxy   \n     "
	if got != want {
		t.Fatalf("fitPane = %q want %q", got, want)
	}
	if fitLine("abc", 0) != "" {
		t.Fatalf("zero width must be empty")
	}
}
