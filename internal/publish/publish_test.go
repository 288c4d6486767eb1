package publish

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"prioritize/internal/model"
	"prioritize/internal/tree"
)

func sampleTree(t *testing.T) (*tree.PriorityTree, map[string]string) {
	t.Helper()
	tr := tree.New(tree.Options{})
	ids := map[string]string{}
	add := func(parent, label string) {
		it, err := tr.Insert(parent, label, model.Last())
		if err != nil {
			t.Fatalf("Insert %q: %v", label, err)
		}
		ids[label] = it.ID
	}
	add(model.RootID, "Ship release")
	add(ids["Ship release"], "Write notes")
	add(ids["Ship release"], "Tag build")
	add(model.RootID, "Water plants :seedling:")
	add(model.RootID, "")
	return tr, ids
}

func TestRenderMarkdown_NestedBullets(t *testing.T) {
	t.Parallel()

	tr, ids := sampleTree(t)
	md, err := RenderMarkdown(tr, model.RootID)
	if err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	want := strings.Join([]string{
		"# Priorities",
		"",
		"- Ship release",
		"  - Write notes",
		"  - Tag build",
		"- Water plants :seedling:",
		"- (untitled)",
		"",
	}, "\n")
	if md != want {
		t.Fatalf("unexpected markdown:\n%s\nwant:\n%s", md, want)
	}

	sub, err := RenderMarkdown(tr, ids["Ship release"])
	if err != nil {
		t.Fatalf("RenderMarkdown subtree: %v", err)
	}
	if !strings.HasPrefix(sub, "# Ship release\n") || !strings.Contains(sub, "\n- Write notes\n") {
		t.Fatalf("unexpected subtree markdown:\n%s", sub)
	}

	if _, err := RenderMarkdown(tr, "missing"); err == nil {
		t.Fatalf("expected error for unknown root")
	}
}

func TestRenderHTML_ListAndEmoji(t *testing.T) {
	t.Parallel()

	tr, _ := sampleTree(t)
	h, err := RenderHTML(tr, model.RootID)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	for _, want := range []string{"<h1>Priorities</h1>", "<ul>", "<li>Ship release", "Write notes"} {
		if !strings.Contains(h, want) {
			t.Fatalf("expected %q in html:\n%s", want, h)
		}
	}
	if strings.Contains(h, ":seedling:") {
		t.Fatalf("expected emoji shortcode to be rendered:\n%s", h)
	}
}

func TestRowsAndCSV_SheetLayout(t *testing.T) {
	t.Parallel()

	tr, ids := sampleTree(t)
	rows, err := Rows(tr)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	if rows[1].Title != "  Write notes" || rows[1].ParentTitle != "Ship release" || rows[1].Depth != 1 {
		t.Fatalf("unexpected child row %+v", rows[1])
	}
	if rows[0].ParentTitle != "" || rows[0].ID != ids["Ship release"] {
		t.Fatalf("unexpected top row %+v", rows[0])
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(recs) != 6 || recs[0][0] != "Title" || recs[0][1] != "Parent Title" {
		t.Fatalf("unexpected csv: %v", recs)
	}
	if recs[2][0] != "  Write notes" {
		t.Fatalf("indentation lost in csv: %q", recs[2][0])
	}
}

func TestWriteOutline_RespectsOverwrite(t *testing.T) {
	t.Parallel()

	tr, _ := sampleTree(t)
	dir := filepath.Join(t.TempDir(), "out")

	res, err := WriteOutline(tr, dir, WriteOptions{HTML: true, CSV: true})
	if err != nil {
		t.Fatalf("WriteOutline: %v", err)
	}
	if len(res.Written) != 3 {
		t.Fatalf("expected 3 files, got %v", res.Written)
	}
	for _, p := range res.Written {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("missing %s: %v", p, err)
		}
	}

	if _, err := WriteOutline(tr, dir, WriteOptions{}); err == nil || !strings.Contains(err.Error(), "file exists") {
		t.Fatalf("expected file exists error, got %v", err)
	}
	if _, err := WriteOutline(tr, dir, WriteOptions{Overwrite: true}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if _, err := WriteOutline(tr, " ", WriteOptions{}); err == nil {
		t.Fatalf("expected error for empty dir")
	}
}
