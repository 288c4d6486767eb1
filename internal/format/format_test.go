package format

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestWrite_Formats(t *testing.T) {
	t.Parallel()

	payload := map[string]any{
		"data": map[string]any{
			"id":   "item-abc",
			"rank": int64(1<<62 + 1),
			"tags": []string{},
		},
	}

	tests := []struct {
		format string
		pretty bool
		want   string
	}{
		{format: "", want: `{"data":{"id":"item-abc","rank":4611686018427387905,"tags":[]}}` + "\n"},
		{format: "edn", want: `{:data {:id "item-abc" :rank 4611686018427387905 :tags []}}` + "\n"},
		{format: "edn", pretty: true, want: "{\n  :data {\n    :id \"item-abc\"\n    :rank 4611686018427387905\n    :tags []\n  }\n}\n"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			if err := Write(&buf, payload, tt.format, tt.pretty); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if buf.String() != tt.want {
				t.Fatalf("got %q want %q", buf.String(), tt.want)
			}
		})
	}

	if err := Write(&bytes.Buffer{}, payload, "yaml", false); err == nil {
		t.Fatalf("expected unknown format error")
	}
}

func TestEDN_RootKeyword(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteEDN(&buf, map[string][]string{"": {"a"}}, false); err != nil {
		t.Fatalf("WriteEDN: %v", err)
	}
	if got := buf.String(); got != "{:root [\"a\"]}\n" {
		t.Fatalf("got %q", got)
	}
}

func TestWriteText_TableAndFallback(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	tbl := Table{Header: []string{"ID", "LABEL"}, Rows: [][]string{{"item-a", "Ship"}, {"item-bb", "Water"}}}
	if err := WriteText(&buf, map[string]any{"data": tbl, "meta": 1}); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "ID") || !strings.Contains(lines[2], "Water") {
		t.Fatalf("unexpected table:\n%s", buf.String())
	}

	buf.Reset()
	if err := WriteText(&buf, Table{Empty: "nothing"}); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if buf.String() != "nothing\n" {
		t.Fatalf("got %q", buf.String())
	}

	buf.Reset()
	if err := WriteText(&buf, map[string]any{"data": map[string]int{"n": 1}}); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if buf.String() != "{\n  \"n\": 1\n}\n" {
		t.Fatalf("got %q", buf.String())
	}
}
