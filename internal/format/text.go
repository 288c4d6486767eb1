package format

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
)

// Texter is implemented by payloads that have a human-readable form.
type Texter interface {
	WriteText(w io.Writer) error
}

// WriteText writes v for a human. A {"data": ...} envelope is unwrapped first; meta and hints
// are JSON-only. Values without a text form fall back to indented JSON.
func WriteText(w io.Writer, v any) error {
	if m, ok := v.(map[string]any); ok {
		if d, ok := m["data"]; ok {
			v = d
		}
	}
	switch t := v.(type) {
	case Texter:
		return t.WriteText(w)
	case string:
		_, err := fmt.Fprintln(w, t)
		return err
	}
	return WriteJSON(w, v, true)
}

// Table is a Texter that prints aligned columns under a bold header.
type Table struct {
	Header     []string
	Rows       [][]string
	RightAlign []int
	// Empty is printed instead of the header when there are no rows.
	Empty string
}

func (t Table) WriteText(w io.Writer) error {
	if len(t.Rows) == 0 && t.Empty != "" {
		_, err := fmt.Fprintln(w, color.New(color.Faint).Sprint(t.Empty))
		return err
	}
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	if len(t.Header) > 0 {
		tbl.AddRow(cells(t.Header, bold)...)
	}
	for _, r := range t.Rows {
		tbl.AddRow(cells(r, nil)...)
	}
	for _, col := range t.RightAlign {
		tbl.RightAlign(col)
	}
	_, err := fmt.Fprintln(w, tbl)
	return err
}

func cells(xs []string, c *color.Color) []interface{} {
	out := make([]interface{}, len(xs))
	for i, x := range xs {
		if c != nil {
			out[i] = c.Sprint(x)
			continue
		}
		out[i] = x
	}
	return out
}
