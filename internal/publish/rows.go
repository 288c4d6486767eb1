package publish

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"prioritize/internal/model"
	"prioritize/internal/tree"
)

// Row is one line of the sheet-style export. Row order is priority order.
type Row struct {
	Title       string `json:"title"`
	ParentTitle string `json:"parentTitle"`
	Depth       int    `json:"depth"`
	ID          string `json:"id"`
}

var rowHeader = []string{"Title", "Parent Title", "Depth", "ID"}

// Rows flattens the whole tree depth-first. Titles of nested items are indented with two spaces
// per level so the order reads as an outline in a spreadsheet.
func Rows(t *tree.PriorityTree) ([]Row, error) {
	entries, err := t.Outline(model.RootID, nil)
	if err != nil {
		return nil, err
	}
	labels := make(map[string]string, len(entries))
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		label := labelOrUntitled(e.Item.Label)
		labels[e.Item.ID] = label
		rows = append(rows, Row{
			Title:       strings.Repeat("  ", e.Depth) + label,
			ParentTitle: labels[e.Item.ParentID],
			Depth:       e.Depth,
			ID:          e.Item.ID,
		})
	}
	return rows, nil
}

func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rowHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Title, r.ParentTitle, strconv.Itoa(r.Depth), r.ID}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
