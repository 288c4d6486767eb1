package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"prioritize/internal/format"
	"prioritize/internal/model"
	"prioritize/internal/tree"

	"github.com/fatih/color"
)

const untitled = "(untitled)"

func displayLabel(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	if s == "" {
		return untitled
	}
	return s
}

type itemOut struct {
	model.Item
}

func (o itemOut) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s  %s\n", color.New(color.Faint).Sprint(o.ID), displayLabel(o.Label))
	return err
}

type outlineRow struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	ParentID    string `json:"parentId"`
	Rank        int64  `json:"rank"`
	Depth       int    `json:"depth"`
	HasChildren bool   `json:"hasChildren"`
}

type outlineOut []outlineRow

func newOutlineOut(entries []tree.Entry) outlineOut {
	out := make(outlineOut, 0, len(entries))
	for _, e := range entries {
		out = append(out, outlineRow{
			ID:          e.Item.ID,
			Label:       e.Item.Label,
			ParentID:    e.Item.ParentID,
			Rank:        e.Item.Rank,
			Depth:       e.Depth,
			HasChildren: e.HasChildren,
		})
	}
	return out
}

func (o outlineOut) WriteText(w io.Writer) error {
	tbl := format.Table{Header: []string{"#", "ID", "ITEM"}, RightAlign: []int{0}, Empty: "Nothing here yet."}
	n := 0
	for _, r := range o {
		num := ""
		if r.Depth == 0 {
			n++
			num = strconv.Itoa(n)
		}
		label := strings.Repeat("  ", r.Depth) + displayLabel(r.Label)
		if r.HasChildren {
			label += " " + color.New(color.Faint).Sprint("▸")
		}
		tbl.Rows = append(tbl.Rows, []string{num, r.ID, label})
	}
	return tbl.WriteText(w)
}

type showOut struct {
	Item     model.Item   `json:"item"`
	Path     []model.Item `json:"path"`
	Children []model.Item `json:"children"`
}

func (o showOut) WriteText(w io.Writer) error {
	bold := color.New(color.Bold)
	crumbs := make([]string, 0, len(o.Path))
	for _, p := range o.Path {
		crumbs = append(crumbs, displayLabel(p.Label))
	}
	if _, err := fmt.Fprintf(w, "%s\n%s\n", bold.Sprint(displayLabel(o.Item.Label)), color.New(color.Faint).Sprint(o.Item.ID+"  "+strings.Join(crumbs, " › "))); err != nil {
		return err
	}
	if len(o.Children) == 0 {
		return nil
	}
	tbl := format.Table{Header: []string{"#", "ID", "CHILD"}, RightAlign: []int{0}}
	for i, ch := range o.Children {
		tbl.Rows = append(tbl.Rows, []string{strconv.Itoa(i + 1), ch.ID, displayLabel(ch.Label)})
	}
	return tbl.WriteText(w)
}

type eventsOut []model.Event

func (o eventsOut) WriteText(w io.Writer) error {
	tbl := format.Table{Header: []string{"TIME", "TYPE", "ORIGIN", "ITEMS"}, Empty: "No events recorded."}
	for _, ev := range o {
		tbl.Rows = append(tbl.Rows, []string{
			ev.TS.Local().Format("2006-01-02 15:04:05"),
			ev.Type,
			ev.Origin,
			strings.Join(ev.ItemIDs, ","),
		})
	}
	return tbl.WriteText(w)
}
