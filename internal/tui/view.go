package tui

import (
	"strconv"
	"strings"

	"prioritize/internal/publish"

	"github.com/charmbracelet/lipgloss"
)

const (
	headerLines = 2
	footerLines = 2
)

func (m appModel) listHeight() int {
	return max(1, m.height-headerLines-footerLines)
}

func (m appModel) View() string {
	header := m.viewHeader()
	body := m.viewList()
	if m.preview && m.width >= 40 {
		listW := m.width / 2
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			fitPane(body, listW, m.listHeight()),
			fitPane(stylePreview().Render(m.viewPreview(m.width-listW-2)), m.width-listW, m.listHeight()),
		)
	} else {
		body = fitPane(body, m.width, m.listHeight())
	}
	return strings.Join([]string{header, body, m.viewFooter()}, "\n")
}

func (m appModel) viewHeader() string {
	title := styleTitle().Render("Prioritize!")
	info := []string{}
	if n := len(m.cache.labels); n == 1 {
		info = append(info, "1 item")
	} else {
		info = append(info, strconv.Itoa(n)+" items")
	}
	if m.dirty() {
		info = append(info, "unsaved")
	}
	line := title + "  " + styleMuted().Render(strings.Join(info, " · "))
	return fitLine(line, m.width) + "\n" + styleMuted().Render(strings.Repeat("─", max(0, m.width)))
}

func (m appModel) viewList() string {
	if len(m.rows) == 0 {
		return styleMuted().Render("Nothing here yet. Press a to add the first item.")
	}
	h := m.listHeight()
	end := min(len(m.rows), m.offset+h)
	lines := make([]string, 0, end-m.offset)
	for _, r := range m.rows[m.offset:end] {
		marker := "·"
		if r.hasChildren {
			marker = "▾"
			if m.collapsed[r.id] {
				marker = "▸"
			}
		}
		label := r.label
		if strings.TrimSpace(label) == "" {
			label = "(untitled)"
		}
		ln := strings.Repeat("  ", r.depth) + marker + " " + label
		if r.id == m.selected {
			ln = styleSelected().Render(fitLine(ln, m.width))
		}
		lines = append(lines, ln)
	}
	return strings.Join(lines, "\n")
}

func (m appModel) viewPreview(width int) string {
	if m.selected == "" {
		return styleMuted().Render("Nothing selected.")
	}
	md, err := publish.RenderMarkdown(m.tree, m.selected)
	if err != nil {
		return styleError().Render(err.Error())
	}
	return RenderMarkdown(md, width)
}

func (m appModel) viewFooter() string {
	var top string
	switch {
	case m.mode != modeBrowse:
		top = m.inputTitle() + " " + m.input.View()
	case m.status != "" && m.statusErr:
		top = styleError().Render(m.status)
	case m.status != "":
		top = m.status
	}
	return fitLine(top, m.width) + "\n" + fitLine(styleMuted().Render(m.helpText()), m.width)
}

func (m appModel) inputTitle() string {
	switch m.mode {
	case modeAddChild:
		return "Add child:"
	case modeRename:
		return "Rename:"
	default:
		return "Add:"
	}
}

func (m appModel) helpText() string {
	if m.mode != modeBrowse {
		return "enter: confirm  esc: cancel"
	}
	parts := []string{}
	for _, b := range m.keys.helpLine(m.showHelp) {
		h := b.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return strings.Join(parts, "  ")
}
