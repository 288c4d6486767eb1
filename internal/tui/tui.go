// Package tui is the interactive tree view. It owns one PriorityTree for the whole session and
// redraws from the tree's change notifications.
package tui

import (
	"prioritize/internal/tree"

	tea "github.com/charmbracelet/bubbletea"
)

func Run(t *tree.PriorityTree, opts Options) error {
	applyColorProfilePreference()
	applyThemePreference()

	m := newAppModel(t, opts)
	defer m.close()
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
