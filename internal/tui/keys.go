package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Collapse key.Binding
	Expand   key.Binding
	Toggle   key.Binding

	Add      key.Binding
	AddChild key.Binding
	Rename   key.Binding
	Delete   key.Binding
	Promote  key.Binding

	MoveUp   key.Binding
	MoveDown key.Binding
	Indent   key.Binding
	Outdent  key.Binding

	Undo    key.Binding
	Redo    key.Binding
	Save    key.Binding
	Preview key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Collapse: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "collapse")),
		Expand:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "expand")),
		Toggle:   key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "fold")),

		Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add below")),
		AddChild: key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "add child")),
		Rename:   key.NewBinding(key.WithKeys("r", "e"), key.WithHelp("r", "rename")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Promote:  key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete, keep children")),

		MoveUp:   key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
		MoveDown: key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
		Indent:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "indent")),
		Outdent:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "outdent")),

		Undo:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		Redo:    key.NewBinding(key.WithKeys("ctrl+r", "U"), key.WithHelp("ctrl+r", "redo")),
		Save:    key.NewBinding(key.WithKeys("s", "ctrl+s"), key.WithHelp("s", "save")),
		Preview: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// helpLine lists the bindings shown in the footer, short form first.
func (k keyMap) helpLine(full bool) []key.Binding {
	short := []key.Binding{k.Add, k.Rename, k.Delete, k.MoveUp, k.MoveDown, k.Undo, k.Save, k.Help, k.Quit}
	if !full {
		return short
	}
	return []key.Binding{
		k.Up, k.Down, k.Collapse, k.Expand, k.Toggle,
		k.Add, k.AddChild, k.Rename, k.Delete, k.Promote,
		k.MoveUp, k.MoveDown, k.Indent, k.Outdent,
		k.Undo, k.Redo, k.Save, k.Preview, k.Help, k.Quit,
	}
}
