package tui

import (
	"context"
	"strings"
	"sync/atomic"

	"prioritize/internal/model"
	"prioritize/internal/tree"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeAddChild
	modeRename
)

// changeBuffer sizes the notification channel. When it overflows the cache is rebuilt.
const changeBuffer = 256

type Options struct {
	// Save persists the tree. Nil disables saving.
	Save func(ctx context.Context) error
	// Dirty reports unsaved changes at startup.
	Dirty bool

	Logger *zerolog.Logger
}

type savedMsg struct {
	seq uint64
	err error
}

type appModel struct {
	tree *tree.PriorityTree
	opts Options
	keys keyMap
	log  zerolog.Logger

	cache     *outlineCache
	collapsed map[string]bool
	rows      []row
	selected  string
	offset    int

	changes  chan model.Change
	overflow *atomic.Bool
	unsub    func()

	mode  mode
	input textinput.Model

	lastSeq   uint64
	savedSeq  uint64
	saving    bool
	quitArmed bool
	showHelp  bool
	preview   bool
	status    string
	statusErr bool

	width  int
	height int
}

func newAppModel(t *tree.PriorityTree, opts Options) appModel {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 500

	m := appModel{
		tree:      t,
		opts:      opts,
		keys:      defaultKeyMap(),
		log:       zerolog.Nop(),
		cache:     newOutlineCache(),
		collapsed: map[string]bool{},
		changes:   make(chan model.Change, changeBuffer),
		overflow:  &atomic.Bool{},
		input:     ti,
		width:     80,
		height:    24,
	}
	if opts.Logger != nil {
		m.log = opts.Logger.With().Str("component", "tui").Logger()
	}
	if opts.Dirty {
		m.lastSeq = 1
	}
	changes, overflow := m.changes, m.overflow
	m.unsub = t.Subscribe(func(ch model.Change) {
		select {
		case changes <- ch:
		default:
			overflow.Store(true)
		}
	})
	if err := m.cache.reload(t); err != nil {
		m.setError(err)
	}
	m.refreshRows()
	if len(m.rows) > 0 {
		m.selected = m.rows[0].id
	}
	return m
}

func (m appModel) Init() tea.Cmd { return nil }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(10, msg.Width-4)
	case savedMsg:
		m.saving = false
		if msg.err != nil {
			m.setError(msg.err)
			break
		}
		if msg.seq > m.savedSeq {
			m.savedSeq = msg.seq
		}
		m.setStatus("saved")
	case tea.KeyMsg:
		if m.mode != modeBrowse {
			cmd = m.updateInput(msg)
		} else {
			cmd = m.updateBrowse(msg)
		}
	}
	m.syncChanges()
	m.ensureVisible()
	return m, cmd
}

func (m *appModel) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	if !key.Matches(msg, m.keys.Quit) {
		m.quitArmed = false
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.dirty() && !m.quitArmed && m.opts.Save != nil {
			m.quitArmed = true
			m.setStatus("unsaved changes: s to save, q again to quit")
			return nil
		}
		m.close()
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Collapse):
		m.collapseOrParent()
	case key.Matches(msg, m.keys.Expand):
		if m.selected != "" {
			delete(m.collapsed, m.selected)
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.selected != "" && len(m.cache.children[m.selected]) > 0 {
			m.collapsed[m.selected] = !m.collapsed[m.selected]
		}
	case key.Matches(msg, m.keys.Add):
		m.startInput(modeAdd, "")
	case key.Matches(msg, m.keys.AddChild):
		if m.selected == "" {
			m.startInput(modeAdd, "")
		} else {
			m.startInput(modeAddChild, "")
		}
	case key.Matches(msg, m.keys.Rename):
		if m.selected != "" {
			m.startInput(modeRename, m.cache.labels[m.selected])
		}
	case key.Matches(msg, m.keys.Delete):
		m.deleteSelected(model.Cascade)
	case key.Matches(msg, m.keys.Promote):
		m.deleteSelected(model.Promote)
	case key.Matches(msg, m.keys.MoveUp):
		m.moveWithinSiblings(-1)
	case key.Matches(msg, m.keys.MoveDown):
		m.moveWithinSiblings(1)
	case key.Matches(msg, m.keys.Indent):
		m.indent()
	case key.Matches(msg, m.keys.Outdent):
		m.outdent()
	case key.Matches(msg, m.keys.Undo):
		if !m.tree.Undo() {
			m.setStatus("nothing to undo")
		}
	case key.Matches(msg, m.keys.Redo):
		if !m.tree.Redo() {
			m.setStatus("nothing to redo")
		}
	case key.Matches(msg, m.keys.Save):
		return m.save()
	case key.Matches(msg, m.keys.Preview):
		m.preview = !m.preview
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	}
	return nil
}

func (m *appModel) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.stopInput()
		return nil
	case tea.KeyEnter:
		value := m.input.Value()
		md := m.mode
		m.stopInput()
		m.commitInput(md, value)
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *appModel) startInput(md mode, value string) {
	m.mode = md
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *appModel) stopInput() {
	m.mode = modeBrowse
	m.input.Blur()
	m.input.SetValue("")
}

func (m *appModel) commitInput(md mode, value string) {
	switch md {
	case modeAdd:
		parentID, pos := model.RootID, model.Last()
		if m.selected != "" {
			parentID, pos = m.cache.parent[m.selected], model.After(m.selected)
		}
		it, err := m.tree.Insert(parentID, strings.TrimSpace(value), pos)
		if err != nil {
			m.setError(err)
			return
		}
		m.selected = it.ID
	case modeAddChild:
		it, err := m.tree.Insert(m.selected, strings.TrimSpace(value), model.Last())
		if err != nil {
			m.setError(err)
			return
		}
		delete(m.collapsed, m.selected)
		m.selected = it.ID
	case modeRename:
		if err := m.tree.Rename(m.selected, strings.TrimSpace(value)); err != nil {
			m.setError(err)
		}
	}
}

func (m *appModel) deleteSelected(policy model.ChildPolicy) {
	if m.selected == "" {
		return
	}
	next := m.neighborAfterSubtree()
	if policy == model.Promote {
		if kids := m.cache.children[m.selected]; len(kids) > 0 {
			next = kids[0]
		}
	}
	if err := m.tree.Delete(m.selected, policy); err != nil {
		m.setError(err)
		return
	}
	delete(m.collapsed, m.selected)
	m.selected = next
}

// neighborAfterSubtree is the row that takes the selection when the selected subtree goes away.
func (m *appModel) neighborAfterSubtree() string {
	at := m.cursor()
	if at < 0 {
		return ""
	}
	depth := m.rows[at].depth
	for i := at + 1; i < len(m.rows); i++ {
		if m.rows[i].depth <= depth {
			return m.rows[i].id
		}
	}
	if at > 0 {
		return m.rows[at-1].id
	}
	return ""
}

func (m *appModel) moveWithinSiblings(delta int) {
	if m.selected == "" {
		return
	}
	parentID, sibs, i := m.cache.siblings(m.selected)
	j := i + delta
	if i < 0 || j < 0 || j >= len(sibs) {
		return
	}
	pos := model.Before(sibs[j])
	if delta > 0 {
		pos = model.After(sibs[j])
	}
	if err := m.tree.Move(m.selected, parentID, pos); err != nil {
		m.setError(err)
	}
}

// indent makes the selection the last child of its previous sibling.
func (m *appModel) indent() {
	if m.selected == "" {
		return
	}
	_, sibs, i := m.cache.siblings(m.selected)
	if i <= 0 {
		return
	}
	prev := sibs[i-1]
	if err := m.tree.Move(m.selected, prev, model.Last()); err != nil {
		m.setError(err)
		return
	}
	delete(m.collapsed, prev)
}

// outdent moves the selection out of its parent, directly below it.
func (m *appModel) outdent() {
	if m.selected == "" {
		return
	}
	parentID := m.cache.parent[m.selected]
	if parentID == model.RootID {
		return
	}
	if err := m.tree.Move(m.selected, m.cache.parent[parentID], model.After(parentID)); err != nil {
		m.setError(err)
	}
}

func (m *appModel) collapseOrParent() {
	if m.selected == "" {
		return
	}
	if len(m.cache.children[m.selected]) > 0 && !m.collapsed[m.selected] {
		m.collapsed[m.selected] = true
		return
	}
	if pid := m.cache.parent[m.selected]; pid != model.RootID {
		m.selected = pid
	}
}

func (m *appModel) save() tea.Cmd {
	if m.opts.Save == nil {
		m.setStatus("saving is not configured")
		return nil
	}
	if m.saving {
		return nil
	}
	m.saving = true
	m.setStatus("saving…")
	save, seq := m.opts.Save, m.lastSeq
	return func() tea.Msg {
		return savedMsg{seq: seq, err: save(context.Background())}
	}
}

func (m *appModel) dirty() bool { return m.lastSeq > m.savedSeq }

// syncChanges applies queued notifications to the cache and rebuilds the visible rows.
func (m *appModel) syncChanges() {
	changed := false
	for {
		select {
		case ch := <-m.changes:
			if ch.Seq > m.lastSeq {
				m.lastSeq = ch.Seq
			}
			if err := m.cache.apply(m.tree, ch); err != nil {
				m.setError(err)
			}
			changed = true
			continue
		default:
		}
		break
	}
	if m.overflow.Swap(false) {
		if err := m.cache.reload(m.tree); err != nil {
			m.setError(err)
		}
		m.lastSeq++
		changed = true
	}
	if changed {
		m.quitArmed = false
	}
	m.refreshRows()
}

func (m *appModel) refreshRows() {
	for id := range m.collapsed {
		if _, ok := m.cache.labels[id]; !ok {
			delete(m.collapsed, id)
		}
	}
	// Keep the selection visible: unfold its ancestors.
	for pid := m.cache.parent[m.selected]; pid != model.RootID; pid = m.cache.parent[pid] {
		if _, ok := m.cache.labels[pid]; !ok {
			break
		}
		delete(m.collapsed, pid)
	}
	m.rows = m.cache.rows(m.collapsed)
	if m.cursor() < 0 {
		m.selected = ""
		if len(m.rows) > 0 {
			m.selected = m.rows[0].id
		}
	}
}

func (m *appModel) cursor() int {
	for i, r := range m.rows {
		if r.id == m.selected {
			return i
		}
	}
	return -1
}

func (m *appModel) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	i := m.cursor() + delta
	if i < 0 {
		i = 0
	}
	if i >= len(m.rows) {
		i = len(m.rows) - 1
	}
	m.selected = m.rows[i].id
}

func (m *appModel) ensureVisible() {
	h := m.listHeight()
	at := m.cursor()
	if at < 0 || h <= 0 {
		m.offset = 0
		return
	}
	if at < m.offset {
		m.offset = at
	}
	if at >= m.offset+h {
		m.offset = at - h + 1
	}
	if m.offset > len(m.rows)-h {
		m.offset = max(0, len(m.rows)-h)
	}
}

func (m *appModel) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *appModel) setError(err error) {
	m.log.Debug().Err(err).Msg("operation failed")
	m.status, m.statusErr = err.Error(), true
}

func (m *appModel) close() {
	if m.unsub != nil {
		m.unsub()
	}
}
