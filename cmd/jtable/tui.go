package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/creachadair/jtable"
	"github.com/creachadair/jtable/host"
	"github.com/creachadair/jtable/value"
	"github.com/go-logr/logr"
)

type editorMode int

const (
	modeNormal editorMode = iota
	modeEdit
	modeSearch
)

type editorKeyMap struct {
	Up, Down, Left, Right key.Binding
	Enter, Back           key.Binding
	AddRow, DeleteRow     key.Binding
	Yank, Search, Next    key.Binding
	Quit                  key.Binding
}

var editorKeys = editorKeyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j", "down")),
	Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("h", "left")),
	Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("l", "right")),
	Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit/open")),
	Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close nested")),
	AddRow:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add row")),
	DeleteRow: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete row")),
	Yank:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy cell")),
	Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Next:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next match")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	cursorStyle = lipgloss.NewStyle().Reverse(true).Bold(true)
	hitStyle    = lipgloss.NewStyle().Underline(true)
	statusStyle = lipgloss.NewStyle().Faint(true)
)

// A frame is one level of the table stack. The bottom frame shows the
// session document; each frame above it shows a nested value opened from a
// cell of the frame below.
type frame struct {
	title  string
	nested *jtable.Nested // nil for the session document
	dirty  bool           // nested has edits not yet written to the parent

	pRow int    // the cell of the parent frame holding nested
	pKey string

	row, col int // cursor
	top      int // first visible row
}

// An editor is the bubbletea model of the interactive table editor.
type editor struct {
	ctx   context.Context
	d     *host.Dispatcher
	log   logr.Logger
	stack []*frame

	mode    editorMode
	input   textinput.Model
	matches []jtable.Coord
	match   int
	status  string

	width, height int
}

// newEditor constructs an editor for s, persisting changes to store.
func newEditor(ctx context.Context, s *jtable.Session, store host.Store) (*editor, error) {
	ti := textinput.New()
	ti.CharLimit = 0
	ti.Width = 60

	e := &editor{
		ctx:    ctx,
		log:    logr.FromContextOrDiscard(ctx),
		stack:  []*frame{{title: s.Target()}},
		input:  ti,
		width:  80,
		height: 24,
	}
	d, err := host.NewDispatcher(s, host.Config{Store: store, View: e.onUpdate, Logger: e.log})
	if err != nil {
		return nil, err
	}
	e.d = d
	return e, nil
}

// runEditor runs the interactive editor on s until the user quits.
func runEditor(ctx context.Context, s *jtable.Session) error {
	var store host.Store = host.FileStore{}
	if !s.Writable() {
		store = new(host.MemStore)
	}
	e, err := newEditor(ctx, s, store)
	if err != nil {
		return err
	}
	defer e.d.Close()
	_, err = tea.NewProgram(e, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (e *editor) top() *frame { return e.stack[len(e.stack)-1] }

// model returns the table model of f.
func (e *editor) model(f *frame) *jtable.Model {
	if f.nested != nil {
		return f.nested.Model()
	}
	return e.d.Session().Model()
}

// keys returns the column keys of m, with "" for the unnamed column.
func keys(m *jtable.Model) []string {
	if m.Mixed {
		return append(append([]string(nil), m.Columns...), "")
	}
	return m.Columns
}

// cursor returns the coordinate of the selected cell of the top frame, and
// reports whether there is one.
func (e *editor) cursor() (jtable.Coord, bool) {
	f := e.top()
	m := e.model(f)
	ks := keys(m)
	if f.row >= m.Len() || f.col >= len(ks) {
		return jtable.Coord{}, false
	}
	return jtable.Coord{Row: f.row, Key: ks[f.col]}, true
}

// onUpdate receives updates from the dispatcher.
func (e *editor) onUpdate(u jtable.Update) {
	switch t := u.(type) {
	case jtable.CellUpdated:
		e.status = fmt.Sprintf("set row %d %q", t.Row, t.Key)
		if t.Reshaped {
			f := e.stack[0]
			f.row, f.col, f.top = 0, 0, 0
		}
	case jtable.RowAdded:
		e.stack[0].row = t.Row
		e.status = fmt.Sprintf("added row %d", t.Row)
	case jtable.RowDeleted:
		e.status = fmt.Sprintf("deleted row %d", t.Row)
	case jtable.MutationFailed:
		e.status = "failed: " + t.Kind.String()
	}
}

func (e *editor) Init() tea.Cmd { return nil }

func (e *editor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.width, e.height = msg.Width, msg.Height

	case tea.KeyMsg:
		switch e.mode {
		case modeEdit, modeSearch:
			cmd = e.updateInput(msg)
		default:
			if key.Matches(msg, editorKeys.Quit) {
				return e, tea.Quit
			}
			cmd = e.updateNormal(msg)
		}
	}
	e.clamp()
	return e, cmd
}

func (e *editor) updateNormal(msg tea.KeyMsg) tea.Cmd {
	f := e.top()
	switch {
	case key.Matches(msg, editorKeys.Up):
		f.row--
	case key.Matches(msg, editorKeys.Down):
		f.row++
	case key.Matches(msg, editorKeys.Left):
		f.col--
	case key.Matches(msg, editorKeys.Right):
		f.col++

	case key.Matches(msg, editorKeys.Enter):
		return e.enter()

	case key.Matches(msg, editorKeys.Back):
		e.closeNested()

	case key.Matches(msg, editorKeys.AddRow):
		if len(e.stack) > 1 {
			e.status = "rows can only be added to the document"
			break
		}
		e.d.Post(e.ctx, host.AddRow{})

	case key.Matches(msg, editorKeys.DeleteRow):
		if len(e.stack) > 1 {
			e.status = "rows can only be deleted from the document"
			break
		}
		e.d.Post(e.ctx, host.DeleteRow{Row: f.row})

	case key.Matches(msg, editorKeys.Yank):
		c, ok := e.cursor()
		if !ok {
			break
		}
		v, _ := e.model(f).Cell(c.Row, c.Key)
		if err := clipboard.WriteAll(jtable.Encode(v)); err != nil {
			e.status = "copy failed: " + err.Error()
		} else {
			e.status = "copied"
		}

	case key.Matches(msg, editorKeys.Search):
		e.mode = modeSearch
		e.input.Prompt = "/"
		e.input.SetValue("")
		return e.input.Focus()

	case key.Matches(msg, editorKeys.Next):
		e.nextMatch()
	}
	return nil
}

// enter opens a nested table on the selected cell if it holds an object or
// array, and otherwise starts editing the cell.
func (e *editor) enter() tea.Cmd {
	c, ok := e.cursor()
	if !ok {
		return nil
	}
	f := e.top()
	m := e.model(f)
	v, present := m.Cell(c.Row, c.Key)
	if present && value.IsContainer(v) {
		var n *jtable.Nested
		var err error
		if f.nested == nil {
			n, err = e.d.Session().OpenNested(c.Row, c.Key)
		} else {
			n, err = f.nested.Open(c.Row, c.Key)
		}
		if err != nil {
			e.status = err.Error()
			return nil
		}
		e.stack = append(e.stack, &frame{
			title:  fmt.Sprintf("%s[%d].%s", f.title, c.Row, c.Key),
			nested: n,
			pRow:   c.Row,
			pKey:   c.Key,
		})
		e.matches = nil
		return nil
	}
	if !m.Editable(c.Row, c.Key) {
		e.status = "cell is not editable"
		return nil
	}
	e.mode = modeEdit
	e.input.Prompt = c.Key + ": "
	e.input.SetValue(jtable.Encode(v))
	e.input.CursorEnd()
	return e.input.Focus()
}

// updateInput handles a key while the input line is active.
func (e *editor) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		e.mode = modeNormal
		e.input.Blur()
		return nil
	case tea.KeyEnter:
		mode := e.mode
		e.mode = modeNormal
		e.input.Blur()
		if mode == modeSearch {
			e.search(e.input.Value())
		} else {
			e.setCell(e.input.Value())
		}
		return nil
	}
	var cmd tea.Cmd
	e.input, cmd = e.input.Update(msg)
	return cmd
}

// setCell stores text in the selected cell of the top frame.
func (e *editor) setCell(text string) {
	c, ok := e.cursor()
	if !ok {
		return
	}
	f := e.top()
	if f.nested == nil {
		e.d.Post(e.ctx, host.UpdateCell{Row: c.Row, Key: c.Key, Text: text})
		return
	}
	if err := e.commitNested(f, jtable.Edit{Row: c.Row, Key: c.Key, Text: text}); err != nil {
		e.status = err.Error()
		return
	}
	e.status = fmt.Sprintf("set row %d %q (esc to write back)", c.Row, c.Key)
}

// commitNested applies edit to the nested value of f.
func (e *editor) commitNested(f *frame, edit jtable.Edit) error {
	v, err := f.nested.Commit(edit)
	if err != nil {
		return err
	}
	n, err := jtable.OpenNested(v)
	if err != nil {
		return err
	}
	f.nested, f.dirty = n, true
	return nil
}

// closeNested pops the top frame, writing its value back into the parent
// cell if it was changed.
func (e *editor) closeNested() {
	if len(e.stack) == 1 {
		return
	}
	f := e.top()
	e.stack = e.stack[:len(e.stack)-1]
	e.matches = nil
	if !f.dirty {
		return
	}
	parent := e.top()
	v := f.nested.Value()
	if parent.nested == nil {
		e.d.Post(e.ctx, host.UpdateCell{Row: f.pRow, Key: f.pKey, Text: jtable.Encode(v)})
		return
	}
	if err := e.commitNested(parent, jtable.Edit{Row: f.pRow, Key: f.pKey, Value: v}); err != nil {
		e.status = err.Error()
	}
}

// search finds the cells of the top frame containing term and selects the
// first of them.
func (e *editor) search(term string) {
	e.matches = e.model(e.top()).Search(term)
	e.match = -1
	if len(e.matches) == 0 {
		e.status = fmt.Sprintf("no match for %q", term)
		return
	}
	e.nextMatch()
}

func (e *editor) nextMatch() {
	if len(e.matches) == 0 {
		return
	}
	e.match = (e.match + 1) % len(e.matches)
	c := e.matches[e.match]
	f := e.top()
	f.row = c.Row
	for i, k := range keys(e.model(f)) {
		if k == c.Key {
			f.col = i
			break
		}
	}
	e.status = fmt.Sprintf("match %d of %d", e.match+1, len(e.matches))
}

// visibleRows reports how many table rows fit on the screen.
func (e *editor) visibleRows() int {
	// title, header, separator, and status lines
	return max(e.height-4, 1)
}

// clamp keeps the cursor of the top frame within the table, and scrolls so
// that the cursor row is visible.
func (e *editor) clamp() {
	f := e.top()
	m := e.model(f)
	f.row = max(min(f.row, m.Len()-1), 0)
	f.col = max(min(f.col, len(keys(m))-1), 0)
	if n := e.visibleRows(); f.row >= f.top+n {
		f.top = f.row - n + 1
	}
	f.top = max(min(f.top, f.row), 0)
}

func (e *editor) View() string {
	f := e.top()
	m := e.model(f)
	var sb strings.Builder

	title := f.title
	if !e.d.Session().Writable() {
		title += " (read only)"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteByte('\n')

	g := layout(m, settings.PreviewWidth, settings.MaxColumnWidth)
	if g.empty() {
		sb.WriteString(noData + "\n")
	} else {
		cur, _ := e.cursor()
		hits := make(map[jtable.Coord]bool)
		for _, c := range e.matches {
			hits[c] = true
		}
		style := func(row int, key, text string) string {
			c := jtable.Coord{Row: row, Key: key}
			switch {
			case c == cur:
				return cursorStyle.Render(text)
			case hits[c]:
				return hitStyle.Render(text)
			}
			return text
		}
		if err := g.writeRows(&sb, f.top, f.top+e.visibleRows(), style); err != nil {
			e.log.Error(err, "Render failed")
		}
	}

	switch e.mode {
	case modeEdit, modeSearch:
		sb.WriteString(e.input.View())
	default:
		sb.WriteString(statusStyle.Render(e.status))
	}
	return sb.String()
}
