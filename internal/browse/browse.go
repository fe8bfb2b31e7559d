// Package browse is an interactive outline browser built on bubbletea.
//
// Keys: up/down (k/j) move, space or tab toggles, right (l) expands, left (h)
// collapses or moves to the parent, e/c expand or collapse everything,
// s toggles sorting, / edits the label filter, enter selects and quits,
// q or esc quits.
package browse

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"srctree/internal/outline"
	"srctree/internal/treeview"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	cursorStyle = lipgloss.NewStyle().Background(lipgloss.Color("235"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Model is the bubbletea model of the browser.
type Model struct {
	title     string
	view      *treeview.View
	theme     treeview.Theme
	sorted    bool
	cursor    int
	offset    int
	height    int
	search    textinput.Model
	searching bool
	selected  *outline.Node
}

// New returns a browser over v. The cursor starts on the row owning line
// when line > 0 (the locate setting), otherwise on the first row.
func New(title string, v *treeview.View, theme treeview.Theme, sorted bool, line int) Model {
	in := textinput.New()
	in.Prompt = "/"
	in.Placeholder = "filter"
	m := Model{title: title, view: v, theme: theme, sorted: sorted, height: 20, search: in}
	if line > 0 {
		if i := v.Reveal(line); i >= 0 {
			m.cursor = i
		}
	}
	m.scroll()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Selected returns the node chosen with enter.
func (m Model) Selected() (outline.Node, bool) {
	if m.selected == nil {
		return outline.Node{}, false
	}
	return *m.selected, true
}

// Cursor returns the index of the highlighted row.
func (m Model) Cursor() int { return m.cursor }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-3, 1)
		m.scroll()
		return m, nil
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKey(msg)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.view.Filter("")
		m.clamp()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.view.Filter(m.search.Value())
	if m.search.Value() != "" {
		m.view.ExpandAll()
	}
	m.clamp()
	return m, cmd
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "enter":
		if r, ok := m.current(); ok {
			n := r.Node
			m.selected = &n
		}
		return m, tea.Quit
	case "up", "k":
		m.cursor--
	case "down", "j":
		m.cursor++
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = m.view.Len() - 1
	case " ", "space", "tab":
		m.view.Toggle(m.cursor)
	case "right", "l":
		if r, ok := m.current(); ok && r.HasChildren && !r.Open {
			m.view.Toggle(m.cursor)
		}
	case "left", "h":
		m.collapseOrParent()
	case "e":
		m.view.ExpandAll()
	case "c":
		m.view.CollapseAll()
		m.cursor = 0
	case "s":
		m.sorted = !m.sorted
		m.view.SetSort(m.sorted)
		m.cursor = 0
	case "/":
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink
	}
	m.clamp()
	return m, nil
}

func (m *Model) collapseOrParent() {
	r, ok := m.current()
	if !ok {
		return
	}
	if r.Open {
		m.view.Toggle(m.cursor)
		return
	}
	for i := m.cursor - 1; i >= 0; i-- {
		if m.view.Rows()[i].Level < r.Level {
			m.cursor = i
			return
		}
	}
}

func (m Model) current() (treeview.Row, bool) {
	rows := m.view.Rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return treeview.Row{}, false
	}
	return rows[m.cursor], true
}

func (m *Model) clamp() {
	if m.cursor >= m.view.Len() {
		m.cursor = m.view.Len() - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.scroll()
}

func (m *Model) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteByte('\n')
	rows := m.view.Rows()
	if len(rows) == 0 {
		b.WriteString(helpStyle.Render("(no outline)"))
		b.WriteByte('\n')
	}
	end := min(m.offset+m.height, len(rows))
	for i := m.offset; i < end; i++ {
		line := m.theme.FormatRow(rows[i])
		if i == m.cursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteByte('\n')
	}
	b.WriteString(helpStyle.Render(fmt.Sprintf("%d/%d  space toggle · e/c expand/collapse · s sort · / filter · enter jump · q quit", min(m.cursor+1, len(rows)), len(rows))))
	return b.String()
}

// Run starts the browser on the terminal and returns the selected node.
func Run(ctx context.Context, m Model) (outline.Node, bool, error) {
	final, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if err != nil {
		return outline.Node{}, false, fmt.Errorf("browse: %w", err)
	}
	n, ok := final.(Model).Selected()
	return n, ok, nil
}
