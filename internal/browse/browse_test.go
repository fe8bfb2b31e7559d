package browse

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"srctree/internal/outline"
	"srctree/internal/treeview"
)

func sample() *outline.Result {
	return &outline.Result{
		Language: outline.JavaScript,
		Nodes: []outline.Node{
			{ID: 1, Text: "A", Line: 1, Kind: outline.Class},
			{ID: 2, ParentID: 1, Text: "b()", Line: 2, Kind: outline.PublicMethod},
			{ID: 3, Text: "Z", Line: 4, Kind: outline.Class},
		},
		LineToNode: []int{1, 2, 2, 3},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	return m
}

func newModel(line int) (Model, *treeview.View) {
	v := treeview.New(sample(), treeview.Options{})
	return New("app.js", v, treeview.Theme{}, false, line), v
}

func TestNavigateAndToggle(t *testing.T) {
	m, v := newModel(0)
	assert.Equal(t, 2, v.Len())
	m = send(m, "space")
	assert.Equal(t, 3, v.Len())
	m = send(m, "down", "down", "down")
	assert.Equal(t, 2, m.Cursor(), "cursor stays on the last row")
	m = send(m, "up", "left")
	assert.Equal(t, 0, m.Cursor(), "left on a leaf moves to the parent")
	m = send(m, "left")
	assert.Equal(t, 2, v.Len(), "left on an open row collapses it")
}

func TestEnterSelects(t *testing.T) {
	m, _ := newModel(0)
	next, cmd := send(m, "j").Update(key("enter"))
	require.NotNil(t, cmd)
	n, ok := next.(Model).Selected()
	require.True(t, ok)
	assert.Equal(t, "Z", n.Text)
}

func TestStartsAtLocatedLine(t *testing.T) {
	m, v := newModel(3)
	assert.Equal(t, 3, v.Len())
	assert.Equal(t, 1, m.Cursor())
}

func TestFilterKeys(t *testing.T) {
	m, v := newModel(0)
	m = send(m, "/", "b", "(")
	assert.Equal(t, 2, v.Len())
	assert.Contains(t, m.View(), "b()")
	m = send(m, "esc")
	assert.Equal(t, 2, v.Len())
	assert.False(t, m.searching)
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
}

func TestViewAndResize(t *testing.T) {
	m, _ := newModel(0)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 4})
	out := next.(Model).View()
	assert.Contains(t, out, "app.js")
	assert.Contains(t, out, "▸ A :1")
	assert.NotContains(t, out, "Z :4", "only one row fits")

	empty := New("x", treeview.New(&outline.Result{}, treeview.Options{}), treeview.Theme{}, false, 0)
	assert.Contains(t, empty.View(), "(no outline)")
}
