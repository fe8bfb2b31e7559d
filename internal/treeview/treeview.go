// Package treeview adapts an outline to a collapsible list of rows: root
// rows start closed, toggling splices children in or removes every deeper
// row, and source lines map back to the nearest visible row.
package treeview

import (
	"strings"

	"srctree/internal/outline"
	"srctree/internal/settings"
)

// Row is one visible line of the tree.
type Row struct {
	Node        outline.Node
	Level       int
	Open        bool
	HasChildren bool
}

// Options selects the presentation.
type Options struct {
	Sort   bool   // order siblings by kind then label (ignored for HTML)
	Expand bool   // expand everything initially
	Query  string // case-insensitive label filter, "" for none
}

// OptionsFrom maps persisted settings onto view options.
func OptionsFrom(v settings.Values) Options {
	return Options{Sort: v.Sort, Expand: v.Expand}
}

// View holds the row state for one outline. It is not safe for concurrent use.
type View struct {
	res      *outline.Result
	opt      Options
	children map[int][]outline.Node
	rows     []Row
	lineRow  []int
}

// New builds the view for res.
func New(res *outline.Result, opt Options) *View {
	if res == nil {
		res = &outline.Result{}
	}
	v := &View{res: res, opt: opt}
	v.rebuild()
	return v
}

// Result returns the outline behind the view.
func (v *View) Result() *outline.Result { return v.res }

// Rows returns the visible rows. The slice must not be modified.
func (v *View) Rows() []Row { return v.rows }

// Len returns the number of visible rows.
func (v *View) Len() int { return len(v.rows) }

// Filter replaces the label filter and rebuilds the rows.
func (v *View) Filter(query string) {
	v.opt.Query = query
	v.rebuild()
}

// SetSort switches sibling sorting and rebuilds the rows.
func (v *View) SetSort(on bool) {
	v.opt.Sort = on
	v.rebuild()
}

func (v *View) rebuild() {
	keep := func(outline.Node) bool { return true }
	if q := strings.TrimSpace(v.opt.Query); q != "" {
		keep = func(n outline.Node) bool { return v.res.SearchText(q, n.ID) }
	}
	v.children = make(map[int][]outline.Node)
	for _, n := range v.res.Nodes {
		if keep(n) {
			v.children[n.ParentID] = append(v.children[n.ParentID], n)
		}
	}
	if v.opt.Sort && !v.res.Language.IsHTML() {
		for _, list := range v.children {
			outline.SortNodes(list)
		}
	}
	v.rows = v.rows[:0]
	for _, n := range v.children[0] {
		v.rows = append(v.rows, v.row(n, 0))
	}
	if v.opt.Expand {
		v.ExpandAll()
	}
	v.lineRow = nil
}

func (v *View) row(n outline.Node, level int) Row {
	return Row{Node: n, Level: level, HasChildren: len(v.children[n.ID]) > 0}
}

// Toggle opens or closes the row at index i. Rows without children and
// out-of-range indexes are ignored.
func (v *View) Toggle(i int) {
	if i < 0 || i >= len(v.rows) || !v.rows[i].HasChildren {
		return
	}
	r := &v.rows[i]
	if r.Open {
		end := i + 1
		for end < len(v.rows) && v.rows[end].Level > r.Level {
			end++
		}
		r.Open = false
		v.rows = append(v.rows[:i+1], v.rows[end:]...)
	} else {
		kids := v.children[r.Node.ID]
		add := make([]Row, 0, len(kids))
		for _, n := range kids {
			add = append(add, v.row(n, r.Level+1))
		}
		r.Open = true
		v.rows = append(v.rows[:i+1], append(add, v.rows[i+1:]...)...)
	}
	v.lineRow = nil
}

// ExpandAll opens every container row, including the ones revealed while
// expanding.
func (v *View) ExpandAll() {
	for i := 0; i < len(v.rows); i++ {
		if v.rows[i].HasChildren && !v.rows[i].Open {
			v.Toggle(i)
		}
	}
}

// CollapseAll closes every row, leaving only the roots.
func (v *View) CollapseAll() {
	kept := v.rows[:0]
	for _, r := range v.rows {
		if r.Level == 0 {
			r.Open = false
			kept = append(kept, r)
		}
	}
	v.rows = kept
	v.lineRow = nil
}

// LineRow maps a 1-based source line to the index of the visible row that
// owns it, or -1 when the line precedes every visible row or is out of range.
// A line owned by a hidden node maps to the nearest visible row above it.
func (v *View) LineRow(line int) int {
	if v.lineRow == nil {
		v.mapRows()
	}
	if line < 1 || line > len(v.lineRow) {
		return -1
	}
	return v.lineRow[line-1]
}

func (v *View) mapRows() {
	owners := v.res.LineToNode
	v.lineRow = make([]int, len(owners))
	for i := range v.lineRow {
		v.lineRow[i] = -1
	}
	for r, row := range v.rows {
		for i, id := range owners {
			if id == row.Node.ID {
				v.lineRow[i] = r
				break
			}
		}
	}
	cur := -1
	for i, r := range v.lineRow {
		if r >= 0 {
			cur = r
		} else {
			v.lineRow[i] = cur
		}
	}
}

// Reveal opens the ancestors of the node owning line so that the node
// itself is visible, then returns its row index (-1 if none).
func (v *View) Reveal(line int) int {
	id := v.res.Locate(line)
	if id == 0 {
		return v.LineRow(line)
	}
	var chain []int
	for cur := id; cur != 0; {
		n, ok := v.res.NodeByID(cur)
		if !ok {
			break
		}
		chain = append(chain, cur)
		cur = n.ParentID
	}
	for k := len(chain) - 1; k >= 1; k-- {
		if i := v.indexOf(chain[k]); i >= 0 && !v.rows[i].Open {
			v.Toggle(i)
		}
	}
	if i := v.indexOf(id); i >= 0 {
		return i
	}
	return v.LineRow(line)
}

func (v *View) indexOf(id int) int {
	for i, r := range v.rows {
		if r.Node.ID == id {
			return i
		}
	}
	return -1
}
