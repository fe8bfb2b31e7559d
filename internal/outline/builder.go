package outline

import (
	"regexp"
	"strings"

	"srctree/internal/textutil"
)

// selectorMark identifies HTML nodes worth keeping under the HTML filter.
var selectorMark = regexp.MustCompile(`[#.\[]`)

// Parse outlines text written in lang. Line endings may be \n, \r\n or \r.
// An unsupported language yields an empty outline whose line map is still
// one entry per line.
func Parse(text string, lang Language, opt Options) *Result {
	return ParseLines(textutil.SplitLines(text), lang, opt)
}

// ParseLines outlines text that the caller already split into lines.
func ParseLines(lines []string, lang Language, opt Options) *Result {
	opt = opt.normalized()
	b := newBuilder(len(lines))
	if p := newLineParser(lang, opt); p != nil {
		for i, line := range lines {
			b.apply(p.ParseLine(line, i))
		}
	}
	if lang == JavaScript || lang == NodeJS {
		reclassifyFunctions(b.nodes)
	}
	if opt.HTMLFilter && lang.IsHTML() {
		b.filter(func(n Node) bool {
			return selectorMark.MatchString(strings.TrimSuffix(n.Text, openTagSuffix))
		})
	}
	return &Result{Language: lang, Nodes: b.nodes, LineToNode: b.lineMap()}
}

// builder owns the node list and the line map for one parse pass.
type builder struct {
	nodes   []Node
	parents []int
	// owner[i] is the id first recorded on 0-based line i, or -1.
	owner   []int
	pending int
}

func newBuilder(lines int) *builder {
	owner := make([]int, lines)
	for i := range owner {
		owner[i] = -1
	}
	return &builder{owner: owner}
}

func (b *builder) parent() int {
	if n := len(b.parents); n > 0 {
		return b.parents[n-1]
	}
	return 0
}

// end closes n nesting levels. The root is never closed.
func (b *builder) end(n int) {
	if n > len(b.parents) {
		n = len(b.parents)
	}
	b.parents = b.parents[:len(b.parents)-n]
}

func (b *builder) add(e Emit) int {
	id := len(b.nodes) + 1
	b.nodes = append(b.nodes, Node{
		ID:       id,
		ParentID: b.parent(),
		Text:     e.Text,
		Line:     e.Line,
		Kind:     e.Kind,
		Tooltip:  e.Tooltip,
	})
	if i := e.Line - 1; i >= 0 && i < len(b.owner) && b.owner[i] < 0 {
		b.owner[i] = id
	}
	if e.Open {
		b.parents = append(b.parents, id)
	}
	return id
}

// retract drops the pending provisional node, which is always the last one.
func (b *builder) retract() {
	n := len(b.nodes)
	if b.pending == 0 || n == 0 || b.nodes[n-1].ID != b.pending {
		b.pending = 0
		return
	}
	b.clearOwner(b.nodes[n-1])
	b.nodes = b.nodes[:n-1]
	if p := len(b.parents); p > 0 && b.parents[p-1] == b.pending {
		b.parents = b.parents[:p-1]
	}
	b.pending = 0
}

// clearOwner releases the only line a node can own: its own.
func (b *builder) clearOwner(n Node) {
	if i := n.Line - 1; i >= 0 && i < len(b.owner) && b.owner[i] == n.ID {
		b.owner[i] = -1
	}
}

func (b *builder) apply(r LineResult) {
	if r.Blank {
		return
	}
	if r.Retract {
		b.retract()
	}
	b.pending = 0
	if r.ResetNesting {
		b.parents = b.parents[:0]
	}
	b.end(r.Close)
	for _, e := range r.Emits {
		if e.Text == "" && !e.Open {
			b.end(1)
			continue
		}
		id := b.add(e)
		if e.Provisional {
			b.pending = id
		}
	}
}

// filter removes every node that neither satisfies keep nor has a
// descendant that does. Ids are left untouched.
func (b *builder) filter(keep func(Node) bool) {
	kept := make(map[int]bool, len(b.nodes))
	// Children always follow their parent, so a reverse pass sees every
	// descendant first.
	for i := len(b.nodes) - 1; i >= 0; i-- {
		n := b.nodes[i]
		if keep(n) || kept[n.ID] {
			kept[n.ID] = true
			kept[n.ParentID] = true
		}
	}
	out := b.nodes[:0]
	for _, n := range b.nodes {
		if kept[n.ID] {
			out = append(out, n)
			continue
		}
		b.clearOwner(n)
	}
	b.nodes = out
}

// lineMap forward-fills the owner table: a line without a node of its own
// belongs to the closest node recorded above it, or to the root.
func (b *builder) lineMap() []int {
	m := make([]int, len(b.owner))
	last := 0
	for i, o := range b.owner {
		if o >= 0 {
			last = o
		}
		m[i] = last
	}
	return m
}

// reclassifyFunctions presents JavaScript functions holding other
// declarations as classes and nested leaf functions as private members.
func reclassifyFunctions(nodes []Node) {
	hasChildren := make(map[int]bool, len(nodes))
	for _, n := range nodes {
		hasChildren[n.ParentID] = true
	}
	for i := range nodes {
		n := &nodes[i]
		if n.Kind != Function {
			continue
		}
		switch {
		case hasChildren[n.ID]:
			n.Kind = Class
		case n.ParentID != 0:
			n.Kind = PrivateMethod
		}
	}
}
