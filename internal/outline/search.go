package outline

import (
	"regexp"
	"sort"
	"strings"
)

// SearchText reports whether any of nodes has a label containing query,
// compared case-insensitively.
func SearchText(query string, nodes []Node) bool {
	q := strings.ToLower(query)
	for _, n := range nodes {
		if strings.Contains(strings.ToLower(n.Text), q) {
			return true
		}
	}
	return false
}

// SearchPattern reports whether any of nodes has a label matching re.
func SearchPattern(re *regexp.Regexp, nodes []Node) bool {
	for _, n := range nodes {
		if re.MatchString(n.Text) {
			return true
		}
	}
	return false
}

// SearchText reports whether node id or one of its descendants has a label
// containing query. Id 0 searches the whole outline.
func (r *Result) SearchText(query string, id int) bool {
	return SearchText(query, r.Subtree(id))
}

// SearchPattern is SearchText with a regexp.
func (r *Result) SearchPattern(re *regexp.Regexp, id int) bool {
	return SearchPattern(re, r.Subtree(id))
}

// Subtree returns node id followed by its descendants in creation order.
// Id 0 returns every node.
func (r *Result) Subtree(id int) []Node {
	if id == 0 {
		return r.Nodes
	}
	var out []Node
	in := map[int]bool{id: true}
	for _, n := range r.Nodes {
		switch {
		case n.ID == id:
			out = append(out, n)
		case in[n.ParentID]:
			in[n.ID] = true
			out = append(out, n)
		}
	}
	return out
}

// NodeByID returns the node with the given id.
func (r *Result) NodeByID(id int) (Node, bool) {
	// Ids are dense unless the HTML filter dropped nodes.
	if i := id - 1; i >= 0 && i < len(r.Nodes) && r.Nodes[i].ID == id {
		return r.Nodes[i], true
	}
	for _, n := range r.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Children returns the direct children of id in creation order.
func (r *Result) Children(id int) []Node {
	var out []Node
	for _, n := range r.Nodes {
		if n.ParentID == id {
			out = append(out, n)
		}
	}
	return out
}

// HasChildren reports whether id is the parent of any node.
func (r *Result) HasChildren(id int) bool {
	for _, n := range r.Nodes {
		if n.ParentID == id {
			return true
		}
	}
	return false
}

// Locate returns the id of the node owning the 1-based line, or 0 when the
// line is outside the buffer or belongs to the root.
func (r *Result) Locate(line int) int {
	if i := line - 1; i >= 0 && i < len(r.LineToNode) {
		return r.LineToNode[i]
	}
	return 0
}

// Less orders nodes by kind, then by label ignoring case.
func Less(a, b Node) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return strings.ToLower(a.Text) < strings.ToLower(b.Text)
}

// SortNodes sorts nodes in place with Less, keeping the relative order of
// equal nodes.
func SortNodes(nodes []Node) {
	sort.SliceStable(nodes, func(i, j int) bool { return Less(nodes[i], nodes[j]) })
}
