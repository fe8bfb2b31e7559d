package index

import "srctree/internal/outline"

// BuildSymbols flattens res into symbols for relPath, in node order.
func BuildSymbols(relPath string, res *outline.Result) []Symbol {
	if res == nil || len(res.Nodes) == 0 {
		return nil
	}
	pos := make(map[int]int, len(res.Nodes))
	for i, n := range res.Nodes {
		pos[n.ID] = i
	}
	ends := make([]int, len(res.Nodes))
	for i, n := range res.Nodes {
		ends[i] = n.Line
	}
	for line, id := range res.LineToNode {
		if i, ok := pos[id]; ok && line+1 > ends[i] {
			ends[i] = line + 1
		}
	}
	// Parents precede their children, so one reverse pass widens every
	// ancestor to cover its subtree.
	for i := len(res.Nodes) - 1; i >= 0; i-- {
		if j, ok := pos[res.Nodes[i].ParentID]; ok && ends[i] > ends[j] {
			ends[j] = ends[i]
		}
	}
	out := make([]Symbol, 0, len(res.Nodes))
	for i, n := range res.Nodes {
		s := Symbol{
			Path:  relPath,
			Label: n.Text,
			Kind:  n.Kind,
			Start: n.Line,
			End:   ends[i],
		}
		for p := n.ParentID; p != 0; {
			j, ok := pos[p]
			if !ok {
				break
			}
			if s.Depth == 0 {
				s.Parent = res.Nodes[j].Text
			}
			s.Depth++
			p = res.Nodes[j].ParentID
		}
		out = append(out, s)
	}
	return out
}

// exports returns the labels of the top-level nodes.
func exports(res *outline.Result) []string {
	var out []string
	for _, n := range res.Nodes {
		if n.ParentID == 0 {
			out = append(out, n.Text)
		}
	}
	return out
}
