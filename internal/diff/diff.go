// Package diff produces unified diffs between two outlines. Outlines are
// flattened to one line per node ("<indent><label> [kind]"), without line
// numbers, so only structural changes show up. Diffing uses
// github.com/pmezard/go-difflib/difflib.
package diff

import (
	"strconv"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"

	"srctree/internal/outline"
)

// Options controls patch generation.
type Options struct {
	// Context is the number of context lines per hunk, 3 when <= 0.
	Context int
	// Lines appends ":<line>" to every node so moves show up too.
	Lines bool
}

// Flatten renders res as diffable lines in node order, each ending in '\n'.
func Flatten(res *outline.Result, opt Options) []string {
	if res == nil {
		return nil
	}
	depth := make(map[int]int, len(res.Nodes))
	out := make([]string, 0, len(res.Nodes))
	for _, n := range res.Nodes {
		d := 0
		if n.ParentID != 0 {
			d = depth[n.ParentID] + 1
		}
		depth[n.ID] = d
		var sb strings.Builder
		sb.WriteString(strings.Repeat("  ", d))
		sb.WriteString(n.Text)
		sb.WriteString(" [")
		sb.WriteString(n.Kind.String())
		sb.WriteString("]")
		if opt.Lines {
			sb.WriteString(":")
			sb.WriteString(strconv.Itoa(n.Line))
		}
		sb.WriteByte('\n')
		out = append(out, sb.String())
	}
	return out
}

// Outlines returns the unified diff from a to b, or "" when they are
// structurally equal.
func Outlines(aName, bName string, a, b *outline.Result, opt Options) (string, error) {
	ctx := opt.Context
	if ctx <= 0 {
		ctx = 3
	}
	u := difflib.UnifiedDiff{
		A:        Flatten(a, opt),
		B:        Flatten(b, opt),
		FromFile: aName,
		ToFile:   bName,
		Context:  ctx,
	}
	return difflib.GetUnifiedDiffString(u)
}

// Changed lists the labels present on one side only, as "-label" and
// "+label", in the order they appear.
func Changed(a, b *outline.Result) []string {
	fa, fb := Flatten(a, Options{}), Flatten(b, Options{})
	var out []string
	for _, op := range difflib.NewMatcher(fa, fb).GetOpCodes() {
		if op.Tag == 'e' {
			continue
		}
		for _, s := range fa[op.I1:op.I2] {
			out = append(out, "-"+strings.TrimSpace(s))
		}
		for _, s := range fb[op.J1:op.J2] {
			out = append(out, "+"+strings.TrimSpace(s))
		}
	}
	return out
}
