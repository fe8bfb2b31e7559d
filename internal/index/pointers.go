package index

import (
	"strconv"
	"strings"
)

// BuildPointers creates one jump pointer per symbol of a single file.
//
// ID format:
//
//	<relPath-with-slashes-replaced-by-dashes>#<slug>[-N]
//
// The slug is built from the parent chain joined with '.', so
// "src/app.js" / App / start(opts) becomes "src-app.js#App.start-opts".
// Labels normalizing to the same slug get suffixes -2, -3, ... in order.
func BuildPointers(relPath string, syms []Symbol) []Pointer {
	if len(syms) == 0 {
		return nil
	}
	base := strings.ReplaceAll(relPath, "/", "-")
	seen := make(map[string]int, len(syms))
	// chain[d] holds the slug of the last symbol seen at depth d.
	var chain []string
	out := make([]Pointer, 0, len(syms))
	for _, s := range syms {
		slug := slugify(s.Label)
		if s.Depth < len(chain) {
			chain = chain[:s.Depth]
		}
		chain = append(chain, slug)
		id := base + "#" + strings.Join(chain, ".")
		if c := seen[id]; c > 0 {
			seen[id] = c + 1
			id += "-" + strconv.Itoa(c+1)
		} else {
			seen[id] = 1
		}
		end := s.End
		if end < s.Start {
			end = s.Start
		}
		out = append(out, Pointer{ID: id, Path: relPath, Start: s.Start, End: end})
	}
	return out
}

// slugify keeps [A-Za-z0-9_-], maps every other run to a single '-', and
// trims dashes. Case is preserved.
func slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastDash := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '-' {
			b.WriteByte(c)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	res := strings.Trim(b.String(), "-")
	if res == "" {
		return "node"
	}
	return res
}
