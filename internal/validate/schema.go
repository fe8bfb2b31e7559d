// Package validate performs lightweight structural checks on index
// artifacts before they are written. It is not a JSON-Schema validator; it
// aggregates every issue it finds into one error.
package validate

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"srctree/internal/index"
)

var reHex16 = regexp.MustCompile(`^[0-9a-f]{16}$`)

// Manifest checks that:
//
//   - every path is relative, slash-separated and free of ".." segments
//   - paths are unique and sorted
//   - hashes are 16 lowercase hex chars (xxhash)
//   - Lines >= 1 and Nodes >= 0
func Manifest(m index.Manifest) error {
	var errs errlist
	seen := make(map[string]struct{}, len(m.Files))
	for i, f := range m.Files {
		prefix := fmt.Sprintf("files[%d] (%s)", i, f.Path)
		checkPath(&errs, prefix, f.Path)
		if _, dup := seen[f.Path]; dup {
			errs.add("%s: duplicate file path", prefix)
		} else if f.Path != "" {
			seen[f.Path] = struct{}{}
		}
		if !reHex16.MatchString(f.Hash) {
			errs.add("%s: hash must be 16 lowercase hex chars, got %q", prefix, f.Hash)
		}
		if f.Lines < 1 {
			errs.add("%s: lines must be >= 1 (got %d)", prefix, f.Lines)
		}
		if f.Nodes < 0 {
			errs.add("%s: nodes must be >= 0 (got %d)", prefix, f.Nodes)
		}
	}
	if !sort.SliceIsSorted(m.Files, func(i, j int) bool { return m.Files[i].Path < m.Files[j].Path }) {
		errs.add("manifest.files must be sorted by path")
	}
	return errs.err()
}

// Symbols checks labels, paths and ranges against the manifest line counts.
func Symbols(s index.Symbols, m index.Manifest) error {
	var errs errlist
	if s.Version < 1 {
		errs.add("symbols.version must be >= 1 (got %d)", s.Version)
	}
	lines := make(map[string]int, len(m.Files))
	for _, f := range m.Files {
		lines[f.Path] = f.Lines
	}
	for i, sym := range s.Symbols {
		prefix := fmt.Sprintf("symbols[%d] (%s)", i, sym.Label)
		checkPath(&errs, prefix, sym.Path)
		n, known := lines[sym.Path]
		if !known {
			errs.add("%s: path %q is not in the manifest", prefix, sym.Path)
		}
		if sym.Start < 1 {
			errs.add("%s: start must be >= 1 (got %d)", prefix, sym.Start)
		}
		if sym.End < sym.Start {
			errs.add("%s: end must be >= start (start=%d, end=%d)", prefix, sym.Start, sym.End)
		}
		if known && sym.End > n {
			errs.add("%s: end must be <= file lines (%d), got %d", prefix, n, sym.End)
		}
	}
	return errs.err()
}

func checkPath(errs *errlist, prefix, p string) {
	switch {
	case p == "":
		errs.add("%s: path must be non-empty", prefix)
		return
	case filepath.IsAbs(p) || strings.HasPrefix(p, "/"):
		errs.add("%s: path must be relative, got %q", prefix, p)
	}
	if strings.Contains(p, `\`) {
		errs.add("%s: path must use forward slashes", prefix)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			errs.add("%s: path must not contain '..' segments", prefix)
			break
		}
	}
}

// errlist aggregates validation issues into a single error.
type errlist struct {
	msgs []string
}

func (e *errlist) add(format string, args ...any) {
	e.msgs = append(e.msgs, fmt.Sprintf(format, args...))
}

func (e *errlist) err() error {
	if len(e.msgs) == 0 {
		return nil
	}
	return errors.New(strings.Join(e.msgs, "\n"))
}
