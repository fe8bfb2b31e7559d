// Package outline turns the text of a source file into a flat, parent-linked
// list of structural nodes (classes, functions, methods, tags, style rules)
// together with a line→node ownership map.
//
// Parsing is heuristic and line oriented: a per-language line parser looks at
// one line at a time, keeps whatever nesting state it needs, and reports what
// the line opens and closes. The builder in this package turns those reports
// into nodes. There is no grammar; malformed input simply yields a less
// accurate outline and never an error.
//
// Conventions:
//   - Node ids start at 1 and grow in creation order; 0 is the virtual root.
//   - Node lines are 1-based; the line→node map is indexed by 0-based line.
//   - Each Parse call builds fresh parser state, so results are deterministic.
package outline

import (
	"fmt"
	"strings"
)

// Kind classifies a node. The declaration order is the primary sort key used
// by Less, so it must not be reordered.
type Kind int

const (
	Unknown Kind = iota
	Class
	Function
	PrivateMethod
	ProtectedMethod
	PublicMethod
	PrototypeMethod
	PrototypeClass
	PrivateStaticMethod
	ProtectedStaticMethod
	PublicStaticMethod
	FrameworkExtension
	Tag
	StyleRule
	AtRule
)

var kindNames = [...]string{
	Unknown:               "unknown",
	Class:                 "class",
	Function:              "function",
	PrivateMethod:         "private",
	ProtectedMethod:       "protected",
	PublicMethod:          "public",
	PrototypeMethod:       "prototype-method",
	PrototypeClass:        "prototype-class",
	PrivateStaticMethod:   "private-static",
	ProtectedStaticMethod: "protected-static",
	PublicStaticMethod:    "public-static",
	FrameworkExtension:    "framework-extension",
	Tag:                   "tag",
	StyleRule:             "style-rule",
	AtRule:                "at-rule",
}

// String returns the stable lowercase name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText encodes the kind by name so JSON snapshots stay readable.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (k *Kind) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	for i, n := range kindNames {
		if n == s {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("outline: unknown kind %q", s)
}

// IsStatic reports whether the kind is one of the static method kinds.
func (k Kind) IsStatic() bool {
	return k == PrivateStaticMethod || k == ProtectedStaticMethod || k == PublicStaticMethod
}

// Node is one structural element of a file.
type Node struct {
	ID       int    `json:"id"`
	ParentID int    `json:"parent"`
	Text     string `json:"text"`
	Line     int    `json:"line"`
	Kind     Kind   `json:"kind"`
	Tooltip  string `json:"tooltip,omitempty"`
}

// Result is the outcome of parsing one buffer.
type Result struct {
	Language Language `json:"language"`
	Nodes    []Node   `json:"nodes"`
	// LineToNode[i] is the id of the node owning 0-based line i, 0 for the root.
	LineToNode []int `json:"lineToNode"`
}

// Options tunes parsing. The zero value is usable.
type Options struct {
	// IndentWidth is the number of columns per indentation level for the
	// indentation-sensitive languages (Python, CoffeeScript). Default 4.
	IndentWidth int
	// TabWidth expands tab characters found after leading spaces. Default 8.
	TabWidth int
	// HTMLFilter keeps only HTML nodes carrying an id, class or attribute
	// selector (or having such a descendant).
	HTMLFilter bool
}

const (
	defaultIndentWidth = 4
	defaultTabWidth    = 8
)

func (o Options) normalized() Options {
	if o.IndentWidth <= 0 {
		o.IndentWidth = defaultIndentWidth
	}
	if o.TabWidth <= 0 {
		o.TabWidth = defaultTabWidth
	}
	return o
}
