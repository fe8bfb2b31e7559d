// Package index outlines a whole tree: every collected file is parsed with
// fresh parser state, unchanged content is served from the outline cache, and
// the results are assembled into a deterministic manifest, a flat symbol list
// and jump pointers.
package index

import "srctree/internal/outline"

// ManFile describes one outlined file.
type ManFile struct {
	Path     string           `json:"path"` // root-relative path with '/'
	Language outline.Language `json:"language"`
	Hash     string           `json:"hash"`
	Lines    int              `json:"lines"`
	Nodes    int              `json:"nodes"`
	// Exports lists the top-level node labels in document order.
	Exports []string `json:"exports,omitempty"`
}

// Manifest is the top-level index of a tree.
type Manifest struct {
	Root    string    `json:"root"`
	Files   []ManFile `json:"files"`   // sorted by path
	IndexID string    `json:"indexId"` // xxhash over sorted "path:hash\n"
}

// Symbol is one outline node with its line range. Start is the node's line,
// End the last line owned by the node or one of its descendants (1-based,
// inclusive). Parent is the parent's label, empty at top level.
type Symbol struct {
	Path   string       `json:"path"`
	Label  string       `json:"label"`
	Kind   outline.Kind `json:"kind"`
	Parent string       `json:"parent,omitempty"`
	Depth  int          `json:"depth"`
	Start  int          `json:"start"`
	End    int          `json:"end"`
}

// Symbols wraps the flat list for JSON emission.
type Symbols struct {
	Version int      `json:"version"`
	Symbols []Symbol `json:"symbols"`
}

// Pointer is a stable jump target for one symbol.
type Pointer struct {
	ID    string `json:"id"` // <path-with-dashes>#<slug>[-N]
	Path  string `json:"path"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}
