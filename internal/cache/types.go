// Package cache defines the snapshot and delta types used by incremental
// outline indexing.
package cache

import "srctree/internal/outline"

// SnapFile is one file entry in a snapshot. Path is root-relative with
// forward slashes, Hash is the xxhash of the content as 16 hex chars.
type SnapFile struct {
	Path     string           `json:"path"`
	Hash     string           `json:"hash"`
	Lines    int              `json:"lines"`
	Language outline.Language `json:"language"`
	Nodes    int              `json:"nodes"`
}

// Snapshot captures the outlined state of a tree at one moment.
// Created is an RFC 3339 timestamp (UTC).
type Snapshot struct {
	Root          string     `json:"root"`
	Created       string     `json:"created"`
	FormatVersion string     `json:"formatVersion,omitempty"`
	Files         []SnapFile `json:"files"`
}

// Rename pairs two paths carrying identical content.
type Rename struct {
	From string `json:"from"`
	To   string `json:"to"`
	Hash string `json:"hash"`
}

// Change is a path whose content hash differs between snapshots.
type Change struct {
	Path        string `json:"path"`
	HashBefore  string `json:"hashBefore"`
	HashAfter   string `json:"hashAfter"`
	NodesBefore int    `json:"nodesBefore"`
	NodesAfter  int    `json:"nodesAfter"`
}

// Delta is the change set from a previous snapshot to the current one:
//
//   - Added: paths present now and absent before
//   - Removed: paths present before and absent now
//   - Changed: same path, different hash
//   - Renamed: one-to-one moves of identical content
type Delta struct {
	Added   []SnapFile `json:"added"`
	Removed []SnapFile `json:"removed"`
	Renamed []Rename   `json:"renamed"`
	Changed []Change   `json:"changed"`
}

// Empty reports whether the delta carries no changes.
func (d Delta) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Renamed) == 0 && len(d.Changed) == 0
}
