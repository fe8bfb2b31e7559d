package cache

import (
	"sort"
)

// BuildDelta computes the change set between two snapshots. Either side may
// be nil. Renames are exact: a removed and an added path with the same hash
// pair up, lowest paths first.
func BuildDelta(prev, curr *Snapshot) Delta {
	if d, ok := trivialDelta(prev, curr); ok {
		return d
	}
	prevMap := indexByPath(prev.Files)
	currMap := indexByPath(curr.Files)

	var d Delta
	for path, pf := range prevMap {
		cf, ok := currMap[path]
		if !ok {
			d.Removed = append(d.Removed, pf)
			continue
		}
		if pf.Hash != cf.Hash {
			d.Changed = append(d.Changed, Change{
				Path:        path,
				HashBefore:  pf.Hash,
				HashAfter:   cf.Hash,
				NodesBefore: pf.Nodes,
				NodesAfter:  cf.Nodes,
			})
		}
	}
	for path, cf := range currMap {
		if _, ok := prevMap[path]; !ok {
			d.Added = append(d.Added, cf)
		}
	}
	sortFiles(d.Removed)
	sortFiles(d.Added)
	d.Renamed, d.Removed, d.Added = matchExactRenames(d.Removed, d.Added)
	sort.Slice(d.Changed, func(i, j int) bool { return d.Changed[i].Path < d.Changed[j].Path })
	return d
}

func trivialDelta(prev, curr *Snapshot) (Delta, bool) {
	var d Delta
	switch {
	case curr == nil || len(curr.Files) == 0:
		if prev != nil {
			d.Removed = append(d.Removed, prev.Files...)
			sortFiles(d.Removed)
		}
		return d, true
	case prev == nil || len(prev.Files) == 0:
		d.Added = append(d.Added, curr.Files...)
		sortFiles(d.Added)
		return d, true
	}
	return d, false
}

func indexByPath(files []SnapFile) map[string]SnapFile {
	m := make(map[string]SnapFile, len(files))
	for _, f := range files {
		m[f.Path] = f
	}
	return m
}

// matchExactRenames expects both inputs sorted by path.
func matchExactRenames(removed, added []SnapFile) ([]Rename, []SnapFile, []SnapFile) {
	if len(removed) == 0 || len(added) == 0 {
		return nil, removed, added
	}
	byHash := make(map[string][]int, len(removed))
	for i, rf := range removed {
		byHash[rf.Hash] = append(byHash[rf.Hash], i)
	}
	usedRemoved := make(map[int]bool)
	var renamed []Rename
	var keepAdded []SnapFile
	for _, af := range added {
		cands := byHash[af.Hash]
		if len(cands) == 0 {
			keepAdded = append(keepAdded, af)
			continue
		}
		byHash[af.Hash] = cands[1:]
		usedRemoved[cands[0]] = true
		renamed = append(renamed, Rename{From: removed[cands[0]].Path, To: af.Path, Hash: af.Hash})
	}
	var keepRemoved []SnapFile
	for i, rf := range removed {
		if !usedRemoved[i] {
			keepRemoved = append(keepRemoved, rf)
		}
	}
	return renamed, keepRemoved, keepAdded
}

func sortFiles(files []SnapFile) {
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
}
