package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"srctree/internal/outline"
)

func TestHashIsStableHex(t *testing.T) {
	h := Hash([]byte("function f() {}\n"))
	assert.Len(t, h, 16)
	assert.True(t, isHex(h))
	assert.Equal(t, h, Hash([]byte("function f() {}\n")))
	assert.NotEqual(t, h, Hash([]byte("function g() {}\n")))
	assert.Len(t, PathKey("/src/project"), 12)
}

func TestDirDefaultsRoot(t *testing.T) {
	assert.Equal(t, filepath.Join(DefaultRoot, PathKey("/a")), Dir("", "/a"))
	assert.Equal(t, filepath.Join("x", PathKey("/a")), Dir("x", "/a"))
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := Load(dir)
	require.NoError(t, err)
	assert.Nil(t, s)

	want := &Snapshot{
		Root:          "/src",
		Created:       "2024-01-01T00:00:00Z",
		FormatVersion: FormatVersion,
		Files:         []SnapFile{{Path: "a.js", Hash: "00000000000000ab", Lines: 3, Language: outline.JavaScript, Nodes: 2}},
	}
	require.NoError(t, Save(dir, want))
	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	require.NoError(t, Clear(dir))
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestOutlineBlobs(t *testing.T) {
	dir := t.TempDir()
	res := outline.Parse("function f() {\n}\n", outline.JavaScript, outline.Options{})
	h := Hash([]byte("function f() {\n}\n"))

	_, ok, err := LoadOutline(dir, h)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, HasOutline(dir, h))

	require.NoError(t, SaveOutline(dir, h, res))
	assert.True(t, HasOutline(dir, h))
	got, ok, err := LoadOutline(dir, h)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, res, got)

	assert.ErrorIs(t, SaveOutline(dir, "XYZ", res), ErrInvalidHash)
	_, _, err = LoadOutline(dir, "../../etc")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestBuildDelta(t *testing.T) {
	prev := &Snapshot{Files: []SnapFile{
		{Path: "a.js", Hash: "01", Nodes: 1},
		{Path: "b.js", Hash: "02"},
		{Path: "old.py", Hash: "03"},
		{Path: "gone.rb", Hash: "04"},
	}}
	curr := &Snapshot{Files: []SnapFile{
		{Path: "a.js", Hash: "11", Nodes: 4},
		{Path: "b.js", Hash: "02"},
		{Path: "new.py", Hash: "03"},
		{Path: "fresh.lua", Hash: "05"},
	}}
	d := BuildDelta(prev, curr)
	assert.Equal(t, []Change{{Path: "a.js", HashBefore: "01", HashAfter: "11", NodesBefore: 1, NodesAfter: 4}}, d.Changed)
	assert.Equal(t, []Rename{{From: "old.py", To: "new.py", Hash: "03"}}, d.Renamed)
	require.Len(t, d.Removed, 1)
	assert.Equal(t, "gone.rb", d.Removed[0].Path)
	require.Len(t, d.Added, 1)
	assert.Equal(t, "fresh.lua", d.Added[0].Path)
	assert.False(t, d.Empty())
}

func TestBuildDeltaTrivial(t *testing.T) {
	assert.True(t, BuildDelta(nil, nil).Empty())
	s := &Snapshot{Files: []SnapFile{{Path: "b"}, {Path: "a"}}}
	d := BuildDelta(nil, s)
	require.Len(t, d.Added, 2)
	assert.Equal(t, "a", d.Added[0].Path)
	d = BuildDelta(s, nil)
	require.Len(t, d.Removed, 2)
	assert.Equal(t, "a", d.Removed[0].Path)
	assert.True(t, BuildDelta(s, s).Empty())
}
