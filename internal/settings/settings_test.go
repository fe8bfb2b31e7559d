package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "settings.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s.Values())
	assert.Equal(t, []string{HTMLFilter, Expand, Locate, Sort}, Names())
}

func TestSetToggleAndPersist(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	s, err := Open(p)
	require.NoError(t, err)

	require.NoError(t, s.Set("sort", true))
	v, err := s.Toggle(Prefix + "locate")
	require.NoError(t, err)
	assert.False(t, v)
	require.NoError(t, s.SetString("htmlfilter", "on"))

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), "extensions.NST.sort: true")
	assert.Contains(t, string(data), "extensions.NST.HTMLfilter: true")

	again, err := Open(p)
	require.NoError(t, err)
	assert.Equal(t, Values{Locate: false, Expand: true, Sort: true, HTMLFilter: true}, again.Values())
	got, err := again.Get("Expand")
	require.NoError(t, err)
	assert.True(t, got)
}

func TestUnknownKeys(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	_, err = s.Get("colour")
	assert.ErrorIs(t, err, ErrUnknownKey)
	assert.ErrorIs(t, s.Set("extensions.NST.bogus", true), ErrUnknownKey)
	_, err = s.Toggle("")
	assert.ErrorIs(t, err, ErrUnknownKey)
	assert.Error(t, s.SetString(Sort, "maybe"))
}

func TestOpenIgnoresForeignKeys(t *testing.T) {
	p := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(p, []byte("extensions.NST.expand: false\nother.key: true\n"), 0o644))
	s, err := Open(p)
	require.NoError(t, err)
	assert.False(t, s.Values().Expand)
	assert.True(t, s.Values().Locate)
}
