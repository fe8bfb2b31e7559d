// Package settings persists the four outline view switches as a YAML map
// keyed "extensions.NST.<name>".
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Prefix namespaces every stored key.
const Prefix = "extensions.NST."

// Setting names.
const (
	Locate     = "locate"
	Expand     = "expand"
	Sort       = "sort"
	HTMLFilter = "HTMLfilter"
)

// ErrUnknownKey is returned for names outside the four settings.
var ErrUnknownKey = errors.New("unknown setting")

var defaults = map[string]bool{
	Locate:     true,
	Expand:     true,
	Sort:       false,
	HTMLFilter: false,
}

// Values is a typed snapshot of the settings.
type Values struct {
	Locate     bool
	Expand     bool
	Sort       bool
	HTMLFilter bool
}

// Defaults returns the built-in values.
func Defaults() Values {
	return Values{Locate: true, Expand: true}
}

// Store is a file-backed settings map. It is not safe for concurrent use.
type Store struct {
	path   string
	values map[string]bool
}

// Names lists the setting names in stable order.
func Names() []string {
	out := make([]string, 0, len(defaults))
	for k := range defaults {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Open loads path. A missing file gives the defaults; unknown keys in the
// file are ignored.
func Open(path string) (*Store, error) {
	s := &Store{path: path, values: make(map[string]bool, len(defaults))}
	for k, v := range defaults {
		s.values[k] = v
	}
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}
	raw := map[string]bool{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	for k, v := range raw {
		if name, err := canonical(k); err == nil {
			s.values[name] = v
		}
	}
	return s, nil
}

// canonical maps "sort", "Sort" or "extensions.NST.sort" to "sort".
func canonical(key string) (string, error) {
	k := strings.TrimPrefix(strings.TrimSpace(key), Prefix)
	for name := range defaults {
		if strings.EqualFold(name, k) {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
}

// Get returns the value of name.
func (s *Store) Get(name string) (bool, error) {
	n, err := canonical(name)
	if err != nil {
		return false, err
	}
	return s.values[n], nil
}

// Set stores v under name and saves.
func (s *Store) Set(name string, v bool) error {
	n, err := canonical(name)
	if err != nil {
		return err
	}
	s.values[n] = v
	return s.Save()
}

// SetString parses v as a boolean ("true", "1", "off", ...) before Set.
func (s *Store) SetString(name, v string) error {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "yes":
		v = "true"
	case "off", "no":
		v = "false"
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("setting %s: %w", name, err)
	}
	return s.Set(name, b)
}

// Toggle flips name, saves, and returns the new value.
func (s *Store) Toggle(name string) (bool, error) {
	n, err := canonical(name)
	if err != nil {
		return false, err
	}
	s.values[n] = !s.values[n]
	return s.values[n], s.Save()
}

// Values returns the current settings.
func (s *Store) Values() Values {
	return Values{
		Locate:     s.values[Locate],
		Expand:     s.values[Expand],
		Sort:       s.values[Sort],
		HTMLFilter: s.values[HTMLFilter],
	}
}

// Save writes every setting with its prefixed key. A Store opened with an
// empty path keeps its values in memory only.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}
	out := make(map[string]bool, len(s.values))
	for k, v := range s.values {
		out[Prefix+k] = v
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
