// Package cache stores outline snapshots and per-content outline blobs on
// disk so that unchanged files are not parsed twice.
//
// Layout:
//   - per-tree cache dir:  <base>/<pathKey>/
//   - snapshot:            <base>/<pathKey>/index.json
//   - outline blobs:       <base>/<pathKey>/blobs/aa/bb/<hash>.json
//
// Every write goes through a temp file in the target directory followed by a
// rename, so readers never observe a partial file.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"

	"srctree/internal/outline"
)

const (
	DefaultRoot   = "tmp/.srctree"
	FormatVersion = "1"

	indexFileName = "index.json"
	blobsDirName  = "blobs"
)

// ErrInvalidHash is returned for blob keys that are not lowercase hex.
var ErrInvalidHash = errors.New("cache: invalid content hash")

// Hash returns the content key used throughout the cache.
func Hash(b []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(b))
}

// PathKey returns a short stable identifier for an absolute tree path.
func PathKey(abs string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(abs))[:12]
}

// Dir resolves the cache directory for srcAbs under base (DefaultRoot if empty).
func Dir(base, srcAbs string) string {
	if base == "" {
		base = DefaultRoot
	}
	return filepath.Join(base, PathKey(srcAbs))
}

// Load reads <dir>/index.json. A missing snapshot yields (nil, nil).
func Load(dir string) (*Snapshot, error) {
	b, err := os.ReadFile(filepath.Join(dir, indexFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

// Save writes the snapshot atomically to <dir>/index.json.
func Save(dir string, s *Snapshot) error {
	return writeJSON(dir, indexFileName, s)
}

// Clear removes the cache directory. Missing directories are fine.
func Clear(dir string) error {
	if dir == "" {
		return nil
	}
	return os.RemoveAll(dir)
}

// SaveOutline stores res under its content hash. Existing blobs are kept.
func SaveOutline(dir, hash string, res *outline.Result) error {
	if !isHex(hash) || len(hash) < 6 {
		return ErrInvalidHash
	}
	p := blobPath(dir, hash)
	if _, err := os.Stat(p); err == nil {
		return nil
	}
	return writeJSON(filepath.Dir(p), filepath.Base(p), res)
}

// LoadOutline returns the outline cached for hash; ok is false on a miss.
func LoadOutline(dir, hash string) (res *outline.Result, ok bool, err error) {
	if !isHex(hash) || len(hash) < 6 {
		return nil, false, ErrInvalidHash
	}
	b, err := os.ReadFile(blobPath(dir, hash))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	res = new(outline.Result)
	if err := json.Unmarshal(b, res); err != nil {
		return nil, false, fmt.Errorf("decode outline %s: %w", hash, err)
	}
	return res, true, nil
}

// HasOutline reports whether a blob exists for hash.
func HasOutline(dir, hash string) bool {
	if !isHex(hash) || len(hash) < 6 {
		return false
	}
	_, err := os.Stat(blobPath(dir, hash))
	return err == nil
}

func blobPath(dir, hash string) string {
	h := strings.ToLower(hash)
	return filepath.Join(dir, blobsDirName, h[:2], h[2:4], h+".json")
}

func writeJSON(dir, name string, v any) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".tmp-"+name+"-")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := encodeAndSync(f, v); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, filepath.Join(dir, name))
}

func encodeAndSync(f *os.File, v any) error {
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Sync()
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}
