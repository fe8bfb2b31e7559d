// Package walkwalk provides a deterministic, filterable filesystem walker
// that gathers the source files the outline parsers understand.
package walkwalk

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"srctree/internal/cache"
	"srctree/internal/outline"
)

// FileInfo describes one collected file.
type FileInfo struct {
	RelPath  string           // root-relative path with forward slashes
	AbsPath  string           // absolute filesystem path
	Size     int64            // size in bytes
	Hash     string           // cache.Hash of the contents
	Language outline.Language // resolved from the extension
}

// Options filters the walk. Include and Exclude are doublestar patterns
// matched against the root-relative path; an empty Include admits every file
// whose extension maps to an outline language.
type Options struct {
	Include        []string
	Exclude        []string
	MaxBytes       int64 // total budget, 0 = unlimited
	MaxFileBytes   int64 // per-file limit, 0 = unlimited
	UseGitignore   bool
	FollowSymlinks bool
}

type walkState struct {
	opt      Options
	root     string
	patterns []gitPattern
	total    int64
	files    []FileInfo
}

// CollectFiles walks src and returns the matching files sorted by RelPath,
// plus their total size.
func CollectFiles(src string, opt Options) ([]FileInfo, int64, error) {
	root, err := filepath.Abs(src)
	if err != nil {
		return nil, 0, err
	}
	ws := &walkState{opt: opt, root: root}
	if opt.UseGitignore {
		// A missing or unreadable .gitignore just means no patterns.
		ws.patterns, _ = parseGitignore(filepath.Join(root, ".gitignore"))
	}
	if err := filepath.WalkDir(root, ws.visit); err != nil {
		return nil, 0, err
	}
	sort.Slice(ws.files, func(i, j int) bool { return ws.files[i].RelPath < ws.files[j].RelPath })
	return ws.files, ws.total, nil
}

func (ws *walkState) visit(path string, d fs.DirEntry, err error) error {
	if err != nil {
		return nil
	}
	rel, ok := ws.relative(path)
	if !ok || rel == "." {
		return nil
	}
	if ws.shouldSkip(rel, d) {
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}
	if d.IsDir() {
		if !ws.opt.FollowSymlinks && isSymlink(d) {
			return filepath.SkipDir
		}
		return nil
	}
	return ws.handleFile(path, rel, d)
}

func (ws *walkState) relative(path string) (string, bool) {
	rel, err := filepath.Rel(ws.root, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "../") || rel == ".." {
		return "", false
	}
	return rel, true
}

func (ws *walkState) shouldSkip(rel string, d fs.DirEntry) bool {
	if matchAny(ws.opt.Exclude, rel) {
		return true
	}
	if d.IsDir() && matchAny(ws.opt.Exclude, rel+"/") {
		return true
	}
	return ws.opt.UseGitignore && matchGitignore(ws.patterns, rel, d.IsDir())
}

func (ws *walkState) handleFile(path, rel string, d fs.DirEntry) error {
	if !ws.opt.FollowSymlinks && isSymlink(d) {
		return nil
	}
	lang := outline.LanguageForExt(filepath.Ext(path))
	if lang == outline.LangNone {
		return nil
	}
	if len(ws.opt.Include) > 0 && !matchAny(ws.opt.Include, rel) {
		return nil
	}
	info, err := d.Info()
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}
	if ws.opt.MaxFileBytes > 0 && info.Size() > ws.opt.MaxFileBytes {
		return nil
	}
	if ws.opt.MaxBytes > 0 && ws.total+info.Size() > ws.opt.MaxBytes {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	ws.files = append(ws.files, FileInfo{
		RelPath:  rel,
		AbsPath:  path,
		Size:     info.Size(),
		Hash:     cache.Hash(b),
		Language: lang,
	})
	ws.total += info.Size()
	return nil
}

// matchAny reports whether rel matches one of the doublestar patterns.
// Malformed patterns never match.
func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func isSymlink(d fs.DirEntry) bool {
	return d.Type()&fs.ModeSymlink != 0
}

type gitPattern struct {
	neg     bool
	dirOnly bool
	glob    string // doublestar pattern relative to the root
}

// parseGitignore reads the root .gitignore. Supported: comments, '!'
// negation, a trailing '/' for directories, and anchoring by a leading or
// inner '/'. Unanchored patterns match at any depth.
func parseGitignore(path string) ([]gitPattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var res []gitPattern
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var p gitPattern
		if rest, ok := strings.CutPrefix(line, "!"); ok {
			p.neg = true
			line = strings.TrimSpace(rest)
		}
		line, p.dirOnly = strings.CutSuffix(line, "/")
		if line == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "/"); ok {
			p.glob = rest
		} else if strings.Contains(line, "/") {
			p.glob = line
		} else {
			p.glob = "**/" + line
		}
		res = append(res, p)
	}
	return res, s.Err()
}

// matchGitignore applies the patterns in order; the last match wins.
func matchGitignore(pats []gitPattern, rel string, isDir bool) bool {
	ignored := false
	for _, p := range pats {
		if p.dirOnly && !isDir {
			continue
		}
		if ok, _ := doublestar.Match(p.glob, rel); ok {
			ignored = !p.neg
		}
	}
	return ignored
}
