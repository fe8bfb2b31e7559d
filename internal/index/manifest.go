package index

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"srctree/internal/cache"
	"srctree/internal/outline"
	"srctree/internal/textutil"
	"srctree/internal/walkwalk"
)

// ErrNoFiles is returned when there is nothing to index.
var ErrNoFiles = errors.New("index: no outlinable files")

// Options configures Build.
type Options struct {
	Parse   outline.Options
	Workers int // parallel parsers, GOMAXPROCS if <= 0
	// CacheDir is the per-tree cache directory (see cache.Dir). Empty
	// disables outline reuse and snapshots.
	CacheDir string
	Logger   *slog.Logger
	// Now stamps the snapshot; time.Now when nil.
	Now func() time.Time
}

// Artifacts is everything Build produces.
type Artifacts struct {
	Manifest Manifest
	Symbols  Symbols
	Pointers []Pointer
	// Delta against the previous snapshot; everything is Added on a cold cache.
	Delta cache.Delta
	// Reused counts files served from the outline cache.
	Reused int
}

type fileResult struct {
	file    walkwalk.FileInfo
	res     *outline.Result
	hash    string
	lines   int
	cached  bool
	skipped bool
}

// Build outlines files rooted at root. Unreadable files are logged and
// skipped. Cancellation of ctx stops outstanding work.
func Build(ctx context.Context, root string, files []walkwalk.FileInfo, opt Options) (Artifacts, error) {
	if len(files) == 0 {
		return Artifacts{}, ErrNoFiles
	}
	log := opt.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var prev *cache.Snapshot
	if opt.CacheDir != "" {
		var err error
		if prev, err = cache.Load(opt.CacheDir); err != nil {
			log.Warn("ignoring unreadable snapshot", "dir", opt.CacheDir, "err", err)
			prev = nil
		}
	}

	results := make([]fileResult, len(files))
	var reused atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := outlineFile(f, opt)
			if err != nil {
				log.Warn("skipping file", "path", f.RelPath, "err", err)
				results[i] = fileResult{file: f, skipped: true}
				return nil
			}
			if r.cached {
				reused.Add(1)
				log.Debug("outline cache hit", "path", f.RelPath, "hash", r.hash)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Artifacts{}, fmt.Errorf("index %s: %w", root, err)
	}

	art := assemble(root, results)
	if len(art.Manifest.Files) == 0 {
		return Artifacts{}, ErrNoFiles
	}
	art.Reused = int(reused.Load())

	snap := snapshotOf(art.Manifest, opt.Now)
	art.Delta = cache.BuildDelta(prev, snap)
	if opt.CacheDir != "" {
		if err := cache.Save(opt.CacheDir, snap); err != nil {
			return Artifacts{}, fmt.Errorf("save snapshot: %w", err)
		}
	}
	log.Info("indexed",
		"root", root,
		"files", len(art.Manifest.Files),
		"symbols", len(art.Symbols.Symbols),
		"reused", art.Reused,
		"added", len(art.Delta.Added),
		"changed", len(art.Delta.Changed),
		"removed", len(art.Delta.Removed),
	)
	return art, nil
}

func outlineFile(f walkwalk.FileInfo, opt Options) (fileResult, error) {
	data, err := os.ReadFile(f.AbsPath)
	if err != nil {
		return fileResult{}, err
	}
	text := textutil.NormalizeUTF8LF(data)
	r := fileResult{
		file:  f,
		hash:  cache.Hash(data),
		lines: 1 + bytes.Count(text, []byte("\n")),
	}
	key := blobKey(r.hash, f.Language, opt.Parse)
	if opt.CacheDir != "" {
		res, ok, err := cache.LoadOutline(opt.CacheDir, key)
		if err == nil && ok {
			r.res, r.cached = res, true
			return r, nil
		}
	}
	r.res = outline.Parse(string(text), f.Language, opt.Parse)
	if opt.CacheDir != "" {
		if err := cache.SaveOutline(opt.CacheDir, key, r.res); err != nil {
			return fileResult{}, fmt.Errorf("cache outline: %w", err)
		}
	}
	return r, nil
}

// blobKey folds the parse options into the content hash, since the same
// bytes outline differently under another language or indent width.
func blobKey(hash string, lang outline.Language, o outline.Options) string {
	sig := fmt.Sprintf("%s|%s|%d|%d|%t", hash, lang, o.IndentWidth, o.TabWidth, o.HTMLFilter)
	return cache.Hash([]byte(sig))
}

func assemble(root string, results []fileResult) Artifacts {
	var art Artifacts
	art.Manifest.Root = filepath.Base(root)
	art.Symbols.Version = 1
	for _, r := range results {
		if r.skipped || r.res == nil {
			continue
		}
		art.Manifest.Files = append(art.Manifest.Files, ManFile{
			Path:     r.file.RelPath,
			Language: r.file.Language,
			Hash:     r.hash,
			Lines:    r.lines,
			Nodes:    len(r.res.Nodes),
			Exports:  exports(r.res),
		})
		syms := BuildSymbols(r.file.RelPath, r.res)
		art.Symbols.Symbols = append(art.Symbols.Symbols, syms...)
		art.Pointers = append(art.Pointers, BuildPointers(r.file.RelPath, syms)...)
	}
	sort.Slice(art.Manifest.Files, func(i, j int) bool { return art.Manifest.Files[i].Path < art.Manifest.Files[j].Path })
	sort.SliceStable(art.Symbols.Symbols, func(i, j int) bool {
		a, b := art.Symbols.Symbols[i], art.Symbols.Symbols[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Start < b.Start
	})
	sort.Slice(art.Pointers, func(i, j int) bool { return art.Pointers[i].ID < art.Pointers[j].ID })
	art.Manifest.IndexID = ComputeIndexID(art.Manifest)
	return art
}

func snapshotOf(m Manifest, now func() time.Time) *cache.Snapshot {
	if now == nil {
		now = time.Now
	}
	s := &cache.Snapshot{
		Root:          m.Root,
		Created:       now().UTC().Format(time.RFC3339),
		FormatVersion: cache.FormatVersion,
		Files:         make([]cache.SnapFile, 0, len(m.Files)),
	}
	for _, f := range m.Files {
		s.Files = append(s.Files, cache.SnapFile{
			Path:     f.Path,
			Hash:     f.Hash,
			Lines:    f.Lines,
			Language: f.Language,
			Nodes:    f.Nodes,
		})
	}
	return s
}

// ComputeIndexID hashes the sorted "<path>:<hash>\n" lines of the manifest.
func ComputeIndexID(m Manifest) string {
	lines := make([]string, 0, len(m.Files))
	for _, f := range m.Files {
		lines = append(lines, filepath.ToSlash(f.Path)+":"+f.Hash)
	}
	sort.Strings(lines)
	d := xxhash.New()
	for _, ln := range lines {
		_, _ = d.WriteString(ln)
		_, _ = d.WriteString("\n")
	}
	return fmt.Sprintf("%016x", d.Sum64())
}
