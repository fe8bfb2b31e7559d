// Package bundle writes index artifacts into a reproducible ZIP archive:
//
//	manifest.json
//	symbols.json
//	pointers.jsonl
//	delta.json    (only when the delta is non-empty)
//	INDEX.ID
//	README.md
//
// Entries are written in that fixed order with fixed timestamps, so equal
// artifacts always produce identical bytes.
package bundle

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"srctree/internal/index"
)

// Write streams the archive for art into w.
func Write(w io.Writer, art index.Artifacts) error {
	zw := zip.NewWriter(w)
	if err := writeAll(zw, art); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

// WriteFile writes the archive to zipPath, creating parent directories.
func WriteFile(zipPath string, art index.Artifacts) error {
	if err := os.MkdirAll(filepath.Dir(zipPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	if err := Write(f, art); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeAll(zw *zip.Writer, art index.Artifacts) error {
	if err := writeJSON(zw, "manifest.json", art.Manifest); err != nil {
		return err
	}
	if err := writeJSON(zw, "symbols.json", art.Symbols); err != nil {
		return err
	}
	if err := writeJSONL(zw, "pointers.jsonl", art.Pointers); err != nil {
		return err
	}
	if !art.Delta.Empty() {
		if err := writeJSON(zw, "delta.json", art.Delta); err != nil {
			return err
		}
	}
	if err := writeEntry(zw, "INDEX.ID", []byte(art.Manifest.IndexID+"\n")); err != nil {
		return err
	}
	return writeEntry(zw, "README.md", Readme(art))
}

const readmeTemplate = `# {{.Root}}

Outline index produced by *srctree*.

## Layout
- **manifest.json**: one entry per file (language, content hash, line and node counts, top-level labels).
- **symbols.json**: every outline node with its 1-based inclusive line range.
- **pointers.jsonl**: one stable jump target per symbol.
{{- if .HasDelta}}
- **delta.json**: changes since the previous index of this tree.
{{- end}}
- **INDEX.ID**: hash over the sorted path:hash pairs.

## Summary
- Files: {{.Files}}
- Symbols: {{.Symbols}}
- Languages: {{.Languages}}
{{- if .HasDelta}}
- Added {{.Added}}, changed {{.Changed}}, removed {{.Removed}}, renamed {{.Renamed}}
{{- end}}
`

var readmeTpl = template.Must(template.New("readme").Parse(readmeTemplate))

type readmeCtx struct {
	Root                             string
	Files, Symbols                   int
	Languages                        string
	HasDelta                         bool
	Added, Changed, Removed, Renamed int
}

// Readme renders the archive README. It carries no timestamps.
func Readme(art index.Artifacts) []byte {
	seen := map[string]bool{}
	var langs []string
	for _, f := range art.Manifest.Files {
		if l := f.Language.String(); !seen[l] {
			seen[l] = true
			langs = append(langs, l)
		}
	}
	sort.Strings(langs)
	root := strings.TrimSpace(art.Manifest.Root)
	if root == "" {
		root = "srctree index"
	}
	ctx := readmeCtx{
		Root:      root,
		Files:     len(art.Manifest.Files),
		Symbols:   len(art.Symbols.Symbols),
		Languages: strings.Join(langs, ", "),
		HasDelta:  !art.Delta.Empty(),
		Added:     len(art.Delta.Added),
		Changed:   len(art.Delta.Changed),
		Removed:   len(art.Delta.Removed),
		Renamed:   len(art.Delta.Renamed),
	}
	var buf bytes.Buffer
	if err := readmeTpl.Execute(&buf, ctx); err != nil {
		return []byte(fmt.Sprintf("# %s\n", root))
	}
	return buf.Bytes()
}
