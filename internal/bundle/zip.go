package bundle

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"
)

// fixedTime keeps archives byte-for-byte reproducible (1980-01-01 UTC).
var fixedTime = time.Unix(315532800, 0).UTC()

// sanitizePath normalizes an entry name: forward slashes, no drive letter,
// no leading '/', and no '.' or '..' segments escaping the root.
func sanitizePath(p string) string {
	s := strings.ReplaceAll(p, `\`, "/")
	if len(s) > 1 && s[1] == ':' {
		s = s[2:]
	}
	s = strings.TrimLeft(path.Clean("/"+s), "/")
	if s == "" {
		return "entry"
	}
	return s
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	h := &zip.FileHeader{Name: sanitizePath(name), Method: zip.Deflate, Modified: fixedTime}
	h.SetMode(0o644)
	w, err := zw.CreateHeader(h)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func writeJSON(zw *zip.Writer, name string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return writeEntry(zw, name, append(b, '\n'))
}

// writeJSONL writes one compact JSON document per line.
func writeJSONL[T any](zw *zip.Writer, name string, items []T) error {
	var sb strings.Builder
	for _, it := range items {
		b, err := json.Marshal(it)
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		sb.Write(b)
		sb.WriteByte('\n')
	}
	return writeEntry(zw, name, []byte(sb.String()))
}
