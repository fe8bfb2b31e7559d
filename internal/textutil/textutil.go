package textutil

import (
	"bytes"
	"strings"
)

// NormalizeUTF8LF converts CRLF and lone CR to LF and ensures the output is
// valid UTF-8 by replacing invalid byte sequences with U+FFFD.
func NormalizeUTF8LF(b []byte) []byte {
	// Normalize newlines first
	b = bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
	b = bytes.ReplaceAll(b, []byte("\r"), []byte("\n"))
	return bytes.ToValidUTF8(b, []byte("�"))
}

// SplitLines splits text on \n, \r\n or a lone \r. A trailing line break
// yields a final empty line, so the result always has one entry per line
// an editor would show.
func SplitLines(text string) []string {
	if !strings.Contains(text, "\r") {
		return strings.Split(text, "\n")
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(strings.ReplaceAll(text, "\r", "\n"), "\n")
}

// EnsureTrailingLF appends a single \n if not already present.
func EnsureTrailingLF(b []byte) []byte {
	if len(b) == 0 || b[len(b)-1] == '\n' {
		return b
	}
	return append(b, '\n')
}

// JoinLines joins lines with \n and terminates the result with one \n.
// It returns nil for no lines.
func JoinLines(lines []string) []byte {
	if len(lines) == 0 {
		return nil
	}
	return EnsureTrailingLF([]byte(strings.Join(lines, "\n")))
}
