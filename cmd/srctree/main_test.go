package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const pySource = "class A:\n    def m(self):\n        pass\ndef f():\n    pass\n"

type result struct {
	code           int
	stdout, stderr string
}

func runCLI(t *testing.T, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	settingsPath := filepath.Join(t.TempDir(), "settings.yaml")
	full := append([]string{}, args...)
	if len(full) > 0 && !strings.HasPrefix(full[0], "-") {
		full = append(full, "--settings", settingsPath, "--color", "never")
	}
	code := run(full, &out, &errOut)
	return result{code, out.String(), errOut.String()}
}

func writeTemp(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestOutlineCommand(t *testing.T) {
	p := writeTemp(t, t.TempDir(), "a.py", pySource)
	r := runCLI(t, "outline", p)
	if r.code != 0 {
		t.Fatalf("exit %d: %s", r.code, r.stderr)
	}
	want := "▾ A :1\n    m(self) :2\n  f() :4\n"
	if r.stdout != want {
		t.Fatalf("outline output:\n%q\nwant\n%q", r.stdout, want)
	}

	r = runCLI(t, "outline", "--expand=false", p)
	if r.stdout != "▸ A :1\n  f() :4\n" {
		t.Fatalf("collapsed output: %q", r.stdout)
	}

	r = runCLI(t, "outline", "--json", p)
	if r.code != 0 || !strings.Contains(r.stdout, `"text": "m(self)"`) || !strings.Contains(r.stdout, `"lineToNode"`) {
		t.Fatalf("json output: %s", r.stdout)
	}
}

func TestOutlineLanguageOverride(t *testing.T) {
	p := writeTemp(t, t.TempDir(), "script", pySource)
	if r := runCLI(t, "outline", p); r.code != 2 || !strings.Contains(r.stderr, "ERROR: cannot tell the language") {
		t.Fatalf("want usage error, got %d %q", r.code, r.stderr)
	}
	if r := runCLI(t, "outline", "--lang", "Python3", p); r.code != 0 || !strings.Contains(r.stdout, "m(self)") {
		t.Fatalf("--lang should select the parser: %d %q", r.code, r.stdout)
	}
	if r := runCLI(t, "outline", "--lang", "COBOL", p); r.code != 2 {
		t.Fatalf("unknown language should be a usage error, got %d", r.code)
	}
}

func TestLocateCommand(t *testing.T) {
	p := writeTemp(t, t.TempDir(), "a.py", pySource)
	r := runCLI(t, "locate", p, "3")
	if r.code != 0 {
		t.Fatalf("exit %d: %s", r.code, r.stderr)
	}
	if r.stdout != "A [class] :1\n  m(self) [function] :2\n" {
		t.Fatalf("locate output: %q", r.stdout)
	}
	if r := runCLI(t, "locate", p, "zero"); r.code != 2 {
		t.Fatalf("bad line should be a usage error, got %d", r.code)
	}
	if r := runCLI(t, "locate", p, "99"); r.code != 1 {
		t.Fatalf("out of range line should fail, got %d", r.code)
	}
}

func TestSearchCommand(t *testing.T) {
	p := writeTemp(t, t.TempDir(), "a.py", pySource)
	r := runCLI(t, "search", p, "M(")
	if r.stdout != "▾ A :1\n    m(self) :2\n" {
		t.Fatalf("search output: %q", r.stdout)
	}
	r = runCLI(t, "search", "--regex", p, `^f\(`)
	if r.stdout != "  f() :4\n" {
		t.Fatalf("regex search output: %q", r.stdout)
	}
	r = runCLI(t, "search", p, "zzz")
	if r.code != 0 || r.stdout != "" || !strings.Contains(r.stderr, "no matches") {
		t.Fatalf("empty search: %+v", r)
	}
	if r := runCLI(t, "search", "--regex", p, "("); r.code != 2 {
		t.Fatalf("bad regex should be a usage error, got %d", r.code)
	}
}

func TestDiffCommand(t *testing.T) {
	dir := t.TempDir()
	a := writeTemp(t, dir, "a.py", pySource)
	b := writeTemp(t, dir, "b.py", strings.Replace(pySource, "def f", "def g", 1))
	r := runCLI(t, "diff", a, b)
	if r.code != 0 {
		t.Fatalf("exit %d: %s", r.code, r.stderr)
	}
	for _, want := range []string{"-f() [function]", "+g() [function]", "   m(self) [function]"} {
		if !strings.Contains(r.stdout, want) {
			t.Fatalf("missing %q in:\n%s", want, r.stdout)
		}
	}
	if r := runCLI(t, "diff", a, a); r.code != 0 || r.stdout != "" {
		t.Fatalf("identical outlines should give no patch: %+v", r)
	}
}

func TestIndexCommand(t *testing.T) {
	src := t.TempDir()
	writeTemp(t, src, "a.py", pySource)
	writeTemp(t, src, "web/b.js", "function b() {\n}\n")
	writeTemp(t, src, "notes.txt", "skip me")
	work := t.TempDir()
	cfg := writeTemp(t, work, "srctree.yaml", "cacheDir: "+filepath.Join(work, "cache")+"\n")
	manifest := filepath.Join(work, "manifest.json")
	zipPath := filepath.Join(work, "index.zip")

	r := runCLI(t, "index", "--config", cfg, "--out", manifest, "--zip", zipPath, src)
	if r.code != 0 {
		t.Fatalf("exit %d: %s", r.code, r.stderr)
	}
	if !strings.HasPrefix(r.stdout, "2 files, 4 symbols, 0 reused; +2") {
		t.Fatalf("first index summary: %q", r.stdout)
	}
	data, err := os.ReadFile(manifest)
	if err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	if !strings.Contains(string(data), `"path": "web/b.js"`) {
		t.Fatalf("manifest: %s", data)
	}
	if _, err := os.Stat(zipPath); err != nil {
		t.Fatalf("zip not written: %v", err)
	}

	r = runCLI(t, "index", "--config", cfg, src)
	if !strings.HasPrefix(r.stdout, "2 files, 4 symbols, 2 reused; +0 ~0 -0 >0") {
		t.Fatalf("second index summary: %q", r.stdout)
	}

	empty := t.TempDir()
	r = runCLI(t, "index", "--no-cache", empty)
	if r.code != 0 || !strings.Contains(r.stderr, "No files matched filters.") {
		t.Fatalf("empty tree: %+v", r)
	}
}

func TestSettingsCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	var out, errOut bytes.Buffer
	if code := run([]string{"settings", "set", "sort", "true", "--settings", path}, &out, &errOut); code != 0 {
		t.Fatalf("set: %d %s", code, errOut.String())
	}
	out.Reset()
	if code := run([]string{"settings", "get", "sort", "--settings", path}, &out, &errOut); code != 0 || out.String() != "true\n" {
		t.Fatalf("get: %d %q", code, out.String())
	}
	out.Reset()
	if code := run([]string{"settings", "toggle", "expand", "--settings", path}, &out, &errOut); code != 0 || out.String() != "false\n" {
		t.Fatalf("toggle: %d %q", code, out.String())
	}
	out.Reset()
	if code := run([]string{"settings", "--settings", path}, &out, &errOut); code != 0 {
		t.Fatalf("list: %d", code)
	}
	want := "extensions.NST.HTMLfilter: false\nextensions.NST.expand: false\nextensions.NST.locate: true\nextensions.NST.sort: true\n"
	if out.String() != want {
		t.Fatalf("list output:\n%s", out.String())
	}
	errOut.Reset()
	if code := run([]string{"settings", "toggle", "colour", "--settings", path}, &out, &errOut); code != 2 || !strings.HasPrefix(errOut.String(), "ERROR: unknown setting") {
		t.Fatalf("unknown key: %d %q", code, errOut.String())
	}
}

func TestUsageErrors(t *testing.T) {
	cases := [][]string{
		{"outline"},
		{"locate", "a.py"},
		{"bogus"},
		{"outline", "--no-such-flag", "a.py"},
	}
	for _, args := range cases {
		r := runCLI(t, args...)
		if r.code != 2 || !strings.HasPrefix(r.stderr, "ERROR: ") {
			t.Fatalf("%v: want exit 2 with ERROR, got %d %q", args, r.code, r.stderr)
		}
	}
	r := runCLI(t, "outline", filepath.Join(t.TempDir(), "missing.py"))
	if r.code != 1 || !strings.HasPrefix(r.stderr, "ERROR: ") {
		t.Fatalf("missing file: want exit 1, got %d %q", r.code, r.stderr)
	}
}
