package outline

import (
	"fmt"
	"regexp"
	"strings"
)

// Definition templates are a tiny notation for declaration shapes. They are
// compiled into regexps anchored at the start of the line:
//
//	"name"      capturing group 1, the declaration label (identifier pattern)
//	"id"        a non-capturing identifier
//	"()"        capturing group 2, a parenthesized argument list (no braces or ';')
//	"*"         lazy wildcard
//	" : "       optional-space colon
//	" = "       optional-space equals
//	":type"     optional ": Type" annotation
//	" {" (end)  an opening brace, nothing, or a one-line "{ ... }" body
//	"," (end)   a trailing comma or opening brace, or nothing
//	" }"        a closing brace
//	"."         a literal dot
//	spaces      one or more whitespace characters
//
// Anything else, including backslash escapes, is copied as raw regexp text.
const (
	tplBraceTail = `(?:\s*\{\s*$|\s*$|\s*\{.*?\}\s*[,;]?\s*$)`
	tplCommaTail = `(?:\s*[,{]\s*$|\s*$)`
	tplArgs      = `\s*(\([^}{;]*\))\s*`
	tplOptType   = `(?:\s*:\s*[a-zA-Z\*]+\s*)?`
)

// compileTemplate converts a definition template into an anchored regexp
// using ident as the identifier pattern.
func compileTemplate(tmpl, ident string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString(`^\s*`)
	t := tmpl
	for i := 0; i < len(t); {
		rest := t[i:]
		switch {
		case strings.HasPrefix(rest, " : "):
			b.WriteString(`\s*:\s*`)
			i += 3
		case rest == " {":
			b.WriteString(tplBraceTail)
			i += 2
		case rest == " = {":
			b.WriteString(`\s*=`)
			b.WriteString(tplBraceTail)
			i += 4
		case strings.HasPrefix(rest, " = "):
			b.WriteString(`\s*=\s*`)
			i += 3
		case strings.HasPrefix(rest, " }"):
			b.WriteString(`\}`)
			i += 2
		case rest[0] == ' ':
			for i < len(t) && t[i] == ' ' {
				i++
			}
			b.WriteString(`\s+`)
		case strings.HasPrefix(rest, ":type"):
			b.WriteString(tplOptType)
			i += 5
		case strings.HasPrefix(rest, "name"):
			b.WriteString("(" + ident + ")")
			i += 4
		case strings.HasPrefix(rest, "id"):
			b.WriteString("(?:" + ident + ")")
			i += 2
		case strings.HasPrefix(rest, "()"):
			b.WriteString(tplArgs)
			i += 2
		case rest == ",":
			b.WriteString(tplCommaTail)
			i++
		case rest[0] == '*':
			b.WriteString(`.*?`)
			i++
		case rest[0] == '.':
			b.WriteString(`\.`)
			i++
		case rest[0] == '\\' && len(rest) > 1:
			b.WriteString(rest[:2])
			i += 2
		case rest[0] == '{' || rest[0] == '}':
			b.WriteByte('\\')
			b.WriteByte(rest[0])
			i++
		default:
			b.WriteByte(rest[0])
			i++
		}
	}
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("outline: template %q: %w", tmpl, err)
	}
	return re, nil
}

// mustCompileTemplates compiles a static template table. The tables are
// fixed at build time, so a failure is a programming error.
func mustCompileTemplates(ident string, tmpls ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(tmpls))
	for _, t := range tmpls {
		re, err := compileTemplate(t, ident)
		if err != nil {
			panic(err)
		}
		out = append(out, re)
	}
	return out
}
