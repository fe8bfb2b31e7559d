package outline

import (
	"regexp"
	"strings"
)

const luaIdent = `[a-zA-Z_][a-zA-Z0-9_.:]*`

var (
	luaFunctions = mustCompileTemplates(luaIdent, "*name = function()", "*function name()")
	luaOpener    = regexp.MustCompile(`\bfunction\b|\bdo\b|\bif\b|\bfor\b`)
	luaEnd       = regexp.MustCompile(`\bend\b`)
	luaOneLiner  = regexp.MustCompile(`\bfunction\b(.*?)\bend\b`)
	luaLocal     = regexp.MustCompile(`^\s*local\s+`)
	argTail      = regexp.MustCompile(`\)\s.*$`)
)

// luaParser counts block keywords instead of braces: a line holding any of
// function/do/if/for opens one level and a line holding end closes one.
type luaParser struct {
	pp         *preprocessor
	level      int
	nodeLevels []int
}

func newLuaParser() *luaParser {
	return &luaParser{
		pp: newPreprocessor(luaIdent, commentSyntax{line: []string{"--"}, blockStart: "--[[", blockEnd: "]]"}, defBlockComma, false),
	}
}

// ParseLine implements LineParser.
func (p *luaParser) ParseLine(line string, index int) LineResult {
	code, at, ok := p.pp.process(line, index)
	if !ok {
		return LineResult{Blank: true}
	}
	d := p.match(code, at)
	out := braceLine{code: code}
	out.decl, out.closes = p.updateNesting(code, d)
	return out.result()
}

func (p *luaParser) match(code string, at int) *declaration {
	for _, re := range luaFunctions {
		m := re.FindStringSubmatchIndex(code)
		if m == nil || m[3] <= m[2] {
			continue
		}
		name := code[m[2]:m[3]]
		text := name
		if m[4] >= 0 {
			args := argDefaults.ReplaceAllString(code[m[4]:m[5]], "${1}")
			text += argTail.ReplaceAllString(args, ")")
		}
		d := &declaration{line: at + 1, open: true, kind: PublicMethod}
		switch {
		case luaLocal.MatchString(code):
			d.kind = PrivateMethod
		case strings.ContainsAny(name, ".:"):
			d.kind = Function
		}
		d.text = strings.TrimSpace(p.pp.restore(text, code, m[2]))
		return d
	}
	return nil
}

func (p *luaParser) updateNesting(code string, d *declaration) (*declaration, int) {
	opened := 0
	if luaOpener.MatchString(code) {
		opened++
	}
	if luaEnd.MatchString(code) {
		opened--
	}
	p.level += opened
	if d != nil {
		p.nodeLevels = append(p.nodeLevels, p.level)
		if opened >= 1 {
			return d, 0
		}
		if luaEnd.MatchString(code) || strings.HasSuffix(code, ",") {
			p.popLevel()
			if o := luaOneLiner.FindStringSubmatch(code); o != nil && strings.TrimSpace(o[1]) == "" && !nonWord.MatchString(d.text) {
				return nil, 0
			}
			d.open = false
			return d, 0
		}
		p.level++
		p.nodeLevels[len(p.nodeLevels)-1] = p.level
		return d, 0
	}
	closes := 0
	for len(p.nodeLevels) > 0 && p.level < p.nodeLevels[len(p.nodeLevels)-1] {
		p.popLevel()
		closes++
	}
	return nil, closes
}

func (p *luaParser) popLevel() {
	if n := len(p.nodeLevels); n > 0 {
		p.nodeLevels = p.nodeLevels[:n-1]
	}
}
