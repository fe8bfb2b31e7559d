package outline

import (
	"regexp"
	"strings"
)

var (
	pyClass       = regexp.MustCompile(`^class\s+(.*):$`)
	pyClassOpen   = regexp.MustCompile(`^class\s+(.*)$`)
	pyDef         = regexp.MustCompile(`^(?:async\s+)?def\s+(.*):$`)
	pyDefOpen     = regexp.MustCompile(`^(?:async\s+)?def\s+(.*)$`)
	coffeeClass   = regexp.MustCompile(`^class\s+(.+)$`)
	coffeeMethod  = regexp.MustCompile(`^(@?[\w.$]+)\s*[:=]\s*(.*)[-=]>$`)
	coffeeAnonArg = regexp.MustCompile(`^(.*),\s*(.*)[-=]>$`)
	leadingSpace  = regexp.MustCompile(`^[ \t]*`)
)

// indentMatcher recognizes a declaration in a trimmed line of code.
type indentMatcher func(code string) (text string, kind Kind, ok bool)

// indentParser handles the indentation-nested languages (Python and
// CoffeeScript). Control structures never open nodes; a definition is
// closed by the first code line indented at or left of it.
type indentParser struct {
	pp         *preprocessor
	opt        Options
	match      indentMatcher
	defIndents []float64
}

func newPythonParser(opt Options) *indentParser {
	return &indentParser{
		pp:    newPreprocessor(`[a-zA-Z][a-zA-Z0-9_.]*`, commentSyntax{line: []string{"#"}}, defBlockBackslash, true),
		opt:   opt.normalized(),
		match: matchPython,
	}
}

func newCoffeeParser(opt Options) *indentParser {
	return &indentParser{
		pp: newPreprocessor(`[a-zA-Z][a-zA-Z0-9_.]*`,
			commentSyntax{line: []string{"#"}, blockStart: "###", blockEnd: "###"}, defBlockComma, true),
		opt:   opt.normalized(),
		match: matchCoffee,
	}
}

func matchPython(code string) (string, Kind, bool) {
	if m := pyClass.FindStringSubmatch(code); m != nil {
		return m[1], Class, true
	}
	if m := pyClassOpen.FindStringSubmatch(code); m != nil {
		return m[1] + " ...)", Class, true
	}
	if m := pyDef.FindStringSubmatch(code); m != nil {
		return m[1], Function, true
	}
	if m := pyDefOpen.FindStringSubmatch(code); m != nil {
		return m[1] + " ...)", Function, true
	}
	return "", Unknown, false
}

func matchCoffee(code string) (string, Kind, bool) {
	if m := coffeeClass.FindStringSubmatch(code); m != nil {
		return m[1], Class, true
	}
	if m := coffeeMethod.FindStringSubmatch(code); m != nil {
		return m[1] + strings.TrimSpace(m[2]), Function, true
	}
	if m := coffeeAnonArg.FindStringSubmatch(code); m != nil {
		return "(anon.) " + m[1], Function, true
	}
	return "", Unknown, false
}

// indentOf measures leading whitespace in indentation levels. Indentation
// starting with a tab counts one level per character.
func (p *indentParser) indentOf(ws string) float64 {
	if ws == "" {
		return 0
	}
	if ws[0] == '\t' {
		return float64(len(ws))
	}
	cols := 0
	for i := 0; i < len(ws); i++ {
		if ws[i] == '\t' {
			cols += p.opt.TabWidth - cols%p.opt.TabWidth
			continue
		}
		cols++
	}
	return float64(cols) / float64(p.opt.IndentWidth)
}

// ParseLine implements LineParser.
func (p *indentParser) ParseLine(line string, index int) LineResult {
	code, at, ok := p.pp.process(line, index)
	if !ok {
		return LineResult{Blank: true}
	}
	ws := leadingSpace.FindString(code)
	body := strings.TrimRight(code[len(ws):], " \t")
	if body == "" {
		return LineResult{Blank: true}
	}
	indent := p.indentOf(ws)
	var res LineResult
	for n := len(p.defIndents); n > 0 && p.defIndents[n-1] >= indent; n = len(p.defIndents) {
		p.defIndents = p.defIndents[:n-1]
		res.Close++
	}
	text, kind, found := p.match(body)
	if !found {
		return res
	}
	p.defIndents = append(p.defIndents, indent)
	offset := len(ws)
	res.Emits = []Emit{{
		Text: strings.TrimSpace(p.pp.restore(text, code, offset)),
		Kind: kind,
		Line: at + 1,
		Open: true,
	}}
	return res
}
