package outline

import (
	"regexp"
	"strings"
)

var (
	rubyEigenclass = regexp.MustCompile(`^(?:class|module)\s*<<`)
	rubyClass      = regexp.MustCompile(`^(?:class|module)\s+([^\s;<]+)`)
	rubyDef        = regexp.MustCompile(`^def\s+([^\s(;]+)`)
	rubyDefClosed  = regexp.MustCompile(`^def\b.*;\s*end\s*$|^def\s+[^\s(]+(?:\([^)]*\)\s*|\s+)=[^=~>]`)
	rubyStaticName = regexp.MustCompile(`^[A-Z][^.\s]+\..+$`)
	rubyDoBlock    = regexp.MustCompile(`\s+do\b(?:\s*\|[a-zA-Z0-9_ \t,]*\|)?$`)
	rubyBegin      = regexp.MustCompile(`\bbegin$`)
	rubyEnd        = regexp.MustCompile(`^end\b`)
	rubyControl    = regexp.MustCompile(`^(?:if|unless|case|while|until|for)\b`)
	rubyAssignCtrl = regexp.MustCompile(`=\s*(?:if|unless|case|begin)\b`)
	rubyOneLineEnd = regexp.MustCompile(`\bend\s*$`)
)

var rubyStatic = map[Kind]Kind{
	PrivateMethod:   PrivateStaticMethod,
	PublicMethod:    PublicStaticMethod,
	ProtectedMethod: ProtectedStaticMethod,
}

// rubyParser nests on "end": class, module and def push a new block depth,
// control structures and do-blocks count within it, and the end that takes
// the count below zero closes the definition.
type rubyParser struct {
	simplifier *simplifier
	pp         *preprocessor
	visibility Kind
	depths     []int
	depth      int
}

func newRubyParser() *rubyParser {
	return &rubyParser{
		simplifier: newSimplifier(rubySyntax),
		pp:         newPreprocessor(`[a-zA-Z][a-zA-Z0-9_.]*[!?]?`, commentSyntax{line: []string{"#"}}, defBlockComma, false),
		visibility: PublicMethod,
	}
}

func (p *rubyParser) enter() {
	p.depths = append(p.depths, p.depth)
	p.depth = 0
}

// leave counts one end and reports whether it closed a definition.
func (p *rubyParser) leave() bool {
	p.depth--
	if p.depth >= 0 {
		return false
	}
	n := len(p.depths)
	if n == 0 {
		p.depth = 0
		return false
	}
	p.depth, p.depths = p.depths[n-1], p.depths[:n-1]
	return true
}

// ParseLine implements LineParser.
func (p *rubyParser) ParseLine(line string, index int) LineResult {
	line = p.simplifier.simplify(line)
	code, at, ok := p.pp.process(line, index)
	if !ok {
		return LineResult{Blank: true}
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return LineResult{Blank: true}
	}
	var res LineResult
	emit := func(text string, kind Kind, open bool) {
		res.Emits = append(res.Emits, Emit{Text: text, Kind: kind, Tooltip: text, Line: at + 1, Open: open})
	}
	switch {
	case rubyEigenclass.MatchString(code):
		p.depth++
	case rubyClass.MatchString(code):
		name := rubyClass.FindStringSubmatch(code)[1]
		if rubyOneLineEnd.MatchString(code) {
			emit(name, Class, false)
			break
		}
		emit(name, Class, true)
		p.enter()
	case rubyDef.MatchString(code):
		name := rubyDef.FindStringSubmatch(code)[1]
		kind := p.visibility
		if rest, found := strings.CutPrefix(name, "self."); found {
			name = rest
			kind = rubyStatic[kind]
		} else if rubyStaticName.MatchString(name) {
			kind = rubyStatic[kind]
		}
		if rubyDefClosed.MatchString(code) {
			emit(name, kind, false)
			break
		}
		emit(name, kind, true)
		p.enter()
	case rubyEnd.MatchString(code):
		if p.leave() {
			res.Emits = append(res.Emits, Emit{})
		}
	case rubyDoBlock.MatchString(code), rubyBegin.MatchString(code):
		p.depth++
	case rubyControl.MatchString(code):
		if !rubyOneLineEnd.MatchString(code) {
			p.depth++
		}
	case rubyAssignCtrl.MatchString(code):
		if !rubyOneLineEnd.MatchString(code) {
			p.depth++
		}
	case code == "private":
		p.visibility = PrivateMethod
	case code == "public":
		p.visibility = PublicMethod
	case code == "protected":
		p.visibility = ProtectedMethod
	}
	return res
}
