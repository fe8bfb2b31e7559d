package outline

import (
	"regexp"
	"strings"
)

// braceSyntax is the per-language table of the brace-nesting parser.
type braceSyntax struct {
	classes   []*regexp.Regexp
	functions []*regexp.Regexp
	comments  commentSyntax
	ident     string
	defBlocks defBlockMode
	// keywords are labels a function template may capture that are really
	// control statements ("else if (x) {").
	keywords map[string]bool
	// forwardDecl matches a declaration that ends without a body.
	forwardDecl *regexp.Regexp
}

func newBraceSyntax(ident string, cs commentSyntax, mode defBlockMode, classes, functions []string) *braceSyntax {
	return &braceSyntax{
		classes:   mustCompileTemplates(ident, classes...),
		functions: mustCompileTemplates(ident, functions...),
		comments:  cs,
		ident:     ident,
		defBlocks: mode,
	}
}

const (
	jsIdent   = `[a-zA-Z_$][.a-zA-Z0-9_$]*`
	asIdent   = `[a-zA-Z_$][.a-zA-Z0-9_$:]*`
	phpIdent  = `[&$a-żA-Ż_][a-żA-Ż0-9_]*`
	cssIdent  = `[\-*#.a-zA-Z_][ =\"\]\[\)\(\->:,*#.a-zA-Z0-9_]*`
	cppIdent  = `[\*~a-zA-Z_][.a-zA-Z0-9_:~]*`
	perlIdent = `[&a-zA-Z_][a-zA-Z0-9_\:]*`
)

var (
	javaScriptSyntax = newBraceSyntax(jsIdent, cStyleComments, defBlockComma,
		[]string{"name.prototype = {", "*name = {", "name : {", "class name"},
		[]string{
			"id.prototype.name = function()",
			"function name() {",
			"*name = function() {",
			"*name : function() {",
			"*name = ()=> {",
		})

	actionScriptSyntax = newBraceSyntax(asIdent,
		commentSyntax{line: []string{"#", "//"}, blockStart: "/*", blockEnd: "*/"}, defBlockComma,
		[]string{"package name", "*class name", "name.prototype = {", "name.prototype : {", "*name = {", "name : {"},
		[]string{"*function name():type {", "*name = function():type {", "*name : function():type {"})

	phpSyntax = newBraceSyntax(phpIdent,
		commentSyntax{line: []string{"#", "//"}, blockStart: "/*", blockEnd: "*/"}, defBlockComma,
		[]string{"*class name*", "interface name {", "trait name {"},
		[]string{"*function name() {"})

	cssSyntax = newBraceSyntax(cssIdent,
		commentSyntax{blockStart: "/*", blockEnd: "*/"}, defBlockNone,
		[]string{"@name,"},
		[]string{"name {"})

	cppSyntax = func() *braceSyntax {
		s := newBraceSyntax(cppIdent, cStyleComments, defBlockComma,
			[]string{"class name", "struct name"},
			[]string{`(?:[\w:<>,\*&~]+\s+)+name()(?:\s+const)? {`})
		s.keywords = setOf("if", "else", "for", "while", "switch", "catch", "return", "do", "sizeof", "new", "delete")
		return s
	}()

	bashSyntax = newBraceSyntax(phpIdent, commentSyntax{line: []string{"#"}}, defBlockComma,
		nil,
		[]string{"*function name() {", "*function name {", "name() {"})

	perlBraceSyntax = func() *braceSyntax {
		s := newBraceSyntax(perlIdent, commentSyntax{}, defBlockComma,
			[]string{"package name"},
			[]string{`*\bsub name`, `*\bsub name()`})
		s.forwardDecl = regexp.MustCompile(`sub\s+[\w:]+\s*(?:\([\s$@%;\\]*\)\s*)?;`)
		return s
	}()
)

func setOf(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

var (
	// braceOnly confirms a pending declaration.
	braceOnly = regexp.MustCompile(`^\s*\{\s*$`)
	// oneLinerBody captures the body of a "{ ... }" on one line.
	oneLinerBody = regexp.MustCompile(`\{(.*?)\}`)
	nonWord      = regexp.MustCompile(`[^a-zA-Z0-9_]`)
	// xmlTyped is an ActionScript E4X declaration that needs no brace.
	xmlTyped = regexp.MustCompile(`\s*:\s*XML\s*[:=]\s*$`)
	// argDefaults strips "= value" from argument lists.
	argDefaults  = regexp.MustCompile(`\s*=[^,)]*([,)])`)
	jQueryPrefix = regexp.MustCompile(`^\s*\$\.|^\s*jQuery\.`)
	prototypeOf  = regexp.MustCompile(`([_$a-zA-Z][_$a-zA-Z0-9]*)\.prototype\b`)
	prototypeAny = regexp.MustCompile(`\bprototype\b`)

	privateVar    = regexp.MustCompile(`^\s*var\s+`)
	publicMember  = regexp.MustCompile(`^\s*this\.|:\s*function`)
	staticAssign  = regexp.MustCompile(`^\s*[^.]+\..*=\s*function`)
	staticKeyword = regexp.MustCompile(`\bstatic\s+`)
	privatePrefix = regexp.MustCompile(`^\s*private\s+`)
	protectPrefix = regexp.MustCompile(`^\s*protected\s+`)
	publicPrefix  = regexp.MustCompile(`^\s*public\s+`)
)

// declaration is a node found on one logical line.
type declaration struct {
	text        string
	kind        Kind
	line        int
	open        bool
	provisional bool
	class       bool
}

// braceLine is the raw outcome of one line of the brace parser.
type braceLine struct {
	blank   bool
	retract bool
	decl    *declaration
	closes  int
	code    string
}

func (b braceLine) result() LineResult {
	if b.blank {
		return LineResult{Blank: true}
	}
	res := LineResult{Retract: b.retract}
	if d := b.decl; d != nil {
		res.Emits = append(res.Emits, Emit{Text: d.text, Kind: d.kind, Line: d.line, Open: d.open, Provisional: d.provisional})
	}
	for i := 0; i < b.closes; i++ {
		res.Emits = append(res.Emits, Emit{})
	}
	return res
}

// braceParser handles the C-like languages where braces delimit bodies:
// JavaScript, ActionScript, PHP, CSS dialects, C++, Bash and (after quote
// simplification) Perl.
//
// A declaration whose line opens no brace is provisional: the parser bumps
// its nesting level speculatively and asks the next non-empty line to be a
// lone "{". Anything else retracts the declaration.
type braceParser struct {
	syn  *braceSyntax
	lang Language
	pp   *preprocessor

	level           int
	nextLevelOffset int
	nodeLevels      []int
	braceRequired   bool
}

func newBraceParser(syn *braceSyntax, lang Language) *braceParser {
	return &braceParser{
		syn:  syn,
		lang: lang,
		pp:   newPreprocessor(syn.ident, syn.comments, syn.defBlocks, false),
	}
}

// ParseLine implements LineParser.
func (p *braceParser) ParseLine(line string, index int) LineResult {
	return p.parse(line, index).result()
}

func (p *braceParser) parse(line string, index int) braceLine {
	code, at, ok := p.pp.process(line, index)
	if !ok {
		return braceLine{blank: true}
	}
	out := braceLine{code: code}
	if p.braceRequired {
		if !braceOnly.MatchString(code) {
			out.retract = true
			if n := len(p.nodeLevels); n > 0 {
				p.nodeLevels = p.nodeLevels[:n-1]
			}
		}
		p.braceRequired = false
	}
	d := p.match(code, at)
	out.decl, out.closes = p.updateNesting(code, d)
	return out
}

func (p *braceParser) isJS() bool {
	return p.lang == JavaScript || p.lang == NodeJS
}

func (p *braceParser) match(code string, at int) *declaration {
	for _, re := range p.syn.classes {
		m := re.FindStringSubmatchIndex(code)
		if m == nil || m[3] <= m[2] {
			continue
		}
		d := &declaration{line: at + 1, open: true, class: true, kind: Class}
		text := code[m[2]:m[3]]
		switch {
		case p.lang.IsStyleSheet():
			d.kind = AtRule
		case p.isJS() && jQueryPrefix.MatchString(code):
			text = jQueryPrefix.ReplaceAllString(text, "")
			d.kind = FrameworkExtension
		case p.isJS() && prototypeAny.MatchString(code):
			d.kind = PrototypeClass
		}
		d.text = strings.TrimSpace(p.pp.restore(text, code, m[2]))
		if d.kind == AtRule {
			d.text = strings.TrimRight(d.text, ", ")
		}
		return d
	}
	for _, re := range p.syn.functions {
		m := re.FindStringSubmatchIndex(code)
		if m == nil || m[3] <= m[2] {
			continue
		}
		text := code[m[2]:m[3]]
		if p.lang == Cpp {
			text = strings.TrimPrefix(text, "*")
		} else {
			text = strings.Replace(text, "this.", "", 1)
		}
		if p.syn.keywords[text] {
			continue
		}
		if len(m) > 5 && m[4] >= 0 {
			args := code[m[4]:m[5]]
			if !p.lang.IsStyleSheet() {
				args = argDefaults.ReplaceAllString(args, "${1}")
			}
			text += args
		}
		d := &declaration{line: at + 1, open: true}
		d.text = strings.TrimSpace(p.pp.restore(text, code, m[2]))
		if p.lang.IsStyleSheet() {
			d.kind = StyleRule
			return d
		}
		d.kind = functionKind(code)
		if p.isJS() {
			if jQueryPrefix.MatchString(code) {
				d.text = jQueryPrefix.ReplaceAllString(d.text, "")
				d.kind = FrameworkExtension
			} else if pm := prototypeOf.FindStringSubmatch(code); pm != nil {
				d.text = pm[1] + ".prototype." + d.text
				d.kind = PrototypeMethod
			}
		}
		return d
	}
	return nil
}

// functionKind infers visibility from implicit (var, this., Obj.x =) and
// explicit (private/protected/public/static) markers on the line.
func functionKind(code string) Kind {
	kind := Function
	switch {
	case privateVar.MatchString(code):
		kind = PrivateMethod
	case publicMember.MatchString(code):
		kind = PublicMethod
	case staticAssign.MatchString(code):
		kind = PublicStaticMethod
	}
	if staticKeyword.MatchString(code) {
		switch {
		case privatePrefix.MatchString(code):
			return PrivateStaticMethod
		case protectPrefix.MatchString(code):
			return ProtectedStaticMethod
		default:
			return PublicStaticMethod
		}
	}
	switch {
	case privatePrefix.MatchString(code):
		kind = PrivateMethod
	case protectPrefix.MatchString(code):
		kind = ProtectedMethod
	case publicPrefix.MatchString(code):
		kind = PublicMethod
	}
	return kind
}

// updateNesting tracks the brace level. It returns the declaration to emit
// (nil when it was dropped as empty noise) and, for lines without a
// declaration, how many open nodes the line closed.
func (p *braceParser) updateNesting(code string, d *declaration) (*declaration, int) {
	opened := strings.Count(code, "{") - strings.Count(code, "}")
	lc := opened
	if p.nextLevelOffset != 0 {
		lc += p.nextLevelOffset
		p.nextLevelOffset = 0
	}
	p.level += lc
	if d != nil {
		p.nodeLevels = append(p.nodeLevels, p.level)
		if opened >= 1 {
			return d, 0
		}
		if p.syn.forwardDecl != nil && !d.class && p.syn.forwardDecl.MatchString(code) {
			p.popLevel()
			d.open = false
			return d, 0
		}
		if strings.Contains(code, "}") || strings.HasSuffix(code, ",") {
			p.popLevel()
			if o := oneLinerBody.FindStringSubmatch(code); o != nil && o[1] == "" && !nonWord.MatchString(d.text) {
				return nil, 0
			}
			d.open = false
			return d, 0
		}
		if p.lang != Perl && !xmlTyped.MatchString(code) {
			p.braceRequired = true
			d.provisional = true
		}
		p.level++
		p.nodeLevels[len(p.nodeLevels)-1] = p.level
		if p.lang != Perl || !strings.HasSuffix(strings.TrimRight(code, " \t"), ";") {
			p.nextLevelOffset = -1
		}
		return d, 0
	}
	closes := 0
	for len(p.nodeLevels) > 0 && p.level < p.nodeLevels[len(p.nodeLevels)-1] {
		p.popLevel()
		closes++
	}
	return nil, closes
}

func (p *braceParser) popLevel() {
	if n := len(p.nodeLevels); n > 0 {
		p.nodeLevels = p.nodeLevels[:n-1]
	}
}
