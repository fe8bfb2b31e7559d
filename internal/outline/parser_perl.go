package outline

import "strings"

// perlParser runs the brace parser over quote-simplified Perl. A package
// starts over at the root; a sub ending in ';' is a prototype.
type perlParser struct {
	simplifier *simplifier
	brace      *braceParser
}

func newPerlParser() *perlParser {
	return &perlParser{
		simplifier: newSimplifier(perlSyntax),
		brace:      newBraceParser(perlBraceSyntax, Perl),
	}
}

// ParseLine implements LineParser.
func (p *perlParser) ParseLine(line string, index int) LineResult {
	bl := p.brace.parse(p.simplifier.simplify(line), index)
	d := bl.decl
	if d == nil {
		return bl.result()
	}
	reset := false
	switch {
	case d.class:
		reset = true
		if n := len(p.brace.nodeLevels); n > 1 {
			p.brace.nodeLevels = p.brace.nodeLevels[n-1:]
		}
	case perlBraceSyntax.forwardDecl.MatchString(bl.code):
		d.kind = PrototypeMethod
	case strings.HasPrefix(d.text, "_"):
		d.kind = PrivateMethod
	default:
		d.kind = PublicMethod
	}
	res := bl.result()
	res.ResetNesting = reset
	return res
}
