package outline

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// The quote simplifier collapses every string-like construct of Ruby and
// Perl (quotes, %q/q// forms, regex literals, substitutions, heredocs, POD
// and =begin blocks) into an empty '' literal, so the line parser only sees
// code. Constructs spanning several lines are tracked across calls.
//
// The rules rely on backreferences and lookahead, hence regexp2.

type quoteKind int

const (
	quoteComment quoteKind = iota
	quoteHeredoc
	quoteString
)

const (
	simplifierTimeout = 250 * time.Millisecond
	pairNestingDepth  = 4
	literalMark       = "\x00"
)

type quoteRule struct {
	source       string
	start        *regexp2.Regexp
	kind         quoteKind
	ternary      bool // s/a/b/: two delimited parts
	preserve     bool // keep group 1 (the context before the quote)
	trailing     string
	heredocSpace bool // terminator may be indented
}

type simplifierSyntax struct {
	rules         []quoteRule
	endDocument   *regexp2.Regexp
	startDoc      *regexp2.Regexp
	endDoc        *regexp2.Regexp
	startLinefeed *regexp2.Regexp
	endLinefeed   *regexp2.Regexp
}

var bracePairs = map[string]string{"[": "]", "(": ")", "{": "}", "<": ">"}

func rx2(src string) *regexp2.Regexp {
	re := regexp2.MustCompile(src, regexp2.None)
	re.MatchTimeout = simplifierTimeout
	return re
}

func rule(kind quoteKind, src string) quoteRule {
	return quoteRule{source: src, start: rx2(src), kind: kind}
}

func (r quoteRule) with(ternary, preserve bool, trailing string) quoteRule {
	r.ternary, r.preserve, r.trailing = ternary, preserve, trailing
	return r
}

func heredoc(src string, space bool) quoteRule {
	r := rule(quoteHeredoc, src)
	r.heredocSpace = space
	return r
}

var rubySyntax = &simplifierSyntax{
	rules: []quoteRule{
		rule(quoteComment, `(((?:^|[^$])#))`),
		heredoc(`()(<<(['"])(.*?)\3)`, false),
		heredoc(`(^|[,=\(]\s*)(<<(((?:[^-=][^\s"']*)?))(?=[,;]?(?:$|\s)))`, false),
		heredoc(`()(<<-(['"])(.*?)\3)`, true),
		heredoc(`()(<<-(((?:[^-=][^\s"']*)?))(?=[,;]?(?:$|\s)))`, true),
		rule(quoteString, "(((['\"`])))"),
		// After an operator, or after a word when the slash is not followed by
		// a space ("split /,/" but not "a / b").
		rule(quoteString, `((?:^|[^\w\s\/)\]}])\s*|(?:^|[^$%&@\w.])\w+\s+(?=\/[^\s=]))((\/))`).with(false, true, `[a-z]*`),
		rule(quoteString, `(^|[^$@%])((?:%[qQr]?)([^qQr{\[(<\w\s=]))`).with(false, true, ""),
		rule(quoteString, `(^|[(,=]\s*)((?:%[qQr]?)( ))`).with(false, true, ""),
		rule(quoteString, `(^|[^$@%])((?:%[qQr]?)(\{))`).with(false, true, ""),
		rule(quoteString, `(^|[^$@%])((?:%[qQr]?)(\[))`).with(false, true, ""),
		rule(quoteString, `(^|[^$@%])((?:%[qQr]?)(\())`).with(false, true, ""),
		rule(quoteString, `(^|[^$@%])((?:%[qQr]?)(\<))`).with(false, true, ""),
	},
	endDocument:   rx2(`^__END__$`),
	startDoc:      rx2(`^=begin\b`),
	endDoc:        rx2(`^=end$`),
	startLinefeed: rx2(`^.*?\\$`),
	endLinefeed:   rx2(`^.*?[^\\]$`),
}

var perlSyntax = &simplifierSyntax{
	rules: []quoteRule{
		rule(quoteComment, `(((?:^|[^$])#))`),
		heredoc(`()(<<(['"])(.*?)\3)`, false),
		heredoc(`((?:^|[=./*,;]|=>|(?:^|[^-])-|(?:^|[^+])\+`+
			`|chdir|chomp|chop|die|do|eval|glob|join|lc|lcfirst|length|mkdir`+
			`|print|printf|require|return|reverse|rmdir|say|split|sprintf`+
			`|substr|system|uc|ucfirst|unlink|warn`+
			`)\s*)(<<((\w+)))`, false),
		rule(quoteString, "(((['\"`])))"),
		rule(quoteString, `((?:^|[~\{\(!]|(?:^|[^$%&@\w])[a-zA-Z_]\w*)\s*)((\/))`).with(false, true, `[a-z]*`),
		rule(quoteString, `(^|[^$@%&])\b((?:q[qxwr]?|m)([^qxwr{\[(<\w\s]))`).with(false, true, `[a-z]*`),
		rule(quoteString, `(^|[^$@%&])\b((?:q[qxwr]?|m) (\w))`).with(false, true, `[a-z]*`),
		rule(quoteString, `(^|[^$@%&])\b((?:q[qxwr]?|m)(\{))`).with(false, true, `[a-z]*`),
		rule(quoteString, `(^|[^$@%&])\b((?:q[qxwr]?|m)(\[))`).with(false, true, `[a-z]*`),
		rule(quoteString, `(^|[^$@%&])\b((?:q[qxwr]?|m)(\())`).with(false, true, `[a-z]*`),
		rule(quoteString, `(^|[^$@%&])\b((?:q[qxwr]?|m)(\<))`).with(false, true, `[a-z]*`),
		rule(quoteString, `(^|[^$@%&])\b((?:s|tr|y)([^{\[(<\w\s\\]))`).with(true, true, `[a-z]*`),
		rule(quoteString, `(^|[^$@%&])\b((?:s|tr|y) (\w))`).with(true, true, `[a-z]*`),
		rule(quoteString, `(^|[^$@%&])\b((?:s|tr|y)(\{))`).with(true, true, `[a-z]*`),
		rule(quoteString, `(^|[^$@%&])\b((?:s|tr|y)(\())`).with(true, true, `[a-z]*`),
		rule(quoteString, `(^|[^$@%&])\b((?:s|tr|y)(\[))`).with(true, true, `[a-z]*`),
		rule(quoteString, `(^|[^$@%&])\b((?:s|tr|y)(\<))`).with(true, true, `[a-z]*`),
	},
	endDocument: rx2(`^__(?:END|DATA)__$`),
	startDoc:    rx2(`^=\S`),
	endDoc:      rx2(`^=cut$`),
}

// simplifier carries the multi-line state of one parse.
type simplifier struct {
	syntax *simplifierSyntax

	ended         bool
	waitQuote     *regexp2.Regexp
	waitQueue     []*regexp2.Regexp
	waitEnd       *regexp2.Regexp
	waitEndSecond *regexp2.Regexp

	compiled map[string]*regexp2.Regexp
}

func newSimplifier(syntax *simplifierSyntax) *simplifier {
	return &simplifier{syntax: syntax, compiled: map[string]*regexp2.Regexp{}}
}

func matches(re *regexp2.Regexp, s string) bool {
	if re == nil {
		return false
	}
	ok, err := re.MatchString(s)
	return err == nil && ok
}

func replaceFirst(re *regexp2.Regexp, s, repl string) string {
	out, err := re.Replace(s, repl, -1, 1)
	if err != nil {
		return s
	}
	return out
}

func (s *simplifier) compile(src string) *regexp2.Regexp {
	if re, ok := s.compiled[src]; ok {
		return re
	}
	re, err := regexp2.Compile(src, regexp2.None)
	if err != nil {
		re = nil
	} else {
		re.MatchTimeout = simplifierTimeout
	}
	s.compiled[src] = re
	return re
}

// simplify returns line with every string construct reduced to an empty
// single-quoted literal.
func (s *simplifier) simplify(line string) string {
	if s.ended {
		return ""
	}
	switch {
	case s.waitQuote != nil:
		if matches(s.waitQuote, line) {
			s.waitQuote = nil
			if len(s.waitQueue) > 0 {
				s.waitQuote, s.waitQueue = s.waitQueue[0], s.waitQueue[1:]
			}
		}
		line = ""
	case s.waitEnd != nil:
		line = s.continueString(line)
	}
	if s.waitQuote != nil || s.waitEnd != nil || line == "" {
		return strings.ReplaceAll(line, literalMark, "''")
	}
	syn := s.syntax
	switch {
	case matches(syn.endDocument, line):
		s.ended = true
		line = ""
	case matches(syn.startDoc, line):
		s.waitQuote = syn.endDoc
		line = ""
	case matches(syn.startLinefeed, line):
		s.waitQuote = syn.endLinefeed
	default:
		line = s.scan(line)
	}
	return strings.ReplaceAll(line, literalMark, "''")
}

func (s *simplifier) continueString(line string) string {
	if !matches(s.waitEnd, line) {
		return ""
	}
	line = replaceFirst(s.waitEnd, line, "")
	s.waitEnd = nil
	if s.waitEndSecond == nil {
		return line
	}
	s.waitEnd, s.waitEndSecond = s.waitEndSecond, nil
	if !matches(s.waitEnd, line) {
		return ""
	}
	line = replaceFirst(s.waitEnd, line, "")
	s.waitEnd = nil
	return line
}

// scan repeatedly replaces the leftmost string construct until none is left.
func (s *simplifier) scan(line string) string {
	for guard := len(line) + 8; guard > 0; guard-- {
		idx, m := s.leftmost(line)
		if m == nil {
			break
		}
		r := s.syntax.rules[idx]
		switch r.kind {
		case quoteComment:
			pos := m.GroupByNumber(2).Index
			if g := m.GroupByNumber(2).String(); !strings.HasPrefix(g, "#") {
				pos++
			}
			return line[:byteOffset(line, pos)]
		case quoteHeredoc:
			space := ""
			if r.heredocSpace {
				space = `\s*`
			}
			term := s.compile(`^` + space + escapeRegex(m.GroupByNumber(4).String()) + `$`)
			if term != nil {
				if s.waitQuote != nil {
					s.waitQueue = append(s.waitQueue, term)
				} else {
					s.waitQuote = term
				}
			}
			line = replaceFirst(r.start, line, "$1"+literalMark)
		default:
			line = s.replaceString(line, r, m)
		}
	}
	return line
}

// byteOffset converts a regexp2 match index, counted in runes, into a byte
// offset into s.
func byteOffset(s string, runes int) int {
	for i := range s {
		if runes == 0 {
			return i
		}
		runes--
	}
	return len(s)
}

// leftmost finds the rule whose construct starts first; ties go to the
// earlier rule.
func (s *simplifier) leftmost(line string) (int, *regexp2.Match) {
	best, bestPos := -1, len(line)+1
	var bestMatch *regexp2.Match
	for i, r := range s.syntax.rules {
		m, err := r.start.FindStringMatch(line)
		if err != nil || m == nil {
			continue
		}
		g := m.GroupByNumber(2)
		pos := g.Index
		if r.kind == quoteComment && !strings.HasPrefix(g.String(), "#") {
			pos++
		}
		if pos < bestPos {
			best, bestPos, bestMatch = i, pos, m
		}
	}
	return best, bestMatch
}

func (s *simplifier) replaceString(line string, r quoteRule, m *regexp2.Match) string {
	open := m.GroupByNumber(3).String()
	closing := open
	if c, ok := bracePairs[open]; ok {
		closing = c
	}
	repl := literalMark
	if r.preserve {
		repl = "$1" + literalMark
	}
	var body string
	switch {
	case open == closing && r.ternary:
		body = singleDelimiterRx(open) + singleDelimiterRx(open)
	case open == closing:
		body = singleDelimiterRx(open)
	case r.ternary:
		body = pairedDelimiterRx(open, closing, pairNestingDepth, true) +
			pairedDelimiterRx(open, closing, pairNestingDepth, false)
	default:
		body = pairedDelimiterRx(open, closing, pairNestingDepth, true)
	}
	if single := s.compile(r.source + body + r.trailing); single != nil && matches(single, line) {
		return replaceFirst(single, line, repl)
	}
	// The construct continues on later lines.
	if r.ternary {
		middle := closing
		if open != closing {
			middle = closing + open
		}
		s.waitEnd = s.compile(`^.*?` + escapeRegex(middle))
		s.waitEndSecond = s.compile(`^.*?` + escapeRegex(closing) + r.trailing)
	} else {
		e := escapeRegex(closing)
		s.waitEnd = s.compile(`^(?:[^` + e + `\\]|[^\\]\\` + e + `|\\[^` + e + `\\])*?` + e + r.trailing)
	}
	if multi := s.compile(r.source + `.*$`); multi != nil {
		return replaceFirst(multi, line, repl)
	}
	return ""
}

func singleDelimiterRx(d string) string {
	e := escapeRegex(d)
	return `(?:\\[^` + e + `\\]|[^` + e + `\\]|\\\\|\\` + e + `)*` + e
}

func pairedDelimiterRx(open, closing string, depth int, noStart bool) string {
	o, c := escapeRegex(open), escapeRegex(closing)
	begin := o + `(?:\\[^\\]|[^` + o + c + `\\]|\\\\`
	end := `)*` + c
	rx := begin + end
	for i := 1; i < depth; i++ {
		rx = begin + "|" + rx + end
	}
	if noStart {
		rx = strings.TrimPrefix(rx, o)
	}
	return rx
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// escapeRegex backslash-escapes every non-word ASCII character; the result
// is valid both inside and outside a character class.
func escapeRegex(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if !isWordByte(s[i]) && s[i] < 0x80 {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
