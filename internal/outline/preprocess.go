package outline

import (
	"regexp"
	"strings"
)

// defBlockMode selects how multi-line declarations are grouped.
type defBlockMode int

const (
	defBlockNone      defBlockMode = iota
	defBlockComma                  // lines ending in ',' (argument lists split over lines)
	defBlockBackslash              // lines ending in '\' (Python continuations)
)

var (
	// defGroupComma: a trailing comma not preceded by '}'.
	defGroupComma = regexp.MustCompile(`[^\}]\s*,\s*$`)
	// defGroupBackslash: a trailing backslash continuation.
	defGroupBackslash = regexp.MustCompile(`\s*\\\s*$`)
	// defTrailing strips the continuation marker and trailing space.
	defTrailing = regexp.MustCompile(`\s*\\?$`)

	singleLiteral = regexp.MustCompile(`'.*?'`)
	doubleLiteral = regexp.MustCompile(`".*?"`)
	// regexLiteral never starts at a comment marker ("//" or "/*").
	regexLiteral = regexp.MustCompile(`/[^/*].*?/`)
	// placeholder matches any masked literal left in the line.
	placeholder = regexp.MustCompile(`'\.\.\.'|"\.\.\."|/\.\.\./`)
)

const (
	escSingle = "\x00"
	escDouble = "\x01"
	escSlash  = "\x02"
)

// commentSyntax describes the comment markers of a language.
type commentSyntax struct {
	line       []string
	blockStart string
	blockEnd   string
}

var cStyleComments = commentSyntax{line: []string{"//"}, blockStart: "/*", blockEnd: "*/"}

// preprocessor cleans one physical line at a time before a line parser looks
// at it. It masks string and regex literals so their content cannot be
// mistaken for structure, strips comments, suppresses block comments and
// Python triple-quoted literals, and folds multi-line declarations into one
// logical line attributed to the first physical line.
type preprocessor struct {
	comments          commentSyntax
	lineComments      []*regexp.Regexp
	startsWithComment *regexp.Regexp
	tripleQuotes      bool
	mode              defBlockMode
	identStart        *regexp.Regexp

	inBlockComment bool
	inTriple1      bool
	inTriple2      bool

	literals map[byte][]string

	blockStart int
	block      string
}

func newPreprocessor(ident string, cs commentSyntax, mode defBlockMode, tripleQuotes bool) *preprocessor {
	p := &preprocessor{
		comments:     cs,
		tripleQuotes: tripleQuotes,
		mode:         mode,
		blockStart:   -1,
		literals:     map[byte][]string{},
	}
	var starts []string
	if cs.blockStart != "" {
		starts = append(starts, regexp.QuoteMeta(cs.blockStart))
	}
	for _, lc := range cs.line {
		starts = append(starts, regexp.QuoteMeta(lc))
		p.lineComments = append(p.lineComments,
			regexp.MustCompile(`([^$0-9A-z'"]|^)`+regexp.QuoteMeta(lc)+`.*$`))
	}
	if len(starts) > 0 {
		p.startsWithComment = regexp.MustCompile(`^\s*(?:` + strings.Join(starts, "|") + `)`)
	}
	if mode != defBlockNone {
		p.identStart = regexp.MustCompile(`^\s*` + ident)
	}
	return p
}

// process returns the cleaned logical line, the 0-based index of the line it
// should be attributed to, and false when there is nothing to parse.
func (p *preprocessor) process(line string, index int) (string, int, bool) {
	if p.tripleQuotes {
		if strings.Count(line, `'''`)%2 == 1 {
			p.inTriple1 = !p.inTriple1
		}
		if strings.Count(line, `"""`)%2 == 1 {
			p.inTriple2 = !p.inTriple2
		}
		if p.inTriple1 || p.inTriple2 {
			return "", index, false
		}
	}
	if p.blockStart < 0 {
		p.literals = map[byte][]string{}
	}
	if p.startsWithComment == nil || !p.startsWithComment.MatchString(line) {
		line = p.maskLiterals(line)
	}
	var ok bool
	if line, ok = p.stripBlockComments(line); !ok {
		return "", index, false
	}
	for i, lc := range p.comments.line {
		if strings.Contains(line, lc) {
			line = p.lineComments[i].ReplaceAllString(line, "${1}")
		}
	}
	if strings.TrimSpace(line) == "" {
		line = ""
	}
	if p.mode == defBlockNone {
		return line, index, line != ""
	}
	return p.group(line, index)
}

func (p *preprocessor) maskLiterals(line string) string {
	line = strings.ReplaceAll(line, `\'`, escSingle)
	line = strings.ReplaceAll(line, `\"`, escDouble)
	line = strings.ReplaceAll(line, `\/`, escSlash)
	line = p.maskKind(line, '\'', singleLiteral, `'...'`)
	line = p.maskKind(line, '"', doubleLiteral, `"..."`)
	line = p.maskKind(line, '/', regexLiteral, `/.../`)
	return line
}

func (p *preprocessor) maskKind(line string, kind byte, re *regexp.Regexp, mask string) string {
	for _, lit := range re.FindAllString(line, -1) {
		p.literals[kind] = append(p.literals[kind], unescapeLiteral(lit))
	}
	return re.ReplaceAllLiteralString(line, mask)
}

func unescapeLiteral(s string) string {
	s = strings.ReplaceAll(s, escSingle, `\'`)
	s = strings.ReplaceAll(s, escDouble, `\"`)
	return strings.ReplaceAll(s, escSlash, `\/`)
}

// stripBlockComments removes block comment spans, carrying the open state
// across lines. Text before an unterminated comment is kept.
func (p *preprocessor) stripBlockComments(line string) (string, bool) {
	start, end := p.comments.blockStart, p.comments.blockEnd
	if start == "" || end == "" {
		return line, true
	}
	var out strings.Builder
	rest := line
	for {
		if p.inBlockComment {
			i := strings.Index(rest, end)
			if i < 0 {
				break
			}
			rest = rest[i+len(end):]
			p.inBlockComment = false
			continue
		}
		i := strings.Index(rest, start)
		if i < 0 {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:i])
		rest = rest[i+len(start):]
		p.inBlockComment = true
	}
	s := out.String()
	if p.inBlockComment && strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// group accumulates declaration continuation lines. While a group is open
// nothing is returned; the first line that breaks the pattern is appended and
// the whole group is returned attributed to its first line.
func (p *preprocessor) group(line string, index int) (string, int, bool) {
	re := defGroupComma
	if p.mode == defBlockBackslash {
		re = defGroupBackslash
	}
	cont := line != "" && re.MatchString(line) && p.identStart.MatchString(line)
	if p.blockStart < 0 {
		if !cont || !strings.Contains(line, "(") {
			return line, index, line != ""
		}
		p.blockStart = index
		p.block = defTrailing.ReplaceAllString(line, "")
		return "", index, false
	}
	p.block += " " + defTrailing.ReplaceAllString(strings.TrimLeft(line, " \t"), "")
	if cont {
		return "", index, false
	}
	out, at := p.block, p.blockStart
	p.block, p.blockStart = "", -1
	return out, at, strings.TrimSpace(out) != ""
}

// restore puts masked literal text back into label. offset is the byte
// position of label within line, so literals masked earlier on the line are
// skipped.
func (p *preprocessor) restore(label, line string, offset int) string {
	if len(p.literals) == 0 || !placeholder.MatchString(label) {
		return unescapeLiteral(label)
	}
	next := map[byte]int{}
	if offset > 0 && offset <= len(line) {
		for _, m := range placeholder.FindAllString(line[:offset], -1) {
			next[m[0]]++
		}
	}
	label = placeholder.ReplaceAllStringFunc(label, func(m string) string {
		k := m[0]
		list := p.literals[k]
		if next[k] >= len(list) {
			return m
		}
		s := list[next[k]]
		next[k]++
		return s
	})
	return unescapeLiteral(label)
}
