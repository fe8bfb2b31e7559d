package outline

import (
	"regexp"
	"strings"
)

var (
	// xmlToken finds, in order of appearance: an opening tag with its quoted
	// attributes (1), '>' (2), '/>' (3), a closing tag (4), comment start (5)
	// and comment end (6).
	xmlToken = regexp.MustCompile(`(?i)<([a-ż_][a-ż_0-9:]*(?:\s+[a-ż_][a-ż_0-9:.-]*\s*=\s*(?:"[^"]*"|'[^']*'))*)|(>)|(/>)|(</[a-z][a-z0-9:]*\s*>)|(<!--)|(-->)`)
	// voidTag lists the HTML elements that never have a closing tag.
	voidTag = regexp.MustCompile(`(?i)^(?:area|base|br|canvas|col|hr|img|input|link|meta|param)$`)
	// xmlAttr is one name="value" or name='value' pair.
	xmlAttr = regexp.MustCompile(`([^\s=]+)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	spaces  = regexp.MustCompile(`\s+`)
)

// openTagSuffix marks a tag whose attributes continue on the next line.
const openTagSuffix = "..."

type xmlNode struct {
	text string
	line int
	open bool
}

// xmlParser handles XML, XUL, XSLT and the HTML dialects. Every opening tag
// is a node labelled with a CSS-like selector; nesting follows the tags.
// An opening tag whose '>' is on a later line is held until it closes.
type xmlParser struct {
	lang    Language
	pending *xmlNode
	comment bool
}

func newXMLParser(lang Language) *xmlParser {
	return &xmlParser{lang: lang}
}

// ParseLine implements LineParser.
func (p *xmlParser) ParseLine(line string, index int) LineResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return LineResult{Blank: true}
	}
	var res LineResult
	for _, m := range xmlToken.FindAllStringSubmatchIndex(line, -1) {
		if p.comment {
			if m[12] >= 0 {
				p.comment = false
			}
			continue
		}
		switch {
		case m[2] >= 0:
			raw := line[m[2]:m[3]]
			n := &xmlNode{text: selector(raw), line: index + 1, open: true}
			if p.lang == HTML || p.lang == HTML5 {
				if voidTag.MatchString(tagName(raw)) {
					n.open = false
				}
			}
			if m[3] == len(line) {
				n.text += openTagSuffix
			}
			p.pending = n
		case m[4] >= 0:
			if n := p.pending; n != nil {
				res.Emits = append(res.Emits, Emit{Text: n.text, Kind: Tag, Line: n.line, Open: n.open})
			}
			p.pending = nil
		case m[6] >= 0:
			if n := p.pending; n != nil {
				res.Emits = append(res.Emits, Emit{Text: n.text, Kind: Tag, Line: n.line})
			}
			p.pending = nil
		case m[8] >= 0:
			res.Emits = append(res.Emits, Emit{})
			p.pending = nil
		case m[10] >= 0:
			p.comment = true
		}
	}
	return res
}

func tagName(raw string) string {
	if i := strings.IndexAny(raw, " \t"); i >= 0 {
		return raw[:i]
	}
	return raw
}

// selector renders a tag and its attributes as "tag#id.class1.class2",
// followed by [name="..."] and, for options, [value="..."].
func selector(raw string) string {
	name := tagName(raw)
	var id, class string
	var extra strings.Builder
	for _, a := range xmlAttr.FindAllStringSubmatch(raw[len(name):], -1) {
		val := a[2]
		if val == "" {
			val = a[3]
		}
		switch {
		case a[1] == "id":
			id = val
		case a[1] == "class":
			class = strings.TrimSpace(val)
		case a[1] == "name" || (name == "option" && a[1] == "value"):
			extra.WriteString("[" + a[1] + `="` + val + `"]`)
		}
	}
	var b strings.Builder
	b.WriteString(name)
	if id != "" {
		b.WriteString("#" + id)
	}
	if class != "" {
		b.WriteString("." + spaces.ReplaceAllString(class, "."))
	}
	b.WriteString(extra.String())
	return b.String()
}
