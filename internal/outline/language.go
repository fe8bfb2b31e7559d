package outline

import (
	"strings"
)

// Language is the closed set of host language tags a parser exists for.
type Language int

const (
	LangNone Language = iota
	JavaScript
	NodeJS
	ActionScript
	PHP
	Perl
	Python
	Python3
	CSS
	SCSS
	Sass
	LESS
	XML
	XUL
	XSLT
	XHTML
	HTML
	HTML5
	Lua
	Cpp
	Ruby
	Bash
	CoffeeScript
)

// languageTags holds the host-facing tag of each language.
var languageTags = [...]string{
	LangNone:     "",
	JavaScript:   "JavaScript",
	NodeJS:       "Node.js",
	ActionScript: "ActionScript",
	PHP:          "PHP",
	Perl:         "Perl",
	Python:       "Python",
	Python3:      "Python3",
	CSS:          "CSS",
	SCSS:         "SCSS",
	Sass:         "Sass",
	LESS:         "LESS",
	XML:          "XML",
	XUL:          "XUL",
	XSLT:         "XSLT",
	XHTML:        "XHTML",
	HTML:         "HTML",
	HTML5:        "HTML5",
	Lua:          "Lua",
	Cpp:          "C++",
	Ruby:         "Ruby",
	Bash:         "Bash",
	CoffeeScript: "CoffeeScript",
}

// String returns the host tag of the language ("" for LangNone).
func (l Language) String() string {
	if l < 0 || int(l) >= len(languageTags) {
		return ""
	}
	return languageTags[l]
}

// MarshalText encodes the language as its tag.
func (l Language) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText decodes a tag; unknown tags become LangNone.
func (l *Language) UnmarshalText(b []byte) error {
	*l = ParseLanguage(string(b))
	return nil
}

// ParseLanguage maps a host language tag to the enum, case-insensitively.
// A few common aliases are accepted; anything else yields LangNone.
func ParseLanguage(tag string) Language {
	t := strings.ToLower(strings.TrimSpace(tag))
	if t == "" {
		return LangNone
	}
	for i, name := range languageTags {
		if i > 0 && strings.ToLower(name) == t {
			return Language(i)
		}
	}
	switch t {
	case "js", "javascript1.8", "ecmascript":
		return JavaScript
	case "node", "nodejs":
		return NodeJS
	case "as", "as3":
		return ActionScript
	case "py", "python2":
		return Python
	case "py3":
		return Python3
	case "cpp", "cxx", "c":
		return Cpp
	case "rb":
		return Ruby
	case "sh", "shell":
		return Bash
	case "coffee":
		return CoffeeScript
	case "htm":
		return HTML
	}
	return LangNone
}

// LanguageForExt returns the language conventionally associated with a file
// extension.
//
// Normalization:
//   - Case-insensitive
//   - Accepts with or without leading '.' (".py" or "py")
//
// Unknown extensions map to LangNone, which parses to an empty outline.
func LanguageForExt(ext string) Language {
	e := strings.TrimSpace(strings.ToLower(ext))
	e = strings.TrimPrefix(e, ".")
	switch e {
	case "js", "jsm", "mjs", "cjs", "jsx":
		return JavaScript
	case "as":
		return ActionScript
	case "php", "php3", "php4", "php5", "phtml", "inc":
		return PHP
	case "pl", "pm", "t":
		return Perl
	case "py", "pyw":
		return Python
	case "css":
		return CSS
	case "scss":
		return SCSS
	case "sass":
		return Sass
	case "less":
		return LESS
	case "xml", "svg", "rdf", "xsd", "plist":
		return XML
	case "xul":
		return XUL
	case "xsl", "xslt":
		return XSLT
	case "xhtml", "xht":
		return XHTML
	case "html", "htm", "shtml":
		return HTML5
	case "lua":
		return Lua
	case "c", "cc", "cpp", "cxx", "h", "hh", "hpp", "hxx":
		return Cpp
	case "rb", "rake", "gemspec", "ru":
		return Ruby
	case "sh", "bash", "zsh", "ksh":
		return Bash
	case "coffee":
		return CoffeeScript
	default:
		return LangNone
	}
}

// IsHTML reports whether the language is one of the HTML dialects.
// HTML outlines keep document order and are the only target of the
// selector filter.
func (l Language) IsHTML() bool {
	return l == HTML || l == HTML5 || l == XHTML
}

// IsStyleSheet reports whether the language is a CSS dialect.
func (l Language) IsStyleSheet() bool {
	switch l {
	case CSS, SCSS, Sass, LESS:
		return true
	}
	return false
}

// Languages lists every language that has a line parser, in tag order.
func Languages() []Language {
	out := make([]Language, 0, len(languageTags)-1)
	for i := 1; i < len(languageTags); i++ {
		out = append(out, Language(i))
	}
	return out
}
