package outline

// Emit is one node (or one level close) reported by a line parser.
type Emit struct {
	Text    string
	Kind    Kind
	Tooltip string
	// Line is the 1-based line the node is attributed to.
	Line int
	// Open keeps the node on the parent stack; a closed emit with no Text
	// only closes the current parent.
	Open bool
	// Provisional marks a node whose line had no opening brace. The next
	// non-empty line either confirms it or retracts it.
	Provisional bool
}

// LineResult is what a line parser reports for one physical line.
// The builder applies the fields in declaration order.
type LineResult struct {
	// Retract deletes the pending provisional node.
	Retract bool
	// ResetNesting returns the parent stack to the root.
	ResetNesting bool
	// Close pops this many parents before the emits are applied.
	Close int
	Emits []Emit
	// Blank is set for lines that carried nothing to parse; a pending
	// provisional node stays pending across them.
	Blank bool
}

// LineParser consumes a file one line at a time. Implementations keep their
// own nesting state and are never reused across parses.
type LineParser interface {
	ParseLine(line string, index int) LineResult
}

// newLineParser returns a fresh parser for lang, or nil when none exists.
func newLineParser(lang Language, opt Options) LineParser {
	if f, ok := parserFactories[lang]; ok {
		return f(opt)
	}
	return nil
}

var parserFactories = map[Language]func(Options) LineParser{
	JavaScript:   func(Options) LineParser { return newBraceParser(javaScriptSyntax, JavaScript) },
	NodeJS:       func(Options) LineParser { return newBraceParser(javaScriptSyntax, NodeJS) },
	ActionScript: func(Options) LineParser { return newBraceParser(actionScriptSyntax, ActionScript) },
	PHP:          func(Options) LineParser { return newBraceParser(phpSyntax, PHP) },
	CSS:          func(Options) LineParser { return newBraceParser(cssSyntax, CSS) },
	SCSS:         func(Options) LineParser { return newBraceParser(cssSyntax, SCSS) },
	Sass:         func(Options) LineParser { return newBraceParser(cssSyntax, Sass) },
	LESS:         func(Options) LineParser { return newBraceParser(cssSyntax, LESS) },
	Cpp:          func(Options) LineParser { return newBraceParser(cppSyntax, Cpp) },
	Bash:         func(Options) LineParser { return newBraceParser(bashSyntax, Bash) },
	Perl:         func(Options) LineParser { return newPerlParser() },
	Python:       func(o Options) LineParser { return newPythonParser(o) },
	Python3:      func(o Options) LineParser { return newPythonParser(o) },
	CoffeeScript: func(o Options) LineParser { return newCoffeeParser(o) },
	XML:          func(Options) LineParser { return newXMLParser(XML) },
	XUL:          func(Options) LineParser { return newXMLParser(XUL) },
	XSLT:         func(Options) LineParser { return newXMLParser(XSLT) },
	XHTML:        func(Options) LineParser { return newXMLParser(XHTML) },
	HTML:         func(Options) LineParser { return newXMLParser(HTML) },
	HTML5:        func(Options) LineParser { return newXMLParser(HTML5) },
	Lua:          func(Options) LineParser { return newLuaParser() },
	Ruby:         func(Options) LineParser { return newRubyParser() },
}
