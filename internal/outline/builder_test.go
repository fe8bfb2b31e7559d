package outline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// corpus holds one representative snippet per parser family.
var corpus = map[Language]string{
	JavaScript: `var App = {
  start: function(opts) {
    var self = this;
  },
};
function Outer() {
  function inner() {
  }
}
Foo.prototype.bar = function(a) {
};
$.fn.plugin = function(opts) {
};
function pending()

{
}`,
	PHP: `<?php
class Foo extends Bar {
    private function secret($a = 1) {
    }
    public static function make() {
    }
}`,
	CSS: `body {
  color: red;
}
a.link:hover { color: blue; }
@media screen,
p { margin: 0; }`,
	Cpp: `class Widget {
public:
  int size() const {
    if (x) {
    }
    return 1;
  }
};`,
	Bash: `function deploy {
  echo hi
}
build() {
}`,
	ActionScript: `package com.example {
  public class Foo {
    public function bar(x:int):void {
    }
  }
}`,
	Python: `class A:
    def m(self):
        if x:
            pass
    def n(self):
        pass`,
	CoffeeScript: `class Animal
  constructor: (@name) ->
  move: (meters) =>
    alert meters`,
	Lua: `local function helper(a)
  return a
end
function M.run(x, y)
  if x then
    return y
  end
end`,
	Ruby: `class C
  private
  def a; end
  public
  def b; end
end`,
	Perl: `package Foo;
sub new {
  my $x = 1;
}
sub _helper;`,
	HTML5: `<div>
  <p class="x">hi</p>
  <span>no</span>
</div>
<br>`,
	XML: `<root>
  <item name="a"/>
  <!-- <item name="hidden"> -->
</root>`,
}

type shape struct {
	text   string
	kind   Kind
	line   int
	parent int
}

func shapes(r *Result) []shape {
	out := make([]shape, 0, len(r.Nodes))
	for _, n := range r.Nodes {
		out = append(out, shape{n.Text, n.Kind, n.Line, n.ParentID})
	}
	return out
}

func TestParseIsIdempotent(t *testing.T) {
	for lang, src := range corpus {
		t.Run(lang.String(), func(t *testing.T) {
			a := Parse(src, lang, Options{})
			b := Parse(src, lang, Options{})
			assert.Equal(t, a, b)
		})
	}
}

func TestLineMapIsTotal(t *testing.T) {
	for lang, src := range corpus {
		t.Run(lang.String(), func(t *testing.T) {
			r := Parse(src, lang, Options{HTMLFilter: true})
			lines := strings.Count(src, "\n") + 1
			require.Len(t, r.LineToNode, lines)
			for i, id := range r.LineToNode {
				if id == 0 {
					continue
				}
				_, ok := r.NodeByID(id)
				assert.True(t, ok, "line %d maps to unknown id %d", i, id)
			}
		})
	}
}

func TestNestingIsWellFormed(t *testing.T) {
	for lang, src := range corpus {
		t.Run(lang.String(), func(t *testing.T) {
			r := Parse(src, lang, Options{})
			seen := map[int]bool{0: true}
			for i, n := range r.Nodes {
				assert.Equal(t, i+1, n.ID, "ids are dense and ordered")
				assert.True(t, seen[n.ParentID], "node %d has parent %d created later", n.ID, n.ParentID)
				assert.NotEqual(t, n.ID, n.ParentID)
				seen[n.ID] = true
			}
		})
	}
}

func TestUnknownLanguageYieldsEmptyOutline(t *testing.T) {
	r := Parse("function foo() {\n}\n", LangNone, Options{})
	assert.Empty(t, r.Nodes)
	assert.Equal(t, []int{0, 0, 0}, r.LineToNode)
}

func TestBraceOneLiner(t *testing.T) {
	r := Parse("function foo() { return 1; }", JavaScript, Options{})
	require.Len(t, r.Nodes, 1)
	assert.Equal(t, shape{"foo()", Function, 1, 0}, shapes(r)[0])
	assert.False(t, r.HasChildren(1))
}

func TestBraceOneLinerIgnoresQuotedBrace(t *testing.T) {
	r := Parse(`function f() { var s = "}"; }`+"\nfunction g() {\n}", JavaScript, Options{})
	require.Len(t, r.Nodes, 2)
	assert.Equal(t, 0, r.Nodes[1].ParentID, "g must not nest under f")
}

func TestProvisionalDeclarationIsRetracted(t *testing.T) {
	r := Parse("function foo()\n   return 1;", JavaScript, Options{})
	assert.Empty(t, r.Nodes)
	assert.Equal(t, []int{0, 0}, r.LineToNode)
}

func TestProvisionalDeclarationConfirmedAcrossBlankLines(t *testing.T) {
	r := Parse("function foo()\n\n{\n  var x;\n}", JavaScript, Options{})
	require.Len(t, r.Nodes, 1)
	assert.Equal(t, "foo()", r.Nodes[0].Text)
	assert.Equal(t, []int{1, 1, 1, 1, 1}, r.LineToNode)
}

func TestRetractionKeepsDeclarationOnNextLine(t *testing.T) {
	r := Parse("function foo()\nfunction bar() {\n}", JavaScript, Options{})
	require.Len(t, r.Nodes, 1)
	assert.Equal(t, shape{"bar()", Function, 2, 0}, shapes(r)[0])
}

func TestJavaScriptOutline(t *testing.T) {
	r := Parse(corpus[JavaScript], JavaScript, Options{})
	assert.Equal(t, []shape{
		{"App", Class, 1, 0},
		{"start(opts)", PublicMethod, 2, 1},
		{"Outer()", Class, 6, 0},
		{"inner()", PrivateMethod, 7, 3},
		{"Foo.prototype.bar(a)", PrototypeMethod, 10, 0},
		{"fn.plugin(opts)", FrameworkExtension, 12, 0},
		{"pending()", Function, 14, 0},
	}, shapes(r))
}

func TestNodeJSSharesJavaScriptRules(t *testing.T) {
	src := "function Outer() {\n  function inner() {\n  }\n}"
	assert.Equal(t, shapes(Parse(src, JavaScript, Options{})), shapes(Parse(src, NodeJS, Options{})))
}

func TestPHPOutline(t *testing.T) {
	r := Parse(corpus[PHP], PHP, Options{})
	assert.Equal(t, []shape{
		{"Foo", Class, 2, 0},
		{"secret($a)", PrivateMethod, 3, 1},
		{"make()", PublicStaticMethod, 5, 1},
	}, shapes(r))
}

func TestCSSOutline(t *testing.T) {
	r := Parse(corpus[CSS], CSS, Options{})
	assert.Equal(t, []shape{
		{"body", StyleRule, 1, 0},
		{"a.link:hover", StyleRule, 4, 0},
		{"media screen", AtRule, 5, 0},
		{"p", StyleRule, 6, 0},
	}, shapes(r))
}

func TestCppOutline(t *testing.T) {
	r := Parse(corpus[Cpp], Cpp, Options{})
	assert.Equal(t, []shape{
		{"Widget", Class, 1, 0},
		{"size()", Function, 3, 1},
	}, shapes(r))
}

func TestBashOutline(t *testing.T) {
	r := Parse(corpus[Bash], Bash, Options{})
	assert.Equal(t, []shape{
		{"deploy", Function, 1, 0},
		{"build()", Function, 4, 0},
	}, shapes(r))
}

func TestActionScriptOutline(t *testing.T) {
	r := Parse(corpus[ActionScript], ActionScript, Options{})
	assert.Equal(t, []shape{
		{"com.example", Class, 1, 0},
		{"Foo", Class, 2, 1},
		{"bar(x:int)", PublicMethod, 3, 2},
	}, shapes(r))
}

func TestPythonIndentation(t *testing.T) {
	r := Parse(corpus[Python], Python, Options{})
	assert.Equal(t, []shape{
		{"A", Class, 1, 0},
		{"m(self)", Function, 2, 1},
		{"n(self)", Function, 5, 1},
	}, shapes(r))
}

func TestPythonDedentClosesDefinitions(t *testing.T) {
	src := "def a():\n    x = 1\ny = 2\ndef b(\n        arg):\n    pass\n"
	r := Parse(src, Python3, Options{})
	assert.Equal(t, []shape{
		{"a()", Function, 1, 0},
		{"b( ...)", Function, 4, 0},
	}, shapes(r))
}

func TestPythonTabsCountOneLevelEach(t *testing.T) {
	src := "class A:\n\tdef m(self):\n\t\tpass\n\tdef n(self):\n\t\tpass"
	r := Parse(src, Python, Options{})
	require.Len(t, r.Nodes, 3)
	assert.Equal(t, 1, r.Nodes[2].ParentID)
}

func TestPythonDocstringsAreIgnored(t *testing.T) {
	src := "def f():\n    \"\"\"\n    def fake():\n    \"\"\"\n    return 1"
	r := Parse(src, Python, Options{})
	require.Len(t, r.Nodes, 1)
	assert.Equal(t, "f()", r.Nodes[0].Text)
}

func TestCoffeeOutline(t *testing.T) {
	r := Parse(corpus[CoffeeScript], CoffeeScript, Options{})
	assert.Equal(t, []shape{
		{"Animal", Class, 1, 0},
		{"constructor(@name)", Function, 2, 1},
		{"move(meters)", Function, 3, 1},
	}, shapes(r))
}

func TestLuaOutline(t *testing.T) {
	r := Parse(corpus[Lua], Lua, Options{})
	assert.Equal(t, []shape{
		{"helper(a)", PrivateMethod, 1, 0},
		{"M.run(x, y)", Function, 4, 0},
	}, shapes(r))
}

func TestLuaOneLinerIsClosed(t *testing.T) {
	r := Parse("local function id(x) return x end\nfunction top()\nend", Lua, Options{})
	require.Len(t, r.Nodes, 2)
	assert.Equal(t, 0, r.Nodes[1].ParentID)
}

func TestRubyVisibility(t *testing.T) {
	r := Parse(corpus[Ruby], Ruby, Options{})
	assert.Equal(t, []shape{
		{"C", Class, 1, 0},
		{"a", PrivateMethod, 3, 1},
		{"b", PublicMethod, 5, 1},
	}, shapes(r))
	assert.Equal(t, "a", r.Nodes[1].Tooltip)
}

func TestRubyBlocksDoNotCloseDefinitions(t *testing.T) {
	src := `module Tools
  class Runner
    def self.run(items)
      items.each do |i|
        if i
          puts i
        end
      end
    end
    def stop
    end
  end
end
class Other
end`
	r := Parse(src, Ruby, Options{})
	assert.Equal(t, []shape{
		{"Tools", Class, 1, 0},
		{"Runner", Class, 2, 1},
		{"run", PublicStaticMethod, 3, 2},
		{"stop", PublicMethod, 10, 2},
		{"Other", Class, 14, 0},
	}, shapes(r))
}

func TestRubyHeredocIsSkipped(t *testing.T) {
	src := "class Doc\n  TEXT = <<EOS\ndef fake\nEOS\n  def real\n  end\nend"
	r := Parse(src, Ruby, Options{})
	assert.Equal(t, []shape{
		{"Doc", Class, 1, 0},
		{"real", PublicMethod, 5, 1},
	}, shapes(r))
}

func TestPerlOutline(t *testing.T) {
	r := Parse(corpus[Perl], Perl, Options{})
	assert.Equal(t, []shape{
		{"Foo", Class, 1, 0},
		{"new", PublicMethod, 2, 1},
		{"_helper", PrototypeMethod, 5, 1},
	}, shapes(r))
}

func TestPerlPackageResetsNesting(t *testing.T) {
	src := "package A;\nsub one {\n}\npackage B;\nsub two {\n}"
	r := Parse(src, Perl, Options{})
	assert.Equal(t, []shape{
		{"A", Class, 1, 0},
		{"one", PublicMethod, 2, 1},
		{"B", Class, 4, 0},
		{"two", PublicMethod, 5, 3},
	}, shapes(r))
}

func TestPerlPodIsSkipped(t *testing.T) {
	src := "=pod\n\nsub hidden {\n}\n\n=cut\nsub visible {\n}\n__END__\nsub after {\n}"
	r := Parse(src, Perl, Options{})
	require.Len(t, r.Nodes, 1)
	assert.Equal(t, "visible", r.Nodes[0].Text)
}

func TestHTMLSelectorLabel(t *testing.T) {
	r := Parse(`<div id="x" class="a b">`, HTML, Options{})
	require.Len(t, r.Nodes, 1)
	assert.Equal(t, "div#x.a.b", r.Nodes[0].Text)
	assert.Equal(t, Tag, r.Nodes[0].Kind)
}

func TestXMLNestingAndComments(t *testing.T) {
	r := Parse(corpus[XML], XML, Options{})
	assert.Equal(t, []shape{
		{"root", Tag, 1, 0},
		{`item[name="a"]`, Tag, 2, 1},
	}, shapes(r))
}

func TestXMLManyTagsOnOneLine(t *testing.T) {
	r := Parse("<ul><li>a</li><li>b</li></ul>\n<p>", XML, Options{})
	assert.Equal(t, []shape{
		{"ul", Tag, 1, 0},
		{"li", Tag, 1, 1},
		{"li", Tag, 1, 1},
		{"p", Tag, 2, 0},
	}, shapes(r))
	assert.Equal(t, []int{1, 4}, r.LineToNode)
}

func TestXMLTagSpanningLines(t *testing.T) {
	r := Parse("<select name=\"s\"\n   class=\"c\">\n<option value=\"1\">One</option>\n</select>", HTML5, Options{})
	assert.Equal(t, []shape{
		{`select[name="s"]...`, Tag, 1, 0},
		{`option[value="1"]`, Tag, 3, 1},
	}, shapes(r))
}

func TestHTMLFilter(t *testing.T) {
	src := corpus[HTML5]
	all := Parse(src, HTML5, Options{})
	assert.Len(t, all.Nodes, 4)

	r := Parse(src, HTML5, Options{HTMLFilter: true})
	assert.Equal(t, []shape{
		{"div", Tag, 1, 0},
		{"p.x", Tag, 2, 1},
	}, shapes(r))
	assert.Equal(t, []int{1, 2, 2, 2, 2}, r.LineToNode)

	// The filter only applies to HTML dialects.
	x := Parse(src, XML, Options{HTMLFilter: true})
	assert.Len(t, x.Nodes, 4)
}

func TestDefinitionBlockJumpsToBlockStart(t *testing.T) {
	src := "function foo(a,\n             b) {\n  return a;\n}"
	r := Parse(src, JavaScript, Options{})
	require.Len(t, r.Nodes, 1)
	assert.Equal(t, "foo(a, b)", r.Nodes[0].Text)
	assert.Equal(t, 1, r.Nodes[0].Line)
	assert.Equal(t, 1, r.Locate(2))
	assert.Equal(t, []int{1, 1, 1, 1}, r.LineToNode)
}

func TestUnterminatedDefinitionBlockIsDropped(t *testing.T) {
	r := Parse("function foo(a,\n  b,", JavaScript, Options{})
	assert.Empty(t, r.Nodes)
	assert.Len(t, r.LineToNode, 2)
}

func TestLineEndings(t *testing.T) {
	a := Parse("function a() {\r\n}\r\nfunction b() {\r}", JavaScript, Options{})
	b := Parse("function a() {\n}\nfunction b() {\n}", JavaScript, Options{})
	assert.Equal(t, a, b)
}

func TestRubyOperatorMethods(t *testing.T) {
	src := `class Point
  def ==(other)
    x == other.x
  end
  def to_s
    "p"
  end
  def x=(v)
    @x = v
  end
end
class Other
end`
	r := Parse(src, Ruby, Options{})
	assert.Equal(t, []shape{
		{"Point", Class, 1, 0},
		{"==", PublicMethod, 2, 1},
		{"to_s", PublicMethod, 5, 1},
		{"x=", PublicMethod, 8, 1},
		{"Other", Class, 12, 0},
	}, shapes(r))
}

func TestRubyOneLineConditionalAssignment(t *testing.T) {
	src := `module M
  def self.y
    z = if a then 1 else 2 end
  end
  def w; end
end
def top
end`
	r := Parse(src, Ruby, Options{})
	assert.Equal(t, []shape{
		{"M", Class, 1, 0},
		{"y", PublicStaticMethod, 2, 1},
		{"w", PublicMethod, 5, 1},
		{"top", PublicMethod, 7, 0},
	}, shapes(r))
}

func TestPythonDefUnderControlStructure(t *testing.T) {
	src := `class C:
    if flag:
        def a(self):
            pass
    def b(self):
        pass
def outer():
    for i in x:
        def inner():
            pass
    y = 1
def after():
    pass`
	r := Parse(src, Python, Options{})
	assert.Equal(t, []shape{
		{"C", Class, 1, 0},
		{"a(self)", Function, 3, 1},
		{"b(self)", Function, 5, 1},
		{"outer()", Function, 7, 0},
		{"inner()", Function, 9, 4},
		{"after()", Function, 12, 0},
	}, shapes(r))
}

func TestHTMLFilterIgnoresContinuationSuffix(t *testing.T) {
	src := "<section\n  hidden>\n</section>\n<p id=\"k\">x</p>"
	all := Parse(src, HTML5, Options{})
	assert.Equal(t, []shape{
		{"section...", Tag, 1, 0},
		{"p#k", Tag, 4, 0},
	}, shapes(all))

	r := Parse(src, HTML5, Options{HTMLFilter: true})
	assert.Equal(t, []shape{{"p#k", Tag, 4, 0}}, shapes(r))
	assert.Equal(t, []int{0, 0, 0, 2}, r.LineToNode)
}

func TestRetractClearsOnlyTheRetractedLine(t *testing.T) {
	b := newBuilder(4)
	b.apply(LineResult{Emits: []Emit{{Text: "a", Kind: Class, Line: 1, Open: true}}})
	b.apply(LineResult{Emits: []Emit{{Text: "b()", Kind: Function, Line: 3, Provisional: true}}})
	assert.Equal(t, []int{1, -1, 2, -1}, b.owner)

	b.apply(LineResult{Retract: true})
	assert.Equal(t, []int{1, -1, -1, -1}, b.owner)
	assert.Equal(t, []int{1}, b.parents)
	assert.Len(t, b.nodes, 1)
}

func TestManyRetractionsKeepTheLineMapTotal(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 500; i++ {
		sb.WriteString("function f()\n  return 1;\n")
	}
	r := Parse(sb.String(), JavaScript, Options{})
	assert.Empty(t, r.Nodes)
	assert.Len(t, r.LineToNode, 1001)
	for _, id := range r.LineToNode {
		assert.Zero(t, id)
	}
}
