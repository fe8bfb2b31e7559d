package outline

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func simplifyAll(syn *simplifierSyntax, lines ...string) []string {
	s := newSimplifier(syn)
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, s.simplify(l))
	}
	return out
}

func TestSimplifyRubyStrings(t *testing.T) {
	got := simplifyAll(rubySyntax,
		`x = "a { b" + 'c'`,
		`y = 1 # comment {`,
		`s = "multi`,
		`line {" + z`,
		`w = %q{a {nested} b} + v`,
	)
	assert.Equal(t, []string{
		`x = '' + ''`,
		`y = 1 `,
		`s = ''`,
		` + z`,
		`w = '' + v`,
	}, got)
}

func TestSimplifyRubyHeredocAndDocs(t *testing.T) {
	got := simplifyAll(rubySyntax,
		`text = <<EOS`,
		`def hidden`,
		`EOS`,
		`=begin`,
		`class Hidden`,
		`=end`,
		`def shown`,
		`__END__`,
		`def after`,
	)
	assert.Equal(t, []string{
		`text = ''`, ``, ``, ``, ``, ``, `def shown`, ``, ``,
	}, got)
}

func TestSimplifyRubyDivisionIsNotARegex(t *testing.T) {
	got := simplifyAll(rubySyntax, `a = b / c / d`, `parts = split /,/`)
	assert.Equal(t, []string{`a = b / c / d`, `parts = split ''`}, got)
}

func TestSimplifyPerlQuoteForms(t *testing.T) {
	got := simplifyAll(perlSyntax,
		`my $s = q{a {b} c};`,
		`$x =~ s/{/}/g;`,
		`my @w = qw(a b c);`,
		`print "}" if $y =~ m/\}/;`,
	)
	assert.Equal(t, []string{
		`my $s = '';`,
		`$x =~ '';`,
		`my @w = '';`,
		`print '' if $y =~ '';`,
	}, got)
}

func TestSimplifyPerlHeredocQueue(t *testing.T) {
	got := simplifyAll(perlSyntax,
		`print <<A, <<B;`,
		`sub a {`,
		`A`,
		`sub b {`,
		`B`,
		`sub c {`,
	)
	assert.Equal(t, []string{`print '', '';`, ``, ``, ``, ``, `sub c {`}, got)
}

func TestEscapeRegex(t *testing.T) {
	assert.Equal(t, `a\{b\}\.\*_1`, escapeRegex("a{b}.*_1"))
}

func TestSimplifyCommentAfterNonASCII(t *testing.T) {
	got := newSimplifier(rubySyntax).simplify("x = café# comment {")
	assert.Equal(t, "x = café", got)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "naïve = '' ", newSimplifier(rubySyntax).simplify(`naïve = "é{" # é`))
}

func TestByteOffset(t *testing.T) {
	assert.Equal(t, 0, byteOffset("héllo", 0))
	assert.Equal(t, 3, byteOffset("héllo", 2))
	assert.Equal(t, 6, byteOffset("héllo", 9))
}
