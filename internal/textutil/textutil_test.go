package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitLines(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", []string{""}},
		{"a", []string{"a"}},
		{"a\nb", []string{"a", "b"}},
		{"a\r\nb\rc\n", []string{"a", "b", "c", ""}},
		{"\n\n", []string{"", "", ""}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, SplitLines(c.in), "input %q", c.in)
	}
}

func TestNormalizeUTF8LF(t *testing.T) {
	got := NormalizeUTF8LF([]byte("a\r\nb\rc\xff"))
	assert.Equal(t, "a\nb\nc�", string(got))
}

func TestJoinLines(t *testing.T) {
	assert.Nil(t, JoinLines(nil))
	assert.Equal(t, "a\nb\n", string(JoinLines([]string{"a", "b"})))
	assert.Equal(t, "a\n", string(JoinLines([]string{"a\n"})))
}
