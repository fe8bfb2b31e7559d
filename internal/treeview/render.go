package treeview

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"srctree/internal/outline"
)

var (
	colorClass   = lipgloss.Color("39")
	colorFunc    = lipgloss.Color("86")
	colorTag     = lipgloss.Color("220")
	colorStyle   = lipgloss.Color("42")
	colorAtRule  = lipgloss.Color("205")
	colorDim     = lipgloss.Color("241")
	colorPrivate = lipgloss.Color("245")
)

// Theme styles a row label by kind. The zero Theme renders plain text.
type Theme struct {
	Color bool
}

// Style returns the lipgloss style for a node kind.
func (t Theme) Style(k outline.Kind) lipgloss.Style {
	s := lipgloss.NewStyle()
	if !t.Color {
		return s
	}
	switch k {
	case outline.Class, outline.PrototypeClass:
		s = s.Foreground(colorClass).Bold(true)
	case outline.PrivateMethod, outline.PrivateStaticMethod:
		s = s.Foreground(colorPrivate)
	case outline.Tag:
		s = s.Foreground(colorTag)
	case outline.StyleRule:
		s = s.Foreground(colorStyle)
	case outline.AtRule:
		s = s.Foreground(colorAtRule)
	default:
		s = s.Foreground(colorFunc)
	}
	if k.IsStatic() {
		s = s.Italic(true)
	}
	return s
}

func (t Theme) dim(s string) string {
	if !t.Color {
		return s
	}
	return lipgloss.NewStyle().Foreground(colorDim).Render(s)
}

func (t Theme) label(n outline.Node) string {
	if !t.Color {
		return n.Text
	}
	return t.Style(n.Kind).Render(n.Text)
}

// Marker returns the expand/collapse glyph for a row.
func Marker(r Row) string {
	switch {
	case !r.HasChildren:
		return " "
	case r.Open:
		return "▾"
	default:
		return "▸"
	}
}

// FormatRow renders one row without a trailing newline.
func (t Theme) FormatRow(r Row) string {
	return fmt.Sprintf("%s%s %s %s",
		strings.Repeat("  ", r.Level),
		Marker(r),
		t.label(r.Node),
		t.dim(fmt.Sprintf(":%d", r.Node.Line)),
	)
}

// Render writes every visible row, one per line.
func (v *View) Render(w io.Writer, t Theme) error {
	for _, r := range v.rows {
		if _, err := io.WriteString(w, t.FormatRow(r)+"\n"); err != nil {
			return err
		}
	}
	return nil
}
