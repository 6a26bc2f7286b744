package display

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/backmassage/mediainfo/internal/menu"
	"github.com/backmassage/mediainfo/internal/term"
)

var (
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	parentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	iconStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	ruleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// RenderTree writes nodes as an indented tree. Icon identifiers are shown
// in brackets, aligned in one column. Styling is applied only when colors
// are enabled.
func RenderTree(w io.Writer, title string, nodes []menu.Node) error {
	var lines []treeLine
	collect(&lines, nodes, "")
	width := 0
	for _, l := range lines {
		width = max(width, runewidth.StringWidth(l.prefix+l.label))
	}

	var b strings.Builder
	if title != "" {
		b.WriteString(style(parentStyle, title))
		b.WriteByte('\n')
	}
	for _, l := range lines {
		text := l.label
		switch {
		case l.separator:
			text = style(ruleStyle, text)
		case l.parent:
			text = style(parentStyle, text)
		default:
			text = style(labelStyle, text)
		}
		b.WriteString(l.prefix)
		b.WriteString(text)
		if l.icon != "" {
			pad := width - runewidth.StringWidth(l.prefix+l.label)
			b.WriteString(strings.Repeat(" ", pad+2))
			b.WriteString(style(iconStyle, "["+l.icon+"]"))
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

type treeLine struct {
	prefix    string
	label     string
	icon      string
	parent    bool
	separator bool
}

func collect(lines *[]treeLine, nodes []menu.Node, indent string) {
	for i, n := range nodes {
		last := i == len(nodes)-1
		branch, next := "├─ ", "│  "
		if last {
			branch, next = "└─ ", "   "
		}
		if n.Separator {
			*lines = append(*lines, treeLine{prefix: indent + branch, label: "────", separator: true})
			continue
		}
		*lines = append(*lines, treeLine{
			prefix: indent + branch,
			label:  n.Label,
			icon:   n.Icon,
			parent: len(n.Children) > 0,
		})
		collect(lines, n.Children, indent+next)
	}
}

func style(s lipgloss.Style, text string) string {
	if !term.Enabled() {
		return text
	}
	return s.Render(text)
}
