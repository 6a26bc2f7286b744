// Package menu defines the toolkit-agnostic menu tree produced by the
// template engine. Front ends map it onto real widgets.
package menu

// Node is one entry of a menu tree.
type Node struct {
	Label     string
	Icon      string // Icon identifier; empty for none.
	Children  []Node
	Enabled   bool
	Separator bool
}

// NewSeparator returns a separator node.
func NewSeparator() Node { return Node{Separator: true} }

// TrimSeparators drops leading and trailing separators and collapses runs
// of adjacent separators into one.
func TrimSeparators(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Separator && (len(out) == 0 || out[len(out)-1].Separator) {
			continue
		}
		out = append(out, n)
	}
	for len(out) > 0 && out[len(out)-1].Separator {
		out = out[:len(out)-1]
	}
	return out
}

// StripIcons clears every icon in the tree, in place.
func StripIcons(nodes []Node) {
	for i := range nodes {
		nodes[i].Icon = ""
		StripIcons(nodes[i].Children)
	}
}
