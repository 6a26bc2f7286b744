package menu

import "testing"

func labels(nodes []Node) string {
	s := ""
	for _, n := range nodes {
		if n.Separator {
			s += "-"
			continue
		}
		s += n.Label
	}
	return s
}

func TestTrimSeparators(t *testing.T) {
	sep := NewSeparator()
	a, b := Node{Label: "a"}, Node{Label: "b"}
	tests := []struct {
		name string
		in   []Node
		want string
	}{
		{"empty", nil, ""},
		{"only separators", []Node{sep, sep}, ""},
		{"leading and trailing", []Node{sep, a, b, sep}, "ab"},
		{"doubled", []Node{a, sep, sep, sep, b}, "a-b"},
		{"kept between items", []Node{a, sep, b}, "a-b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := labels(TrimSeparators(tt.in)); got != tt.want {
				t.Errorf("TrimSeparators() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStripIcons(t *testing.T) {
	nodes := []Node{{Label: "Audio", Icon: "audio", Children: []Node{{Label: "AAC", Icon: "audio"}}}}
	StripIcons(nodes)
	if nodes[0].Icon != "" || nodes[0].Children[0].Icon != "" {
		t.Errorf("icons left after StripIcons: %+v", nodes)
	}
}
