package render

import (
	"strings"

	"github.com/backmassage/mediainfo/internal/config"
	"github.com/backmassage/mediainfo/internal/display"
	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/menu"
)

// Menu builds the tree for items in order. With EmptyItemsSkipped, a leaf
// whose template has tokens but renders unfilled is dropped, and a parent
// is dropped once none of its children survive. Children are decided
// before their parent. Separators are tidied after skipping.
func (r *Renderer) Menu(items []config.MenuItem, in info.Info) []menu.Node {
	out := make([]menu.Node, 0, len(items))
	for _, it := range items {
		if it.IsSeparator() {
			out = append(out, menu.NewSeparator())
			continue
		}
		if nodes, ok := r.special(strings.TrimSpace(it.Template), in); ok {
			out = append(out, nodes...)
			continue
		}

		children := r.Menu(it.Children, in)
		label, filled := r.Placeholders(it.Template, in)
		if r.cfg.EmptyItemsSkipped {
			if len(it.Children) > 0 && len(children) == 0 {
				continue
			}
			if len(it.Children) == 0 && !filled && hasTokens(it.Template) {
				continue
			}
		}
		out = append(out, menu.Node{
			Label:    label,
			Icon:     it.Image,
			Children: children,
			Enabled:  true,
		})
	}
	return menu.TrimSeparators(out)
}

func hasTokens(tpl string) bool { return tokenRe.MatchString(tpl) }

// special expands a composite item. ok is false when the template is not a
// special token for the record's category. An expansion may be empty.
func (r *Renderer) special(tpl string, in info.Info) ([]menu.Node, bool) {
	var streams info.Streams
	switch v := in.(type) {
	case *info.VideoInfo:
		streams = v.Streams
	case *info.AudioInfo:
		streams = v.Streams
	case *info.ModelInfo:
		if tpl == "[[meshes]]" {
			return r.meshes(v), true
		}
		return nil, false
	case *info.ExcelInfo:
		if tpl == "[[sheet-list]]" {
			return r.sheetList(v), true
		}
		return nil, false
	default:
		return nil, false
	}

	switch tpl {
	case "[[tracks]]":
		if r.cfg.TracksGrouped {
			return r.groupedTracks(streams), true
		}
		return r.trackNodes(streams, func(info.Stream) bool { return true }), true
	case "[[video]]":
		return r.trackNodes(streams, isKind(info.StreamVideo)), true
	case "[[audio]]":
		return r.trackNodes(streams, isKind(info.StreamAudio)), true
	case "[[subtitles]]":
		return r.trackNodes(streams, isKind(info.StreamSubtitle)), true
	}
	return nil, false
}

func isKind(k info.StreamKind) func(info.Stream) bool {
	return func(s info.Stream) bool { return s.Kind() == k }
}

// groupedTracks collects the tracks into Video, Audio and Subtitles
// submenus, in that order, each present only when it has entries. Order
// within a group follows the container.
func (r *Renderer) groupedTracks(s info.Streams) []menu.Node {
	groups := []struct {
		kind  info.StreamKind
		label string
		icon  string
	}{
		{info.StreamVideo, "Video", "video"},
		{info.StreamAudio, "Audio", "audio"},
		{info.StreamSubtitle, "Subtitles", "txt"},
	}
	var out []menu.Node
	for _, g := range groups {
		children := r.trackNodes(s, isKind(g.kind))
		if len(children) == 0 {
			continue
		}
		out = append(out, menu.Node{
			Label:    r.p.Sprintf(g.label),
			Icon:     g.icon,
			Children: children,
			Enabled:  true,
		})
	}
	return out
}

// trackNodes renders one entry per matching stream. Other streams never
// render.
func (r *Renderer) trackNodes(s info.Streams, keep func(info.Stream) bool) []menu.Node {
	var out []menu.Node
	for _, st := range s {
		if !keep(st) {
			continue
		}
		switch v := st.(type) {
		case info.VideoStream:
			out = append(out, menu.Node{Label: r.videoLine(v), Icon: "video", Enabled: true})
		case info.AudioStream:
			out = append(out, menu.Node{Label: r.audioLine(v), Icon: "audio", Enabled: true})
		case info.SubtitleStream:
			out = append(out, menu.Node{Label: r.subtitleLine(v), Icon: "txt", Enabled: true})
		}
	}
	return out
}

// videoLine renders "W × H, HH:MM:SS (N frames), RATE/s (codec, LANG)".
func (r *Renderer) videoLine(v info.VideoStream) string {
	var parts []string
	if v.Width > 0 && v.Height > 0 {
		parts = append(parts, dimensions(v.Width, v.Height))
	}
	if v.Duration > 0 {
		d := display.FormatDuration(v.Duration)
		if !r.cfg.FramesHidden && v.Frames > 0 {
			d += " (" + r.p.Sprintf("%s frames", r.integer(v.Frames)) + ")"
		}
		parts = append(parts, d)
	}
	if !r.cfg.BPSHidden && v.BitRate > 0 {
		parts = append(parts, display.FormatByteRate(v.BitRate))
	}
	return r.annotate(strings.Join(parts, ", "), v.Codec, v.Language)
}

// audioLine renders "HH:MM:SS, RATE/s (codec, LANG)".
func (r *Renderer) audioLine(a info.AudioStream) string {
	var parts []string
	if a.Duration > 0 {
		parts = append(parts, display.FormatDuration(a.Duration))
	}
	if !r.cfg.BPSHidden && a.BitRate > 0 {
		parts = append(parts, display.FormatByteRate(a.BitRate))
	}
	return r.annotate(strings.Join(parts, ", "), a.Codec, a.Language)
}

// subtitleLine renders the title followed by the language in parentheses,
// or the bare parenthesised language when there is no title.
func (r *Renderer) subtitleLine(s info.SubtitleStream) string {
	return r.annotate(info.Deref(s.Title), "", s.Language)
}

// annotate appends "(codec, LANG)" built from the visible, non-empty
// values.
func (r *Renderer) annotate(line, codec string, lang *string) string {
	var notes []string
	if !r.cfg.CodecHidden && codec != "" {
		notes = append(notes, codec)
	}
	if l := info.Deref(lang); l != "" {
		notes = append(notes, strings.ToUpper(l))
	}
	if len(notes) == 0 {
		return line
	}
	note := "(" + strings.Join(notes, ", ") + ")"
	if line == "" {
		return note
	}
	return line + " " + note
}

var geometryIcons = map[info.Geometry]string{
	info.GeometryPoints:        "3d_points",
	info.GeometryLines:         "3d_lines",
	info.GeometryTriangles:     "3d_triangle",
	info.GeometryTriangleStrip: "3d_triangle_stripe",
	info.GeometryQuads:         "3d_quads",
	info.GeometryVariable:      "3d_variable",
}

// meshes expands into one "N Meshes" entry listing every mesh. A single
// mesh has its details inlined after its own entry; several meshes each
// get a submenu.
func (r *Renderer) meshes(m *info.ModelInfo) []menu.Node {
	if len(m.Meshes) == 0 {
		return nil
	}
	var children []menu.Node
	for _, mesh := range m.Meshes {
		entry := menu.Node{Label: mesh.Name, Icon: "3d", Enabled: true}
		if entry.Label == "" {
			entry.Label = r.p.Sprintf("Mesh")
		}
		if len(mesh.Submeshes) > 0 {
			if icon, ok := geometryIcons[mesh.Submeshes[0].Geometry]; ok {
				entry.Icon = icon
			}
		}
		details := r.meshDetails(mesh)
		if len(m.Meshes) == 1 {
			children = append(children, entry)
			children = append(children, details...)
			continue
		}
		entry.Children = details
		children = append(children, entry)
	}
	return []menu.Node{{
		Label:    r.plural(len(m.Meshes), "1 Mesh", "%s Meshes"),
		Icon:     "3d",
		Children: children,
		Enabled:  true,
	}}
}

func (r *Renderer) meshDetails(mesh info.Mesh) []menu.Node {
	out := []menu.Node{
		{Label: r.plural(mesh.VertexCount, "1 Vertex", "%s Vertices"), Enabled: true},
		menu.NewSeparator(),
	}
	features := []struct {
		has   bool
		label string
		icon  string
	}{
		{mesh.HasNormals, "with normals", "3d_normal"},
		{mesh.HasTangent, "with tangents", "3d_tangent"},
		{mesh.HasVertexColor, "with vertex colors", "3d_color"},
		{mesh.HasTextureCoordinate, "with texture coordinates", "3d_uv"},
		{mesh.HasOcclusion, "with occlusion", "3d_occlusion"},
	}
	for _, f := range features {
		if f.has {
			out = append(out, menu.Node{Label: r.p.Sprintf(f.label), Icon: f.icon, Enabled: true})
		}
	}
	return menu.TrimSeparators(out)
}

// sheetList expands into a submenu naming every sheet.
func (r *Renderer) sheetList(x *info.ExcelInfo) []menu.Node {
	if len(x.SheetNames) == 0 {
		return nil
	}
	children := make([]menu.Node, len(x.SheetNames))
	for i, name := range x.SheetNames {
		children[i] = menu.Node{Label: name, Icon: "xls", Enabled: true}
	}
	return []menu.Node{{
		Label:    r.plural(max(x.Sheets, len(x.SheetNames)), "1 sheet", "%s sheets"),
		Icon:     "xls",
		Children: children,
		Enabled:  true,
	}}
}
