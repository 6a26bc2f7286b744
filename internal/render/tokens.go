package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/backmassage/mediainfo/internal/display"
	"github.com/backmassage/mediainfo/internal/info"
)

func (r *Renderer) integer(n int64) string { return display.FormatInteger(r.p, n) }

// plural renders n with the singular message when n is 1 and the plural
// format (taking the grouped number as %s) otherwise.
func (r *Renderer) plural(n int, one, many string) string {
	if n == 1 {
		return r.p.Sprintf(one)
	}
	return r.p.Sprintf(many, r.integer(int64(n)))
}

// count is a plural value present when n is positive.
func (r *Renderer) count(n int, one, many string) value {
	return value{text: r.plural(n, one, many), present: n > 0}
}

func dimensions(w, h int) string { return fmt.Sprintf("%d × %d", w, h) }

func (r *Renderer) imageToken(name string, in *info.ImageInfo) (value, bool) {
	cfg := r.cfg
	switch name {
	case "size":
		return value{text: dimensions(in.Width, in.Height), present: !in.Empty()}, true
	case "width":
		return value{text: r.p.Sprintf("%s px", r.integer(int64(in.Width))), present: in.Width > 0}, true
	case "height":
		return value{text: r.p.Sprintf("%s px", r.integer(int64(in.Height))), present: in.Height > 0}, true
	case "ratio":
		if in.Width <= 0 || in.Height <= 0 {
			return value{}, true
		}
		g := gcd(in.Width, in.Height)
		return text(fmt.Sprintf("%d:%d", in.Width/g, in.Height/g)), true
	case "resolution":
		mp := float64(in.Width) * float64(in.Height) / 1e6
		return value{text: r.p.Sprintf("%s MP", display.FormatDecimal(r.p, mp)), present: mp > 0}, true
	case "color":
		if cfg.ColorHidden {
			return value{}, true
		}
		return text(in.ColorMode), true
	case "depth":
		if cfg.DepthHidden || in.Depth <= 0 {
			return value{}, true
		}
		return text(r.p.Sprintf("%d bit", in.Depth)), true
	case "color-depth":
		var parts []string
		if !cfg.ColorHidden && in.ColorMode != "" {
			parts = append(parts, in.ColorMode)
		}
		if !cfg.DepthHidden && in.Depth > 0 {
			parts = append(parts, r.p.Sprintf("%d bit", in.Depth))
		}
		return text(strings.Join(parts, " ")), true
	case "dpi":
		if cfg.PrintHidden || in.DPI <= 0 {
			return value{}, true
		}
		return text(r.p.Sprintf("%d dpi", in.DPI)), true
	case "print":
		if cfg.PrintHidden {
			return value{}, true
		}
		return text(display.FormatPrintSize(r.p, in.Width, in.Height, in.DPI, cfg.Unit)), true
	case "custom-print":
		if cfg.CustomPrintHidden || cfg.CustomDPI <= 0 || (in.DPI == cfg.CustomDPI && !cfg.PrintHidden) {
			return value{}, true
		}
		return text(display.FormatPrintSize(r.p, in.Width, in.Height, cfg.CustomDPI, cfg.Unit)), true
	}
	return value{}, false
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func (r *Renderer) mediaToken(name string, s info.Streams) (value, bool) {
	cfg := r.cfg
	switch name {
	case "duration":
		d := s.Duration()
		return value{text: display.FormatDuration(d), present: d > 0}, true
	case "bitrate":
		if cfg.BPSHidden {
			return value{}, true
		}
		bps := s.BitRate()
		return value{text: display.FormatByteRate(bps), present: bps > 0}, true
	case "codec":
		if cfg.CodecHidden {
			return value{}, true
		}
		return text(strings.Join(codecs(s), ", ")), true
	case "size":
		for _, v := range s.Video() {
			if v.Width > 0 && v.Height > 0 {
				return text(dimensions(v.Width, v.Height)), true
			}
		}
		return value{}, true
	case "frames":
		if cfg.FramesHidden {
			return value{}, true
		}
		var n int64
		for _, v := range s.Video() {
			n = max(n, v.Frames)
		}
		return value{text: r.p.Sprintf("%s frames", r.integer(n)), present: n > 0}, true
	case "languages":
		langs := s.Languages()
		for i := range langs {
			langs[i] = strings.ToUpper(langs[i])
		}
		return text(strings.Join(langs, ", ")), true
	case "video-count":
		return r.count(len(s.Video()), "1 video track", "%s video tracks"), true
	case "audio-count":
		return r.count(len(s.Audio()), "1 audio track", "%s audio tracks"), true
	case "subtitle-count":
		return r.count(len(s.Subtitles()), "1 subtitle", "%s subtitles"), true
	}
	return value{}, false
}

// codecs lists the distinct video and audio codec labels in stream order.
func codecs(s info.Streams) []string {
	var out []string
	seen := map[string]bool{}
	add := func(c string) {
		if c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, st := range s {
		switch v := st.(type) {
		case info.VideoStream:
			add(v.Codec)
		case info.AudioStream:
			add(v.Codec)
		}
	}
	return out
}

// textToken resolves the deep-scan counters.
func (r *Renderer) textToken(name string, t info.TextStats) (value, bool) {
	switch name {
	case "words":
		if t.Words == nil {
			return value{text: r.p.Sprintf("%s words", r.integer(0))}, true
		}
		return value{text: r.plural(*t.Words, "1 word", "%s words"), present: true}, true
	case "characters":
		if t.Characters == nil {
			return value{text: r.p.Sprintf("%s characters", r.integer(0))}, true
		}
		return value{text: r.plural(*t.Characters, "1 character", "%s characters"), present: true}, true
	}
	return value{}, false
}

// metaToken resolves the descriptive metadata shared by documents.
func (r *Renderer) metaToken(name string, m info.DocMeta) (value, bool) {
	switch name {
	case "title":
		return optional(m.Title), true
	case "author":
		return optional(m.Author), true
	case "subject":
		return optional(m.Subject), true
	case "keywords":
		return optional(m.Keywords), true
	case "application":
		return optional(m.Application), true
	case "producer":
		return optional(m.Producer), true
	case "creation":
		return r.date("Created %s", m.Created), true
	case "modified":
		return r.date("Modified %s", m.Modified), true
	}
	return value{}, false
}

func (r *Renderer) date(format string, t *time.Time) value {
	if t == nil {
		return value{}
	}
	return text(r.p.Sprintf(format, t.In(r.loc).Format("2006-01-02 15:04")))
}

func (r *Renderer) documentToken(name string, t info.TextStats, m info.DocMeta) (value, bool) {
	if v, ok := r.textToken(name, t); ok {
		return v, true
	}
	return r.metaToken(name, m)
}

func (r *Renderer) wordToken(name string, in *info.WordInfo) (value, bool) {
	if name == "pages" {
		return r.count(in.Pages, "1 page", "%s pages"), true
	}
	return r.documentToken(name, in.TextStats, in.Meta)
}

func (r *Renderer) excelToken(name string, in *info.ExcelInfo) (value, bool) {
	switch name {
	case "sheets":
		return r.count(in.Sheets, "1 sheet", "%s sheets"), true
	case "sheet-names":
		return text(strings.Join(in.SheetNames, ", ")), true
	}
	return r.documentToken(name, in.TextStats, in.Meta)
}

func (r *Renderer) powerpointToken(name string, in *info.PowerpointInfo) (value, bool) {
	if name == "slides" {
		return r.count(in.Slides, "1 slide", "%s slides"), true
	}
	return r.documentToken(name, in.TextStats, in.Meta)
}

func (r *Renderer) pdfToken(name string, in *info.PDFInfo) (value, bool) {
	switch name {
	case "pages":
		return r.count(in.Pages, "1 page", "%s pages"), true
	case "version":
		if in.Version == "" {
			return value{}, true
		}
		return text(r.p.Sprintf("PDF version %s", in.Version)), true
	case "paper":
		return text(r.paper(in.PageWidth, in.PageHeight)), true
	}
	return r.documentToken(name, in.TextStats, in.Meta)
}

func (r *Renderer) modelToken(name string, in *info.ModelInfo) (value, bool) {
	switch name {
	case "mesh-count":
		return r.count(len(in.Meshes), "1 Mesh", "%s Meshes"), true
	case "vertex":
		return r.count(in.VertexCount(), "1 Vertex", "%s Vertices"), true
	case "normals":
		return r.feature(in.HasNormals(), "with normals", "without normals"), true
	case "tangents":
		return r.feature(in.HasTangent(), "with tangents", "without tangents"), true
	case "tex-coords":
		return r.feature(in.HasTextureCoordinate(), "with texture coordinates", "without texture coordinates"), true
	case "vertex-color":
		return r.feature(in.HasVertexColor(), "with vertex colors", "without vertex colors"), true
	case "occlusion":
		return r.feature(in.HasOcclusion(), "with occlusion", "without occlusion"), true
	}
	return value{}, false
}

// feature renders a mesh capability; the negative label counts as absent.
func (r *Renderer) feature(has bool, with, without string) value {
	if has {
		return value{text: r.p.Sprintf(with), present: true}
	}
	return value{text: r.p.Sprintf(without)}
}
