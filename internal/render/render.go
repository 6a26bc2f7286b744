// Package render turns an info record into text and menu trees. Templates
// are strings with [[token]] placeholders; each category resolves its own
// tokens and falls back to the file tokens shared by every record. Missing
// data never fails a render: it produces empty output and an unfilled
// result.
package render

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/message"

	"github.com/backmassage/mediainfo/internal/config"
	"github.com/backmassage/mediainfo/internal/display"
	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/menu"
)

var tokenRe = regexp.MustCompile(`\[\[([A-Za-z0-9:_-]+)\]\]`)

// Renderer renders records against one configuration. It keeps the
// localized printer between calls and holds no other state, so one
// Renderer may serve many goroutines.
type Renderer struct {
	cfg *config.Config
	p   *message.Printer
	loc *time.Location
}

// New returns a renderer for cfg.
func New(cfg *config.Config) *Renderer {
	return &Renderer{
		cfg: cfg,
		p:   newPrinter(cfg.Locale, cfg.Translations),
		loc: time.Local,
	}
}

// RenderPlaceholders is the one-shot form of [Renderer.Placeholders].
func RenderPlaceholders(tpl string, in info.Info, cfg *config.Config) (string, bool) {
	return New(cfg).Placeholders(tpl, in)
}

// BuildMenu is the one-shot form of [Renderer.Menu].
func BuildMenu(items []config.MenuItem, in info.Info, cfg *config.Config) []menu.Node {
	return New(cfg).Menu(items, in)
}

// Placeholders replaces every token of tpl. filled reports whether at least
// one token had data and rendered to non-empty text. Unknown tokens render
// as the empty string. A template without tokens comes back unchanged and
// unfilled.
func (r *Renderer) Placeholders(tpl string, in info.Info) (string, bool) {
	filled := false
	out := tokenRe.ReplaceAllStringFunc(tpl, func(tok string) string {
		text, present := r.token(tok[2:len(tok)-2], in)
		if present && text != "" {
			filled = true
		}
		return text
	})
	return out, filled
}

// value is a resolved token: its text and whether the record actually
// carried the data behind it.
type value struct {
	text    string
	present bool
}

func (r *Renderer) token(name string, in info.Info) (string, bool) {
	var (
		v  value
		ok bool
	)
	switch rec := in.(type) {
	case *info.ImageInfo:
		v, ok = r.imageToken(name, rec)
	case *info.VideoInfo:
		v, ok = r.mediaToken(name, rec.Streams)
	case *info.AudioInfo:
		v, ok = r.mediaToken(name, rec.Streams)
	case *info.WordInfo:
		v, ok = r.wordToken(name, rec)
	case *info.ExcelInfo:
		v, ok = r.excelToken(name, rec)
	case *info.PowerpointInfo:
		v, ok = r.powerpointToken(name, rec)
	case *info.PDFInfo:
		v, ok = r.pdfToken(name, rec)
	case *info.ModelInfo:
		v, ok = r.modelToken(name, rec)
	}
	if !ok && in != nil {
		v, ok = r.fileToken(name, in.Source())
	}
	if !ok {
		return "", false
	}
	if !v.present && r.cfg.EmptyItemsSkipped {
		return "", false
	}
	return v.text, v.present
}

// fileToken resolves the tokens common to every record.
func (r *Renderer) fileToken(name string, f info.File) (value, bool) {
	switch name {
	case "file-name":
		return text(filepath.Base(f.Path)), true
	case "file-ext":
		return text(strings.TrimPrefix(filepath.Ext(f.Path), ".")), true
	case "file-path":
		return text(f.Path), true
	case "file-dir":
		if f.Path == "" {
			return value{}, true
		}
		return text(filepath.Dir(f.Path)), true
	case "file-size":
		if f.Size < 0 {
			return value{}, true
		}
		return text(display.FormatByteCount(f.Size)), true
	}
	return value{}, false
}

// text is a value that is present whenever it is non-empty.
func text(s string) value { return value{text: s, present: s != ""} }

// optional renders *s, absent when nil.
func optional(s *string) value {
	if s == nil {
		return value{}
	}
	return text(*s)
}

// Title renders the fixed quick title of the record's category. Parts that
// render empty are left out; the result is "" unless at least one part was
// filled.
func (r *Renderer) Title(in info.Info) string {
	if in == nil {
		return ""
	}
	var (
		parts  []string
		filled bool
	)
	for _, tpl := range quickTitles[in.Category()] {
		s, ok := r.Placeholders(tpl, in)
		filled = filled || ok
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if !filled {
		return ""
	}
	return strings.Join(parts, ", ")
}

var quickTitles = map[info.Category][]string{
	info.CategoryImage:      {"[[size]]", "[[color-depth]]", "[[dpi]]"},
	info.CategoryVideo:      {"[[size]]", "[[duration]]", "[[bitrate]]"},
	info.CategoryAudio:      {"[[duration]]", "[[bitrate]]"},
	info.CategoryPDF:        {"[[pages]]", "[[paper]]"},
	info.CategoryWord:       {"[[pages]]", "[[words]]"},
	info.CategoryExcel:      {"[[sheets]]"},
	info.CategoryPowerpoint: {"[[slides]]"},
	info.CategoryModel:      {"[[mesh-count]]", "[[vertex]]"},
}

var categoryIcons = map[info.Category]string{
	info.CategoryImage:      "image",
	info.CategoryVideo:      "video",
	info.CategoryAudio:      "audio",
	info.CategoryPDF:        "pdf",
	info.CategoryWord:       "doc",
	info.CategoryExcel:      "xls",
	info.CategoryPowerpoint: "ppt",
	info.CategoryModel:      "3d",
}

// CategoryMenu builds the configured menu of the record's category and
// applies its placement toggles: with OnSubmenu the items nest under one
// parent entry, labelled with the quick title when OnMainItem is set.
func (r *Renderer) CategoryMenu(in info.Info) []menu.Node {
	if in == nil {
		return nil
	}
	s := r.cfg.For(in.Category())
	nodes := r.Menu(s.Menu, in)
	if s.OnSubmenu && len(nodes) > 0 {
		label := r.p.Sprintf("Media info")
		if s.OnMainItem {
			if t := r.Title(in); t != "" {
				label = t
			}
		}
		nodes = []menu.Node{{
			Label:    label,
			Icon:     categoryIcons[in.Category()],
			Children: nodes,
			Enabled:  true,
		}}
	}
	if s.IconsHidden {
		menu.StripIcons(nodes)
	}
	return nodes
}
