// Package pdfdoc reads PDF documents with rsc.io/pdf: page count, header
// version, the Info dictionary and the first page's MediaBox. Deep scan
// extracts page text and counts words and non-whitespace characters.
package pdfdoc

import (
	"context"
	"errors"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"rsc.io/pdf"

	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/probe"
)

// Name identifies this probe in attempt traces.
const Name = "pdf"

// MaxTextPages bounds deep scan. Longer documents keep their page count
// but get no text statistics.
const MaxTextPages = 2000

var reVersion = regexp.MustCompile(`^%PDF-(\d\.\d)`)

// Read parses the PDF at path.
func Read(ctx context.Context, path string, deep bool) (*info.PDFInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, probe.NotApplicable(Name, err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, probe.NotApplicable(Name, err)
	}
	return ReadFrom(ctx, f, st.Size(), deep)
}

// ReadFrom parses a PDF of the given size. The reader panics on some
// malformed inputs; those become ErrParseCorrupted.
func ReadFrom(ctx context.Context, r io.ReaderAt, size int64, deep bool) (out *info.PDFInfo, err error) {
	head := make([]byte, 16)
	n, _ := r.ReadAt(head, 0)
	m := reVersion.FindSubmatch(head[:n])
	if m == nil {
		return nil, probe.NotApplicablef(Name, "no %%PDF header")
	}
	if m[1][0] != '1' {
		return nil, probe.NotApplicablef(Name, "unsupported version %s", m[1])
	}

	defer func() {
		if p := recover(); p != nil {
			out, err = nil, probe.Corruptedf(Name, "panic: %v", p)
		}
	}()

	doc, err := pdf.NewReader(r, size)
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return nil, probe.NotApplicable(Name, err)
		}
		return nil, probe.Corrupted(Name, err)
	}
	pages := doc.NumPage()
	if pages <= 0 {
		return nil, probe.Corruptedf(Name, "page tree has no pages")
	}

	out = &info.PDFInfo{
		Pages:   pages,
		Version: string(m[1]),
		Meta:    meta(doc.Trailer().Key("Info")),
	}
	// The catalog may raise the header version.
	if v := doc.Trailer().Key("Root").Key("Version"); v.Kind() == pdf.Name && v.Name() > out.Version {
		out.Version = v.Name()
	}
	out.PageWidth, out.PageHeight = mediaBox(doc.Page(1).V)

	if deep && pages <= MaxTextPages {
		var c counter
		for i := 1; i <= pages; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			c.page(doc.Page(i))
		}
		out.Words = info.Int(c.words)
		out.Characters = info.Int(c.chars)
	}
	return out, nil
}

func meta(d pdf.Value) info.DocMeta {
	if d.Kind() != pdf.Dict {
		return info.DocMeta{}
	}
	text := func(key string) *string { return info.String(d.Key(key).Text()) }
	return info.DocMeta{
		Title:       text("Title"),
		Author:      text("Author"),
		Subject:     text("Subject"),
		Keywords:    text("Keywords"),
		Application: text("Creator"),
		Producer:    text("Producer"),
		Created:     info.Time(ParseDate(d.Key("CreationDate").Text())),
		Modified:    info.Time(ParseDate(d.Key("ModDate").Text())),
	}
}

// mediaBox returns the page size in points. MediaBox is inheritable, so
// the Parent chain is searched; the walk is bounded against cycles.
func mediaBox(page pdf.Value) (w, h float64) {
	v := page
	for i := 0; i < 32 && v.Kind() == pdf.Dict; i++ {
		box := v.Key("MediaBox")
		if box.Kind() == pdf.Array && box.Len() == 4 {
			w, h = num(box.Index(2))-num(box.Index(0)), num(box.Index(3))-num(box.Index(1))
			if w < 0 {
				w = -w
			}
			if h < 0 {
				h = -h
			}
			return w, h
		}
		v = v.Key("Parent")
	}
	return 0, 0
}

func num(v pdf.Value) float64 {
	switch v.Kind() {
	case pdf.Integer:
		return float64(v.Int64())
	case pdf.Real:
		return v.Float64()
	}
	return 0
}

// counter groups the positioned glyphs of a page into words. A glyph
// starts a new word when it sits on another baseline or leaves a gap wider
// than a fifth of the font size after the previous one.
type counter struct {
	words int
	chars int
}

func (c *counter) page(p pdf.Page) {
	if p.V.IsNull() {
		return
	}
	text := p.Content().Text
	var prev *pdf.Text
	for i := range text {
		t := &text[i]
		s := strings.TrimSpace(t.S)
		if s == "" {
			prev = nil
			continue
		}
		if prev == nil || t.Y != prev.Y || t.X > prev.X+prev.W+t.FontSize/5 || t.X < prev.X {
			c.words++
		}
		c.chars += len([]rune(s))
		prev = t
	}
}

var reDate = regexp.MustCompile(`^(?:D:)?(\d{4})(\d{2})?(\d{2})?(\d{2})?(\d{2})?(\d{2})?([Zz+-])?(\d{2})?'?(\d{2})?'?`)

// ParseDate parses a PDF date string ("D:YYYYMMDDHHmmSSOHH'mm'"). Every
// part after the year is optional. It returns the zero time when s does
// not parse.
func ParseDate(s string) time.Time {
	m := reDate.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}
	}
	part := func(i, def int) int {
		if m[i] == "" {
			return def
		}
		n, _ := strconv.Atoi(m[i])
		return n
	}
	offset := 0
	if sign := m[7]; sign == "+" || sign == "-" {
		offset = part(8, 0)*3600 + part(9, 0)*60
		if sign == "-" {
			offset = -offset
		}
	}
	mon := part(2, 1)
	day := part(3, 1)
	if mon < 1 || mon > 12 || day < 1 || day > 31 {
		return time.Time{}
	}
	zone := time.UTC
	if offset != 0 {
		zone = time.FixedZone("", offset)
	}
	return time.Date(part(1, 0), time.Month(mon), day, part(4, 0), part(5, 0), part(6, 0), 0, zone)
}
