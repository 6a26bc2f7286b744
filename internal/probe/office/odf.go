package office

import (
	"context"
	"encoding/xml"
	"strings"

	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/probe"
)

// NameODF identifies the OpenDocument probe in attempt traces.
const NameODF = "opendocument"

const (
	partMimetype = "mimetype"
	partMeta     = "meta.xml"
	partContent  = "content.xml"

	mimeText         = "application/vnd.oasis.opendocument.text"
	mimeSpreadsheet  = "application/vnd.oasis.opendocument.spreadsheet"
	mimePresentation = "application/vnd.oasis.opendocument.presentation"
)

// odfBreaks end a word in OpenDocument content.
var odfBreaks = map[string]bool{
	"p":          true,
	"h":          true,
	"s":          true,
	"tab":        true,
	"line-break": true,
	"table-cell": true,
	"list-item":  true,
	"frame":      true,
}

// openODF opens path and checks its mimetype part.
func openODF(path, mime string) (*archive, error) {
	a, err := openArchive(path, NameODF)
	if err != nil {
		return nil, err
	}
	if !a.has(partMimetype) {
		a.Close()
		return nil, probe.NotApplicablef(NameODF, "no mimetype part")
	}
	got, err := a.readSmall(partMimetype, 256)
	if err != nil {
		a.Close()
		return nil, err
	}
	// Templates (.ott and friends) append "-template".
	if got = strings.TrimSpace(got); got != mime && got != mime+"-template" {
		a.Close()
		return nil, probe.NotApplicablef(NameODF, "mimetype %q", got)
	}
	return a, nil
}

// odfMeta is meta.xml: descriptive fields plus document statistics.
type odfMeta struct {
	info.DocMeta
	stats map[string]string // meta:document-statistic attributes by local name.
}

func readODFMeta(ctx context.Context, a *archive) (odfMeta, error) {
	m := odfMeta{stats: map[string]string{}}
	f, err := a.fields(ctx, partMeta,
		"title", "initial-creator", "creator", "subject", "keyword", "generator", "creation-date", "date")
	if err != nil {
		return m, err
	}
	if a.has(partMeta) {
		err = a.walk(ctx, partMeta, func(tok xml.Token) error {
			if e, ok := tok.(xml.StartElement); ok && e.Name.Local == "document-statistic" {
				for _, at := range e.Attr {
					m.stats[at.Name.Local] = at.Value
				}
			}
			return nil
		})
		if err != nil {
			return m, err
		}
	}
	author := f["initial-creator"]
	if author == "" {
		author = f["creator"]
	}
	m.DocMeta = info.DocMeta{
		Title:       info.String(f["title"]),
		Author:      info.String(author),
		Subject:     info.String(f["subject"]),
		Keywords:    info.String(f["keyword"]),
		Application: info.String(generator(f["generator"])),
		Created:     parseTime(f["creation-date"]),
		Modified:    parseTime(f["date"]),
	}
	return m, nil
}

// generator trims "LibreOffice/7.6.4.1$Linux_X86_64 ..." to "LibreOffice 7.6.4.1".
func generator(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '$'); i >= 0 {
		s = s[:i]
	}
	return strings.Replace(s, "/", " ", 1)
}

// contentScan walks content.xml once, collecting what the document kind
// needs: the names of top-level tables, the number of draw pages and, when
// c is set, word and character counts of the body text.
type contentScan struct {
	tables []string
	pages  int
}

func scanContent(ctx context.Context, a *archive, c *counter) (contentScan, error) {
	var (
		s      contentScan
		inBody bool
		tables int // Nesting depth of table:table.
	)
	err := a.walk(ctx, partContent, func(tok xml.Token) error {
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "body":
				inBody = true
			case "table":
				if inBody && tables == 0 {
					name, _ := attr(t, "name")
					s.tables = append(s.tables, name)
				}
				tables++
			case "page":
				if inBody {
					s.pages++
				}
			}
			if c != nil && odfBreaks[t.Name.Local] {
				c.brk()
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "body":
				inBody = false
			case "table":
				if tables > 0 {
					tables--
				}
			}
			if c != nil && odfBreaks[t.Name.Local] {
				c.brk()
			}
		case xml.CharData:
			if c != nil && inBody {
				c.write(t)
			}
		}
		return nil
	})
	return s, err
}

func readODFWord(ctx context.Context, path string, deep bool) (*info.WordInfo, error) {
	a, err := openODF(path, mimeText)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	m, err := readODFMeta(ctx, a)
	if err != nil {
		return nil, err
	}
	out := &info.WordInfo{Container: info.ContainerOpenDocument, Pages: atoi(m.stats["page-count"]), Meta: m.DocMeta}
	if deep {
		var c counter
		if _, err := scanContent(ctx, a, &c); err != nil {
			return nil, err
		}
		out.TextStats = stats(c)
	}
	return out, nil
}

func readODFExcel(ctx context.Context, path string, deep bool) (*info.ExcelInfo, error) {
	a, err := openODF(path, mimeSpreadsheet)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	m, err := readODFMeta(ctx, a)
	if err != nil {
		return nil, err
	}
	var c *counter
	if deep {
		c = &counter{}
	}
	s, err := scanContent(ctx, a, c)
	if err != nil {
		return nil, err
	}
	out := &info.ExcelInfo{
		Container:  info.ContainerOpenDocument,
		Sheets:     len(s.tables),
		SheetNames: s.tables,
		Meta:       m.DocMeta,
	}
	if out.Sheets == 0 {
		out.Sheets = atoi(m.stats["table-count"])
	}
	if c != nil {
		out.TextStats = stats(*c)
	}
	return out, nil
}

func readODFPowerpoint(ctx context.Context, path string, deep bool) (*info.PowerpointInfo, error) {
	a, err := openODF(path, mimePresentation)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	m, err := readODFMeta(ctx, a)
	if err != nil {
		return nil, err
	}
	var c *counter
	if deep {
		c = &counter{}
	}
	s, err := scanContent(ctx, a, c)
	if err != nil {
		return nil, err
	}
	out := &info.PowerpointInfo{Container: info.ContainerOpenDocument, Slides: s.pages, Meta: m.DocMeta}
	if c != nil {
		out.TextStats = stats(*c)
	}
	return out, nil
}
