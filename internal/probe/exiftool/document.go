package exiftool

import (
	"context"
	"strings"
	"time"

	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/probe"
)

// PDF probes path and maps its tags to a PDF record.
func (p *Prober) PDF(ctx context.Context, path string) (*info.PDFInfo, error) {
	tags, err := p.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	return tags.PDF()
}

// PDF maps the tags of a PDF file. Page size is not reported by exiftool
// and stays zero; text statistics are never filled.
func (t Tags) PDF() (*info.PDFInfo, error) {
	if !strings.EqualFold(t.String("MIMEType"), "application/pdf") && !t.has("PDFVersion") {
		return nil, probe.NotApplicablef(Name, "not a PDF")
	}
	pages := nonNegInt(t.Number("PageCount"))
	if pages == 0 {
		return nil, probe.NotApplicablef(Name, "no page count")
	}
	return &info.PDFInfo{
		Pages:   pages,
		Version: t.String("PDFVersion"),
		Meta: info.DocMeta{
			Title:       info.String(t.String("Title")),
			Author:      info.String(t.String("Author")),
			Subject:     info.String(t.String("Subject")),
			Keywords:    info.String(t.String("Keywords")),
			Application: info.String(t.String("Creator", "CreatorTool")),
			Producer:    info.String(t.String("Producer")),
			Created:     dateTag(t.String("CreateDate")),
			Modified:    dateTag(t.String("ModifyDate")),
		},
	}, nil
}

// exiftool prints dates as "2006:01:02 15:04:05" with an optional zone.
var dateLayouts = []string{
	"2006:01:02 15:04:05Z07:00",
	"2006:01:02 15:04:05",
	"2006:01:02",
}

func dateTag(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return info.Time(t)
		}
	}
	return nil
}
