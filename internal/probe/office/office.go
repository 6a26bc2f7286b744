// Package office reads office documents: Office Open XML (docx, xlsx,
// pptx) and OpenDocument (odt, ods, odp) containers.
//
// Counts that live in the container metadata (pages, sheets, slides) are
// always read. With deep scan the document text is streamed as well and
// words and non-whitespace characters are counted. Archives with more than
// [MaxEntries] entries or parts larger than [MaxPartBytes] fail as
// corrupted.
package office

import (
	"context"

	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/probe"
)

// Name returns the probe name used for a container family.
func Name(c info.Container) string {
	if c == info.ContainerOpenDocument {
		return NameODF
	}
	return NameOOXML
}

// Word reads a word-processing document of the given container family.
func Word(ctx context.Context, path string, c info.Container, deep bool) (*info.WordInfo, error) {
	switch c {
	case info.ContainerOOXML:
		return readOOXMLWord(ctx, path, deep)
	case info.ContainerOpenDocument:
		return readODFWord(ctx, path, deep)
	}
	return nil, probe.NotApplicablef(Name(c), "unknown container family")
}

// Excel reads a spreadsheet of the given container family.
func Excel(ctx context.Context, path string, c info.Container, deep bool) (*info.ExcelInfo, error) {
	switch c {
	case info.ContainerOOXML:
		return readOOXMLExcel(ctx, path, deep)
	case info.ContainerOpenDocument:
		return readODFExcel(ctx, path, deep)
	}
	return nil, probe.NotApplicablef(Name(c), "unknown container family")
}

// Powerpoint reads a presentation of the given container family.
func Powerpoint(ctx context.Context, path string, c info.Container, deep bool) (*info.PowerpointInfo, error) {
	switch c {
	case info.ContainerOOXML:
		return readOOXMLPowerpoint(ctx, path, deep)
	case info.ContainerOpenDocument:
		return readODFPowerpoint(ctx, path, deep)
	}
	return nil, probe.NotApplicablef(Name(c), "unknown container family")
}
