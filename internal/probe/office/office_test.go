package office

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/probe"
)

type part struct{ name, body string }

func writeZip(t *testing.T, name string, parts ...part) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(p.body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

const (
	contentTypes = `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`
	appXML       = `<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">` +
		`<Pages>3</Pages><Slides>9</Slides><Application>Microsoft Office Word</Application></Properties>`
	coreXML = `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"` +
		` xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/">` +
		`<dc:title>Report</dc:title><dc:creator>Ada</dc:creator><dc:subject> </dc:subject>` +
		`<dcterms:created>2024-03-01T10:00:00Z</dcterms:created></cp:coreProperties>`
	documentXML = `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>Hello wor</w:t></w:r><w:r><w:t>ld</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Second</w:t><w:tab/><w:t>line.</w:t></w:r></w:p></w:body></w:document>`
)

func docx(t *testing.T) string {
	return writeZip(t, "report.docx",
		part{"[Content_Types].xml", contentTypes},
		part{"docProps/app.xml", appXML},
		part{"docProps/core.xml", coreXML},
		part{"word/document.xml", documentXML},
	)
}

func TestWord_OOXML(t *testing.T) {
	path := docx(t)
	doc, err := Word(context.Background(), path, info.ContainerOOXML, false)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Pages != 3 || doc.Container != info.ContainerOOXML {
		t.Errorf("pages=%d container=%v", doc.Pages, doc.Container)
	}
	if doc.Words != nil || doc.Characters != nil {
		t.Error("text stats should be absent without deep scan")
	}
	if info.Deref(doc.Meta.Title) != "Report" || info.Deref(doc.Meta.Author) != "Ada" {
		t.Errorf("meta: %+v", doc.Meta)
	}
	if doc.Meta.Subject != nil {
		t.Errorf("blank subject should be absent, got %q", *doc.Meta.Subject)
	}
	if info.Deref(doc.Meta.Application) != "Microsoft Office Word" {
		t.Errorf("application: %v", doc.Meta.Application)
	}
	want := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if doc.Meta.Created == nil || !doc.Meta.Created.Equal(want) {
		t.Errorf("created: %v", doc.Meta.Created)
	}

	deep, err := Word(context.Background(), path, info.ContainerOOXML, true)
	if err != nil {
		t.Fatal(err)
	}
	// A word split across runs counts once; <w:tab/> separates words.
	if deep.Words == nil || *deep.Words != 4 || *deep.Characters != 21 {
		t.Errorf("deep scan: words=%v chars=%v", deep.Words, deep.Characters)
	}
}

func TestExcel_OOXML(t *testing.T) {
	path := writeZip(t, "book.xlsx",
		part{"[Content_Types].xml", contentTypes},
		part{"xl/workbook.xml", `<workbook><sheets><sheet name="Budget" sheetId="1"/><sheet name="Notes" sheetId="2"/></sheets></workbook>`},
		part{"xl/sharedStrings.xml", `<sst><si><t>Total</t></si><si><r><t>Net </t></r><r><t>income</t></r></si></sst>`},
	)
	book, err := Excel(context.Background(), path, info.ContainerOOXML, true)
	if err != nil {
		t.Fatal(err)
	}
	if book.Sheets != 2 || len(book.SheetNames) != 2 || book.SheetNames[1] != "Notes" {
		t.Errorf("sheets: %d %v", book.Sheets, book.SheetNames)
	}
	if *book.Words != 3 || *book.Characters != 14 {
		t.Errorf("deep scan: words=%d chars=%d", *book.Words, *book.Characters)
	}
	if book.Meta.Title != nil {
		t.Error("missing core.xml should leave meta absent")
	}
}

func TestPowerpoint_OOXML(t *testing.T) {
	path := writeZip(t, "deck.pptx",
		part{"[Content_Types].xml", contentTypes},
		part{"ppt/presentation.xml", `<p:presentation xmlns:p="p"><p:sldIdLst><p:sldId id="256"/><p:sldId id="257"/></p:sldIdLst></p:presentation>`},
		part{"ppt/slides/slide2.xml", `<p:sld xmlns:p="p" xmlns:a="a"><a:p><a:t>Two words</a:t></a:p></p:sld>`},
		part{"ppt/slides/slide1.xml", `<p:sld xmlns:p="p" xmlns:a="a"><a:p><a:r><a:t>Title</a:t></a:r></a:p></p:sld>`},
		part{"ppt/slides/_rels/slide1.xml.rels", `<Relationships/>`},
	)
	deck, err := Powerpoint(context.Background(), path, info.ContainerOOXML, true)
	if err != nil {
		t.Fatal(err)
	}
	if deck.Slides != 2 || *deck.Words != 3 {
		t.Errorf("slides=%d words=%d", deck.Slides, *deck.Words)
	}
}

const (
	odfMetaXML = `<office:document-meta xmlns:office="o" xmlns:meta="m" xmlns:dc="d"><office:meta>` +
		`<meta:generator>LibreOffice/7.6.4.1$Linux_X86_64 LibreOffice_project/abc</meta:generator>` +
		`<dc:title>Letter</dc:title><meta:initial-creator>Grace</meta:initial-creator><dc:creator>Linus</dc:creator>` +
		`<meta:creation-date>2024-01-02T03:04:05.123</meta:creation-date>` +
		`<meta:document-statistic meta:page-count="2" meta:word-count="5" meta:table-count="4"/>` +
		`</office:meta></office:document-meta>`
	odtContentXML = `<office:document-content xmlns:office="o" xmlns:text="t" xmlns:style="s">` +
		`<office:automatic-styles><style:style style:name="P1">ignored</style:style></office:automatic-styles>` +
		`<office:body><office:text><text:h>Dear<text:s/>Bob</text:h><text:p>See you<text:tab/>soon</text:p>` +
		`</office:text></office:body></office:document-content>`
)

func TestWord_OpenDocument(t *testing.T) {
	path := writeZip(t, "letter.odt",
		part{"mimetype", mimeText},
		part{"meta.xml", odfMetaXML},
		part{"content.xml", odtContentXML},
	)
	doc, err := Word(context.Background(), path, info.ContainerOpenDocument, true)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Pages != 2 || doc.Container != info.ContainerOpenDocument {
		t.Errorf("pages=%d container=%v", doc.Pages, doc.Container)
	}
	if info.Deref(doc.Meta.Author) != "Grace" || info.Deref(doc.Meta.Application) != "LibreOffice 7.6.4.1" {
		t.Errorf("meta: author=%q app=%q", info.Deref(doc.Meta.Author), info.Deref(doc.Meta.Application))
	}
	if doc.Meta.Created == nil || doc.Meta.Created.Nanosecond() != 123000000 {
		t.Errorf("created: %v", doc.Meta.Created)
	}
	if *doc.Words != 5 || *doc.Characters != 17 {
		t.Errorf("deep scan: words=%d chars=%d", *doc.Words, *doc.Characters)
	}
}

func TestExcel_OpenDocument(t *testing.T) {
	content := `<office:document-content xmlns:office="o" xmlns:table="t" xmlns:text="x"><office:body><office:spreadsheet>` +
		`<table:table table:name="Q1"><table:table-row><table:table-cell><text:p>12</text:p></table:table-cell>` +
		`<table:table-cell><table:table table:name="nested"/></table:table-cell></table:table-row></table:table>` +
		`<table:table table:name="Q2"/></office:spreadsheet></office:body></office:document-content>`
	path := writeZip(t, "sheet.ods",
		part{"mimetype", mimeSpreadsheet},
		part{"meta.xml", odfMetaXML},
		part{"content.xml", content},
	)
	book, err := Excel(context.Background(), path, info.ContainerOpenDocument, false)
	if err != nil {
		t.Fatal(err)
	}
	if book.Sheets != 2 || book.SheetNames[0] != "Q1" || book.SheetNames[1] != "Q2" {
		t.Errorf("sheets: %d %v", book.Sheets, book.SheetNames)
	}
	if book.Words != nil {
		t.Error("text stats should be absent without deep scan")
	}
}

func TestPowerpoint_OpenDocument(t *testing.T) {
	content := `<office:document-content xmlns:office="o" xmlns:draw="d"><office:body><office:presentation>` +
		`<draw:page draw:name="a"/><draw:page/><draw:page/></office:presentation></office:body></office:document-content>`
	path := writeZip(t, "talk.odp",
		part{"mimetype", mimePresentation + "-template"},
		part{"content.xml", content},
	)
	deck, err := Powerpoint(context.Background(), path, info.ContainerOpenDocument, false)
	if err != nil {
		t.Fatal(err)
	}
	if deck.Slides != 3 {
		t.Errorf("slides: got %d, want 3", deck.Slides)
	}
}

func TestErrors(t *testing.T) {
	notZip := filepath.Join(t.TempDir(), "fake.docx")
	if err := os.WriteFile(notZip, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	odt := writeZip(t, "x.odt", part{"mimetype", mimeText}, part{"content.xml", odtContentXML})
	broken := writeZip(t, "broken.docx",
		part{"[Content_Types].xml", contentTypes},
		part{"word/document.xml", `<w:document><w:body><w:p>`},
	)

	tests := []struct {
		name string
		run  func() error
		kind error
	}{
		{"not a zip", func() error { _, err := Word(context.Background(), notZip, info.ContainerOOXML, false); return err }, probe.ErrNotApplicable},
		{"docx read as odt", func() error {
			_, err := Word(context.Background(), docx(t), info.ContainerOpenDocument, false)
			return err
		}, probe.ErrNotApplicable},
		{"odt read as docx", func() error { _, err := Word(context.Background(), odt, info.ContainerOOXML, false); return err }, probe.ErrNotApplicable},
		{"odt read as spreadsheet", func() error {
			_, err := Excel(context.Background(), odt, info.ContainerOpenDocument, false)
			return err
		}, probe.ErrNotApplicable},
		{"docx read as pptx", func() error {
			_, err := Powerpoint(context.Background(), docx(t), info.ContainerOOXML, false)
			return err
		}, probe.ErrNotApplicable},
		{"truncated xml", func() error { _, err := Word(context.Background(), broken, info.ContainerOOXML, true); return err }, probe.ErrParseCorrupted},
		{"unknown family", func() error { _, err := Word(context.Background(), odt, info.ContainerUnknown, false); return err }, probe.ErrNotApplicable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.kind) {
				t.Errorf("got %v, want %v", err, tt.kind)
			}
		})
	}
}

func TestTooManyEntries(t *testing.T) {
	parts := []part{{"[Content_Types].xml", contentTypes}, {"word/document.xml", documentXML}}
	for i := 0; i < MaxEntries; i++ {
		parts = append(parts, part{fmt.Sprintf("junk/%d", i), ""})
	}
	path := writeZip(t, "bomb.docx", parts...)
	if _, err := Word(context.Background(), path, info.ContainerOOXML, false); !errors.Is(err, probe.ErrParseCorrupted) {
		t.Errorf("got %v, want ErrParseCorrupted", err)
	}
}

func TestArchiveTotalLimit(t *testing.T) {
	old := maxArchiveBytes
	maxArchiveBytes = 8 << 10
	t.Cleanup(func() { maxArchiveBytes = old })

	slide := `<p:sld xmlns:p="p" xmlns:a="a"><a:p><a:t>` + strings.Repeat("word ", 800) + `</a:t></a:p></p:sld>`
	parts := []part{
		{"[Content_Types].xml", contentTypes},
		{"ppt/presentation.xml", `<p:presentation xmlns:p="p"><p:sldIdLst/></p:presentation>`},
	}
	for i := 1; i <= 3; i++ {
		parts = append(parts, part{fmt.Sprintf("ppt/slides/slide%d.xml", i), slide})
	}
	path := writeZip(t, "deck.pptx", parts...)

	if _, err := Powerpoint(context.Background(), path, info.ContainerOOXML, false); err != nil {
		t.Fatalf("shallow read: %v", err)
	}
	_, err := Powerpoint(context.Background(), path, info.ContainerOOXML, true)
	if !errors.Is(err, probe.ErrParseCorrupted) {
		t.Errorf("deep read = %v, want ErrParseCorrupted", err)
	}
}

func TestCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Word(ctx, docx(t), info.ContainerOOXML, true); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestCounter(t *testing.T) {
	var c counter
	c.write([]byte("  naïve  caf"))
	c.write([]byte("é\tok"))
	c.brk()
	c.write([]byte("x"))
	if c.words != 4 || c.chars != 12 {
		t.Errorf("counter: words=%d chars=%d, want 4 and 12", c.words, c.chars)
	}
}
