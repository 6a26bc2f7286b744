package office

import (
	"context"
	"encoding/xml"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/probe"
)

// NameOOXML identifies the Office Open XML probe in attempt traces.
const NameOOXML = "ooxml"

const (
	partContentTypes = "[Content_Types].xml"
	partApp          = "docProps/app.xml"
	partCore         = "docProps/core.xml"
	partDocument     = "word/document.xml"
	partWorkbook     = "xl/workbook.xml"
	partShared       = "xl/sharedStrings.xml"
	partPresentation = "ppt/presentation.xml"
)

func openOOXML(path, main string) (*archive, error) {
	a, err := openArchive(path, NameOOXML)
	if err != nil {
		return nil, err
	}
	if !a.has(partContentTypes) || !a.has(main) {
		a.Close()
		return nil, probe.NotApplicablef(NameOOXML, "no %s part", main)
	}
	return a, nil
}

// ooxmlMeta reads docProps/core.xml and the application from app.xml.
func ooxmlMeta(ctx context.Context, a *archive, app map[string]string) (info.DocMeta, error) {
	core, err := a.fields(ctx, partCore, "title", "creator", "subject", "keywords", "created", "modified")
	if err != nil {
		return info.DocMeta{}, err
	}
	return info.DocMeta{
		Title:       info.String(core["title"]),
		Author:      info.String(core["creator"]),
		Subject:     info.String(core["subject"]),
		Keywords:    info.String(core["keywords"]),
		Application: info.String(app["Application"]),
		Created:     parseTime(core["created"]),
		Modified:    parseTime(core["modified"]),
	}, nil
}

func readOOXMLWord(ctx context.Context, path string, deep bool) (*info.WordInfo, error) {
	a, err := openOOXML(path, partDocument)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	app, err := a.fields(ctx, partApp, "Pages", "Application")
	if err != nil {
		return nil, err
	}
	meta, err := ooxmlMeta(ctx, a, app)
	if err != nil {
		return nil, err
	}
	out := &info.WordInfo{Container: info.ContainerOOXML, Pages: atoi(app["Pages"]), Meta: meta}
	if deep {
		var c counter
		if err := countRuns(ctx, a, partDocument, &c, "p", "tab", "br", "cr"); err != nil {
			return nil, err
		}
		out.TextStats = stats(c)
	}
	return out, nil
}

func readOOXMLExcel(ctx context.Context, path string, deep bool) (*info.ExcelInfo, error) {
	a, err := openOOXML(path, partWorkbook)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	var names []string
	err = a.walk(ctx, partWorkbook, func(tok xml.Token) error {
		if e, ok := tok.(xml.StartElement); ok && e.Name.Local == "sheet" {
			name, _ := attr(e, "name")
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	app, err := a.fields(ctx, partApp, "Application")
	if err != nil {
		return nil, err
	}
	meta, err := ooxmlMeta(ctx, a, app)
	if err != nil {
		return nil, err
	}
	out := &info.ExcelInfo{Container: info.ContainerOOXML, Sheets: len(names), SheetNames: names, Meta: meta}
	if deep {
		var c counter
		if a.has(partShared) {
			if err := countRuns(ctx, a, partShared, &c, "si"); err != nil {
				return nil, err
			}
		}
		out.TextStats = stats(c)
	}
	return out, nil
}

func readOOXMLPowerpoint(ctx context.Context, path string, deep bool) (*info.PowerpointInfo, error) {
	a, err := openOOXML(path, partPresentation)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	slides := 0
	err = a.walk(ctx, partPresentation, func(tok xml.Token) error {
		if e, ok := tok.(xml.StartElement); ok && e.Name.Local == "sldId" {
			slides++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	app, err := a.fields(ctx, partApp, "Slides", "Application")
	if err != nil {
		return nil, err
	}
	if slides == 0 {
		slides = atoi(app["Slides"])
	}
	meta, err := ooxmlMeta(ctx, a, app)
	if err != nil {
		return nil, err
	}
	out := &info.PowerpointInfo{Container: info.ContainerOOXML, Slides: slides, Meta: meta}
	if deep {
		var c counter
		for _, part := range slideParts(a) {
			if err := countRuns(ctx, a, part, &c, "p"); err != nil {
				return nil, err
			}
		}
		out.TextStats = stats(c)
	}
	return out, nil
}

// slideParts lists ppt/slides/slideN.xml in slide number order.
func slideParts(a *archive) []string {
	var parts []string
	for name := range a.files {
		dir, file := path.Split(name)
		if dir == "ppt/slides/" && strings.HasPrefix(file, "slide") && strings.HasSuffix(file, ".xml") {
			parts = append(parts, name)
		}
	}
	num := func(s string) int {
		n, _ := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(path.Base(s), "slide"), ".xml"))
		return n
	}
	sort.Slice(parts, func(i, j int) bool { return num(parts[i]) < num(parts[j]) })
	return parts
}

// countRuns counts the text of <t> elements in part. Ending any of the
// breaks elements (or starting an empty one such as <w:tab/>) ends the
// current word.
func countRuns(ctx context.Context, a *archive, part string, c *counter, breaks ...string) error {
	isBreak := make(map[string]bool, len(breaks))
	for _, b := range breaks {
		isBreak[b] = true
	}
	inText := 0
	return a.walk(ctx, part, func(tok xml.Token) error {
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText++
			} else if isBreak[t.Name.Local] {
				c.brk()
			}
		case xml.EndElement:
			if t.Name.Local == "t" && inText > 0 {
				inText--
			} else if isBreak[t.Name.Local] {
				c.brk()
			}
		case xml.CharData:
			if inText > 0 {
				c.write(t)
			}
		}
		return nil
	})
}

func stats(c counter) info.TextStats {
	return info.TextStats{Words: info.Int(c.words), Characters: info.Int(c.chars)}
}
