package imaging

import (
	"context"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/probe"
)

// svgMaxBytes bounds how much of an SVG document is parsed.
const svgMaxBytes = 16 << 20

// CSS pixels per unit.
var svgUnits = map[string]float64{
	"":   1,
	"px": 1,
	"in": 96,
	"cm": 96 / 2.54,
	"mm": 96 / 25.4,
	"pt": 96.0 / 72,
	"pc": 16,
	"em": 16,
	"ex": 8,
}

// SVG reads the intrinsic size of the root <svg> element. Width and height
// win over the viewBox; percentages defer to it.
func SVG(ctx context.Context, path string) (*info.ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, probe.NotApplicable(NameSVG, err)
	}
	defer f.Close()
	return ParseSVG(io.LimitReader(f, svgMaxBytes))
}

// ParseSVG parses an SVG document from r.
func ParseSVG(r io.Reader) (*info.ImageInfo, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, probe.NotApplicable(NameSVG, err)
	}
	root := doc.Find("svg").First()
	if root.Length() == 0 {
		return nil, probe.NotApplicablef(NameSVG, "no <svg> element")
	}

	w, wok := svgLength(root.AttrOr("width", ""))
	h, hok := svgLength(root.AttrOr("height", ""))
	vw, vh, vok := viewBox(root.AttrOr("viewBox", root.AttrOr("viewbox", "")))
	switch {
	case wok && hok:
	case vok && wok:
		h = w * vh / vw
	case vok && hok:
		w = h * vw / vh
	case vok:
		w, h = vw, vh
	default:
		return nil, probe.Corruptedf(NameSVG, "no usable width/height or viewBox")
	}
	img := &info.ImageInfo{Width: int(math.Round(w)), Height: int(math.Round(h))}
	if img.Width <= 0 || img.Height <= 0 {
		return nil, probe.Corruptedf(NameSVG, "invalid size %vx%v", w, h)
	}
	return img, nil
}

// svgLength converts "12.5cm" to pixels. Percentages and unknown units
// are rejected.
func svgLength(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, "%") {
		return 0, false
	}
	i := len(s)
	for i > 0 && (s[i-1] >= 'a' && s[i-1] <= 'z' || s[i-1] >= 'A' && s[i-1] <= 'Z') {
		i--
	}
	factor, ok := svgUnits[strings.ToLower(s[i:])]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s[:i]), 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) {
		return 0, false
	}
	return v * factor, true
}

// viewBox returns the width and height of "min-x min-y width height".
func viewBox(s string) (float64, float64, bool) {
	f := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r' })
	if len(f) != 4 {
		return 0, 0, false
	}
	w, err1 := strconv.ParseFloat(f[2], 64)
	h, err2 := strconv.ParseFloat(f[3], 64)
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 || math.IsInf(w, 0) || math.IsInf(h, 0) {
		return 0, 0, false
	}
	return w, h, true
}
