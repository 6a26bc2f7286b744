package render

import (
	"math"

	"github.com/backmassage/mediainfo/internal/display"
)

// paperSize is a named sheet in millimetres, portrait.
type paperSize struct {
	name string
	w, h float64
}

var papers = []paperSize{
	{"A0", 841, 1189},
	{"A1", 594, 841},
	{"A2", 420, 594},
	{"A3", 297, 420},
	{"A4", 210, 297},
	{"A5", 148, 210},
	{"A6", 105, 148},
	{"B4", 250, 353},
	{"B5", 176, 250},
	{"Letter", 215.9, 279.4},
	{"Legal", 215.9, 355.6},
	{"Tabloid", 279.4, 431.8},
	{"Executive", 184.2, 266.7},
}

// paperTolerance absorbs the rounding of sizes expressed in whole points.
const paperTolerance = 1.5

// paperName returns the name of the standard sheet matching a page size in
// millimetres, in either orientation, or "".
func paperName(wmm, hmm float64) string {
	w, h := math.Min(wmm, hmm), math.Max(wmm, hmm)
	for _, p := range papers {
		if math.Abs(w-p.w) <= paperTolerance && math.Abs(h-p.h) <= paperTolerance {
			return p.name
		}
	}
	return ""
}

// paper renders a page size given in points as "W × H unit", followed by
// the paper name when it is a standard one.
func (r *Renderer) paper(wpt, hpt float64) string {
	if wpt <= 0 || hpt <= 0 {
		return ""
	}
	u := r.cfg.Unit
	w := display.FormatDecimal(r.p, wpt/72*u.Factor())
	h := display.FormatDecimal(r.p, hpt/72*u.Factor())
	s := w + " × " + h + " " + display.UnitLabel(u)
	if name := paperName(wpt/72*25.4, hpt/72*25.4); name != "" {
		s += " (" + r.p.Sprintf(name) + ")"
	}
	return s
}
