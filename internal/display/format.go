// Package display holds the value formatters shared by the template engine
// and the command output, plus the text renderer for menu trees.
package display

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/backmassage/mediainfo/internal/config"
)

// FormatDuration renders seconds as HH:MM:SS, truncating every component.
// Negative and non-finite inputs render as 00:00:00.
func FormatDuration(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	h := math.Floor(seconds / 3600)
	m := int64(math.Floor(seconds/60)) % 60
	s := int64(math.Floor(seconds)) % 60
	return fmt.Sprintf("%02.0f:%02d:%02d", h, m, s)
}

// FormatByteCount returns a decimal (SI) size such as "1.5 MB".
func FormatByteCount(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.Bytes(uint64(bytes))
}

// FormatByteRate returns a decimal byte rate such as "82 kB/s".
func FormatByteRate(bytesPerSecond int64) string {
	return FormatByteCount(bytesPerSecond) + "/s"
}

// RoundHalfUp rounds v to the given number of fraction digits, ties away
// from zero. Ties are judged on the shortest decimal form of v, so 1.005
// rounds to 1.01 although its binary value lies just below.
func RoundHalfUp(v float64, digits int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	digits = max(digits, 0)
	s := strconv.FormatFloat(math.Abs(v), 'f', -1, 64)
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) <= digits {
		return v
	}
	r, _ := strconv.ParseFloat(whole+"."+frac[:digits], 64)
	if frac[digits] >= '5' {
		r, _ = strconv.ParseFloat(strconv.FormatFloat(r+math.Pow(10, -float64(digits)), 'f', digits, 64), 64)
	}
	return math.Copysign(r, v)
}

// FormatDecimal renders v with at most two fraction digits in the locale
// of p.
func FormatDecimal(p *message.Printer, v float64) string {
	return p.Sprint(number.Decimal(RoundHalfUp(v, 2), number.MaxFractionDigits(2)))
}

// FormatInteger renders n with locale digit grouping.
func FormatInteger(p *message.Printer, n int64) string {
	return p.Sprint(number.Decimal(n))
}

// UnitLabel is the suffix printed after a physical size.
func UnitLabel(u config.Unit) string {
	switch u {
	case config.UnitCentimeter:
		return "cm"
	case config.UnitMillimeter:
		return "mm"
	default:
		return "inch"
	}
}

// PhysicalSize converts a pixel length at dpi to the unit.
func PhysicalSize(pixels, dpi int, u config.Unit) float64 {
	if dpi <= 0 {
		return 0
	}
	return float64(pixels) / float64(dpi) * u.Factor()
}

// FormatPrintSize renders "W × H unit (D dpi)". It returns "" when dpi is
// not positive.
func FormatPrintSize(p *message.Printer, width, height, dpi int, u config.Unit) string {
	if dpi <= 0 {
		return ""
	}
	w := FormatDecimal(p, PhysicalSize(width, dpi, u))
	h := FormatDecimal(p, PhysicalSize(height, dpi, u))
	return fmt.Sprintf("%s × %s %s (%d dpi)", w, h, UnitLabel(u), dpi)
}
