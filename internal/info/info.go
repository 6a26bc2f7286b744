package info

import (
	"strings"
	"time"
)

// File carries the fields common to every record.
type File struct {
	Path string
	Size int64 // -1 when the size could not be read.
}

// Source returns the common file fields.
func (f File) Source() File { return f }

// Info is one fully parsed record. The set of implementations is closed:
// *ImageInfo, *VideoInfo, *AudioInfo, *WordInfo, *ExcelInfo,
// *PowerpointInfo, *PDFInfo and *ModelInfo.
type Info interface {
	Category() Category
	Source() File
	isInfo()
}

// ImageInfo describes a raster or vector image.
type ImageInfo struct {
	File
	Width     int
	Height    int
	ColorMode string // "RGB", "CMYK", "Gray", ...; empty when unknown.
	Depth     int    // Bits per sample; 0 when unknown.
	DPI       int    // 0 when the file carries no resolution.
}

// Empty reports whether the image has no usable dimensions. Such records
// are discarded by the resolver.
func (i *ImageInfo) Empty() bool { return i.Width == 0 && i.Height == 0 }

// VideoInfo is a container whose category is video. Streams keeps the
// container's stream order.
type VideoInfo struct {
	File
	Streams Streams
}

// AudioInfo is a container whose category is audio.
type AudioInfo struct {
	File
	Streams Streams
}

// DocMeta is the descriptive metadata shared by office documents and PDFs.
type DocMeta struct {
	Title       *string
	Author      *string
	Subject     *string
	Keywords    *string
	Application *string // Creating application.
	Producer    *string // PDF producer; nil for office formats.
	Created     *time.Time
	Modified    *time.Time
}

// TextStats holds deep-scan counts. Both are nil when deep scan was off.
type TextStats struct {
	Words      *int
	Characters *int // Non-whitespace characters.
}

// WordInfo describes a word-processing document.
type WordInfo struct {
	File
	Container Container
	Pages     int
	TextStats
	Meta DocMeta
}

// ExcelInfo describes a spreadsheet. SheetNames may be shorter than Sheets
// when the container only records a count.
type ExcelInfo struct {
	File
	Container  Container
	Sheets     int
	SheetNames []string
	TextStats
	Meta DocMeta
}

// PowerpointInfo describes a presentation.
type PowerpointInfo struct {
	File
	Container Container
	Slides    int
	TextStats
	Meta DocMeta
}

// PDFInfo describes a PDF document. Page size is in PostScript points and
// is zero when the first page has no usable MediaBox.
type PDFInfo struct {
	File
	Pages      int
	Version    string
	PageWidth  float64
	PageHeight float64
	TextStats
	Meta DocMeta
}

func (*ImageInfo) Category() Category      { return CategoryImage }
func (*VideoInfo) Category() Category      { return CategoryVideo }
func (*AudioInfo) Category() Category      { return CategoryAudio }
func (*WordInfo) Category() Category       { return CategoryWord }
func (*ExcelInfo) Category() Category      { return CategoryExcel }
func (*PowerpointInfo) Category() Category { return CategoryPowerpoint }
func (*PDFInfo) Category() Category        { return CategoryPDF }
func (*ModelInfo) Category() Category      { return CategoryModel }

func (*ImageInfo) isInfo()      {}
func (*VideoInfo) isInfo()      {}
func (*AudioInfo) isInfo()      {}
func (*WordInfo) isInfo()       {}
func (*ExcelInfo) isInfo()      {}
func (*PowerpointInfo) isInfo() {}
func (*PDFInfo) isInfo()        {}
func (*ModelInfo) isInfo()      {}

// String returns a pointer to the trimmed s, or nil when s is blank.
// Probes use it so that an empty label never stands in for presence.
func String(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Int returns a pointer to n.
func Int(n int) *int { return &n }

// Time returns a pointer to t in UTC, or nil for the zero time.
func Time(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	t = t.UTC()
	return &t
}

// Deref returns *s, or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
