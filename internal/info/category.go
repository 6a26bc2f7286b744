// Package info defines the typed description of a probed file: one record
// type per category, a closed set of stream variants for audio/video
// containers, and a versioned binary encoding used to hand records across a
// process boundary.
//
// Records are immutable once a probe returns them. Optional values are
// pointers; nil means the source format did not carry the value.
package info

import "strings"

// Category is the coarse kind of a file, selected by the classifier.
type Category uint8

const (
	CategoryNone Category = iota // Not handled; no probing happens.
	CategoryImage
	CategoryVideo
	CategoryAudio
	CategoryPDF
	CategoryWord
	CategoryExcel
	CategoryPowerpoint
	CategoryModel
)

var categoryNames = [...]string{
	CategoryNone:       "none",
	CategoryImage:      "image",
	CategoryVideo:      "video",
	CategoryAudio:      "audio",
	CategoryPDF:        "pdf",
	CategoryWord:       "word",
	CategoryExcel:      "excel",
	CategoryPowerpoint: "powerpoint",
	CategoryModel:      "model",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "none"
}

// ParseCategory maps a lowercase category name back to its value.
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range categoryNames {
		if name == s {
			return Category(i), true
		}
	}
	return CategoryNone, false
}

// Container is the archive family an office document was read from.
type Container uint8

const (
	ContainerUnknown      Container = iota
	ContainerOOXML                  // docx, xlsx, pptx
	ContainerOpenDocument           // odt, ods, odp
)

func (c Container) String() string {
	switch c {
	case ContainerOOXML:
		return "ooxml"
	case ContainerOpenDocument:
		return "opendocument"
	default:
		return "unknown"
	}
}
