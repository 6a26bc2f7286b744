// Package classify maps a file to its category using type identifiers:
// reverse-DNS names such as "public.png" arranged in a conformance
// hierarchy ("public.png" is a kind of "public.image").
package classify

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/backmassage/mediainfo/internal/info"
)

// Well-known identifiers used outside this package.
const (
	TypeData         = "public.data"
	TypeImage        = "public.image"
	TypeMovie        = "public.movie"
	TypeAudio        = "public.audio"
	TypePDF          = "com.adobe.pdf"
	TypeNetPBM       = "public.pbm"
	TypeWebP         = "public.webp"
	TypeSVG          = "public.svg-image"
	TypeZip          = "public.zip-archive"
	TypeOOXML        = "org.openxmlformats.openxml"
	TypeOpenDocument = "org.oasis-open.opendocument"
	TypeModel        = "public.3d-content"
	TypeText         = "public.text"
	TypeXML          = "public.xml"
	TypeISOMedia     = "public.mpeg-4"
	TypeWAVE         = "com.microsoft.waveform-audio"
)

// conformsTo lists the direct parents of each identifier.
var conformsTo = map[string][]string{
	TypeImage:            {TypeData},
	"public.png":         {TypeImage},
	"public.jpeg":        {TypeImage},
	"com.compuserve.gif": {TypeImage},
	"com.microsoft.bmp":  {TypeImage},
	"public.tiff":        {TypeImage},
	"public.heic":        {TypeImage},
	"public.avif":        {TypeImage},
	"com.microsoft.ico":  {TypeImage},
	TypeNetPBM:           {TypeImage},
	TypeWebP:             {TypeImage},
	TypeSVG:              {TypeImage, TypeXML},
	TypeXML:              {TypeText},
	TypeText:             {TypeData},

	"public.audiovisual-content":      {TypeData},
	TypeMovie:                         {"public.audiovisual-content"},
	TypeAudio:                         {"public.audiovisual-content"},
	TypeISOMedia:                      {TypeMovie},
	"com.apple.quicktime-movie":       {TypeMovie},
	"org.matroska.mkv":                {TypeMovie},
	"org.webmproject.webm":            {TypeMovie},
	"public.avi":                      {TypeMovie},
	"public.mpeg":                     {TypeMovie},
	"public.mpeg-2-transport-stream":  {TypeMovie},
	"com.microsoft.windows-media-wmv": {TypeMovie},
	"public.3gpp":                     {TypeMovie},

	"public.mp3":          {TypeAudio},
	"public.mpeg-4-audio": {TypeAudio},
	"com.apple.m4a-audio": {"public.mpeg-4-audio"},
	TypeWAVE:              {TypeAudio},
	"public.aiff-audio":   {TypeAudio},
	"org.xiph.flac":       {TypeAudio},
	"org.xiph.ogg-audio":  {TypeAudio},
	"public.opus":         {TypeAudio},

	TypePDF:          {TypeData},
	TypeZip:          {TypeData},
	TypeOOXML:        {TypeZip},
	TypeOpenDocument: {TypeZip},

	"org.openxmlformats.wordprocessingml.document":   {TypeOOXML},
	"org.openxmlformats.spreadsheetml.sheet":         {TypeOOXML},
	"org.openxmlformats.presentationml.presentation": {TypeOOXML},
	"org.oasis-open.opendocument.text":               {TypeOpenDocument},
	"org.oasis-open.opendocument.spreadsheet":        {TypeOpenDocument},
	"org.oasis-open.opendocument.presentation":       {TypeOpenDocument},

	TypeModel:                                    {TypeData},
	"public.polygon-file-format":                 {TypeModel},
	"public.standard-tesselated-geometry-format": {TypeModel},
	"public.geometry-definition-format":          {TypeModel},
}

// byExtension maps lowercase extensions (without the dot) to identifiers.
var byExtension = map[string]string{
	"png":  "public.png",
	"jpg":  "public.jpeg",
	"jpeg": "public.jpeg",
	"gif":  "com.compuserve.gif",
	"bmp":  "com.microsoft.bmp",
	"tif":  "public.tiff",
	"tiff": "public.tiff",
	"heic": "public.heic",
	"avif": "public.avif",
	"ico":  "com.microsoft.ico",
	"pbm":  TypeNetPBM,
	"pgm":  TypeNetPBM,
	"ppm":  TypeNetPBM,
	"pnm":  TypeNetPBM,
	"pam":  TypeNetPBM,
	"webp": TypeWebP,
	"svg":  TypeSVG,
	"mp4":  TypeISOMedia,
	"m4v":  TypeISOMedia,
	"mov":  "com.apple.quicktime-movie",
	"mkv":  "org.matroska.mkv",
	"webm": "org.webmproject.webm",
	"avi":  "public.avi",
	"mpg":  "public.mpeg",
	"mpeg": "public.mpeg",
	"ts":   "public.mpeg-2-transport-stream",
	"m2ts": "public.mpeg-2-transport-stream",
	"wmv":  "com.microsoft.windows-media-wmv",
	"3gp":  "public.3gpp",
	"mp3":  "public.mp3",
	"m4a":  "com.apple.m4a-audio",
	"aac":  "public.mpeg-4-audio",
	"wav":  TypeWAVE,
	"aif":  "public.aiff-audio",
	"aiff": "public.aiff-audio",
	"flac": "org.xiph.flac",
	"ogg":  "org.xiph.ogg-audio",
	"opus": "public.opus",
	"pdf":  TypePDF,
	"docx": "org.openxmlformats.wordprocessingml.document",
	"xlsx": "org.openxmlformats.spreadsheetml.sheet",
	"pptx": "org.openxmlformats.presentationml.presentation",
	"odt":  "org.oasis-open.opendocument.text",
	"ods":  "org.oasis-open.opendocument.spreadsheet",
	"odp":  "org.oasis-open.opendocument.presentation",
	"ply":  "public.polygon-file-format",
	"stl":  "public.standard-tesselated-geometry-format",
	"obj":  "public.geometry-definition-format",
}

// Conforms reports whether uti is parent or descends from it.
func Conforms(uti, parent string) bool {
	return conforms(uti, parent, 0)
}

func conforms(uti, parent string, depth int) bool {
	if uti == parent {
		return true
	}
	if depth > 16 {
		return false
	}
	for _, p := range conformsTo[uti] {
		if conforms(p, parent, depth+1) {
			return true
		}
	}
	return false
}

// ForExtension returns the identifier registered for path's extension, or
// "" when it is unknown.
func ForExtension(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	return byExtension[ext]
}

// Extensions returns every extension (with leading dot) that classifies to
// a category.
func Extensions() map[string]bool {
	out := make(map[string]bool, len(byExtension))
	for ext, uti := range byExtension {
		if Category(uti) != info.CategoryNone {
			out["."+ext] = true
		}
	}
	return out
}

// Classify returns the category of a file. uti is the declared identifier;
// when empty the extension decides. It performs no I/O.
func Classify(path, uti string) info.Category {
	if uti == "" {
		uti = ForExtension(path)
	}
	return Category(uti)
}

// Category maps an identifier to its category.
func Category(uti string) info.Category {
	switch {
	case uti == "":
		return info.CategoryNone
	case Conforms(uti, TypeImage):
		return info.CategoryImage
	case Conforms(uti, TypeMovie):
		return info.CategoryVideo
	case Conforms(uti, TypeAudio):
		return info.CategoryAudio
	case Conforms(uti, TypePDF):
		return info.CategoryPDF
	case uti == "org.openxmlformats.wordprocessingml.document", uti == "org.oasis-open.opendocument.text":
		return info.CategoryWord
	case uti == "org.openxmlformats.spreadsheetml.sheet", uti == "org.oasis-open.opendocument.spreadsheet":
		return info.CategoryExcel
	case uti == "org.openxmlformats.presentationml.presentation", uti == "org.oasis-open.opendocument.presentation":
		return info.CategoryPowerpoint
	case Conforms(uti, TypeModel):
		return info.CategoryModel
	default:
		return info.CategoryNone
	}
}

// Container returns the archive family of an office identifier.
func Container(uti string) info.Container {
	switch {
	case Conforms(uti, TypeOOXML):
		return info.ContainerOOXML
	case Conforms(uti, TypeOpenDocument):
		return info.ContainerOpenDocument
	default:
		return info.ContainerUnknown
	}
}

// sniffLen is the number of bytes http.DetectContentType considers.
const sniffLen = 512

// Sniff returns the identifier of a file, from its extension when known
// and otherwise from its leading bytes. It returns "" when neither helps.
func Sniff(path string) string {
	if uti := ForExtension(path); uti != "" {
		return uti
	}
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return ""
	}
	return SniffBytes(head[:n])
}

// SniffBytes identifies content from its leading bytes.
func SniffBytes(head []byte) string {
	switch {
	case len(head) >= 12 && bytes.Equal(head[4:8], []byte("ftyp")):
		return TypeISOMedia
	case len(head) >= 12 && bytes.HasPrefix(head, []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WEBP")):
		return TypeWebP
	case len(head) >= 12 && bytes.HasPrefix(head, []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WAVE")):
		return TypeWAVE
	case len(head) >= 2 && head[0] == 'P' && head[1] >= '1' && head[1] <= '7':
		return TypeNetPBM
	case bytes.HasPrefix(head, []byte("ply\n")), bytes.HasPrefix(head, []byte("ply\r\n")):
		return "public.polygon-file-format"
	case bytes.HasPrefix(head, []byte("solid ")):
		return "public.standard-tesselated-geometry-format"
	}
	switch ct := http.DetectContentType(head); {
	case ct == "image/png":
		return "public.png"
	case ct == "image/jpeg":
		return "public.jpeg"
	case ct == "image/gif":
		return "com.compuserve.gif"
	case ct == "image/bmp":
		return "com.microsoft.bmp"
	case ct == "image/webp":
		return TypeWebP
	case ct == "application/pdf":
		return TypePDF
	case ct == "application/zip":
		return TypeZip
	case ct == "video/webm":
		return "org.webmproject.webm"
	case ct == "video/avi":
		return "public.avi"
	case ct == "audio/mpeg":
		return "public.mp3"
	case ct == "audio/wave":
		return TypeWAVE
	case ct == "audio/aiff":
		return "public.aiff-audio"
	case ct == "application/ogg":
		return "org.xiph.ogg-audio"
	case strings.HasPrefix(ct, "text/xml"):
		if bytes.Contains(head, []byte("<svg")) {
			return TypeSVG
		}
		return TypeXML
	}
	return ""
}
