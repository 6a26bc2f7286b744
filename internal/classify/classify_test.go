package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/backmassage/mediainfo/internal/info"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		path string
		uti  string
		want info.Category
	}{
		{"png by extension", "/a/b.PNG", "", info.CategoryImage},
		{"svg by extension", "logo.svg", "", info.CategoryImage},
		{"netpbm", "scan.pgm", "", info.CategoryImage},
		{"mkv", "film.mkv", "", info.CategoryVideo},
		{"m4a is audio not video", "song.m4a", "", info.CategoryAudio},
		{"wav", "take.wav", "", info.CategoryAudio},
		{"pdf", "doc.pdf", "", info.CategoryPDF},
		{"docx", "letter.docx", "", info.CategoryWord},
		{"odt", "letter.odt", "", info.CategoryWord},
		{"xlsx", "book.xlsx", "", info.CategoryExcel},
		{"odp", "deck.odp", "", info.CategoryPowerpoint},
		{"obj", "mesh.obj", "", info.CategoryModel},
		{"declared type wins", "no-extension", "public.jpeg", info.CategoryImage},
		{"declared unknown type", "file.png", "com.example.custom", info.CategoryNone},
		{"unsupported", "notes.txt", "", info.CategoryNone},
		{"no extension", "README", "", info.CategoryNone},
		{"zip is not a document", "x.zip", TypeZip, info.CategoryNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.path, tt.uti); got != tt.want {
				t.Errorf("Classify(%q, %q) = %v, want %v", tt.path, tt.uti, got, tt.want)
			}
		})
	}
}

func TestConforms(t *testing.T) {
	tests := []struct {
		uti, parent string
		want        bool
	}{
		{"public.png", TypeImage, true},
		{"public.png", TypeData, true},
		{TypeSVG, TypeXML, true},
		{TypeSVG, TypeText, true},
		{"com.apple.m4a-audio", TypeAudio, true},
		{"com.apple.m4a-audio", TypeMovie, false},
		{"org.oasis-open.opendocument.text", TypeZip, true},
		{TypeImage, "public.png", false},
		{"unknown", "unknown", true},
	}
	for _, tt := range tests {
		if got := Conforms(tt.uti, tt.parent); got != tt.want {
			t.Errorf("Conforms(%q, %q) = %v, want %v", tt.uti, tt.parent, got, tt.want)
		}
	}
}

func TestContainer(t *testing.T) {
	if got := Container(ForExtension("a.xlsx")); got != info.ContainerOOXML {
		t.Errorf("Container(xlsx) = %v", got)
	}
	if got := Container(ForExtension("a.ods")); got != info.ContainerOpenDocument {
		t.Errorf("Container(ods) = %v", got)
	}
	if got := Container(ForExtension("a.pdf")); got != info.ContainerUnknown {
		t.Errorf("Container(pdf) = %v", got)
	}
}

func TestSniffBytes(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want string
	}{
		{"png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), "public.png"},
		{"jpeg", []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), "public.jpeg"},
		{"mp4", []byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00"), TypeISOMedia},
		{"webp", []byte("RIFF\x10\x00\x00\x00WEBPVP8 "), TypeWebP},
		{"wave", []byte("RIFF\x10\x00\x00\x00WAVEfmt "), TypeWAVE},
		{"pdf", []byte("%PDF-1.7\n"), TypePDF},
		{"zip", []byte("PK\x03\x04\x14\x00"), TypeZip},
		{"pbm", []byte("P4\n8 8\n"), TypeNetPBM},
		{"ply", []byte("ply\nformat ascii 1.0\n"), "public.polygon-file-format"},
		{"svg", []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"/>`), TypeSVG},
		{"text", []byte("hello world"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SniffBytes(tt.head); got != tt.want {
				t.Errorf("SniffBytes() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSniff_FallsBackToContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "download")
	if err := os.WriteFile(path, []byte("%PDF-1.4\n%..."), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Sniff(path); got != TypePDF {
		t.Errorf("Sniff() = %q, want %q", got, TypePDF)
	}
	if got := Sniff(filepath.Join(dir, "clip.mov")); got != "com.apple.quicktime-movie" {
		t.Errorf("Sniff() by extension = %q", got)
	}
	if got := Sniff(filepath.Join(dir, "missing")); got != "" {
		t.Errorf("Sniff(missing) = %q, want empty", got)
	}
}

func TestExtensions(t *testing.T) {
	exts := Extensions()
	for _, ext := range []string{".png", ".mkv", ".pdf", ".docx", ".stl"} {
		if !exts[ext] {
			t.Errorf("Extensions() missing %s", ext)
		}
	}
}
