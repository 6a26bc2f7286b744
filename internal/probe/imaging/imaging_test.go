package imaging

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/probe"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// withPHYs inserts a pHYs chunk right after IHDR.
func withPHYs(data []byte, perMetre uint32) []byte {
	body := binary.BigEndian.AppendUint32(nil, perMetre)
	body = binary.BigEndian.AppendUint32(body, perMetre)
	body = append(body, 1)
	chunk := binary.BigEndian.AppendUint32(nil, uint32(len(body)))
	typed := append([]byte("pHYs"), body...)
	chunk = append(chunk, typed...)
	chunk = binary.BigEndian.AppendUint32(chunk, crc32.ChecksumIEEE(typed))

	ihdrEnd := 8 + 8 + 13 + 4
	out := append([]byte{}, data[:ihdrEnd]...)
	out = append(out, chunk...)
	return append(out, data[ihdrEnd:]...)
}

func TestNative_PNG(t *testing.T) {
	rgba := image.NewNRGBA(image.Rect(0, 0, 30, 20))
	rgba.Set(1, 1, color.NRGBA{R: 255, A: 128})
	path := writeFile(t, "a.png", withPHYs(encodePNG(t, rgba), 11811))

	img, err := Native(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	want := info.ImageInfo{Width: 30, Height: 20, ColorMode: "RGB", Depth: 8, DPI: 300}
	if *img != want {
		t.Errorf("Native() = %+v, want %+v", *img, want)
	}
}

func TestNative_GrayPNG16(t *testing.T) {
	path := writeFile(t, "g.png", encodePNG(t, image.NewGray16(image.Rect(0, 0, 4, 3))))
	img, err := Native(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if img.ColorMode != "Gray" || img.Depth != 16 || img.DPI != 0 {
		t.Errorf("Native() = %+v", img)
	}
}

func TestNative_JPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 64, 48)), nil); err != nil {
		t.Fatal(err)
	}
	img, err := Native(context.Background(), writeFile(t, "a.jpg", buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if img.Width != 64 || img.Height != 48 || img.ColorMode != "RGB" {
		t.Errorf("Native() = %+v", img)
	}
}

func TestNative_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		kind error
	}{
		{"not an image", []byte("hello"), probe.ErrNotApplicable},
		{"truncated png", pngMagic, probe.ErrParseCorrupted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Native(context.Background(), writeFile(t, "x", tt.data))
			if !errors.Is(err, tt.kind) {
				t.Errorf("Native() = %v, want %v", err, tt.kind)
			}
		})
	}
}

func TestJFIFDPI(t *testing.T) {
	seg := []byte("JFIF\x00\x01\x02")
	build := func(units byte, density uint16) []byte {
		body := append(append([]byte{}, seg...), units)
		body = binary.BigEndian.AppendUint16(body, density)
		body = binary.BigEndian.AppendUint16(body, density)
		body = append(body, 0, 0)
		out := []byte{0xFF, 0xD8, 0xFF, 0xE0}
		out = binary.BigEndian.AppendUint16(out, uint16(len(body)+2))
		return append(out, body...)
	}
	if got := jfifDPI(build(1, 72)); got != 72 {
		t.Errorf("dpi units: got %d, want 72", got)
	}
	if got := jfifDPI(build(2, 118)); got != 300 {
		t.Errorf("dpcm units: got %d, want 300", got)
	}
	if got := jfifDPI(build(0, 1)); got != 0 {
		t.Errorf("aspect only: got %d, want 0", got)
	}
}

func TestParseNetPBM(t *testing.T) {
	tests := []struct {
		name string
		head string
		want info.ImageInfo
	}{
		{"P1 bitmap", "P1\n# comment\n8 4\n0 1", info.ImageInfo{Width: 8, Height: 4, ColorMode: "Gray", Depth: 1}},
		{"P5 graymap", "P5 640 480 255\n", info.ImageInfo{Width: 640, Height: 480, ColorMode: "Gray", Depth: 8}},
		{"P6 16-bit", "P6\n2 2\n#x\n65535\n", info.ImageInfo{Width: 2, Height: 2, ColorMode: "RGB", Depth: 16}},
		{"P7 RGB_ALPHA", "P7\nWIDTH 3\nHEIGHT 5\nDEPTH 4\nMAXVAL 255\nTUPLTYPE RGB_ALPHA\nENDHDR\n", info.ImageInfo{Width: 3, Height: 5, ColorMode: "RGB", Depth: 8}},
		{"P7 by depth", "P7\nWIDTH 1\nHEIGHT 1\nDEPTH 1\nMAXVAL 1\nENDHDR\n", info.ImageInfo{Width: 1, Height: 1, ColorMode: "Gray", Depth: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNetPBM([]byte(tt.head))
			if err != nil {
				t.Fatal(err)
			}
			if *got != tt.want {
				t.Errorf("ParseNetPBM() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestParseNetPBM_Errors(t *testing.T) {
	tests := []struct {
		name string
		head string
		kind error
	}{
		{"png", "\x89PNG", probe.ErrNotApplicable},
		{"P8", "P8\n1 1\n", probe.ErrNotApplicable},
		{"letters", "P2\nwide tall\n", probe.ErrParseCorrupted},
		{"zero width", "P5 0 10 255\n", probe.ErrParseCorrupted},
		{"maxval too big", "P5 1 1 70000\n", probe.ErrParseCorrupted},
		{"PAM without end", "P7\nWIDTH 1\nHEIGHT 1\n", probe.ErrParseCorrupted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseNetPBM([]byte(tt.head)); !errors.Is(err, tt.kind) {
				t.Errorf("ParseNetPBM() = %v, want %v", err, tt.kind)
			}
		})
	}
}

func riff(chunk string, payload []byte) []byte {
	body := append([]byte("WEBP"+chunk), binary.LittleEndian.AppendUint32(nil, uint32(len(payload)))...)
	body = append(body, payload...)
	return append(append([]byte("RIFF"), binary.LittleEndian.AppendUint32(nil, uint32(len(body)))...), body...)
}

func TestParseWebP(t *testing.T) {
	lossy := append([]byte{0x10, 0x02, 0x00, 0x9d, 0x01, 0x2a}, 0x80, 0x02, 0xe0, 0x01) // 640x480
	lossless := []byte{0x2f}
	lossless = binary.LittleEndian.AppendUint32(lossless, uint32(99)|uint32(49)<<14) // 100x50
	extended := []byte{0x10, 0, 0, 0, 0xff, 0x0e, 0x00, 0x37, 0x08, 0x00}            // 3840x2104

	tests := []struct {
		name          string
		data          []byte
		width, height int
	}{
		{"VP8", riff("VP8 ", lossy), 640, 480},
		{"VP8L", riff("VP8L", lossless), 100, 50},
		{"VP8X", riff("VP8X", extended), 3840, 2104},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := ParseWebP(tt.data)
			if err != nil {
				t.Fatal(err)
			}
			if img.Width != tt.width || img.Height != tt.height {
				t.Errorf("ParseWebP() = %dx%d, want %dx%d", img.Width, img.Height, tt.width, tt.height)
			}
		})
	}

	if _, err := ParseWebP(riff("ALPH", make([]byte, 16))); !errors.Is(err, probe.ErrParseCorrupted) {
		t.Errorf("unknown chunk: got %v, want ErrParseCorrupted", err)
	}
	if _, err := ParseWebP([]byte("RIFF....WAVEfmt ")); !errors.Is(err, probe.ErrNotApplicable) {
		t.Errorf("WAVE file: got %v, want ErrNotApplicable", err)
	}
}

func TestParseSVG(t *testing.T) {
	tests := []struct {
		name          string
		doc           string
		width, height int
	}{
		{"pixels", `<svg xmlns="http://www.w3.org/2000/svg" width="120" height="80"/>`, 120, 80},
		{"with prolog", `<?xml version="1.0"?><!DOCTYPE svg><svg width="10px" height="20px"></svg>`, 10, 20},
		{"inches", `<svg width="1in" height="0.5in"></svg>`, 96, 48},
		{"viewBox only", `<svg viewBox="0 0 300 150"></svg>`, 300, 150},
		{"percent uses viewBox", `<svg width="100%" height="100%" viewBox="0,0,64,32"></svg>`, 64, 32},
		{"width and viewBox aspect", `<svg width="200" viewBox="0 0 100 50"></svg>`, 200, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := ParseSVG(strings.NewReader(tt.doc))
			if err != nil {
				t.Fatal(err)
			}
			if img.Width != tt.width || img.Height != tt.height {
				t.Errorf("ParseSVG() = %dx%d, want %dx%d", img.Width, img.Height, tt.width, tt.height)
			}
		})
	}
}

func TestParseSVG_Errors(t *testing.T) {
	if _, err := ParseSVG(strings.NewReader(`<html><body>hi</body></html>`)); !errors.Is(err, probe.ErrNotApplicable) {
		t.Errorf("no svg: got %v, want ErrNotApplicable", err)
	}
	if _, err := ParseSVG(strings.NewReader(`<svg width="auto"></svg>`)); !errors.Is(err, probe.ErrParseCorrupted) {
		t.Errorf("no size: got %v, want ErrParseCorrupted", err)
	}
}

func TestSVGFromFile(t *testing.T) {
	path := writeFile(t, "logo.svg", []byte(`<svg width="2cm" height="1cm"/>`))
	img, err := SVG(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if img.Width != 76 || img.Height != 38 {
		t.Errorf("SVG() = %dx%d, want 76x38", img.Width, img.Height)
	}
}
