// Package imaging holds the image probes: the native decoder set and the
// header-only parsers for NetPBM, WebP and SVG.
package imaging

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // Register decoders for image.DecodeConfig.
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/probe"
)

// Probe names.
const (
	NameNative = "image"
	NameNetPBM = "netpbm"
	NameWebP   = "webp"
	NameSVG    = "svg"
)

// headLen bounds the bytes scanned for resolution metadata.
const headLen = 64 << 10

// Native reads PNG, JPEG, GIF, BMP and TIFF headers with the registered
// decoders. Resolution comes from PNG pHYs, JPEG JFIF and BMP headers.
func Native(ctx context.Context, path string) (*info.ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, probe.NotApplicable(NameNative, err)
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, headLen)
	head, _ := br.Peek(headLen)
	head = bytes.Clone(head)

	cfg, format, err := image.DecodeConfig(br)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, probe.NotApplicable(NameNative, err)
		}
		return nil, probe.Corrupted(NameNative, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.Width < 0 || cfg.Height < 0 {
		return nil, probe.Corruptedf(NameNative, "negative dimensions")
	}

	mode, depth := describeModel(cfg.ColorModel)
	img := &info.ImageInfo{Width: cfg.Width, Height: cfg.Height, ColorMode: mode, Depth: depth}
	switch format {
	case "png":
		if d := pngBitDepth(head); d > 0 {
			img.Depth = d
		}
		img.DPI = pngDPI(head)
	case "jpeg":
		img.DPI = jfifDPI(head)
	case "bmp":
		img.DPI = bmpDPI(head)
	}
	return img, nil
}

// describeModel maps a color model to a display label and bits per sample.
func describeModel(m color.Model) (string, int) {
	switch m {
	case color.RGBAModel, color.NRGBAModel, color.YCbCrModel, color.NYCbCrAModel:
		return "RGB", 8
	case color.RGBA64Model, color.NRGBA64Model:
		return "RGB", 16
	case color.GrayModel, color.AlphaModel:
		return "Gray", 8
	case color.Gray16Model, color.Alpha16Model:
		return "Gray", 16
	case color.CMYKModel:
		return "CMYK", 8
	}
	if _, ok := m.(color.Palette); ok {
		return "RGB", 8
	}
	return "", 0
}

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// pngChunks calls fn for every chunk in head until IDAT or fn returns false.
func pngChunks(head []byte, fn func(typ string, data []byte) bool) {
	if !bytes.HasPrefix(head, pngMagic) {
		return
	}
	for off := len(pngMagic); off+8 <= len(head); {
		n := int(binary.BigEndian.Uint32(head[off : off+4]))
		typ := string(head[off+4 : off+8])
		if typ == "IDAT" || n < 0 || off+8+n > len(head) {
			return
		}
		if !fn(typ, head[off+8:off+8+n]) {
			return
		}
		off += 12 + n
	}
}

func pngBitDepth(head []byte) (depth int) {
	pngChunks(head, func(typ string, data []byte) bool {
		if typ == "IHDR" && len(data) >= 9 {
			depth = int(data[8])
		}
		return false
	})
	return depth
}

// pngDPI reads pHYs; unit 1 is pixels per metre.
func pngDPI(head []byte) (dpi int) {
	pngChunks(head, func(typ string, data []byte) bool {
		if typ != "pHYs" {
			return true
		}
		if len(data) >= 9 && data[8] == 1 {
			dpi = perMetreToDPI(binary.BigEndian.Uint32(data[0:4]))
		}
		return false
	})
	return dpi
}

// jfifDPI reads the APP0 density; units 1 are dots per inch, 2 per cm.
func jfifDPI(head []byte) int {
	if len(head) < 4 || head[0] != 0xFF || head[1] != 0xD8 {
		return 0
	}
	for off := 2; off+4 <= len(head); {
		if head[off] != 0xFF {
			return 0
		}
		marker := head[off+1]
		n := int(binary.BigEndian.Uint16(head[off+2 : off+4]))
		if n < 2 || off+2+n > len(head) {
			return 0
		}
		seg := head[off+4 : off+2+n]
		if marker == 0xE0 && len(seg) >= 12 && bytes.HasPrefix(seg, []byte("JFIF\x00")) {
			x := float64(binary.BigEndian.Uint16(seg[8:10]))
			switch seg[7] {
			case 1:
				return int(x)
			case 2:
				return int(math.Round(x * 2.54))
			}
			return 0
		}
		if marker == 0xDA { // Start of scan.
			return 0
		}
		off += 2 + n
	}
	return 0
}

// bmpDPI reads biXPelsPerMeter from a BITMAPINFOHEADER.
func bmpDPI(head []byte) int {
	if len(head) < 42 || head[0] != 'B' || head[1] != 'M' {
		return 0
	}
	if binary.LittleEndian.Uint32(head[14:18]) < 40 {
		return 0
	}
	v := int32(binary.LittleEndian.Uint32(head[38:42]))
	if v <= 0 {
		return 0
	}
	return perMetreToDPI(uint32(v))
}

func perMetreToDPI(v uint32) int {
	return int(math.Round(float64(v) * 0.0254))
}

// readHead reads at most n bytes from the start of path.
func readHead(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf := make([]byte, n)
	m, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return buf[:m], nil
}
