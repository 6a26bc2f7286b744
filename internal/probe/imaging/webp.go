package imaging

import (
	"bytes"
	"context"
	"encoding/binary"

	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/probe"
)

// WebP reads the canvas size from the first chunk of a RIFF/WEBP file.
func WebP(ctx context.Context, path string) (*info.ImageInfo, error) {
	head, err := readHead(path, 64)
	if err != nil {
		return nil, probe.NotApplicable(NameWebP, err)
	}
	return ParseWebP(head)
}

// ParseWebP parses the leading bytes of a WebP file.
func ParseWebP(head []byte) (*info.ImageInfo, error) {
	if len(head) < 16 || !bytes.Equal(head[0:4], []byte("RIFF")) || !bytes.Equal(head[8:12], []byte("WEBP")) {
		return nil, probe.NotApplicablef(NameWebP, "missing RIFF/WEBP header")
	}
	img := &info.ImageInfo{ColorMode: "RGB", Depth: 8}
	switch chunk := string(head[12:16]); chunk {
	case "VP8 ":
		// Frame tag (3 bytes), start code 9d 01 2a, then 14-bit sizes.
		if len(head) < 30 || !bytes.Equal(head[23:26], []byte{0x9d, 0x01, 0x2a}) {
			return nil, probe.Corruptedf(NameWebP, "bad VP8 start code")
		}
		img.Width = int(binary.LittleEndian.Uint16(head[26:28]) & 0x3fff)
		img.Height = int(binary.LittleEndian.Uint16(head[28:30]) & 0x3fff)
	case "VP8L":
		if len(head) < 25 || head[20] != 0x2f {
			return nil, probe.Corruptedf(NameWebP, "bad VP8L signature")
		}
		v := binary.LittleEndian.Uint32(head[21:25])
		img.Width = int(v&0x3fff) + 1
		img.Height = int(v>>14&0x3fff) + 1
	case "VP8X":
		if len(head) < 30 {
			return nil, probe.Corruptedf(NameWebP, "short VP8X chunk")
		}
		img.Width = int(uint24(head[24:27])) + 1
		img.Height = int(uint24(head[27:30])) + 1
	default:
		return nil, probe.Corruptedf(NameWebP, "unknown first chunk %q", chunk)
	}
	if img.Width == 0 || img.Height == 0 {
		return nil, probe.Corruptedf(NameWebP, "zero canvas size")
	}
	return img, nil
}

func uint24(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}
