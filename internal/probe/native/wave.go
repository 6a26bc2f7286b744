package native

import (
	"context"
	"encoding/binary"
	"io"

	"github.com/backmassage/mediainfo/internal/info"
)

// waveCodecs maps WAVE format tags to codec labels.
var waveCodecs = map[uint16]string{
	0x0001: "PCM",
	0x0002: "ADPCM",
	0x0003: "PCM",
	0x0006: "A-law",
	0x0007: "µ-law",
	0x0011: "IMA ADPCM",
	0x0050: "MPEG",
	0x0055: "MP3",
	0x2000: "AC-3",
}

const waveExtensible = 0xFFFE

func readWAVE(ctx context.Context, r io.ReaderAt, size int64) (info.Streams, error) {
	var (
		fmtFound bool
		tag      uint16
		byteRate uint32
		dataSize int64 = -1
		hdr      [8]byte
	)
	for off := int64(12); off+8 <= size; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := r.ReadAt(hdr[:], off); err != nil {
			return nil, corrupted("chunk header at %d: %v", off, err)
		}
		id := string(hdr[0:4])
		n := int64(binary.LittleEndian.Uint32(hdr[4:8]))
		body := off + 8
		switch id {
		case "fmt ":
			if n < 16 {
				return nil, corrupted("fmt chunk too short (%d)", n)
			}
			buf := make([]byte, 26)
			if n < 26 {
				buf = buf[:16]
			}
			if _, err := r.ReadAt(buf, body); err != nil {
				return nil, corrupted("fmt chunk: %v", err)
			}
			tag = binary.LittleEndian.Uint16(buf[0:2])
			byteRate = binary.LittleEndian.Uint32(buf[8:12])
			if tag == waveExtensible && len(buf) >= 26 {
				tag = binary.LittleEndian.Uint16(buf[24:26])
			}
			fmtFound = true
		case "data":
			// Streaming writers leave the size at its maximum.
			if n == 0xFFFFFFFF || body+n > size {
				n = size - body
			}
			dataSize = n
		}
		if body+n > size {
			return nil, corrupted("chunk %q exceeds file", id)
		}
		off = body + n + n&1
		if fmtFound && dataSize >= 0 {
			break
		}
	}
	if !fmtFound {
		return nil, corrupted("fmt chunk not found")
	}
	codec, ok := waveCodecs[tag]
	if !ok {
		codec = "WAVE"
	}
	a := info.AudioStream{Codec: codec, BitRate: int64(byteRate)}
	if byteRate > 0 && dataSize > 0 {
		a.Duration = float64(dataSize) / float64(byteRate)
	}
	return info.Streams{a}, nil
}
