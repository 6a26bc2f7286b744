package native

import (
	"context"
	"encoding/binary"
	"io"
	"math"

	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/probe"
)

const (
	maxBoxDepth   = 8
	maxBoxes      = 100000
	maxTableBytes = 64 << 20 // stsz sample table.
)

// box is a parsed box header. Offsets are absolute.
type box struct {
	typ   string
	start int64 // Payload start.
	end   int64 // Payload end.
}

// track accumulates what one trak box declares.
type track struct {
	handler   string
	width     int
	height    int
	timescale uint32
	duration  uint64
	language  string
	codec     string
	entryW    int
	entryH    int
	samples   int64
	bytes     int64
}

type isoReader struct {
	ctx    context.Context
	r      io.ReaderAt
	boxes  int
	mvhdTS uint32
	mvhdD  uint64
	tracks []*track
}

func readISO(ctx context.Context, r io.ReaderAt, size int64) (info.Streams, error) {
	ir := &isoReader{ctx: ctx, r: r}
	sawMoov := false
	err := ir.walk(0, size, 0, func(b box, depth int) error {
		if b.typ == "moov" {
			sawMoov = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !sawMoov {
		return nil, corrupted("moov box not found")
	}
	movieDur := 0.0
	if ir.mvhdTS > 0 {
		movieDur = float64(ir.mvhdD) / float64(ir.mvhdTS)
	}
	streams := make(info.Streams, 0, len(ir.tracks))
	for _, t := range ir.tracks {
		streams = append(streams, t.stream(movieDur))
	}
	return streams, nil
}

// walk iterates the boxes in [from, to), descending into containers.
func (ir *isoReader) walk(from, to int64, depth int, visit func(box, int) error) error {
	if depth > maxBoxDepth {
		return corrupted("boxes nested deeper than %d", maxBoxDepth)
	}
	for off := from; off+8 <= to; {
		if err := ir.ctx.Err(); err != nil {
			return err
		}
		ir.boxes++
		if ir.boxes > maxBoxes {
			return corrupted("more than %d boxes", maxBoxes)
		}
		b, err := ir.header(off, to)
		if err != nil {
			return err
		}
		if err := visit(b, depth); err != nil {
			return err
		}
		if err := ir.enter(b, depth, visit); err != nil {
			return err
		}
		off = b.end
	}
	return nil
}

func (ir *isoReader) header(off, limit int64) (box, error) {
	var hdr [16]byte
	if _, err := ir.r.ReadAt(hdr[:8], off); err != nil {
		return box{}, corrupted("box header at %d: %v", off, err)
	}
	size := int64(binary.BigEndian.Uint32(hdr[0:4]))
	b := box{typ: string(hdr[4:8]), start: off + 8}
	switch size {
	case 0:
		b.end = limit
	case 1:
		if _, err := ir.r.ReadAt(hdr[8:16], off+8); err != nil {
			return box{}, corrupted("large box header at %d: %v", off, err)
		}
		large := binary.BigEndian.Uint64(hdr[8:16])
		if large > math.MaxInt64 {
			return box{}, corrupted("box %q size overflows", b.typ)
		}
		b.start = off + 16
		b.end = off + int64(large)
		if int64(large) < 16 {
			return box{}, corrupted("box %q size %d too small", b.typ, large)
		}
	default:
		if size < 8 {
			return box{}, corrupted("box %q size %d too small", b.typ, size)
		}
		b.end = off + size
	}
	if b.end > limit || b.end < b.start {
		return box{}, corrupted("box %q at %d exceeds its parent", b.typ, off)
	}
	return b, nil
}

// enter parses leaf boxes of interest and recurses into containers.
func (ir *isoReader) enter(b box, depth int, visit func(box, int) error) error {
	switch b.typ {
	case "moov", "mdia", "minf", "stbl", "edts":
		return ir.walk(b.start, b.end, depth+1, visit)
	case "trak":
		ir.tracks = append(ir.tracks, &track{})
		return ir.walk(b.start, b.end, depth+1, visit)
	case "mvhd":
		return ir.mvhd(b)
	}
	if len(ir.tracks) == 0 {
		return nil
	}
	t := ir.tracks[len(ir.tracks)-1]
	switch b.typ {
	case "tkhd":
		return ir.tkhd(b, t)
	case "mdhd":
		return ir.mdhd(b, t)
	case "hdlr":
		return ir.hdlr(b, t)
	case "stsd":
		return ir.stsd(b, t)
	case "stsz":
		return ir.stsz(b, t)
	}
	return nil
}

func (ir *isoReader) payload(b box, max int64) ([]byte, error) {
	n := b.end - b.start
	if n > max {
		n = max
	}
	buf := make([]byte, n)
	if _, err := ir.r.ReadAt(buf, b.start); err != nil && err != io.EOF {
		return nil, corrupted("box %q: %v", b.typ, err)
	}
	return buf, nil
}

func (ir *isoReader) mvhd(b box) error {
	p, err := ir.payload(b, 32)
	if err != nil {
		return err
	}
	switch {
	case len(p) >= 20 && p[0] == 0:
		ir.mvhdTS = binary.BigEndian.Uint32(p[12:16])
		ir.mvhdD = uint64(binary.BigEndian.Uint32(p[16:20]))
	case len(p) >= 32 && p[0] == 1:
		ir.mvhdTS = binary.BigEndian.Uint32(p[20:24])
		ir.mvhdD = binary.BigEndian.Uint64(p[24:32])
	default:
		return corrupted("mvhd too short")
	}
	return nil
}

func (ir *isoReader) tkhd(b box, t *track) error {
	p, err := ir.payload(b, 96)
	if err != nil {
		return err
	}
	// Width and height are 16.16 fixed point at the end of the box.
	var at int
	switch {
	case len(p) >= 84 && p[0] == 0:
		at = 76
	case len(p) >= 96 && p[0] == 1:
		at = 88
	default:
		return corrupted("tkhd too short")
	}
	t.width = int(binary.BigEndian.Uint32(p[at:at+4]) >> 16)
	t.height = int(binary.BigEndian.Uint32(p[at+4:at+8]) >> 16)
	return nil
}

func (ir *isoReader) mdhd(b box, t *track) error {
	p, err := ir.payload(b, 36)
	if err != nil {
		return err
	}
	var lang int
	switch {
	case len(p) >= 22 && p[0] == 0:
		t.timescale = binary.BigEndian.Uint32(p[12:16])
		t.duration = uint64(binary.BigEndian.Uint32(p[16:20]))
		lang = 20
	case len(p) >= 34 && p[0] == 1:
		t.timescale = binary.BigEndian.Uint32(p[20:24])
		t.duration = binary.BigEndian.Uint64(p[24:32])
		lang = 32
	default:
		return corrupted("mdhd too short")
	}
	t.language = unpackLanguage(binary.BigEndian.Uint16(p[lang : lang+2]))
	return nil
}

// unpackLanguage decodes the ISO 639-2 code packed as three 5-bit letters.
func unpackLanguage(v uint16) string {
	if v == 0 || v == 0x7fff {
		return ""
	}
	code := []byte{
		byte(v>>10&0x1f) + 0x60,
		byte(v>>5&0x1f) + 0x60,
		byte(v&0x1f) + 0x60,
	}
	for _, c := range code {
		if c < 'a' || c > 'z' {
			return ""
		}
	}
	if string(code) == "und" {
		return ""
	}
	return string(code)
}

func (ir *isoReader) hdlr(b box, t *track) error {
	p, err := ir.payload(b, 12)
	if err != nil {
		return err
	}
	if len(p) < 12 {
		return corrupted("hdlr too short")
	}
	t.handler = string(p[8:12])
	return nil
}

func (ir *isoReader) stsd(b box, t *track) error {
	p, err := ir.payload(b, 8+8+28)
	if err != nil {
		return err
	}
	if len(p) < 16 || binary.BigEndian.Uint32(p[4:8]) == 0 {
		return nil
	}
	t.codec = string(p[12:16])
	// Visual sample entries carry the coded size after 24 bytes of fields.
	if len(p) >= 16+28 {
		t.entryW = int(binary.BigEndian.Uint16(p[16+24 : 16+26]))
		t.entryH = int(binary.BigEndian.Uint16(p[16+26 : 16+28]))
	}
	return nil
}

func (ir *isoReader) stsz(b box, t *track) error {
	p, err := ir.payload(b, 12)
	if err != nil {
		return err
	}
	if len(p) < 12 {
		return corrupted("stsz too short")
	}
	size := int64(binary.BigEndian.Uint32(p[4:8]))
	count := int64(binary.BigEndian.Uint32(p[8:12]))
	t.samples = count
	if size != 0 {
		t.bytes = size * count
		return nil
	}
	if 12+count*4 > b.end-b.start {
		return corrupted("stsz table exceeds box")
	}
	if count*4 > maxTableBytes {
		return nil
	}
	table := make([]byte, count*4)
	if _, err := ir.r.ReadAt(table, b.start+12); err != nil && err != io.EOF {
		return corrupted("stsz table: %v", err)
	}
	for i := 0; i+4 <= len(table); i += 4 {
		t.bytes += int64(binary.BigEndian.Uint32(table[i : i+4]))
	}
	return nil
}

func (t *track) stream(movieDur float64) info.Stream {
	dur := movieDur
	if t.timescale > 0 && t.duration > 0 && t.duration != math.MaxUint32 && t.duration != math.MaxUint64 {
		dur = float64(t.duration) / float64(t.timescale)
	}
	var rate int64
	if dur > 0 && t.bytes > 0 {
		rate = int64(float64(t.bytes) / dur)
	}
	lang := info.String(t.language)
	switch t.handler {
	case "vide":
		w, h := t.width, t.height
		if w == 0 || h == 0 {
			w, h = t.entryW, t.entryH
		}
		return info.VideoStream{
			Width:    w,
			Height:   h,
			Duration: dur,
			Codec:    probe.CodecLabel(t.codec),
			Language: lang,
			BitRate:  rate,
			Frames:   t.samples,
		}
	case "soun":
		return info.AudioStream{
			Duration: dur,
			Codec:    probe.CodecLabel(t.codec),
			Language: lang,
			BitRate:  rate,
		}
	case "sbtl", "subt", "text", "clcp":
		return info.SubtitleStream{Language: lang}
	default:
		return info.OtherStream{}
	}
}
