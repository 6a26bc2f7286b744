package native

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/probe"
)

// --- ISO box builders ---

func cat(parts ...[]byte) []byte { return bytes.Join(parts, nil) }

func mkbox(typ string, payload ...[]byte) []byte {
	body := cat(payload...)
	out := binary.BigEndian.AppendUint32(nil, uint32(8+len(body)))
	return cat(out, []byte(typ), body)
}

func full(version byte, rest ...[]byte) []byte {
	return cat(append([][]byte{{version, 0, 0, 0}}, rest...)...)
}

func u16(v uint16) []byte { return binary.BigEndian.AppendUint16(nil, v) }
func u32(v uint32) []byte { return binary.BigEndian.AppendUint32(nil, v) }
func zeros(n int) []byte  { return make([]byte, n) }

func packLanguage(code string) uint16 {
	return uint16(code[0]-0x60)<<10 | uint16(code[1]-0x60)<<5 | uint16(code[2]-0x60)
}

func trak(handler string, w, h uint32, ts, dur uint32, lang string, entry, stsz []byte) []byte {
	return mkbox("trak",
		mkbox("tkhd", full(0, zeros(20), zeros(8), zeros(8), zeros(36), u32(w<<16), u32(h<<16))),
		mkbox("mdia",
			mkbox("mdhd", full(0, zeros(8), u32(ts), u32(dur), u16(packLanguage(lang)), u16(0))),
			mkbox("hdlr", full(0, zeros(4), []byte(handler), zeros(12), []byte("handler\x00"))),
			mkbox("minf",
				mkbox("stbl",
					mkbox("stsd", full(0, u32(1), entry)),
					mkbox("stsz", stsz),
				),
			),
		),
	)
}

func sampleMP4() []byte {
	video := trak("vide", 1920, 1080, 24000, 240000, "eng",
		mkbox("avc1", zeros(24), u16(1920), u16(1080), zeros(50)),
		full(0, u32(1000), u32(240)))
	audio := trak("soun", 0, 0, 48000, 480000, "und",
		mkbox("mp4a", zeros(28)),
		full(0, u32(0), u32(2), u32(100), u32(300)))
	subs := trak("sbtl", 0, 0, 1000, 10000, "fra",
		mkbox("tx3g", zeros(8)),
		full(0, u32(0), u32(0)))
	return cat(
		mkbox("ftyp", []byte("isom"), u32(512), []byte("isomiso2avc1mp41")),
		mkbox("moov",
			mkbox("mvhd", full(0, zeros(8), u32(1000), u32(10000), zeros(80))),
			video, audio, subs,
		),
		mkbox("mdat", zeros(64)),
	)
}

func TestReadISO(t *testing.T) {
	data := sampleMP4()
	streams, err := Read(context.Background(), bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(streams) != 3 {
		t.Fatalf("streams: got %d, want 3", len(streams))
	}

	v, ok := streams[0].(info.VideoStream)
	if !ok {
		t.Fatalf("stream 0: got %T", streams[0])
	}
	if v.Width != 1920 || v.Height != 1080 || v.Codec != "H.264" {
		t.Errorf("video: %+v", v)
	}
	if v.Duration != 10 || v.Frames != 240 || v.BitRate != 24000 {
		t.Errorf("video timing: duration=%v frames=%d rate=%d", v.Duration, v.Frames, v.BitRate)
	}
	if info.Deref(v.Language) != "eng" {
		t.Errorf("video language: %v", v.Language)
	}

	a, ok := streams[1].(info.AudioStream)
	if !ok {
		t.Fatalf("stream 1: got %T", streams[1])
	}
	if a.Codec != "AAC" || a.Duration != 10 || a.BitRate != 40 || a.Language != nil {
		t.Errorf("audio: %+v", a)
	}

	s, ok := streams[2].(info.SubtitleStream)
	if !ok {
		t.Fatalf("stream 2: got %T", streams[2])
	}
	if info.Deref(s.Language) != "fra" {
		t.Errorf("subtitle language: %v", s.Language)
	}
}

func TestReadISO_Malformed(t *testing.T) {
	data := sampleMP4()
	tests := []struct {
		name string
		data []byte
		kind error
	}{
		{"truncated moov", data[:200], probe.ErrParseCorrupted},
		{"ftyp only", mkbox("ftyp", []byte("isom"), u32(0)), probe.ErrParseCorrupted},
		{"tiny box size", cat(mkbox("ftyp", []byte("isom")), []byte{0, 0, 0, 4, 'm', 'o', 'o', 'v'}), probe.ErrParseCorrupted},
		{"text file", []byte("just some words in a file"), probe.ErrNotApplicable},
		{"empty", nil, probe.ErrNotApplicable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(context.Background(), bytes.NewReader(tt.data), int64(len(tt.data)))
			if !errors.Is(err, tt.kind) {
				t.Errorf("Read() = %v, want %v", err, tt.kind)
			}
		})
	}
}

func TestReadISO_DeepNesting(t *testing.T) {
	inner := mkbox("free")
	for i := 0; i < maxBoxDepth+2; i++ {
		inner = mkbox("moov", inner)
	}
	data := cat(mkbox("ftyp", []byte("isom")), inner)
	_, err := Read(context.Background(), bytes.NewReader(data), int64(len(data)))
	if !errors.Is(err, probe.ErrParseCorrupted) {
		t.Errorf("Read() = %v, want ErrParseCorrupted", err)
	}
}

func TestReadCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	data := sampleMP4()
	if _, err := Read(ctx, bytes.NewReader(data), int64(len(data))); !errors.Is(err, context.Canceled) {
		t.Errorf("Read() = %v, want context.Canceled", err)
	}
}

// --- WAVE ---

func le16(v uint16) []byte { return binary.LittleEndian.AppendUint16(nil, v) }
func le32(v uint32) []byte { return binary.LittleEndian.AppendUint32(nil, v) }

func sampleWAVE(dataLen int) []byte {
	fmtChunk := cat(le16(1), le16(2), le32(44100), le32(176400), le16(4), le16(16))
	body := cat(
		[]byte("WAVE"),
		[]byte("LIST"), le32(3), []byte("abc"), []byte{0},
		[]byte("fmt "), le32(uint32(len(fmtChunk))), fmtChunk,
		[]byte("data"), le32(uint32(dataLen)), zeros(dataLen),
	)
	return cat([]byte("RIFF"), le32(uint32(len(body))), body)
}

func TestReadWAVE(t *testing.T) {
	data := sampleWAVE(352800)
	streams, err := Read(context.Background(), bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	audio := streams.Audio()
	if len(streams) != 1 || len(audio) != 1 {
		t.Fatalf("streams: %v", streams)
	}
	if audio[0].Codec != "PCM" || audio[0].BitRate != 176400 || audio[0].Duration != 2 {
		t.Errorf("audio: %+v", audio[0])
	}
}

func TestReadWAVE_MissingFmt(t *testing.T) {
	body := cat([]byte("WAVE"), []byte("data"), le32(4), zeros(4))
	data := cat([]byte("RIFF"), le32(uint32(len(body))), body)
	if _, err := Read(context.Background(), bytes.NewReader(data), int64(len(data))); !errors.Is(err, probe.ErrParseCorrupted) {
		t.Errorf("Read() = %v, want ErrParseCorrupted", err)
	}
}

func TestProberStreams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "take.wav")
	if err := os.WriteFile(path, sampleWAVE(1764), 0o644); err != nil {
		t.Fatal(err)
	}
	streams, err := Prober{}.Streams(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if d := streams.Duration(); d != 0.01 {
		t.Errorf("duration: got %v, want 0.01", d)
	}
	if _, err := (Prober{}).Streams(context.Background(), filepath.Join(t.TempDir(), "missing.mp4")); !errors.Is(err, probe.ErrNotApplicable) {
		t.Errorf("missing file: got %v, want ErrNotApplicable", err)
	}
}

func TestUnpackLanguage(t *testing.T) {
	tests := map[uint16]string{
		packLanguage("eng"): "eng",
		packLanguage("und"): "",
		0:                   "",
		0x7fff:              "",
	}
	for in, want := range tests {
		if got := unpackLanguage(in); got != want {
			t.Errorf("unpackLanguage(%#x) = %q, want %q", in, got, want)
		}
	}
}
