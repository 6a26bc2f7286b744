package exiftool

import (
	"errors"
	"testing"

	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/probe"
)

// exiftool -json -n output for a QuickTime movie with one video and one
// audio track.
const sampleMovie = `[{
  "SourceFile": "clip.mov",
  "FileType": "MOV",
  "MIMEType": "video/quicktime",
  "Duration": 12.5,
  "ImageWidth": 1920,
  "ImageHeight": 1080,
  "CompressorID": "avc1",
  "VideoFrameRate": 24,
  "AvgBitrate": 8000000,
  "AudioFormat": "mp4a",
  "AudioChannels": 2,
  "AudioSampleRate": 48000,
  "MediaLanguageCode": "eng"
}]`

const sampleMP3 = `[{
  "SourceFile": "song.mp3",
  "MIMEType": "audio/mpeg",
  "Duration": 215.3,
  "AudioBitrate": 320000,
  "SampleRate": 44100
}]`

const sampleJPEG = `[{
  "SourceFile": "photo.jpg",
  "MIMEType": "image/jpeg",
  "ImageWidth": 3000,
  "ImageHeight": 2000,
  "BitsPerSample": 8,
  "ColorComponents": 3,
  "XResolution": 118.11,
  "ResolutionUnit": 3
}]`

const sampleUnknown = `[{
  "SourceFile": "notes.txt",
  "Error": "Unknown file type"
}]`

func TestStreams_Movie(t *testing.T) {
	tags, err := ParseJSON([]byte(sampleMovie))
	if err != nil {
		t.Fatal(err)
	}
	streams, err := tags.Streams()
	if err != nil {
		t.Fatal(err)
	}
	if len(streams) != 2 {
		t.Fatalf("streams: got %d, want 2", len(streams))
	}
	v := streams.Video()[0]
	if v.Width != 1920 || v.Height != 1080 || v.Codec != "H.264" {
		t.Errorf("video: %+v", v)
	}
	if v.Frames != 300 {
		t.Errorf("frames: got %d, want 300", v.Frames)
	}
	if v.BitRate != 1000000 {
		t.Errorf("video byte rate: got %d, want 1000000", v.BitRate)
	}
	a := streams.Audio()[0]
	if a.Codec != "AAC" || info.Deref(a.Language) != "eng" || a.Duration != 12.5 {
		t.Errorf("audio: %+v", a)
	}
}

func TestStreams_Audio(t *testing.T) {
	tags, err := ParseJSON([]byte(sampleMP3))
	if err != nil {
		t.Fatal(err)
	}
	streams, err := tags.Streams()
	if err != nil {
		t.Fatal(err)
	}
	if len(streams.Video()) != 0 || len(streams.Audio()) != 1 {
		t.Fatalf("streams: %v", streams)
	}
	if got := streams.Audio()[0].BitRate; got != 40000 {
		t.Errorf("byte rate: got %d, want 40000", got)
	}
}

func TestImage(t *testing.T) {
	tags, err := ParseJSON([]byte(sampleJPEG))
	if err != nil {
		t.Fatal(err)
	}
	img, err := tags.Image()
	if err != nil {
		t.Fatal(err)
	}
	want := &info.ImageInfo{Width: 3000, Height: 2000, ColorMode: "RGB", Depth: 8, DPI: 300}
	if *img != *want {
		t.Errorf("Image() = %+v, want %+v", img, want)
	}
	if _, err := tags.Streams(); !errors.Is(err, probe.ErrNotApplicable) {
		t.Errorf("Streams() on a still image = %v, want ErrNotApplicable", err)
	}
}

func TestParseJSON_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		kind error
	}{
		{"unknown type", sampleUnknown, probe.ErrNotApplicable},
		{"corrupt", `[{"Error": "Corrupted JPEG image"}]`, probe.ErrParseCorrupted},
		{"empty array", `[]`, probe.ErrNotApplicable},
		{"garbage", `Error: no file`, probe.ErrParseCorrupted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseJSON([]byte(tt.data)); !errors.Is(err, tt.kind) {
				t.Errorf("ParseJSON() = %v, want %v", err, tt.kind)
			}
		})
	}
}

func TestNumber(t *testing.T) {
	tags := Tags{"BitsPerSample": "16 16 16", "Bad": "n/a", "N": 3.5}
	if got := tags.Number("BitsPerSample"); got != 16 {
		t.Errorf("Number(list) = %v", got)
	}
	if got := tags.Number("Bad", "N"); got != 3.5 {
		t.Errorf("Number(fallback) = %v", got)
	}
	if got := tags.Number("Missing"); got != 0 {
		t.Errorf("Number(missing) = %v", got)
	}
}

const samplePDF = `[{
  "SourceFile": "report.pdf",
  "MIMEType": "application/pdf",
  "PDFVersion": 1.7,
  "PageCount": 12,
  "Title": "Annual report",
  "Author": "Ada",
  "Creator": "Writer",
  "Producer": "LibreOffice 7.6",
  "CreateDate": "2024:01:02 03:04:05+01:00",
  "ModifyDate": "2024:02:03 10:00:00"
}]`

func TestPDF(t *testing.T) {
	tags, err := ParseJSON([]byte(samplePDF))
	if err != nil {
		t.Fatal(err)
	}
	got, err := tags.PDF()
	if err != nil {
		t.Fatal(err)
	}
	if got.Pages != 12 || got.Version != "1.7" {
		t.Errorf("PDF() pages=%d version=%q", got.Pages, got.Version)
	}
	if info.Deref(got.Meta.Title) != "Annual report" || info.Deref(got.Meta.Application) != "Writer" {
		t.Errorf("PDF() meta = %+v", got.Meta)
	}
	if got.Meta.Created == nil || got.Meta.Created.Hour() != 2 {
		t.Errorf("PDF() created = %v, want 02:04:05 UTC", got.Meta.Created)
	}
	if got.Words != nil {
		t.Error("PDF() filled text statistics")
	}

	if _, err := Tags(map[string]any{"MIMEType": "image/png"}).PDF(); !errors.Is(err, probe.ErrNotApplicable) {
		t.Errorf("PDF() on an image = %v, want ErrNotApplicable", err)
	}
}
