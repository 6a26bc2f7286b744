// Package exiftool is the generic-metadata engine: one "exiftool -json -n"
// call per file, with the flat tag map mapped onto image geometry or onto
// one video and one audio stream.
package exiftool

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/probe"
	"github.com/backmassage/mediainfo/internal/tool"
)

// Name identifies this probe in attempt traces.
const Name = "exiftool"

// Prober runs exiftool.
type Prober struct {
	Path    string        // Program name or path; default "exiftool".
	Timeout time.Duration // Per call; 0 means no limit beyond ctx.
}

// Probe runs exiftool on path and returns its tags.
func (p *Prober) Probe(ctx context.Context, path string) (Tags, error) {
	bin := p.Path
	if bin == "" {
		bin = "exiftool"
	}
	res, err := tool.Run(ctx, p.Timeout, bin, "-json", "-n", "-fast", "--", path)
	// exiftool exits 1 for unknown files but still prints JSON with an
	// Error tag; prefer that message when it is there.
	if len(res.Stdout) > 0 && !probe.IsContext(err) {
		return ParseJSON(res.Stdout)
	}
	if err != nil {
		return nil, tool.Classify(Name, res, err)
	}
	return nil, probe.NotApplicablef(Name, "no output")
}

// Streams probes path and maps its tags to streams.
func (p *Prober) Streams(ctx context.Context, path string) (info.Streams, error) {
	tags, err := p.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	return tags.Streams()
}

// Image probes path and maps its tags to image geometry.
func (p *Prober) Image(ctx context.Context, path string) (*info.ImageInfo, error) {
	tags, err := p.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	return tags.Image()
}

// Tags is the tag map exiftool prints for one file. Values are JSON
// numbers or strings.
type Tags map[string]any

// ParseJSON decodes exiftool's JSON array and returns the first entry.
// Exported for testing without a real exiftool binary.
func ParseJSON(data []byte) (Tags, error) {
	var entries []Tags
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, probe.Corrupted(Name, fmt.Errorf("parse exiftool JSON: %w", err))
	}
	if len(entries) == 0 {
		return nil, probe.NotApplicablef(Name, "empty output")
	}
	t := entries[0]
	if msg := t.String("Error"); msg != "" {
		if strings.Contains(strings.ToLower(msg), "corrupt") || strings.Contains(strings.ToLower(msg), "truncated") {
			return nil, probe.Corruptedf(Name, "%s", msg)
		}
		return nil, probe.NotApplicablef(Name, "%s", msg)
	}
	return t, nil
}

// String returns the first present tag as text.
func (t Tags) String(keys ...string) string {
	for _, k := range keys {
		switch v := t[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// Number returns the first present tag that reads as a number. Strings
// holding several numbers ("8 8 8") yield the first.
func (t Tags) Number(keys ...string) float64 {
	for _, k := range keys {
		switch v := t[k].(type) {
		case float64:
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				return v
			}
		case string:
			f := strings.Fields(v)
			if len(f) == 0 {
				continue
			}
			if n, err := strconv.ParseFloat(f[0], 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
				return n
			}
		}
	}
	return 0
}

func (t Tags) has(keys ...string) bool {
	for _, k := range keys {
		if _, ok := t[k]; ok {
			return true
		}
	}
	return false
}

// Image maps the tags to image geometry.
func (t Tags) Image() (*info.ImageInfo, error) {
	w := nonNegInt(t.Number("ImageWidth", "ExifImageWidth", "SourceImageWidth"))
	h := nonNegInt(t.Number("ImageHeight", "ExifImageHeight", "SourceImageHeight"))
	if w == 0 || h == 0 {
		return nil, probe.NotApplicablef(Name, "no image dimensions")
	}
	return &info.ImageInfo{
		Width:     w,
		Height:    h,
		ColorMode: t.colorMode(),
		Depth:     nonNegInt(t.Number("BitsPerSample", "BitDepth")),
		DPI:       t.dpi(),
	}, nil
}

func (t Tags) colorMode() string {
	switch strings.ToUpper(t.String("ColorSpaceData")) {
	case "RGB":
		return "RGB"
	case "CMYK":
		return "CMYK"
	case "GRAY":
		return "Gray"
	case "LAB":
		return "Lab"
	}
	switch int(t.Number("ColorComponents", "SamplesPerPixel")) {
	case 1:
		return "Gray"
	case 3:
		return "RGB"
	case 4:
		return "CMYK"
	}
	// PNG ColorType with -n: 0 gray, 2 RGB, 3 palette, 4 gray+alpha, 6 RGBA.
	if t.has("ColorType") {
		switch int(t.Number("ColorType")) {
		case 0, 4:
			return "Gray"
		case 2, 3, 6:
			return "RGB"
		}
	}
	return ""
}

// dpi reads the horizontal resolution. With -n, ResolutionUnit is 1 (none),
// 2 (inches) or 3 (cm); PNG PixelUnits 1 means pixels per metre.
func (t Tags) dpi() int {
	if x := t.Number("XResolution"); x > 0 {
		switch int(t.Number("ResolutionUnit")) {
		case 2:
			return int(math.Round(x))
		case 3:
			return int(math.Round(x * 2.54))
		}
		return 0
	}
	if x := t.Number("PixelsPerUnitX"); x > 0 && int(t.Number("PixelUnits")) == 1 {
		return int(math.Round(x * 0.0254))
	}
	return 0
}

// Streams maps the tags to at most one video and one audio stream.
func (t Tags) Streams() (info.Streams, error) {
	mime := strings.ToLower(t.String("MIMEType"))
	duration := t.Number("Duration", "MediaDuration", "TrackDuration")
	if duration < 0 {
		duration = 0
	}
	lang := language(t.String("MediaLanguageCode", "Language", "TrackLanguage"))

	var streams info.Streams
	w := nonNegInt(t.Number("ImageWidth", "SourceImageWidth"))
	h := nonNegInt(t.Number("ImageHeight", "SourceImageHeight"))
	isVideo := strings.HasPrefix(mime, "video/") || t.has("VideoFrameRate", "CompressorID", "VideoCodec")
	if isVideo && w > 0 && h > 0 {
		vs := info.VideoStream{
			Width:    w,
			Height:   h,
			Duration: duration,
			Codec:    probe.CodecLabel(t.String("CompressorID", "VideoCodec", "CompressorName")),
			Language: lang,
			BitRate:  nonNegInt64(t.Number("VideoBitrate", "AvgBitrate") / 8),
		}
		if rate := t.Number("VideoFrameRate"); rate > 0 && duration > 0 {
			vs.Frames = int64(math.Round(duration * rate))
		}
		streams = append(streams, vs)
	}
	if strings.HasPrefix(mime, "audio/") || t.has("AudioFormat", "AudioSampleRate", "AudioChannels", "AudioBitrate") {
		rate := t.Number("AudioBitrate")
		if rate == 0 && !isVideo {
			rate = t.Number("AvgBitrate")
		}
		streams = append(streams, info.AudioStream{
			Duration: duration,
			Codec:    probe.CodecLabel(t.String("AudioFormat", "AudioCodec", "Encoding")),
			Language: lang,
			BitRate:  nonNegInt64(rate / 8),
		})
	}
	if len(streams) == 0 {
		return nil, probe.NotApplicablef(Name, "no audio or video tags")
	}
	return streams, nil
}

func language(s string) *string {
	if strings.EqualFold(s, "und") {
		return nil
	}
	return info.String(s)
}

func nonNegInt(f float64) int {
	if f <= 0 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

func nonNegInt64(f float64) int64 {
	if f <= 0 || f > math.MaxInt64/2 {
		return 0
	}
	return int64(f)
}
