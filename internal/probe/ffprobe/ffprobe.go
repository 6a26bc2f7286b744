// Package ffprobe is the multimedia-library engine: a single ffprobe JSON
// call per file, mapped to the ordered stream sequence and, for images, to
// the first video frame's geometry.
package ffprobe

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/probe"
	"github.com/backmassage/mediainfo/internal/tool"
)

// Name identifies this probe in attempt traces.
const Name = "ffprobe"

// Prober runs ffprobe.
type Prober struct {
	Path    string        // Program name or path; default "ffprobe".
	Timeout time.Duration // Per call; 0 means no limit beyond ctx.
}

// Probe runs a single ffprobe JSON call against path and returns the raw
// output. Failures are classified from stderr.
func (p *Prober) Probe(ctx context.Context, path string) ([]byte, error) {
	bin := p.Path
	if bin == "" {
		bin = "ffprobe"
	}
	res, err := tool.Run(ctx, p.Timeout, bin,
		"-v", "error",
		"-print_format", "json",
		"-show_format", "-show_streams",
		"--", path,
	)
	if err != nil {
		return nil, tool.Classify(Name, res, err)
	}
	return res.Stdout, nil
}

// Streams probes path and returns its streams in container order. A file
// without streams is not applicable.
func (p *Prober) Streams(ctx context.Context, path string) (info.Streams, error) {
	out, err := p.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	return ParseJSON(out)
}

// Image probes path as a one-frame video and describes its first video
// stream.
func (p *Prober) Image(ctx context.Context, path string) (*info.ImageInfo, error) {
	out, err := p.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	return ParseImageJSON(out)
}

// ParseJSON converts raw ffprobe JSON output into streams.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (info.Streams, error) {
	var raw output
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, probe.Corrupted(Name, fmt.Errorf("parse ffprobe JSON: %w", err))
	}
	if len(raw.Streams) == 0 {
		return nil, probe.NotApplicablef(Name, "no streams")
	}
	fallback := parseFloat(raw.Format.Duration)
	streams := make(info.Streams, 0, len(raw.Streams))
	for i := range raw.Streams {
		streams = append(streams, convert(&raw.Streams[i], fallback))
	}
	// A lone media stream without its own rate inherits the container's.
	if len(streams) == 1 {
		rate := parseInt64(raw.Format.BitRate) / 8
		switch s := streams[0].(type) {
		case info.VideoStream:
			if s.BitRate == 0 {
				s.BitRate = rate
				streams[0] = s
			}
		case info.AudioStream:
			if s.BitRate == 0 {
				s.BitRate = rate
				streams[0] = s
			}
		}
	}
	return streams, nil
}

// ParseImageJSON describes the first non-cover video stream as an image.
func ParseImageJSON(data []byte) (*info.ImageInfo, error) {
	var raw output
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, probe.Corrupted(Name, fmt.Errorf("parse ffprobe JSON: %w", err))
	}
	for i := range raw.Streams {
		s := &raw.Streams[i]
		if s.CodecType != "video" || s.Width <= 0 || s.Height <= 0 {
			continue
		}
		return &info.ImageInfo{
			Width:     s.Width,
			Height:    s.Height,
			ColorMode: colorMode(s.PixFmt),
			Depth:     depth(s),
		}, nil
	}
	return nil, probe.NotApplicablef(Name, "no video frame")
}

// --- ffprobe JSON wire types ---

type output struct {
	Format  format   `json:"format"`
	Streams []stream `json:"streams"`
}

type format struct {
	Duration string `json:"duration"`
	BitRate  string `json:"bit_rate"`
}

type stream struct {
	Index            int               `json:"index"`
	CodecName        string            `json:"codec_name"`
	CodecType        string            `json:"codec_type"`
	PixFmt           string            `json:"pix_fmt"`
	Width            int               `json:"width"`
	Height           int               `json:"height"`
	Duration         string            `json:"duration"`
	BitRate          string            `json:"bit_rate"`
	NbFrames         string            `json:"nb_frames"`
	BitsPerRawSample string            `json:"bits_per_raw_sample"`
	Disposition      map[string]int    `json:"disposition"`
	Tags             map[string]string `json:"tags"`
}

// --- Conversion from wire types to domain types ---

func convert(s *stream, fallback float64) info.Stream {
	duration := parseFloat(s.Duration)
	if duration <= 0 {
		duration = fallback
	}
	switch s.CodecType {
	case "video":
		if s.Disposition["attached_pic"] == 1 {
			return info.OtherStream{}
		}
		return info.VideoStream{
			Width:       s.Width,
			Height:      s.Height,
			Duration:    duration,
			Codec:       probe.CodecLabel(s.CodecName),
			PixelFormat: info.String(s.PixFmt),
			Language:    language(s.Tags),
			BitRate:     parseInt64(s.BitRate) / 8,
			Frames:      frames(s),
		}
	case "audio":
		return info.AudioStream{
			Duration: duration,
			Codec:    probe.CodecLabel(s.CodecName),
			Language: language(s.Tags),
			BitRate:  parseInt64(s.BitRate) / 8,
		}
	case "subtitle":
		return info.SubtitleStream{
			Title:    info.String(tag(s.Tags, "title")),
			Language: language(s.Tags),
		}
	default:
		return info.OtherStream{}
	}
}

// frames prefers nb_frames; Matroska stores the count as a statistics tag.
func frames(s *stream) int64 {
	if n := parseInt64(s.NbFrames); n > 0 {
		return n
	}
	for k, v := range s.Tags {
		if strings.HasPrefix(strings.ToUpper(k), "NUMBER_OF_FRAMES") {
			return parseInt64(v)
		}
	}
	return 0
}

// language drops the "undetermined" code.
func language(tags map[string]string) *string {
	l := strings.TrimSpace(tag(tags, "language"))
	if strings.EqualFold(l, "und") {
		return nil
	}
	return info.String(l)
}

func tag(tags map[string]string, key string) string {
	if v, ok := tags[key]; ok {
		return v
	}
	return tags[strings.ToUpper(key)]
}

func colorMode(pixFmt string) string {
	switch {
	case pixFmt == "":
		return ""
	case strings.HasPrefix(pixFmt, "gray"), strings.HasPrefix(pixFmt, "ya"), pixFmt == "monow", pixFmt == "monob":
		return "Gray"
	case strings.HasPrefix(pixFmt, "yuv"), strings.HasPrefix(pixFmt, "nv"):
		return "YUV"
	default:
		return "RGB"
	}
}

var rePixDepth = regexp.MustCompile(`(?:p|gray)(\d{1,2})(le|be)?$`)

func depth(s *stream) int {
	if n := parseInt(s.BitsPerRawSample); n > 0 {
		return n
	}
	switch {
	case s.PixFmt == "":
		return 0
	case s.PixFmt == "monow", s.PixFmt == "monob":
		return 1
	case strings.HasPrefix(s.PixFmt, "rgb48"), strings.HasPrefix(s.PixFmt, "rgba64"), strings.HasPrefix(s.PixFmt, "gray16"):
		return 16
	}
	if m := rePixDepth.FindStringSubmatch(s.PixFmt); m != nil {
		if n, _ := strconv.Atoi(m[1]); n > 8 {
			return n
		}
	}
	return 8
}

// --- Numeric parsing helpers (ffprobe returns numbers as strings) ---

func parseInt64(s string) int64 {
	s = strings.TrimSpace(s)
	n, _ := strconv.ParseInt(s, 10, 64)
	if n < 0 {
		return 0
	}
	return n
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	f, _ := strconv.ParseFloat(s, 64)
	if f < 0 || f != f {
		return 0
	}
	return f
}

func parseInt(s string) int {
	s = strings.TrimSpace(s)
	n, _ := strconv.Atoi(s)
	return n
}
