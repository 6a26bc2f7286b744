package info

// StreamKind tags the variant of a Stream.
type StreamKind uint8

const (
	StreamOther StreamKind = iota
	StreamVideo
	StreamAudio
	StreamSubtitle
)

// Stream is one track of an audio/video container. Implementations are
// VideoStream, AudioStream, SubtitleStream and OtherStream.
type Stream interface {
	Kind() StreamKind
	isStream()
}

// VideoStream is a picture track. BitRate is in bytes per second.
type VideoStream struct {
	Width       int
	Height      int
	Duration    float64 // Seconds.
	Codec       string
	PixelFormat *string
	Language    *string // ISO 639 code as stored in the container.
	BitRate     int64
	Frames      int64
}

// AudioStream is a sound track. BitRate is in bytes per second.
type AudioStream struct {
	Duration float64
	Codec    string
	Language *string
	BitRate  int64
}

// SubtitleStream is a text or bitmap subtitle track.
type SubtitleStream struct {
	Title    *string
	Language *string
}

// OtherStream covers attachments, data tracks and cover art. Rendering
// ignores it.
type OtherStream struct{}

func (VideoStream) Kind() StreamKind    { return StreamVideo }
func (AudioStream) Kind() StreamKind    { return StreamAudio }
func (SubtitleStream) Kind() StreamKind { return StreamSubtitle }
func (OtherStream) Kind() StreamKind    { return StreamOther }

func (VideoStream) isStream()    {}
func (AudioStream) isStream()    {}
func (SubtitleStream) isStream() {}
func (OtherStream) isStream()    {}

// Streams is an ordered stream list in container order.
type Streams []Stream

// Video returns the video streams in order.
func (s Streams) Video() []VideoStream {
	var out []VideoStream
	for _, st := range s {
		if v, ok := st.(VideoStream); ok {
			out = append(out, v)
		}
	}
	return out
}

// Audio returns the audio streams in order.
func (s Streams) Audio() []AudioStream {
	var out []AudioStream
	for _, st := range s {
		if a, ok := st.(AudioStream); ok {
			out = append(out, a)
		}
	}
	return out
}

// Subtitles returns the subtitle streams in order.
func (s Streams) Subtitles() []SubtitleStream {
	var out []SubtitleStream
	for _, st := range s {
		if sub, ok := st.(SubtitleStream); ok {
			out = append(out, sub)
		}
	}
	return out
}

// Duration is the longest duration among video and audio streams.
func (s Streams) Duration() float64 {
	var d float64
	for _, st := range s {
		switch v := st.(type) {
		case VideoStream:
			d = max(d, v.Duration)
		case AudioStream:
			d = max(d, v.Duration)
		}
	}
	return d
}

// BitRate sums the bit rates of video and audio streams, in bytes per second.
func (s Streams) BitRate() int64 {
	var total int64
	for _, st := range s {
		switch v := st.(type) {
		case VideoStream:
			total += v.BitRate
		case AudioStream:
			total += v.BitRate
		}
	}
	return total
}

// Languages returns the distinct stream languages in first-seen order.
func (s Streams) Languages() []string {
	var out []string
	seen := map[string]bool{}
	for _, st := range s {
		var lang *string
		switch v := st.(type) {
		case VideoStream:
			lang = v.Language
		case AudioStream:
			lang = v.Language
		case SubtitleStream:
			lang = v.Language
		}
		if lang == nil || seen[*lang] {
			continue
		}
		seen[*lang] = true
		out = append(out, *lang)
	}
	return out
}
