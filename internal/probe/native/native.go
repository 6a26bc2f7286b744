// Package native is the built-in media engine. It reads ISO base media
// files (MP4, MOV, M4A, 3GP) and RIFF/WAVE audio directly, without external
// programs.
package native

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/probe"
)

// Name identifies this probe in attempt traces.
const Name = "native"

// Prober is the native engine. The zero value is ready to use.
type Prober struct{}

// Streams reads the stream layout of path.
func (Prober) Streams(ctx context.Context, path string) (info.Streams, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, probe.NotApplicable(Name, err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, probe.NotApplicable(Name, err)
	}
	return Read(ctx, f, st.Size())
}

// Read parses a media file of the given size from r.
func Read(ctx context.Context, r io.ReaderAt, size int64) (info.Streams, error) {
	head := make([]byte, 12)
	if _, err := r.ReadAt(head, 0); err != nil {
		return nil, probe.NotApplicablef(Name, "short file")
	}
	var (
		streams info.Streams
		err     error
	)
	switch {
	case bytes.Equal(head[0:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WAVE")):
		streams, err = readWAVE(ctx, r, size)
	case isISOBox(head[4:8]):
		streams, err = readISO(ctx, r, size)
	default:
		return nil, probe.NotApplicablef(Name, "unrecognized header % x", head[:8])
	}
	if err != nil {
		return nil, err
	}
	if len(streams) == 0 {
		return nil, probe.NotApplicablef(Name, "no streams")
	}
	return streams, nil
}

// isISOBox reports whether typ names a box that can open an ISO file.
func isISOBox(typ []byte) bool {
	switch string(typ) {
	case "ftyp", "moov", "mdat", "free", "skip", "wide", "pnot":
		return true
	}
	return false
}

func corrupted(format string, args ...interface{}) error {
	return probe.Corrupted(Name, fmt.Errorf(format, args...))
}
