package office

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/backmassage/mediainfo/internal/probe"
)

// Archive limits. Exceeding any fails the probe as corrupted.
const (
	MaxEntries   = 10000
	MaxPartBytes = 64 << 20
)

// maxArchiveBytes bounds the uncompressed bytes read from one archive,
// across all of its parts.
var maxArchiveBytes int64 = 256 << 20

var (
	errPartTooLarge    = errors.New("part exceeds size limit")
	errArchiveTooLarge = errors.New("archive exceeds total size limit")
)

// archive is an opened office container.
type archive struct {
	name  string // Probe name for errors.
	zr    *zip.ReadCloser
	files map[string]*zip.File
	left  int64 // Uncompressed bytes still allowed.
}

func openArchive(path, name string) (*archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil && !(errors.Is(err, zip.ErrInsecurePath) && zr != nil) {
		return nil, probe.NotApplicable(name, err)
	}
	if len(zr.File) > MaxEntries {
		zr.Close()
		return nil, probe.Corruptedf(name, "%d entries exceed limit of %d", len(zr.File), MaxEntries)
	}
	a := &archive{name: name, zr: zr, files: make(map[string]*zip.File, len(zr.File)), left: maxArchiveBytes}
	for _, f := range zr.File {
		a.files[f.Name] = f
	}
	return a, nil
}

func (a *archive) Close() error { return a.zr.Close() }

func (a *archive) has(part string) bool {
	_, ok := a.files[part]
	return ok
}

// open returns a reader over part that fails once MaxPartBytes is read
// from it or the archive's total budget is spent.
func (a *archive) open(part string) (io.ReadCloser, error) {
	f, ok := a.files[part]
	if !ok {
		return nil, probe.Corruptedf(a.name, "missing part %s", part)
	}
	if f.UncompressedSize64 > MaxPartBytes {
		return nil, probe.Corruptedf(a.name, "%s: %v", part, errPartTooLarge)
	}
	if f.UncompressedSize64 > uint64(max(a.left, 0)) {
		return nil, probe.Corruptedf(a.name, "%s: %v", part, errArchiveTooLarge)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, probe.Corruptedf(a.name, "%s: %v", part, err)
	}
	return &limitedPart{rc: rc, left: MaxPartBytes, archive: a}, nil
}

// readSmall reads a whole part; used for tiny parts such as mimetype.
func (a *archive) readSmall(part string, max int64) (string, error) {
	rc, err := a.open(part)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	b, err := io.ReadAll(io.LimitReader(rc, max))
	if err != nil {
		return "", probe.Corruptedf(a.name, "%s: %v", part, err)
	}
	return string(b), nil
}

type limitedPart struct {
	rc      io.ReadCloser
	left    int64
	archive *archive
}

func (l *limitedPart) Read(p []byte) (int, error) {
	limit, errLimit := l.left, errPartTooLarge
	if l.archive.left < limit {
		limit, errLimit = l.archive.left, errArchiveTooLarge
	}
	if limit <= 0 {
		var one [1]byte
		if n, err := l.rc.Read(one[:]); n == 0 && err != nil {
			return 0, err
		}
		return 0, errLimit
	}
	if int64(len(p)) > limit {
		p = p[:limit]
	}
	n, err := l.rc.Read(p)
	l.left -= int64(n)
	l.archive.left -= int64(n)
	return n, err
}

func (l *limitedPart) Close() error { return l.rc.Close() }

// tokenCheckEvery is how often XML walks poll the context.
const tokenCheckEvery = 4096

// walk streams the XML tokens of part to fn. Malformed XML and oversized
// parts are corruption; a missing part is reported as such.
func (a *archive) walk(ctx context.Context, part string, fn func(xml.Token) error) error {
	rc, err := a.open(part)
	if err != nil {
		return err
	}
	defer rc.Close()
	dec := xml.NewDecoder(rc)
	for n := 0; ; n++ {
		if n%tokenCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return probe.Corruptedf(a.name, "%s: %v", part, err)
		}
		if err := fn(tok); err != nil {
			return err
		}
	}
}

// fields returns the trimmed text of the first occurrence of each named
// element (matched by local name). A missing part yields no fields.
func (a *archive) fields(ctx context.Context, part string, names ...string) (map[string]string, error) {
	out := make(map[string]string, len(names))
	if !a.has(part) {
		return out, nil
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	var (
		cur string
		buf strings.Builder
	)
	err := a.walk(ctx, part, func(tok xml.Token) error {
		switch t := tok.(type) {
		case xml.StartElement:
			if _, seen := out[t.Name.Local]; cur == "" && wanted[t.Name.Local] && !seen {
				cur = t.Name.Local
				buf.Reset()
			}
		case xml.CharData:
			if cur != "" {
				buf.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == cur {
				out[cur] = strings.TrimSpace(buf.String())
				cur = ""
			}
		}
		return nil
	})
	return out, err
}

func attr(e xml.StartElement, local string) (string, bool) {
	for _, a := range e.Attr {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}
