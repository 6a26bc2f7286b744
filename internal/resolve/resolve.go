// Package resolve turns a file into one info record by running the probes
// of its category in a fixed fallback order. The first probe that fully
// parses the file wins; results are never merged across probes. Nothing is
// cached: each call probes again.
package resolve

import (
	"context"
	"os"
	"path/filepath"

	"github.com/backmassage/mediainfo/internal/classify"
	"github.com/backmassage/mediainfo/internal/config"
	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/probe"
	"github.com/backmassage/mediainfo/internal/probe/exiftool"
	"github.com/backmassage/mediainfo/internal/probe/ffprobe"
	"github.com/backmassage/mediainfo/internal/probe/native"
)

// Logger is the subset of the application logger used here.
type Logger interface {
	Debug(verbose bool, format string, args ...interface{})
}

// MediaEngine extracts the stream sequence of an audio or video file.
type MediaEngine interface {
	Streams(ctx context.Context, path string) (info.Streams, error)
}

// ImageProber is implemented by engines that can also read a still image
// (as a single video frame or from generic metadata).
type ImageProber interface {
	Image(ctx context.Context, path string) (*info.ImageInfo, error)
}

// PDFProber is implemented by engines that can describe a PDF.
type PDFProber interface {
	PDF(ctx context.Context, path string) (*info.PDFInfo, error)
}

// Target names the file to resolve. Zero fields are derived: Category from
// the path and UTI, the UTI by sniffing, Engines from the configuration.
type Target struct {
	Path      string
	UTI       string
	Category  info.Category
	Container info.Container
	Engines   []config.Engine
}

// Resolver runs fallback chains. It holds no per-file state and is safe
// for concurrent use.
type Resolver struct {
	cfg     *config.Config
	log     Logger
	engines map[config.Engine]MediaEngine
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithEngine replaces or adds the engine registered under name.
func WithEngine(name config.Engine, e MediaEngine) Option {
	return func(r *Resolver) { r.engines[name] = e }
}

// New returns a resolver with the three built-in engines configured from
// cfg. log may be nil.
func New(cfg *config.Config, log Logger, opts ...Option) *Resolver {
	if log == nil {
		log = nopLogger{}
	}
	r := &Resolver{
		cfg: cfg,
		log: log,
		engines: map[config.Engine]MediaEngine{
			config.EngineNative:   native.Prober{},
			config.EngineFFmpeg:   &ffprobe.Prober{Path: cfg.FFprobePath, Timeout: cfg.ProbeTimeout},
			config.EngineMetadata: &exiftool.Prober{Path: cfg.ExiftoolPath, Timeout: cfg.ProbeTimeout},
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve probes t and returns its record with the trace of attempts. The
// record is nil when no probe applies or the category is unsupported. The
// error is non-nil only when ctx ends the resolution.
func (r *Resolver) Resolve(ctx context.Context, t Target) (info.Info, []probe.Attempt, error) {
	cat := t.Category
	if cat == info.CategoryNone {
		cat = classify.Classify(t.Path, t.UTI)
	}
	if cat == info.CategoryNone {
		trace := []probe.Attempt{{Probe: "classify", Err: &probe.Error{Probe: "classify", Kind: probe.ErrUnsupported}}}
		r.log.Debug(r.cfg.Verbose, "%s: unsupported file type", filepath.Base(t.Path))
		return nil, trace, nil
	}
	uti := t.UTI
	if uti == "" {
		uti = classify.Sniff(t.Path)
	}
	if t.Container == info.ContainerUnknown {
		t.Container = classify.Container(uti)
	}

	var (
		out   info.Info
		trace []probe.Attempt
		err   error
	)
	switch cat {
	case info.CategoryImage:
		out, trace, err = r.image(ctx, t.Path, uti)
	case info.CategoryVideo, info.CategoryAudio:
		out, trace, err = r.media(ctx, t, cat)
	case info.CategoryPDF:
		out, trace, err = r.pdf(ctx, t.Path)
	case info.CategoryWord, info.CategoryExcel, info.CategoryPowerpoint:
		out, trace, err = r.office(ctx, t, cat)
	case info.CategoryModel:
		out, trace, err = r.model(ctx, t.Path)
	}
	r.logTrace(t.Path, trace)
	if err != nil || out == nil {
		return nil, trace, err
	}
	attach(out, info.File{Path: t.Path, Size: fileSize(t.Path)})
	return out, trace, nil
}

func (r *Resolver) logTrace(path string, trace []probe.Attempt) {
	if !r.cfg.Verbose {
		return
	}
	name := filepath.Base(path)
	for _, a := range trace {
		if a.Err == nil {
			r.log.Debug(true, "%s: %s ok", name, a.Probe)
			continue
		}
		r.log.Debug(true, "%s: %s %s: %v", name, a.Probe, a.Outcome(), a.Err)
	}
}

// chain runs steps of a concrete record type and widens the winner to
// info.Info. A failed chain yields a nil interface, never a typed nil.
func chain[T info.Info](ctx context.Context, steps []probe.Step[T]) (info.Info, []probe.Attempt, error) {
	out, ok, trace, err := probe.Chain(ctx, steps)
	if err != nil || !ok {
		return nil, trace, err
	}
	return out, trace, nil
}

// bind adapts a path-taking probe to a chain step.
func bind[T any](name, path string, fn func(context.Context, string) (T, error)) probe.Step[T] {
	return probe.Step[T]{
		Name:  name,
		Probe: func(ctx context.Context) (T, error) { return fn(ctx, path) },
	}
}

func (r *Resolver) engine(name config.Engine) MediaEngine {
	return r.engines[name]
}

// attach sets the common file fields on a freshly probed record.
func attach(in info.Info, f info.File) {
	switch v := in.(type) {
	case *info.ImageInfo:
		v.File = f
	case *info.VideoInfo:
		v.File = f
	case *info.AudioInfo:
		v.File = f
	case *info.WordInfo:
		v.File = f
	case *info.ExcelInfo:
		v.File = f
	case *info.PowerpointInfo:
		v.File = f
	case *info.PDFInfo:
		v.File = f
	case *info.ModelInfo:
		v.File = f
	}
}

// fileSize returns the size of path, or -1 when it cannot be read.
func fileSize(path string) int64 {
	st, err := os.Stat(path)
	if err != nil {
		return -1
	}
	return st.Size()
}

type nopLogger struct{}

func (nopLogger) Debug(bool, string, ...interface{}) {}
