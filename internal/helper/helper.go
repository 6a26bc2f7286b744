// Package helper is the request/reply side of the process boundary: a
// request names a file and a category hint, the reply is the encoded info
// record, or nothing when no probe could describe the file.
package helper

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/backmassage/mediainfo/internal/config"
	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/probe"
	"github.com/backmassage/mediainfo/internal/resolve"
)

// Hint is the category hint carried by a request.
type Hint string

const (
	HintImage Hint = "image"
	HintVideo Hint = "video"
	HintAudio Hint = "audio"
	HintPDF   Hint = "pdf"
	HintDoc   Hint = "doc" // OOXML word processing
	HintXLS   Hint = "xls" // OOXML spreadsheet
	HintPPT   Hint = "ppt" // OOXML presentation
	HintODT   Hint = "odt"
	HintODS   Hint = "ods"
	HintODP   Hint = "odp"
	HintModel Hint = "model"
)

type dispatch struct {
	category  info.Category
	container info.Container
}

var hints = map[Hint]dispatch{
	HintImage: {info.CategoryImage, info.ContainerUnknown},
	HintVideo: {info.CategoryVideo, info.ContainerUnknown},
	HintAudio: {info.CategoryAudio, info.ContainerUnknown},
	HintPDF:   {info.CategoryPDF, info.ContainerUnknown},
	HintDoc:   {info.CategoryWord, info.ContainerOOXML},
	HintXLS:   {info.CategoryExcel, info.ContainerOOXML},
	HintPPT:   {info.CategoryPowerpoint, info.ContainerOOXML},
	HintODT:   {info.CategoryWord, info.ContainerOpenDocument},
	HintODS:   {info.CategoryExcel, info.ContainerOpenDocument},
	HintODP:   {info.CategoryPowerpoint, info.ContainerOpenDocument},
	HintModel: {info.CategoryModel, info.ContainerUnknown},
}

// ParseHint validates a hint name.
func ParseHint(s string) (Hint, bool) {
	h := Hint(strings.ToLower(strings.TrimSpace(s)))
	_, ok := hints[h]
	return h, ok
}

// Request asks for the record of one file.
type Request struct {
	Path string `json:"path"`
	Hint Hint   `json:"type"`
}

// Reply answers one Request. Data is absent when the file could not be
// described; Error is set only for failures the caller should report.
type Reply struct {
	Path  string `json:"path"`
	Data  []byte `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Resolver is the orchestrator entry point used by the service.
type Resolver interface {
	Resolve(ctx context.Context, t resolve.Target) (info.Info, []probe.Attempt, error)
}

// Logger is the subset of the application logger used here.
type Logger interface {
	Debug(verbose bool, format string, args ...interface{})
	Warn(format string, args ...interface{})
}

// Service answers requests. Media requests use only the preferred engine.
type Service struct {
	cfg *config.Config
	res Resolver
	log Logger
}

// New returns a service resolving through res.
func New(cfg *config.Config, res Resolver, log Logger) *Service {
	return &Service{cfg: cfg, res: res, log: log}
}

// GetInfo resolves req and returns the encoded record. An unknown hint or a
// file no probe could read yields a nil blob and a nil error. A record that
// fails to encode is returned as an *info.EncodingError.
func (s *Service) GetInfo(ctx context.Context, req Request) ([]byte, error) {
	h, ok := ParseHint(string(req.Hint))
	if !ok {
		s.log.Debug(s.cfg.Verbose, "helper: unknown hint %q for %s", req.Hint, req.Path)
		return nil, nil
	}
	d := hints[h]
	t := resolve.Target{Path: req.Path, Category: d.category, Container: d.container}
	if d.category == info.CategoryVideo || d.category == info.CategoryAudio {
		t.Engines = []config.Engine{s.cfg.PreferredEngine()}
	}
	in, _, err := s.res.Resolve(ctx, t)
	if err != nil {
		return nil, err
	}
	return info.Encode(in)
}

// maxRequest bounds one request line.
const maxRequest = 1 << 20

// Serve reads one JSON request per line from r and writes one JSON reply
// per line to w until r is exhausted or ctx ends. Malformed lines get an
// error reply; they do not stop the loop.
func (s *Service) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxRequest)
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var (
			req   Request
			reply Reply
		)
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			reply.Error = fmt.Sprintf("invalid request: %v", err)
		} else {
			reply.Path = req.Path
			blob, err := s.GetInfo(ctx, req)
			switch {
			case ctx.Err() != nil:
				return ctx.Err()
			case err != nil:
				var encErr *info.EncodingError
				if errors.As(err, &encErr) {
					s.log.Warn("helper: %s: %v", req.Path, err)
				}
				reply.Error = err.Error()
			default:
				reply.Data = blob
			}
		}
		if err := enc.Encode(reply); err != nil {
			return fmt.Errorf("write reply: %w", err)
		}
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("write reply: %w", err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	return nil
}
