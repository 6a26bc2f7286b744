package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/backmassage/mediainfo/internal/classify"
	"github.com/backmassage/mediainfo/internal/config"
	"github.com/backmassage/mediainfo/internal/display"
	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/probe"
	"github.com/backmassage/mediainfo/internal/resolve"
	"github.com/backmassage/mediainfo/internal/term"
)

// Logger is the subset of the application logger used by the pipeline.
type Logger interface {
	Info(format string, args ...interface{})
	Success(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Debug(verbose bool, format string, args ...interface{})
}

// Report is the outcome of one file.
type Report struct {
	Path  string
	Info  info.Info // nil when no probe described the file.
	Trace []probe.Attempt
	Err   error // Set only when the run was interrupted before or during this file.
}

// Probe returns the name of the probe that produced Info, or "".
func (r *Report) Probe() string {
	if r.Info == nil {
		return ""
	}
	for i := len(r.Trace) - 1; i >= 0; i-- {
		if r.Trace[i].Err == nil {
			return r.Trace[i].Probe
		}
	}
	return ""
}

// Unsupported reports whether the file's category is not handled at all.
func (r *Report) Unsupported() bool {
	for _, a := range r.Trace {
		if errors.Is(a.Err, probe.ErrUnsupported) {
			return true
		}
	}
	return false
}

// Run resolves every path and returns one report per path, in input order,
// with the aggregate stats. opts are passed to the resolver.
func Run(ctx context.Context, cfg *config.Config, log Logger, paths []string, opts ...resolve.Option) ([]Report, RunStats) {
	res := resolve.New(cfg, log, opts...)
	reports := make([]Report, len(paths))
	for i, p := range paths {
		reports[i] = Report{Path: p}
	}

	bar := newProgress(cfg, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for i := range paths {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			rep := &reports[i]
			rep.Info, rep.Trace, rep.Err = res.Resolve(gctx, resolve.Target{
				Path: rep.Path,
				UTI:  classify.Sniff(rep.Path),
			})
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()
	if bar != nil {
		_ = bar.Finish()
	}

	stats := collect(ctx, reports)
	if ctx.Err() != nil {
		log.Warn("Interrupted")
	}
	logSummary(log, &stats)
	return reports, stats
}

// newProgress returns a bar on a terminal, or nil when output is piped or
// verbose logging would interleave with it.
func newProgress(cfg *config.Config, n int) *progressbar.ProgressBar {
	if n < 2 || cfg.Verbose || !term.IsTerminal(os.Stderr) {
		return nil
	}
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Probing"),
		progressbar.OptionShowCount(),
		progressbar.OptionEnableColorCodes(term.Enabled()),
		progressbar.OptionClearOnFinish(),
	)
}

// collect fills the stats and marks files that were never scheduled.
func collect(ctx context.Context, reports []Report) RunStats {
	stats := RunStats{Total: len(reports)}
	for i := range reports {
		rep := &reports[i]
		if rep.Info == nil && rep.Trace == nil && rep.Err == nil && ctx.Err() != nil {
			rep.Err = ctx.Err()
		}
		for _, a := range rep.Trace {
			if errors.Is(a.Err, probe.ErrParseCorrupted) {
				stats.Corrupted++
				break
			}
		}
		switch {
		case rep.Err != nil:
			stats.Canceled++
		case rep.Info != nil:
			stats.Described++
			if size := rep.Info.Source().Size; size > 0 {
				stats.TotalBytes += size
			}
		case rep.Unsupported():
			stats.Unsupported++
		default:
			stats.Absent++
		}
	}
	return stats
}

func logSummary(log Logger, stats *RunStats) {
	log.Info("Done: %d described, %d without data, %d unsupported", stats.Described, stats.Absent, stats.Unsupported)
	if stats.Canceled > 0 {
		log.Warn("  %d file(s) not probed (interrupted)", stats.Canceled)
	}
	if stats.Corrupted > 0 {
		log.Warn("  %d file(s) matched a format but failed to parse", stats.Corrupted)
	}
	if stats.Described > 0 {
		log.Success("  %s described (%.0f%% of supported files)",
			display.FormatByteCount(stats.TotalBytes), stats.Coverage()*100)
	}
}

// Name returns the display name of a report's file.
func (r *Report) Name() string { return filepath.Base(r.Path) }
