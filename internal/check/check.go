// Package check provides system diagnostics (the check command): which
// external tools are installed, their versions, and which media engines
// can therefore run.
package check

import (
	"context"
	"errors"

	"github.com/backmassage/mediainfo/internal/config"
	"github.com/backmassage/mediainfo/internal/tool"
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// VersionFunc returns the version line of an external program.
type VersionFunc func(ctx context.Context, name, flag string) (string, error)

// Tool describes one external program an engine depends on.
type Tool struct {
	Engine  config.Engine
	Name    string // Executable name or path.
	Flag    string // Version flag.
	Version string // Empty when unavailable.
	Err     error
}

// Available reports whether the program answered its version flag.
func (t Tool) Available() bool { return t.Err == nil }

// Probe queries the external tools configured in cfg.
func Probe(ctx context.Context, cfg *config.Config, version VersionFunc) []Tool {
	if version == nil {
		version = tool.Version
	}
	tools := []Tool{
		{Engine: config.EngineFFmpeg, Name: cfg.FFprobePath, Flag: "-version"},
		{Engine: config.EngineMetadata, Name: cfg.ExiftoolPath, Flag: "-ver"},
	}
	for i := range tools {
		tools[i].Version, tools[i].Err = version(ctx, tools[i].Name, tools[i].Flag)
	}
	return tools
}

// AvailableEngines returns the configured engines, in order, that can run.
// The native engine needs nothing external and is always available.
func AvailableEngines(cfg *config.Config, tools []Tool) []config.Engine {
	ok := map[config.Engine]bool{config.EngineNative: true}
	for _, t := range tools {
		if t.Available() {
			ok[t.Engine] = true
		}
	}
	var out []config.Engine
	for _, e := range cfg.Engines {
		if ok[e] {
			out = append(out, e)
		}
	}
	return out
}

// RunCheck prints the availability of ffprobe and exiftool and the usable
// engine order. It returns false when none of the configured engines can
// run.
func RunCheck(ctx context.Context, cfg *config.Config, log Logger, version VersionFunc) bool {
	log.Info("=== System Check ===")

	tools := Probe(ctx, cfg, version)
	for _, t := range tools {
		switch {
		case t.Available():
			log.Success("%s: %s", t.Name, t.Version)
		case errors.Is(t.Err, tool.ErrNotFound):
			log.Warn("%s not found (%s engine unavailable)", t.Name, t.Engine)
		default:
			log.Error("%s found but version check failed: %v", t.Name, t.Err)
		}
	}

	engines := AvailableEngines(cfg, tools)
	if len(engines) == 0 {
		log.Error("No configured engine can run (configured: %v)", cfg.Engines)
		return false
	}
	log.Info("Usable engines, in order: %v", engines)
	if len(engines) < len(cfg.Engines) {
		log.Warn("%d configured engine(s) will be skipped", len(cfg.Engines)-len(engines))
	}
	return true
}
