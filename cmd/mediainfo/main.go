// Command mediainfo is the CLI entrypoint for the media metadata tool.
//
// It parses flags, loads the preferences file, and runs one of the
// subcommands: inspect (menus per file), title (quick titles), helper
// (the JSON-lines service) or check (system diagnostics).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/backmassage/mediainfo/internal/config"
	"github.com/backmassage/mediainfo/internal/logging"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

type cli struct {
	config.Flags `embed:""`

	Version kong.VersionFlag `help:"Print version and exit."`

	Inspect inspectCmd `cmd:"" help:"Show the info menu of files and directories."`
	Title   titleCmd   `cmd:"" help:"Print the one-line quick title of each file."`
	Helper  helperCmd  `cmd:"" help:"Answer JSON-lines requests on stdin."`
	Check   checkCmd   `cmd:"" help:"Report which external tools and engines are available."`
}

// app is bound into every command's Run method.
type app struct {
	ctx context.Context
	cfg *config.Config
	log *logging.Logger
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr via fmt.
	var c cli
	parser, err := kong.New(&c,
		kong.Name("mediainfo"),
		kong.Description("Describe images, audio/video, office documents, PDFs and 3D models."),
		kong.UsageOnError(),
		kong.Vars{"version": fmt.Sprintf("%s (%s)", version, commit)},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mediainfo: %v\n", err)
		return 1
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mediainfo: %v\n", err)
		return 1
	}

	cfg, err := loadConfig(&c.Flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mediainfo: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mediainfo: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Signal handling. Cancel on SIGINT/SIGTERM so the pipeline
	// stops scheduling files and the helper stops between requests.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Received interrupt, stopping…")
			cancel()
		case <-ctx.Done():
		}
	}()

	// Phase 3: Run the selected command.
	if err := kctx.Run(&app{ctx: ctx, cfg: &cfg, log: log}); err != nil {
		log.Error("%v", err)
		return 1
	}
	return 0
}

// loadConfig layers defaults, the preferences file and the flags, then
// validates the result.
func loadConfig(f *config.Flags) (config.Config, error) {
	cfg := config.DefaultConfig()
	if err := config.LoadFile(f.Config, &cfg); err != nil {
		return cfg, err
	}
	f.Apply(&cfg)
	return cfg, cfg.Validate()
}
