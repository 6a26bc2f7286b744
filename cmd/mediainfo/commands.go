package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/backmassage/mediainfo/internal/check"
	"github.com/backmassage/mediainfo/internal/display"
	"github.com/backmassage/mediainfo/internal/helper"
	"github.com/backmassage/mediainfo/internal/pipeline"
	"github.com/backmassage/mediainfo/internal/render"
	"github.com/backmassage/mediainfo/internal/resolve"
)

var (
	errInterrupted = errors.New("interrupted before every file was probed")
	errNoEngine    = errors.New("no configured engine can run")
	errNoFiles     = errors.New("no supported files found")
)

type inspectCmd struct {
	Paths []string `arg:"" name:"path" help:"Files or directories to inspect." type:"path"`
	Table bool     `short:"t" help:"Print one summary row per file instead of menus."`
}

func (c *inspectCmd) Run(a *app) error {
	reports, stats, err := probeAll(a, c.Paths)
	if err != nil {
		return err
	}
	r := render.New(a.cfg)
	if c.Table {
		if err := pipeline.WriteTable(os.Stdout, reports, r.Title); err != nil {
			return err
		}
	} else if err := writeMenus(os.Stdout, r, reports); err != nil {
		return err
	}
	if stats.Canceled > 0 {
		return errInterrupted
	}
	return nil
}

// writeMenus prints the category menu of every described file, headed by
// its name and quick title.
func writeMenus(w io.Writer, r *render.Renderer, reports []pipeline.Report) error {
	for i := range reports {
		rep := &reports[i]
		if rep.Info == nil {
			continue
		}
		header := rep.Name()
		if title := r.Title(rep.Info); title != "" {
			header += "  " + title
		}
		if err := display.RenderTree(w, header, r.CategoryMenu(rep.Info)); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

type titleCmd struct {
	Paths []string `arg:"" name:"path" help:"Files or directories." type:"path"`
}

func (c *titleCmd) Run(a *app) error {
	reports, stats, err := probeAll(a, c.Paths)
	if err != nil {
		return err
	}
	r := render.New(a.cfg)
	for i := range reports {
		rep := &reports[i]
		title := "-"
		if rep.Info != nil {
			if t := r.Title(rep.Info); t != "" {
				title = t
			}
		}
		fmt.Fprintf(os.Stdout, "%s\t%s\n", rep.Path, title)
	}
	if stats.Canceled > 0 {
		return errInterrupted
	}
	return nil
}

// probeAll expands directories and resolves every file. Roots that cannot
// be read are logged and skipped.
func probeAll(a *app, roots []string) ([]pipeline.Report, pipeline.RunStats, error) {
	var files []string
	for _, root := range roots {
		found, err := pipeline.Discover(root)
		if err != nil {
			a.log.Error("Cannot read %s: %v", root, err)
			continue
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, pipeline.RunStats{}, errNoFiles
	}
	a.log.Debug(a.cfg.Verbose, "%d file(s) to probe with %d worker(s)", len(files), a.cfg.Workers)
	reports, stats := pipeline.Run(a.ctx, a.cfg, a.log, files)
	return reports, stats, nil
}

type helperCmd struct{}

func (helperCmd) Run(a *app) error {
	// Stdout carries replies only.
	a.log.SetOutput(os.Stderr)
	svc := helper.New(a.cfg, resolve.New(a.cfg, a.log), a.log)
	err := svc.Serve(a.ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

type checkCmd struct{}

func (checkCmd) Run(a *app) error {
	display.PrintBanner(os.Stdout, version)
	if !check.RunCheck(a.ctx, a.cfg, a.log, nil) {
		return errNoEngine
	}
	return nil
}
