package config

// This file defines the global CLI flags. They are parsed by kong in the
// command and applied after the preferences file, so Config values from
// DefaultConfig() and the file hold unless a flag is passed.
// Negated flags (e.g. --no-skip-empty) only ever clear a default.

import (
	"strings"
)

// Flags are the options shared by every subcommand.
type Flags struct {
	Config string `short:"c" help:"JSON preferences file." type:"path"`

	Engine   []string `short:"e" help:"Media engine order (native, ffmpeg, metadata)." sep:","`
	Unit     string   `help:"Print size unit (cm, mm, inch)."`
	DPI      int      `name:"dpi" help:"Custom DPI for the second print size (0 disables, -1 keeps the configured value)." default:"-1"`
	Locale   string   `help:"Locale for numbers and messages (BCP 47 tag)."`
	DeepScan bool     `name:"deep-scan" help:"Walk document content to count words and characters."`

	NoSkipEmpty   bool `name:"no-skip-empty" help:"Keep menu items whose placeholders resolved to nothing."`
	NoGroupTracks bool `name:"no-group-tracks" help:"List tracks inline instead of per-type submenus."`
	HideCodec     bool `name:"hide-codec" help:"Hide codec names on track lines."`
	HideFrames    bool `name:"hide-frames" help:"Hide frame counts on video tracks."`
	HideBitrate   bool `name:"hide-bitrate" help:"Hide bit rates on track lines."`
	HidePrint     bool `name:"hide-print" help:"Hide the print size at the image's own DPI."`
	HideIcons     bool `name:"hide-icons" help:"Drop icon names from every menu."`

	Workers int    `short:"j" help:"Files probed in parallel." default:"0"`
	Verbose bool   `short:"v" help:"Log every probe attempt."`
	Color   string `help:"Colored output (auto, always, never)." enum:"auto,always,never" default:"auto"`
	LogFile string `name:"log-file" help:"Append log lines to this file." type:"path"`
}

// Apply overlays the parsed flags onto c.
func (f *Flags) Apply(c *Config) {
	if len(f.Engine) > 0 {
		c.Engines = c.Engines[:0:0]
		for _, e := range f.Engine {
			if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
				c.Engines = append(c.Engines, Engine(e))
			}
		}
	}
	if f.Unit != "" {
		c.Unit = Unit(strings.ToLower(f.Unit))
	}
	if f.DPI >= 0 {
		c.CustomDPI = f.DPI
	}
	if f.Locale != "" {
		c.Locale = f.Locale
	}
	if f.DeepScan {
		c.OfficeDeepScan = true
	}
	if f.NoSkipEmpty {
		c.EmptyItemsSkipped = false
	}
	if f.NoGroupTracks {
		c.TracksGrouped = false
	}
	if f.HideCodec {
		c.CodecHidden = true
	}
	if f.HideFrames {
		c.FramesHidden = true
	}
	if f.HideBitrate {
		c.BPSHidden = true
	}
	if f.HidePrint {
		c.PrintHidden = true
	}
	if f.HideIcons {
		for _, s := range []*CategorySettings{&c.Image, &c.Video, &c.Audio, &c.PDF, &c.Word, &c.Excel, &c.Powerpoint, &c.Model} {
			s.IconsHidden = true
		}
	}
	if f.Workers > 0 {
		c.Workers = f.Workers
	}
	if f.Verbose {
		c.Verbose = true
	}
	if f.Color != "" {
		c.ColorMode = ColorMode(f.Color)
	}
	if f.LogFile != "" {
		c.LogFile = f.LogFile
	}
}
