// Package config holds runtime configuration: defaults, the optional JSON
// preferences file, CLI flag overrides, and validation. A Config is built
// once at startup and then only read.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/backmassage/mediainfo/internal/info"
)

// --- Enum types for validated string fields ---

// Engine names a media probing technology.
type Engine string

const (
	EngineNative   Engine = "native"   // Built-in container parser (default first).
	EngineFFmpeg   Engine = "ffmpeg"   // ffprobe subprocess.
	EngineMetadata Engine = "metadata" // exiftool subprocess.
)

// Unit is the measurement unit for physical print sizes.
type Unit string

const (
	UnitCentimeter Unit = "cm"
	UnitMillimeter Unit = "mm"
	UnitInch       Unit = "inch"
)

// Factor converts inches into the unit.
func (u Unit) Factor() float64 {
	switch u {
	case UnitCentimeter:
		return 2.54
	case UnitMillimeter:
		return 25.4
	default:
		return 1
	}
}

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// MenuItem is one configured menu entry. Template "-" is a separator; a
// template consisting of a single special token (e.g. "[[tracks]]") expands
// into a composite entry.
type MenuItem struct {
	Template string     `json:"template"`
	Image    string     `json:"image,omitempty"`
	Children []MenuItem `json:"children,omitempty"`
}

// Separator is the template of a separator item.
const Separator = "-"

// IsSeparator reports whether the item is a separator.
func (m MenuItem) IsSeparator() bool { return m.Template == Separator }

// CategorySettings groups the per-category presentation toggles.
type CategorySettings struct {
	IconsHidden bool       `json:"icons_hidden"`
	OnSubmenu   bool       `json:"on_submenu"`   // Nest items under one parent entry.
	OnMainItem  bool       `json:"on_main_item"` // Parent entry shows the quick title.
	Menu        []MenuItem `json:"menu"`
}

// Config holds all runtime settings. It is populated by [DefaultConfig],
// then [LoadFile] and finally CLI flags before being passed (by pointer) to
// the packages that need it.
type Config struct {
	// Media probing.
	Engines      []Engine      // Media engine order; default native, ffmpeg, metadata.
	FFprobePath  string        // Default: "ffprobe".
	ExiftoolPath string        // Default: "exiftool".
	ProbeTimeout time.Duration // Per external tool call. Default: 30s.

	// Per-category presentation.
	Image      CategorySettings
	Video      CategorySettings
	Audio      CategorySettings
	PDF        CategorySettings
	Word       CategorySettings
	Excel      CategorySettings
	Powerpoint CategorySettings
	Model      CategorySettings

	// Visibility toggles.
	ColorHidden       bool
	DepthHidden       bool
	PrintHidden       bool
	CustomPrintHidden bool
	CodecHidden       bool
	FramesHidden      bool
	BPSHidden         bool

	// Behavior flags.
	EmptyItemsSkipped bool // Default: true.
	TracksGrouped     bool // Default: true.
	OfficeDeepScan    bool

	// Units.
	Unit      Unit // Default: "cm".
	CustomDPI int  // Default: 300. 0 disables the custom print size.

	// Localization.
	Locale       string            // BCP 47 tag; default "en".
	Translations map[string]string // Message id -> translated format string.

	// Batch and display.
	Workers   int       // Parallel files; default 4.
	Verbose   bool      //
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path.
}

// DefaultConfig returns a Config with every default set.
func DefaultConfig() Config {
	return Config{
		Engines:           []Engine{EngineNative, EngineFFmpeg, EngineMetadata},
		FFprobePath:       "ffprobe",
		ExiftoolPath:      "exiftool",
		ProbeTimeout:      30 * time.Second,
		Image:             CategorySettings{Menu: defaultImageMenu()},
		Video:             CategorySettings{Menu: defaultVideoMenu()},
		Audio:             CategorySettings{Menu: defaultAudioMenu()},
		PDF:               CategorySettings{Menu: defaultPDFMenu()},
		Word:              CategorySettings{Menu: defaultWordMenu()},
		Excel:             CategorySettings{Menu: defaultExcelMenu()},
		Powerpoint:        CategorySettings{Menu: defaultPowerpointMenu()},
		Model:             CategorySettings{Menu: defaultModelMenu()},
		EmptyItemsSkipped: true,
		TracksGrouped:     true,
		Unit:              UnitCentimeter,
		CustomDPI:         300,
		Locale:            "en",
		Workers:           4,
		ColorMode:         ColorAuto,
	}
}

// For returns the settings block of a category. CategoryNone yields an
// empty block.
func (c *Config) For(cat info.Category) *CategorySettings {
	switch cat {
	case info.CategoryImage:
		return &c.Image
	case info.CategoryVideo:
		return &c.Video
	case info.CategoryAudio:
		return &c.Audio
	case info.CategoryPDF:
		return &c.PDF
	case info.CategoryWord:
		return &c.Word
	case info.CategoryExcel:
		return &c.Excel
	case info.CategoryPowerpoint:
		return &c.Powerpoint
	case info.CategoryModel:
		return &c.Model
	default:
		return &CategorySettings{}
	}
}

// PreferredEngine is the engine used by the single-engine helper path.
func (c *Config) PreferredEngine() Engine {
	if len(c.Engines) == 0 {
		return EngineNative
	}
	return c.Engines[0]
}

// Validate checks enum fields and numeric ranges.
func (c *Config) Validate() error {
	if len(c.Engines) == 0 {
		return errors.New("at least one engine is required")
	}
	seen := map[Engine]bool{}
	for _, e := range c.Engines {
		switch e {
		case EngineNative, EngineFFmpeg, EngineMetadata:
			// valid
		default:
			return fmt.Errorf("invalid engine %q (use 'native', 'ffmpeg' or 'metadata')", e)
		}
		if seen[e] {
			return fmt.Errorf("engine %q listed twice", e)
		}
		seen[e] = true
	}

	switch c.Unit {
	case UnitCentimeter, UnitMillimeter, UnitInch:
		// valid
	default:
		return errors.New("invalid unit (use 'cm', 'mm' or 'inch')")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if c.CustomDPI < 0 {
		return fmt.Errorf("invalid custom DPI %d (use 0 to disable)", c.CustomDPI)
	}
	if c.Workers < 1 {
		return fmt.Errorf("invalid worker count %d", c.Workers)
	}
	if c.ProbeTimeout <= 0 {
		return errors.New("probe timeout must be positive")
	}
	return nil
}

// fileConfig mirrors the JSON preferences file. Pointer fields distinguish
// "absent" from "false".
type fileConfig struct {
	Engines           []Engine          `json:"engines"`
	FFprobePath       string            `json:"ffprobe_path"`
	ExiftoolPath      string            `json:"exiftool_path"`
	ProbeTimeout      string            `json:"probe_timeout"`
	Image             *CategorySettings `json:"image"`
	Video             *CategorySettings `json:"video"`
	Audio             *CategorySettings `json:"audio"`
	PDF               *CategorySettings `json:"pdf"`
	Word              *CategorySettings `json:"word"`
	Excel             *CategorySettings `json:"excel"`
	Powerpoint        *CategorySettings `json:"powerpoint"`
	Model             *CategorySettings `json:"model"`
	ColorHidden       *bool             `json:"color_hidden"`
	DepthHidden       *bool             `json:"depth_hidden"`
	PrintHidden       *bool             `json:"print_hidden"`
	CustomPrintHidden *bool             `json:"custom_print_hidden"`
	CodecHidden       *bool             `json:"codec_hidden"`
	FramesHidden      *bool             `json:"frames_hidden"`
	BPSHidden         *bool             `json:"bps_hidden"`
	EmptyItemsSkipped *bool             `json:"empty_items_skipped"`
	TracksGrouped     *bool             `json:"tracks_grouped"`
	OfficeDeepScan    *bool             `json:"office_deep_scan"`
	Unit              Unit              `json:"unit"`
	CustomDPI         *int              `json:"custom_dpi"`
	Locale            string            `json:"locale"`
	Translations      map[string]string `json:"translations"`
	Workers           int               `json:"workers"`
}

// LoadFile overlays the JSON preferences file at path onto c. A missing
// file is not an error.
func LoadFile(path string, c *Config) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc.apply(c)
}

func (fc *fileConfig) apply(c *Config) error {
	if len(fc.Engines) > 0 {
		c.Engines = make([]Engine, len(fc.Engines))
		for i, e := range fc.Engines {
			c.Engines[i] = Engine(strings.ToLower(strings.TrimSpace(string(e))))
		}
	}
	setString(&c.FFprobePath, fc.FFprobePath)
	setString(&c.ExiftoolPath, fc.ExiftoolPath)
	if fc.ProbeTimeout != "" {
		d, err := time.ParseDuration(fc.ProbeTimeout)
		if err != nil {
			return fmt.Errorf("invalid probe_timeout %q: %w", fc.ProbeTimeout, err)
		}
		c.ProbeTimeout = d
	}

	for _, s := range []struct {
		src *CategorySettings
		dst *CategorySettings
	}{
		{fc.Image, &c.Image}, {fc.Video, &c.Video}, {fc.Audio, &c.Audio},
		{fc.PDF, &c.PDF}, {fc.Word, &c.Word}, {fc.Excel, &c.Excel},
		{fc.Powerpoint, &c.Powerpoint}, {fc.Model, &c.Model},
	} {
		if s.src == nil {
			continue
		}
		menu := s.dst.Menu
		*s.dst = *s.src
		if s.src.Menu == nil {
			s.dst.Menu = menu
		}
	}

	setBool(&c.ColorHidden, fc.ColorHidden)
	setBool(&c.DepthHidden, fc.DepthHidden)
	setBool(&c.PrintHidden, fc.PrintHidden)
	setBool(&c.CustomPrintHidden, fc.CustomPrintHidden)
	setBool(&c.CodecHidden, fc.CodecHidden)
	setBool(&c.FramesHidden, fc.FramesHidden)
	setBool(&c.BPSHidden, fc.BPSHidden)
	setBool(&c.EmptyItemsSkipped, fc.EmptyItemsSkipped)
	setBool(&c.TracksGrouped, fc.TracksGrouped)
	setBool(&c.OfficeDeepScan, fc.OfficeDeepScan)

	if fc.Unit != "" {
		c.Unit = Unit(strings.ToLower(string(fc.Unit)))
	}
	if fc.CustomDPI != nil {
		c.CustomDPI = *fc.CustomDPI
	}
	setString(&c.Locale, fc.Locale)
	if len(fc.Translations) > 0 {
		c.Translations = fc.Translations
	}
	if fc.Workers > 0 {
		c.Workers = fc.Workers
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
