package render

import (
	"testing"
	"time"

	"github.com/backmassage/mediainfo/internal/config"
	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/menu"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	return &cfg
}

func labels(nodes []menu.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		if n.Separator {
			out[i] = "-"
			continue
		}
		out[i] = n.Label
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPlaceholdersWithoutTokens(t *testing.T) {
	img := &info.ImageInfo{Width: 10, Height: 10}
	tests := []struct {
		tpl  string
		want string
	}{
		{"", ""},
		{"plain label", "plain label"},
		{"[single] brackets [[ and spaces ]]", "[single] brackets [[ and spaces ]]"},
		{"[[unknown-token]] tail", " tail"},
	}
	for _, tt := range tests {
		t.Run(tt.tpl, func(t *testing.T) {
			got, filled := RenderPlaceholders(tt.tpl, img, testConfig())
			if got != tt.want || filled {
				t.Errorf("RenderPlaceholders(%q) = %q, %v; want %q, false", tt.tpl, got, filled, tt.want)
			}
		})
	}
}

func TestImageTokens(t *testing.T) {
	img := &info.ImageInfo{
		File:      info.File{Path: "/photos/beach.jpg", Size: 1500000},
		Width:     3000,
		Height:    2000,
		ColorMode: "RGB",
		Depth:     8,
		DPI:       300,
	}
	tests := []struct {
		name   string
		tpl    string
		mutate func(*config.Config)
		want   string
		filled bool
	}{
		{"print", "[[print]]", func(c *config.Config) { c.Unit = config.UnitInch }, "10 × 6.67 inch (300 dpi)", true},
		{"print cm", "[[print]]", nil, "25.4 × 16.93 cm (300 dpi)", true},
		{"custom same dpi", "[[custom-print]]", nil, "", false},
		{"custom when print hidden", "[[custom-print]]", func(c *config.Config) {
			c.Unit = config.UnitInch
			c.PrintHidden = true
		}, "10 × 6.67 inch (300 dpi)", true},
		{"custom other dpi", "[[custom-print]]", func(c *config.Config) {
			c.Unit = config.UnitMillimeter
			c.CustomDPI = 150
		}, "508 × 338.67 mm (150 dpi)", true},
		{"custom disabled", "[[custom-print]]", func(c *config.Config) {
			c.CustomDPI = 150
			c.CustomPrintHidden = true
		}, "", false},
		{"color depth", "[[color-depth]]", nil, "RGB 8 bit", true},
		{"depth hidden", "[[color-depth]]", func(c *config.Config) { c.DepthHidden = true }, "RGB", true},
		{"size and file", "[[size]] [[file-name]] [[file-size]]", nil, "3000 × 2000 beach.jpg 1.5 MB", true},
		{"ratio", "[[ratio]]", nil, "3:2", true},
		{"resolution", "[[resolution]]", nil, "6 MP", true},
		{"file ext and dir", "[[file-ext]] in [[file-dir]]", nil, "jpg in /photos", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			got, filled := RenderPlaceholders(tt.tpl, img, cfg)
			if got != tt.want || filled != tt.filled {
				t.Errorf("got %q, %v; want %q, %v", got, filled, tt.want, tt.filled)
			}
		})
	}
}

func TestSkipEmptyCascade(t *testing.T) {
	doc := &info.WordInfo{Pages: 3}
	items := []config.MenuItem{
		{Template: "[[pages]]"},
		{Template: "Details", Children: []config.MenuItem{
			{Template: "[[title]]"},
			{Template: "[[author]]"},
		}},
	}

	t.Run("skip", func(t *testing.T) {
		got := BuildMenu(items, doc, testConfig())
		if want := []string{"3 pages"}; !equal(labels(got), want) {
			t.Errorf("labels = %q, want %q", labels(got), want)
		}
	})

	t.Run("keep", func(t *testing.T) {
		cfg := testConfig()
		cfg.EmptyItemsSkipped = false
		got := BuildMenu(items, doc, cfg)
		if want := []string{"3 pages", "Details"}; !equal(labels(got), want) {
			t.Fatalf("labels = %q, want %q", labels(got), want)
		}
		if want := []string{"", ""}; !equal(labels(got[1].Children), want) {
			t.Errorf("children = %q, want %q", labels(got[1].Children), want)
		}
	})
}

func TestSeparatorsTidiedAfterSkipping(t *testing.T) {
	doc := &info.PDFInfo{Pages: 1}
	items := []config.MenuItem{
		{Template: config.Separator},
		{Template: "[[title]]"},
		{Template: config.Separator},
		{Template: config.Separator},
		{Template: "[[pages]]"},
		{Template: config.Separator},
		{Template: "[[author]]"},
	}
	got := BuildMenu(items, doc, testConfig())
	if want := []string{"1 page"}; !equal(labels(got), want) {
		t.Errorf("labels = %q, want %q", labels(got), want)
	}
}

func sampleStreams() info.Streams {
	return info.Streams{
		info.VideoStream{Width: 1920, Height: 1080, Duration: 3725.9, Codec: "h264", BitRate: 500000, Frames: 89400, Language: info.String("ita")},
		info.AudioStream{Duration: 3725.9, Codec: "aac", BitRate: 16000},
		info.SubtitleStream{Title: info.String("Forced"), Language: info.String("eng")},
		info.OtherStream{},
		info.AudioStream{Duration: 3725.9, Codec: "ac3", BitRate: 48000, Language: info.String("eng")},
	}
}

func TestGroupedTracks(t *testing.T) {
	video := &info.VideoInfo{Streams: sampleStreams()}
	items := []config.MenuItem{{Template: "[[tracks]]"}}

	got := BuildMenu(items, video, testConfig())
	if want := []string{"Video", "Audio", "Subtitles"}; !equal(labels(got), want) {
		t.Fatalf("groups = %q, want %q", labels(got), want)
	}
	wantChildren := [][]string{
		{"1920 × 1080, 01:02:05 (89,400 frames), 500 kB/s (h264, ITA)"},
		{"01:02:05, 16 kB/s (aac)", "01:02:05, 48 kB/s (ac3, ENG)"},
		{"Forced (ENG)"},
	}
	for i, want := range wantChildren {
		if !equal(labels(got[i].Children), want) {
			t.Errorf("group %d = %q, want %q", i, labels(got[i].Children), want)
		}
	}

	cfg := testConfig()
	cfg.TracksGrouped = false
	inline := BuildMenu(items, video, cfg)
	if len(inline) != 4 {
		t.Errorf("ungrouped entries = %d, want 4", len(inline))
	}
}

func TestGroupedTracksOmitsEmptyGroups(t *testing.T) {
	audio := &info.AudioInfo{Streams: info.Streams{info.AudioStream{Duration: 59, Codec: "mp3"}}}
	got := BuildMenu([]config.MenuItem{{Template: "[[tracks]]"}}, audio, testConfig())
	if want := []string{"Audio"}; !equal(labels(got), want) {
		t.Errorf("groups = %q, want %q", labels(got), want)
	}
}

func TestTrackLineToggles(t *testing.T) {
	cfg := testConfig()
	cfg.CodecHidden = true
	cfg.FramesHidden = true
	cfg.BPSHidden = true
	r := New(cfg)
	v := sampleStreams()[0].(info.VideoStream)
	if got, want := r.videoLine(v), "1920 × 1080, 01:02:05 (ITA)"; got != want {
		t.Errorf("videoLine = %q, want %q", got, want)
	}
	if got, want := r.subtitleLine(info.SubtitleStream{Language: info.String("de")}), "(DE)"; got != want {
		t.Errorf("subtitleLine = %q, want %q", got, want)
	}
}

func TestMediaTokens(t *testing.T) {
	video := &info.VideoInfo{Streams: sampleStreams()}
	tests := []struct {
		tpl  string
		want string
	}{
		{"[[size]], [[duration]]", "1920 × 1080, 01:02:05"},
		{"[[bitrate]]", "564 kB/s"},
		{"[[codec]]", "h264, aac, ac3"},
		{"[[languages]]", "ITA, ENG"},
		{"[[audio-count]], [[subtitle-count]]", "2 audio tracks, 1 subtitle"},
		{"[[frames]]", "89,400 frames"},
	}
	for _, tt := range tests {
		t.Run(tt.tpl, func(t *testing.T) {
			got, filled := RenderPlaceholders(tt.tpl, video, testConfig())
			if got != tt.want || !filled {
				t.Errorf("got %q, %v; want %q, true", got, filled, tt.want)
			}
		})
	}
}

func cubeMesh(name string) info.Mesh {
	return info.Mesh{
		Name:        name,
		VertexCount: 8,
		HasNormals:  true,
		Submeshes:   []info.Submesh{{Geometry: info.GeometryTriangles}},
	}
}

func TestModelWithoutMeshes(t *testing.T) {
	model := &info.ModelInfo{}
	cfg := testConfig()
	if got, filled := RenderPlaceholders("[[mesh-count]]", model, cfg); got != "" || filled {
		t.Errorf("mesh-count = %q, %v; want \"\", false", got, filled)
	}
	if got := BuildMenu(cfg.Model.Menu, model, cfg); len(got) != 0 {
		t.Errorf("menu = %q, want empty", labels(got))
	}
	if got := New(cfg).Title(model); got != "" {
		t.Errorf("Title = %q, want empty", got)
	}
}

func TestMeshesSingleInlined(t *testing.T) {
	model := &info.ModelInfo{Meshes: []info.Mesh{cubeMesh("")}}
	got := BuildMenu([]config.MenuItem{{Template: "[[meshes]]"}}, model, testConfig())
	if len(got) != 1 || got[0].Label != "1 Mesh" || got[0].Icon != "3d" {
		t.Fatalf("got %+v", got)
	}
	if want := []string{"Mesh", "8 Vertices", "-", "with normals"}; !equal(labels(got[0].Children), want) {
		t.Errorf("children = %q, want %q", labels(got[0].Children), want)
	}
	if icon := got[0].Children[0].Icon; icon != "3d_triangle" {
		t.Errorf("mesh icon = %q, want 3d_triangle", icon)
	}
}

func TestMeshesNested(t *testing.T) {
	bare := info.Mesh{Name: "Wire", VertexCount: 1}
	model := &info.ModelInfo{Meshes: []info.Mesh{cubeMesh("Cube"), bare}}
	got := BuildMenu([]config.MenuItem{{Template: "[[meshes]]"}}, model, testConfig())
	if len(got) != 1 || got[0].Label != "2 Meshes" {
		t.Fatalf("got %q", labels(got))
	}
	entries := got[0].Children
	if want := []string{"Cube", "Wire"}; !equal(labels(entries), want) {
		t.Fatalf("entries = %q, want %q", labels(entries), want)
	}
	if want := []string{"8 Vertices", "-", "with normals"}; !equal(labels(entries[0].Children), want) {
		t.Errorf("Cube = %q, want %q", labels(entries[0].Children), want)
	}
	if want := []string{"1 Vertex"}; !equal(labels(entries[1].Children), want) {
		t.Errorf("Wire = %q, want %q", labels(entries[1].Children), want)
	}
	if entries[1].Icon != "3d" {
		t.Errorf("Wire icon = %q, want 3d", entries[1].Icon)
	}
}

func TestModelFeatureTokens(t *testing.T) {
	model := &info.ModelInfo{Meshes: []info.Mesh{cubeMesh("Cube")}}
	cfg := testConfig()
	items := []config.MenuItem{{Template: "[[normals]]"}, {Template: "[[tangents]]"}}
	if want := []string{"with normals"}; !equal(labels(BuildMenu(items, model, cfg)), want) {
		t.Errorf("skip: %q, want %q", labels(BuildMenu(items, model, cfg)), want)
	}
	cfg.EmptyItemsSkipped = false
	if want := []string{"with normals", "without tangents"}; !equal(labels(BuildMenu(items, model, cfg)), want) {
		t.Errorf("keep: %q, want %q", labels(BuildMenu(items, model, cfg)), want)
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name string
		in   info.Info
		want string
	}{
		{"image", &info.ImageInfo{Width: 640, Height: 480, ColorMode: "RGB", Depth: 8, DPI: 72}, "640 × 480, RGB 8 bit, 72 dpi"},
		{"image no dpi", &info.ImageInfo{Width: 640, Height: 480}, "640 × 480"},
		{"model", &info.ModelInfo{Meshes: []info.Mesh{cubeMesh("")}}, "1 Mesh, 8 Vertices"},
		{"audio", &info.AudioInfo{Streams: info.Streams{info.AudioStream{Duration: 59, BitRate: 16000}}}, "00:00:59, 16 kB/s"},
		{"excel", &info.ExcelInfo{Sheets: 3}, "3 sheets"},
		{"empty pdf", &info.PDFInfo{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(testConfig()).Title(tt.in); got != tt.want {
				t.Errorf("Title = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPDFTokens(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	pdf := &info.PDFInfo{
		Pages:      12,
		Version:    "1.7",
		PageWidth:  595,
		PageHeight: 842,
		Meta:       info.DocMeta{Title: info.String("Report"), Created: &created},
	}
	tests := []struct {
		tpl  string
		unit config.Unit
		want string
	}{
		{"[[paper]]", config.UnitCentimeter, "20.99 × 29.7 cm (A4)"},
		{"[[pages]] [[version]]", config.UnitCentimeter, "12 pages PDF version 1.7"},
		{"[[title]] / [[creation]]", config.UnitCentimeter, "Report / Created 2024-01-02 03:04"},
		{"[[words]]", config.UnitCentimeter, ""},
	}
	for _, tt := range tests {
		t.Run(tt.tpl, func(t *testing.T) {
			cfg := testConfig()
			cfg.Unit = tt.unit
			r := New(cfg)
			r.loc = time.UTC
			if got, _ := r.Placeholders(tt.tpl, pdf); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	letter := &info.PDFInfo{Pages: 1, PageWidth: 792, PageHeight: 612}
	cfg := testConfig()
	cfg.Unit = config.UnitInch
	if got, _ := RenderPlaceholders("[[paper]]", letter, cfg); got != "11 × 8.5 inch (Letter)" {
		t.Errorf("landscape letter = %q", got)
	}
}

func TestSheetList(t *testing.T) {
	xls := &info.ExcelInfo{Sheets: 2, SheetNames: []string{"Budget", "Notes"}}
	got := BuildMenu([]config.MenuItem{{Template: "[[sheet-list]]"}}, xls, testConfig())
	if len(got) != 1 || got[0].Label != "2 sheets" {
		t.Fatalf("got %q", labels(got))
	}
	if want := []string{"Budget", "Notes"}; !equal(labels(got[0].Children), want) {
		t.Errorf("children = %q, want %q", labels(got[0].Children), want)
	}
}

func TestCategoryMenuPlacement(t *testing.T) {
	img := &info.ImageInfo{Width: 640, Height: 480, ColorMode: "RGB", Depth: 8}
	cfg := testConfig()
	cfg.Image.OnSubmenu = true
	cfg.Image.OnMainItem = true
	cfg.Image.IconsHidden = true

	got := New(cfg).CategoryMenu(img)
	if len(got) != 1 || got[0].Label != "640 × 480, RGB 8 bit" {
		t.Fatalf("got %q", labels(got))
	}
	var icons func([]menu.Node) bool
	icons = func(nodes []menu.Node) bool {
		for _, n := range nodes {
			if n.Icon != "" || icons(n.Children) {
				return true
			}
		}
		return false
	}
	if icons(got) {
		t.Error("icons not stripped")
	}

	cfg.Image.OnMainItem = false
	if got := New(cfg).CategoryMenu(img); got[0].Label != "Media info" {
		t.Errorf("parent label = %q, want Media info", got[0].Label)
	}
}

func TestTranslations(t *testing.T) {
	cfg := testConfig()
	cfg.Locale = "fr"
	cfg.Translations = map[string]string{"%s Meshes": "%s maillages"}
	model := &info.ModelInfo{Meshes: []info.Mesh{cubeMesh("a"), cubeMesh("b")}}
	if got, _ := RenderPlaceholders("[[mesh-count]]", model, cfg); got != "2 maillages" {
		t.Errorf("mesh-count = %q, want 2 maillages", got)
	}

	cfg.Locale = "not a locale!"
	if got, _ := RenderPlaceholders("[[vertex]]", model, cfg); got != "16 Vertices" {
		t.Errorf("fallback locale: %q", got)
	}
}
