package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/term"
)

const maxNameWidth = 50

// WriteTable prints one row per report: file, category, winning probe and
// the quick title produced by title. Files without a record are dimmed;
// interrupted ones are flagged.
func WriteTable(w io.Writer, reports []Report, title func(info.Info) string) error {
	type row struct {
		name, category, probe, summary string
		described, canceled            bool
	}
	rows := make([]row, len(reports))
	nameW, catW, probeW := len("File"), len("Category"), len("Probe")
	for i := range reports {
		rep := &reports[i]
		r := row{name: rep.Name(), category: "-", probe: "-", described: rep.Info != nil, canceled: rep.Err != nil}
		switch {
		case rep.Info != nil:
			r.category = rep.Info.Category().String()
			r.probe = rep.Probe()
			r.summary = title(rep.Info)
		case rep.Err != nil:
			r.summary = "interrupted"
		case rep.Unsupported():
			r.summary = "unsupported"
		default:
			r.summary = "no data"
		}
		r.name = runewidth.Truncate(r.name, maxNameWidth, "…")
		nameW = max(nameW, runewidth.StringWidth(r.name))
		catW = max(catW, len(r.category))
		probeW = max(probeW, len(r.probe))
		rows[i] = r
	}

	var b strings.Builder
	header := fmt.Sprintf("  %s  %-*s  %-*s  %s", pad("File", nameW), catW, "Category", probeW, "Probe", "Summary")
	b.WriteString(header + "\n")
	b.WriteString("  " + strings.Repeat("─", runewidth.StringWidth(header)-2) + "\n")
	for _, r := range rows {
		// Pad before coloring so escape bytes do not count as width.
		line := fmt.Sprintf("  %s  %-*s  %-*s  %s", pad(r.name, nameW), catW, r.category, probeW, r.probe, r.summary)
		switch {
		case r.canceled:
			line = term.Yellow + line + term.NC
		case !r.described:
			line = term.Dim + line + term.NC
		}
		b.WriteString(line + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// pad right-pads s to width display columns.
func pad(s string, width int) string {
	return s + strings.Repeat(" ", max(0, width-runewidth.StringWidth(s)))
}
