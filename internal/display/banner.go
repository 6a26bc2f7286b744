package display

import (
	"fmt"
	"io"

	"github.com/backmassage/mediainfo/internal/term"
)

// PrintBanner prints the ASCII art banner and version; uses Magenta if
// colors are enabled.
func PrintBanner(w io.Writer, version string) {
	if term.Magenta != "" {
		fmt.Fprint(w, term.Magenta)
	}
	fmt.Fprint(w, `               _ _       _        __
 _ __ ___   ___  __| (_) __ _(_)_ __  / _| ___
| '_ `+"`"+` _ \ / _ \/ _`+"`"+` | |/ _`+"`"+` | | '_ \| |_ / _ \
| | | | | |  __/ (_| | | (_| | | | | |  _| (_) |
|_| |_| |_|\___|\__,_|_|\__,_|_|_| |_|_|  \___/
`)
	if term.Magenta != "" {
		fmt.Fprint(w, term.NC)
	}
	fmt.Fprintf(w, "%sv%s%s\n\n", term.Dim, version, term.NC)
}
