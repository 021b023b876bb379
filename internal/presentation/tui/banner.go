package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{" _         _   _   _          ", "#818cf8"},
	{"| |   __ _| |_| |_(_) ___ ___ ", "#a78bfa"},
	{"| |  / _` | __| __| |/ __/ _ \\", "#c084fc"},
	{"| |_| (_| | |_| |_| | (_|  __/", "#e879f9"},
	{"|____\\__,_|\\__|\\__|_|\\___\\___|", "#f472b6"},
}

// PrintBanner writes the lattice banner and version to w. Colors follow the
// profile detected for w, so a pipe gets plain ASCII.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
