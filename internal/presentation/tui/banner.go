package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the server start banner.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.Profile
	tiles := termenv.String("[::] [:.] [..]").Foreground(p.Color("#818cf8"))
	name := termenv.String(" domino ").Bold().Foreground(p.Color("#c084fc"))
	ver := termenv.String("v" + version).Faint()

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s%s%s\n", tiles, name, ver)
	fmt.Fprintln(out)
}
