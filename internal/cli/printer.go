// Package cli renders engine and aggregator results for the terminal.
package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Printer writes colored lines to an output.
type Printer struct {
	out   io.Writer
	ok    *color.Color
	warn  *color.Color
	fail  *color.Color
	bold  *color.Color
	faint *color.Color
}

// NewPrinter creates a Printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{
		out:   out,
		ok:    color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		fail:  color.New(color.FgRed),
		bold:  color.New(color.Bold),
		faint: color.New(color.Faint),
	}
}

func (p *Printer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

func (p *Printer) colorf(c *color.Color, format string, args ...any) {
	_, _ = c.Fprintf(p.out, format, args...)
}
