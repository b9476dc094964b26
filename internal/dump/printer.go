package dump

import (
	"fmt"
	"io"

	"github.com/evenbily/processor-trace/internal/ipt"
)

// Printer writes dump text to the output stream. In quiet mode it
// writes nothing and reports zero characters written.
type Printer struct {
	w    io.Writer
	opts *Options
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer, opts *Options) *Printer {
	return &Printer{w: w, opts: opts}
}

// Print writes formatted text and returns the number of characters written.
//
// A failing or empty write is reported as ipt.ErrInternal.
func (p *Printer) Print(format string, args ...any) (int, error) {
	if p.opts.Quiet {
		return 0, nil
	}

	n, err := fmt.Fprintf(p.w, format, args...)
	if err != nil || n <= 0 {
		return n, ipt.ErrInternal
	}
	return n, nil
}

// Pad fills a column that already holds used characters up to width.
func (p *Printer) Pad(used, width int) error {
	if used >= width {
		return nil
	}
	_, err := p.Print("%*c", width-used, ' ')
	return err
}

// Separator writes the gap between two columns.
func (p *Printer) Separator() error {
	_, err := p.Print("  ")
	return err
}

// EndColumn pads a column to width and writes the separator after it.
func (p *Printer) EndColumn(used, width int) error {
	if err := p.Pad(used, width); err != nil {
		return err
	}
	return p.Separator()
}

// Newline terminates the current line.
func (p *Printer) Newline() error {
	_, err := p.Print("\n")
	return err
}
