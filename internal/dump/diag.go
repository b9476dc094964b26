package dump

import (
	"fmt"
	"io"

	"github.com/evenbily/processor-trace/internal/ipt"
)

// Diag writes diagnostic lines to the error stream. Quiet mode does not
// apply to diagnostics.
type Diag struct {
	w io.Writer
}

// NewDiag creates a diagnostic writer.
func NewDiag(w io.Writer) *Diag {
	return &Diag{w: w}
}

// Msg reports "[error: msg]".
func (d *Diag) Msg(msg string) {
	fmt.Fprintf(d.w, "[error: %s]\n", msg)
}

// MsgAt reports "[offset: error: msg]".
func (d *Diag) MsgAt(msg string, offset uint64) {
	fmt.Fprintf(d.w, "[%x: error: %s]\n", offset, msg)
}

// Err reports "[error: msg (reason)]".
func (d *Diag) Err(msg string, err error) {
	fmt.Fprintf(d.w, "[error: %s (%s)]\n", msg, ipt.Code(err))
}

// ErrAt reports "[offset: error: msg (reason)]".
func (d *Diag) ErrAt(msg string, err error, offset uint64) {
	fmt.Fprintf(d.w, "[%x: error: %s (%s)]\n", offset, msg, ipt.Code(err))
}

// Report writes e in the form matching the information it carries.
func (d *Diag) Report(e *ipt.Error) {
	switch {
	case e.Reason == ipt.OK && e.HasOffset:
		d.MsgAt(e.Message, e.Offset)
	case e.Reason == ipt.OK:
		d.Msg(e.Message)
	case e.HasOffset:
		d.ErrAt(e.Message, e.Reason, e.Offset)
	default:
		d.Err(e.Message, e.Reason)
	}
}
