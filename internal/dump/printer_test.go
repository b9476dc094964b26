package dump

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/evenbily/processor-trace/internal/ipt"
)

// failWriter fails every write.
type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	p := NewPrinter(&buf, &opts)

	n, err := p.Print("%x", 0x1234)
	if err != nil || n != 4 {
		t.Fatalf("Print = %d, %v", n, err)
	}
	if err := p.Pad(n, 9); err != nil {
		t.Fatal(err)
	}
	if err := p.Separator(); err != nil {
		t.Fatal(err)
	}
	if err := p.Pad(12, 9); err != nil {
		t.Fatal(err)
	}
	if err := p.EndColumn(0, 3); err != nil {
		t.Fatal(err)
	}
	if err := p.Newline(); err != nil {
		t.Fatal(err)
	}

	want := "1234" + strings.Repeat(" ", 5+2) + strings.Repeat(" ", 3+2) + "\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestPrinterQuiet(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Quiet = true
	p := NewPrinter(&buf, &opts)

	n, err := p.Print("%s", "psb")
	if err != nil || n != 0 {
		t.Errorf("quiet Print = %d, %v; want 0, nil", n, err)
	}
	if err := p.EndColumn(0, 9); err != nil {
		t.Error(err)
	}
	if err := p.Newline(); err != nil {
		t.Error(err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestPrinterErrors(t *testing.T) {
	opts := DefaultOptions()
	p := NewPrinter(failWriter{}, &opts)

	if _, err := p.Print("x"); !errors.Is(err, ipt.ErrInternal) {
		t.Errorf("failed write: got %v, want %v", err, ipt.ErrInternal)
	}
	if err := p.Separator(); !errors.Is(err, ipt.ErrInternal) {
		t.Errorf("failed separator: got %v, want %v", err, ipt.ErrInternal)
	}
	if err := p.Pad(0, 4); !errors.Is(err, ipt.ErrInternal) {
		t.Errorf("failed pad: got %v, want %v", err, ipt.ErrInternal)
	}
	// Nothing to pad, nothing to fail.
	if err := p.Pad(4, 4); err != nil {
		t.Errorf("full column: %v", err)
	}

	var buf bytes.Buffer
	p = NewPrinter(&buf, &opts)
	if _, err := p.Print("%s", ""); !errors.Is(err, ipt.ErrInternal) {
		t.Errorf("empty write: got %v, want %v", err, ipt.ErrInternal)
	}
}

func TestDiag(t *testing.T) {
	var buf bytes.Buffer
	d := NewDiag(&buf)

	d.Msg("failed to read PT stream")
	d.MsgAt("packet decoding failed, packet size is reported to be 0", 0x1f)
	d.Err("sync error", ipt.ErrEOS)
	d.ErrAt("packet decoding failed", ipt.ErrBadOpc, 0xabc)
	d.Report(ipt.NewErrorAt(ipt.ErrInternal, 0x10, "cannot print offset"))
	d.Report(ipt.NewErrorAt(ipt.ErrInternal, 0x10, "failed to update last-IP").WithReason(ipt.ErrInvalid))
	d.Report(ipt.NewError(ipt.ErrNoMem, "cannot allocate decoder"))
	d.Report(ipt.NewError(ipt.ErrInternal, "x").WithReason(ipt.ErrNoSync))

	want := "[error: failed to read PT stream]\n" +
		"[1f: error: packet decoding failed, packet size is reported to be 0]\n" +
		"[error: sync error (reached end of trace stream)]\n" +
		"[abc: error: packet decoding failed (unknown opcode)]\n" +
		"[10: error: cannot print offset]\n" +
		"[10: error: failed to update last-IP (invalid argument)]\n" +
		"[error: cannot allocate decoder]\n" +
		"[error: x (decoder out of sync)]\n"
	if got := buf.String(); got != want {
		t.Errorf("diag output:\n%s\nwant:\n%s", got, want)
	}
}
