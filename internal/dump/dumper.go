package dump

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/evenbily/processor-trace/internal/ipt"
	"github.com/evenbily/processor-trace/internal/lastip"
	"github.com/evenbily/processor-trace/internal/pkt"
)

// Decoder yields the packets of a trace stream.
type Decoder interface {
	// SyncForward moves to the next synchronisation point.
	SyncForward() error
	// Offset returns the current position in the trace stream.
	Offset() (uint64, error)
	// Next decodes the packet at the current position and advances past
	// it. The end of the stream is reported as ipt.ErrEOS.
	Next() (pkt.Packet, error)
}

// syncReporter is implemented by decoders that remember their last
// synchronisation point.
type syncReporter interface {
	SyncOffset() (uint64, error)
}

// AddressTracker derives the last ip from ip payloads.
type AddressTracker interface {
	Init()
	Update(ip *pkt.IP) error
	Query() (uint64, lastip.Outcome, error)
}

type state int

const (
	stateSync state = iota
	stateDecode
	stateDone
	stateFatal
)

func (s state) String() string {
	switch s {
	case stateSync:
		return "sync"
	case stateDecode:
		return "decode"
	case stateDone:
		return "done"
	case stateFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Dumper prints the packets of one trace buffer.
type Dumper struct {
	opts    *Options
	buf     []byte
	dec     Decoder
	tracker AddressTracker
	out     *Printer
	diag    *Diag
	logger  *log.Logger

	offsetWidth int
	lastErr     error
}

// New creates a dumper for buf, decoded by dec. Packet lines go to out,
// diagnostics to errOut.
func New(buf []byte, dec Decoder, opts *Options, out, errOut io.Writer) *Dumper {
	d := &Dumper{
		opts:    opts,
		buf:     buf,
		dec:     dec,
		tracker: lastip.New(),
		out:     NewPrinter(out, opts),
		diag:    NewDiag(errOut),
		logger:  log.New(io.Discard),
	}

	if opts.FixedOffsetWidth {
		d.offsetWidth = FixedOffsetWidth
	} else {
		d.offsetWidth = OffsetWidth(uint64(len(buf)))
	}
	return d
}

// SetLogger sets the logger for progress and debug messages.
func (d *Dumper) SetLogger(logger *log.Logger) {
	if logger != nil {
		d.logger = logger
	}
}

// SetTracker replaces the last ip tracker.
func (d *Dumper) SetTracker(t AddressTracker) {
	if t != nil {
		d.tracker = t
	}
}

// OffsetWidth returns the width of the offset column.
func (d *Dumper) OffsetWidth() int {
	return d.offsetWidth
}

// LastErr returns the most recent error that caused a resynchronisation.
func (d *Dumper) LastErr() error {
	return d.lastErr
}

// Dump prints the whole trace stream.
//
// It returns ipt.OK when the end of the stream was reached, or the error
// that made synchronisation fail. Errors in individual packets are
// reported and skipped; they do not affect the result.
func (d *Dumper) Dump() ipt.Err {
	st := stateSync
	status := ipt.OK

	for {
		switch st {
		case stateSync:
			st, status = d.sync()
		case stateDecode:
			st, status = d.step()
		case stateDone:
			d.logger.Debug("end of trace stream")
			return ipt.OK
		case stateFatal:
			d.logger.Debug("dump failed", "status", status, "last", d.lastErr)
			return status
		}
	}
}

// sync aligns the decoder to the next packet boundary.
func (d *Dumper) sync() (state, ipt.Err) {
	err := d.dec.SyncForward()
	if err != nil {
		offset, oerr := d.dec.Offset()
		if oerr != nil {
			d.diag.Err("sync error", err)
			d.diag.Err("could not determine offset", oerr)
		} else {
			d.diag.ErrAt("sync error", err, offset)
		}
		return stateFatal, fatalCode(err)
	}

	d.tracker.Init()
	if offset, err := d.dec.Offset(); err == nil {
		d.logger.Debugf("synchronised at %x", offset)
	}
	return stateDecode, ipt.OK
}

// step decodes and prints one packet.
func (d *Dumper) step() (state, ipt.Err) {
	offset, err := d.dec.Offset()
	if err != nil {
		d.diag.Err("determining offset failed", err)
		return stateFatal, fatalCode(err)
	}

	p, err := d.dec.Next()
	if errors.Is(err, ipt.ErrEOS) {
		return stateDone, ipt.OK
	}
	if err != nil {
		d.diag.ErrAt("packet decoding failed", err, offset)
		return d.resync(err)
	}
	if p.Size == 0 {
		d.diag.MsgAt("packet decoding failed, packet size is reported to be 0", offset)
		return d.resync(ipt.ErrBadPacket)
	}

	if e := d.render(&p, offset); e != nil {
		d.diag.Report(e)
		return d.resync(e)
	}
	return stateDecode, ipt.OK
}

func (d *Dumper) resync(err error) (state, ipt.Err) {
	d.lastErr = err

	from := "none"
	if sr, ok := d.dec.(syncReporter); ok {
		if off, serr := sr.SyncOffset(); serr == nil {
			from = fmt.Sprintf("%x", off)
		}
	}
	d.logger.Debug("resynchronising", "err", err, "last_sync", from)
	return stateSync, ipt.OK
}

// fatalCode maps a fatal error to a non-zero status.
func fatalCode(err error) ipt.Err {
	if code := ipt.Code(err); code != ipt.OK {
		return code
	}
	return ipt.ErrInternal
}
