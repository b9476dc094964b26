// Package lister runs a packet dump over one trace file.
package lister

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/evenbily/processor-trace/internal/dump"
	"github.com/evenbily/processor-trace/internal/ipt"
	"github.com/evenbily/processor-trace/internal/pkt"
	"github.com/evenbily/processor-trace/internal/tracefile"
)

// ErrReadTrace is returned when the trace file cannot be loaded.
var ErrReadTrace = errors.New("failed to read PT stream")

// Config holds the settings of one dump run.
type Config struct {
	File         string
	Options      dump.Options
	OutputWriter io.Writer
	ErrorWriter  io.Writer
	Logger       *log.Logger
}

// Run dumps cfg.File and returns the dump status.
//
// The error is non-nil only if the dump could not start. The reason has
// already been reported on cfg.ErrorWriter in that case.
func Run(cfg Config) (ipt.Err, error) {
	w := cfg.OutputWriter
	if w == nil {
		w = os.Stdout
	}
	ew := cfg.ErrorWriter
	if ew == nil {
		ew = os.Stderr
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	diag := dump.NewDiag(ew)

	tf, err := tracefile.Open(cfg.File)
	if err != nil {
		logger.Debug("cannot load trace", "file", cfg.File, "err", err)
		fmt.Fprintln(ew, err)
		diag.Msg(ErrReadTrace.Error())
		return ipt.OK, fmt.Errorf("%w: %w", ErrReadTrace, err)
	}
	defer func() {
		if err := tf.Close(); err != nil {
			logger.Warn("cannot release trace", "file", cfg.File, "err", err)
		}
	}()

	buf := tf.Bytes()
	logger.Info("loaded trace", "file", cfg.File, "size", len(buf))

	pcfg := pkt.NewConfig(buf)
	if cfg.Options.UseCPU {
		pcfg.CPU = cfg.Options.CPU
	}
	logger.Debug("decoding", "cpu", pcfg.CPU)

	dec, err := pkt.NewDecoder(pcfg)
	if err != nil {
		logger.Debug("decoder rejected configuration", "err", err)
		e := ipt.NewError(ipt.ErrNoMem, "cannot allocate decoder")
		diag.Report(e)
		return e.Code, nil
	}
	if errata := dec.Config().Errata; errata.Any() {
		logger.Debug("cpu errata apply", "errata", fmt.Sprintf("%+v", errata))
	}

	opts := cfg.Options
	d := dump.New(buf, dec, &opts, w, ew)
	d.SetLogger(logger)
	logger.Debug("offset column", "width", d.OffsetWidth())

	status := d.Dump()
	if last := d.LastErr(); last != nil {
		logger.Info("dump recovered from errors", "last", last)
	}
	return status, nil
}
