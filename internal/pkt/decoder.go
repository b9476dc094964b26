package pkt

import (
	"bytes"

	"github.com/evenbily/processor-trace/internal/cpu"
	"github.com/evenbily/processor-trace/internal/ipt"
)

const (
	opcPad    = 0x00
	opcExt    = 0x02
	opcTSC    = 0x19
	opcMTC    = 0x59
	opcMode   = 0x99
	opcTIP    = 0x0d
	opcTIPPGE = 0x11
	opcTIPPGD = 0x01
	opcFUP    = 0x1d

	opmTIP = 0x1f // low bits select the ip packet
	opmCYC = 0x03
	opcCYC = 0x03

	extPSB    = 0x82
	extPSBEnd = 0x23
	extTNT64  = 0xa3
	extPIP    = 0x43
	extCBR    = 0x03
	extTMA    = 0x73
	extVMCS   = 0xc8
	extOVF    = 0xf3
	extMNT    = 0xc3
	extStop   = 0x83

	ext2MNT = 0x88

	psbSize = 16
)

var psbPattern = bytes.Repeat([]byte{opcExt, extPSB}, psbSize/2)

// Config describes the trace buffer and the cpu it was recorded on.
type Config struct {
	Buf    []byte
	CPU    cpu.CPU
	Errata cpu.Errata
}

// NewConfig returns a configuration for buf using the host cpu.
func NewConfig(buf []byte) *Config {
	c := &Config{Buf: buf}
	if host, err := cpu.Auto(); err == nil {
		c.CPU = host
	}
	return c
}

// Decoder walks a trace buffer packet by packet.
//
// A new decoder is not synchronised; SyncForward must succeed before Next
// and Offset can be used.
type Decoder struct {
	cfg    Config
	pos    int
	sync   int
	psbEnd int // end of the last PSB seen
	synced bool
}

// NewDecoder creates a packet decoder for cfg.
//
// The errata in cfg are recomputed from cfg.CPU.
func NewDecoder(cfg *Config) (*Decoder, error) {
	if cfg == nil || len(cfg.Buf) == 0 {
		return nil, ipt.ErrInvalid
	}
	d := &Decoder{cfg: *cfg}
	d.cfg.Errata = cpu.ErrataFor(d.cfg.CPU)
	return d, nil
}

// Config returns the decoder's configuration.
func (d *Decoder) Config() *Config {
	return &d.cfg
}

// SyncForward moves to the next PSB.
//
// The search starts up to one PSB before the current position, so that a
// PSB partly consumed by a corrupt packet is still found. It never goes
// back into the last PSB decoded, which skips the sync point the decoder
// currently sits on.
func (d *Decoder) SyncForward() error {
	start := 0
	if d.synced {
		start = max(d.pos-(psbSize-1), d.psbEnd)
	}
	if start >= len(d.cfg.Buf) {
		return ipt.ErrEOS
	}

	idx := bytes.Index(d.cfg.Buf[start:], psbPattern)
	if idx < 0 {
		return ipt.ErrEOS
	}
	d.sync = start + idx
	d.pos = d.sync
	d.psbEnd = d.sync + psbSize
	d.synced = true
	return nil
}

// Offset returns the current position in the trace buffer.
func (d *Decoder) Offset() (uint64, error) {
	if !d.synced {
		return 0, ipt.ErrNoSync
	}
	return uint64(d.pos), nil
}

// SyncOffset returns the position of the last sync point.
func (d *Decoder) SyncOffset() (uint64, error) {
	if !d.synced {
		return 0, ipt.ErrNoSync
	}
	return uint64(d.sync), nil
}

// Next decodes the packet at the current position and advances past it.
//
// On error the position is left unchanged. A packet cut short by the end
// of the buffer is reported as ipt.ErrEOS.
func (d *Decoder) Next() (Packet, error) {
	if !d.synced {
		return Packet{}, ipt.ErrNoSync
	}
	if d.pos >= len(d.cfg.Buf) {
		return Packet{}, ipt.ErrEOS
	}

	p, err := decode(d.cfg.Buf[d.pos:])
	if err != nil {
		return Packet{}, err
	}
	d.pos += int(p.Size)
	if p.Type == PktPSB {
		d.psbEnd = d.pos
	}
	return p, nil
}
