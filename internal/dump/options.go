// Package dump renders a decoded Intel PT packet stream as a column
// aligned text listing.
//
// The Dumper walks the stream with a packet decoder, prints one line per
// packet and resynchronises on the next PSB whenever a packet cannot be
// decoded, so that a partially corrupt trace still yields as much output
// as possible.
package dump

import (
	"math/bits"

	"github.com/evenbily/processor-trace/internal/cpu"
)

// Column widths, in characters.
const (
	FixedOffsetWidth = 16
	PacketTypeWidth  = 9
	PayloadWidth     = 47
)

// Options selects what a dump shows. It is built once from the command
// line and not modified afterwards.
type Options struct {
	ShowOffset       bool // print the stream offset as the first column
	ShowRawBytes     bool // print the raw packet bytes as the last column
	ShowLastIP       bool // print the last ip on packets with ip payload
	FixedOffsetWidth bool // print the offset column 16 characters wide
	Quiet            bool // print nothing but errors
	NoPad            bool // hide PAD packets

	// UseCPU overrides the host cpu with CPU when configuring the decoder.
	// The zero CPU disables all errata workarounds.
	UseCPU bool
	CPU    cpu.CPU
}

// DefaultOptions returns the options used when no flags are given.
func DefaultOptions() Options {
	return Options{
		ShowOffset: true,
		UseCPU:     true,
	}
}

// OffsetWidth returns the number of hex digits needed to print any offset
// up to highest.
func OffsetWidth(highest uint64) int {
	idx := bits.Len64(highest) - 1
	if idx < 0 {
		idx = 0
	}
	return 1 + idx/4
}
