// Package cpu describes the processor a trace was recorded on.
//
// The decoder needs the identity of the tracing CPU to know which errata
// apply to the packet stream. It can be given on the command line as
// family/model[/stepping], detected from the host, or left empty to
// decode strictly according to the architecture specification.
package cpu

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/klauspost/cpuid/v2"

	"github.com/evenbily/processor-trace/internal/ipt"
)

// Vendor identifies the CPU manufacturer.
type Vendor uint8

const (
	VendorUnknown Vendor = iota
	VendorIntel
)

func (v Vendor) String() string {
	switch v {
	case VendorIntel:
		return "intel"
	default:
		return "unknown"
	}
}

// CPU is a processor identity. The zero value means "no particular cpu".
type CPU struct {
	Vendor   Vendor
	Family   uint16
	Model    uint8
	Stepping uint8
}

// IsZero reports whether c names no cpu.
func (c CPU) IsZero() bool {
	return c == CPU{}
}

func (c CPU) String() string {
	if c.IsZero() {
		return "none"
	}
	return fmt.Sprintf("%s %d/%d/%d", c.Vendor, c.Family, c.Model, c.Stepping)
}

// Parse reads a cpu given as family/model[/stepping].
//
// Fields accept decimal, or hex and octal with the usual Go prefixes.
// The vendor is always Intel.
func Parse(s string) (CPU, error) {
	fields := strings.Split(s, "/")
	if len(fields) < 2 || len(fields) > 3 {
		return CPU{}, ipt.ErrInvalid
	}

	family, err := strconv.ParseUint(fields[0], 0, 16)
	if err != nil || family == 0 {
		return CPU{}, ipt.ErrInvalid
	}
	model, err := strconv.ParseUint(fields[1], 0, 8)
	if err != nil {
		return CPU{}, ipt.ErrInvalid
	}

	c := CPU{
		Vendor: VendorIntel,
		Family: uint16(family),
		Model:  uint8(model),
	}

	if len(fields) == 3 {
		stepping, err := strconv.ParseUint(fields[2], 0, 8)
		if err != nil {
			return CPU{}, ipt.ErrInvalid
		}
		c.Stepping = uint8(stepping)
	}
	return c, nil
}

// Auto returns the identity of the cpu we are running on.
func Auto() (CPU, error) {
	host := cpuid.CPU
	if host.Family == 0 {
		return CPU{}, ipt.ErrNotSupported
	}

	c := CPU{
		Family:   uint16(host.Family),
		Model:    uint8(host.Model),
		Stepping: uint8(host.Stepping),
	}
	if host.VendorID == cpuid.Intel {
		c.Vendor = VendorIntel
	}
	return c, nil
}
