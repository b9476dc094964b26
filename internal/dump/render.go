package dump

import (
	"errors"
	"strings"

	"github.com/evenbily/processor-trace/internal/ipt"
	"github.com/evenbily/processor-trace/internal/lastip"
	"github.com/evenbily/processor-trace/internal/pkt"
)

// line tracks the characters written to each column of the current line.
type line struct {
	packetType int
	payload    int
}

// render prints one packet line. On failure the rest of the line is
// dropped and the returned error describes what went wrong.
func (d *Dumper) render(p *pkt.Packet, offset uint64) *ipt.Error {
	if p.Type == pkt.PktPad && d.opts.NoPad {
		return nil
	}

	var used line

	if d.opts.ShowOffset {
		n, err := d.out.Print("%0*x", d.offsetWidth, offset)
		if err != nil {
			return internalAt(offset, "cannot print offset")
		}
		if err := d.out.EndColumn(n, d.offsetWidth); err != nil {
			return internalAt(offset, "cannot print offset")
		}
	}

	n, err := d.out.Print("%s", p.Name())
	if err != nil {
		return internalAt(offset, "cannot print packet type")
	}
	used.packetType = n

	payload, err := p.Payload()
	if err != nil {
		return internalAt(offset, "cannot print packet payload")
	}
	if payload != "" {
		if err := d.out.EndColumn(used.packetType, PacketTypeWidth); err != nil {
			return internalAt(offset, "cannot print packet payload")
		}
		n, err := d.out.Print("%s", payload)
		if err != nil {
			return internalAt(offset, "cannot print packet payload")
		}
		used.payload = n
	}

	if d.opts.ShowLastIP && p.HasIP() {
		n, e := d.renderLastIP(p, offset)
		if e != nil {
			return e
		}
		used.payload += n
	}

	if d.opts.ShowRawBytes {
		if e := d.renderRaw(p, offset, used); e != nil {
			return e
		}
	}

	if err := d.out.Newline(); err != nil {
		return internalAt(offset, "cannot print packet")
	}
	return nil
}

// renderLastIP feeds the packet's ip payload to the tracker and prints the
// resulting last ip. It returns the number of characters written.
func (d *Dumper) renderLastIP(p *pkt.Packet, offset uint64) (int, *ipt.Error) {
	err := d.tracker.Update(&p.IP)
	switch {
	case err == nil:
	case errors.Is(err, ipt.ErrNoIP):
		return 0, nil
	case errors.Is(err, ipt.ErrBadPacket):
		return 0, ipt.NewErrorAt(ipt.ErrBadPacket, offset, "failed to update last-IP").
			WithReason(ipt.ErrBadPacket)
	default:
		return 0, internalAt(offset, "failed to update last-IP").WithReason(ipt.Code(err))
	}

	ip, outcome, err := d.tracker.Query()
	if err != nil {
		return 0, internalAt(offset, "cannot query last-IP").WithReason(ipt.Code(err))
	}

	var n int
	switch outcome {
	case lastip.NoIP:
		return 0, nil
	case lastip.Suppressed:
		n, err = d.out.Print(", ip=<suppressed>")
	case lastip.Resolved:
		n, err = d.out.Print(", ip=0x%016x", ip)
	default:
		return 0, internalAt(offset, "cannot query last-IP").WithReason(ipt.ErrInternal)
	}
	if err != nil {
		return 0, internalAt(offset, "cannot print last-IP")
	}
	return n, nil
}

// renderRaw prints the packet bytes as "[xx xx ...]".
func (d *Dumper) renderRaw(p *pkt.Packet, offset uint64, used line) *ipt.Error {
	end := offset + uint64(p.Size)
	if end > uint64(len(d.buf)) || end < offset {
		return internalAt(offset, "cannot print raw bytes")
	}

	// The payload column was skipped; close the type column first.
	if used.payload == 0 {
		if err := d.out.EndColumn(used.packetType, PacketTypeWidth); err != nil {
			return internalAt(offset, "cannot print raw bytes")
		}
	}
	if err := d.out.EndColumn(used.payload, PayloadWidth); err != nil {
		return internalAt(offset, "cannot print raw bytes")
	}

	if _, err := d.out.Print("%s", hexBytes(d.buf[offset:end])); err != nil {
		return internalAt(offset, "cannot print raw bytes")
	}
	return nil
}

func hexBytes(raw []byte) string {
	const digits = "0123456789abcdef"

	var sb strings.Builder
	sb.Grow(3*len(raw) + 1)
	sb.WriteByte('[')
	for i, b := range raw {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(digits[b>>4])
		sb.WriteByte(digits[b&0x0f])
	}
	sb.WriteByte(']')
	return sb.String()
}

func internalAt(offset uint64, msg string) *ipt.Error {
	return ipt.NewErrorAt(ipt.ErrInternal, offset, msg)
}
