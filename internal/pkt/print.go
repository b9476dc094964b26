package pkt

import (
	"fmt"
	"strings"

	"github.com/evenbily/processor-trace/internal/ipt"
)

// MaxPayload bounds the length of a packet's payload text.
const MaxPayload = 47

func (t Type) String() string {
	switch t {
	case PktPad:
		return "pad"
	case PktPSB:
		return "psb"
	case PktPSBEnd:
		return "psbend"
	case PktFUP:
		return "fup"
	case PktTIP:
		return "tip"
	case PktTIPPGE:
		return "tip.pge"
	case PktTIPPGD:
		return "tip.pgd"
	case PktTNT8:
		return "tnt.8"
	case PktTNT64:
		return "tnt.64"
	case PktMode:
		return "mode"
	case PktPIP:
		return "pip"
	case PktTSC:
		return "tsc"
	case PktCBR:
		return "cbr"
	case PktTMA:
		return "tma"
	case PktMTC:
		return "mtc"
	case PktCYC:
		return "cyc"
	case PktVMCS:
		return "vmcs"
	case PktOVF:
		return "ovf"
	case PktMNT:
		return "mnt"
	case PktStop:
		return "stop"
	default:
		return "invalid"
	}
}

// Name returns the packet type as shown in a dump.
//
// MODE packets are named after their leaf.
func (p *Packet) Name() string {
	if p.Type == PktMode {
		switch p.Mode.Leaf {
		case ModeExec:
			return "mode.exec"
		case ModeTSX:
			return "mode.tsx"
		}
	}
	return p.Type.String()
}

// Payload renders the packet's payload. Packets without payload render
// as the empty string.
//
// ipt.ErrInternal is returned if the text would exceed MaxPayload.
func (p *Packet) Payload() (string, error) {
	var s string

	switch p.Type {
	case PktFUP, PktTIP, PktTIPPGE, PktTIPPGD:
		s = p.IP.String()
	case PktTNT8, PktTNT64:
		s = p.TNT.String()
	case PktMode:
		s = p.Mode.String()
	case PktPIP:
		s = fmt.Sprintf("%016x", p.PIP.CR3)
		if p.PIP.NR {
			s += ", nr"
		}
	case PktTSC:
		s = fmt.Sprintf("%x", p.TSC)
	case PktCBR:
		s = fmt.Sprintf("%d", p.CBR)
	case PktTMA:
		s = fmt.Sprintf("%04x, %03x", p.TMA.CTC, p.TMA.FC)
	case PktMTC:
		s = fmt.Sprintf("%02x", p.MTC)
	case PktCYC:
		s = fmt.Sprintf("0x%x", p.CYC)
	case PktVMCS:
		s = fmt.Sprintf("%x", p.VMCS)
	case PktMNT:
		s = fmt.Sprintf("%x", p.MNT)
	}

	if len(s) > MaxPayload {
		return "", ipt.ErrInternal
	}
	return s, nil
}

func (ip IP) String() string {
	switch ip.IPC {
	case IPCSuppressed:
		return fmt.Sprintf("%02x: ????????????????", uint8(ip.IPC))
	case IPCUpdate16:
		return fmt.Sprintf("%02x: ????????????%04x", uint8(ip.IPC), ip.IP&0xffff)
	case IPCUpdate32:
		return fmt.Sprintf("%02x: ????????%08x", uint8(ip.IPC), ip.IP&0xffffffff)
	case IPCSext48:
		return fmt.Sprintf("%02x: %016x", uint8(ip.IPC), SignExtend(ip.IP, 48))
	case IPCUpdate48:
		return fmt.Sprintf("%02x: ????%012x", uint8(ip.IPC), ip.IP&0xffffffffffff)
	case IPCFull:
		return fmt.Sprintf("%02x: %016x", uint8(ip.IPC), ip.IP)
	default:
		return fmt.Sprintf("%02x: <bad ipc>", uint8(ip.IPC))
	}
}

// String renders taken branches as '!' and not-taken as '.', oldest first.
func (t TNT) String() string {
	var sb strings.Builder
	for n := t.BitSize; n > 0; n-- {
		if (t.Payload>>(n-1))&1 != 0 {
			sb.WriteByte('!')
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

func (m Mode) String() string {
	switch m.Leaf {
	case ModeExec:
		switch {
		case m.CSL && !m.CSD:
			return "64-bit"
		case !m.CSL && m.CSD:
			return "32-bit"
		case !m.CSL && !m.CSD:
			return "16-bit"
		default:
			return "unknown"
		}
	case ModeTSX:
		switch {
		case m.Abort:
			return "abrt"
		case m.InTX:
			return "intx"
		default:
			return ""
		}
	}
	return ""
}

// SignExtend sign extends the low bits of v into a 64 bit value.
func SignExtend(v uint64, bits uint) uint64 {
	shift := 64 - bits
	return uint64(int64(v<<shift) >> shift)
}
