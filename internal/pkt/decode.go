package pkt

import (
	"bytes"
	"math/bits"

	"github.com/evenbily/processor-trace/internal/ipt"
)

// decode reads one packet from the start of b.
func decode(b []byte) (Packet, error) {
	hdr := b[0]

	switch hdr {
	case opcPad:
		return Packet{Type: PktPad, Size: 1}, nil
	case opcExt:
		return decodeExt(b)
	case opcTSC:
		return decodeTSC(b)
	case opcMTC:
		return decodeMTC(b)
	case opcMode:
		return decodeMode(b)
	}

	if hdr&0x01 == 0 {
		return decodeTNT8(hdr)
	}
	if hdr&opmCYC == opcCYC {
		return decodeCYC(b)
	}

	switch hdr & opmTIP {
	case opcTIP:
		return decodeIP(b, PktTIP)
	case opcTIPPGE:
		return decodeIP(b, PktTIPPGE)
	case opcTIPPGD:
		return decodeIP(b, PktTIPPGD)
	case opcFUP:
		return decodeIP(b, PktFUP)
	}
	return Packet{}, ipt.ErrBadOpc
}

func decodeExt(b []byte) (Packet, error) {
	if len(b) < 2 {
		return Packet{}, ipt.ErrEOS
	}

	switch b[1] {
	case extPSB:
		if len(b) < psbSize {
			return Packet{}, ipt.ErrEOS
		}
		if !bytes.Equal(b[:psbSize], psbPattern) {
			return Packet{}, ipt.ErrBadPacket
		}
		return Packet{Type: PktPSB, Size: psbSize}, nil
	case extPSBEnd:
		return Packet{Type: PktPSBEnd, Size: 2}, nil
	case extOVF:
		return Packet{Type: PktOVF, Size: 2}, nil
	case extStop:
		return Packet{Type: PktStop, Size: 2}, nil
	case extTNT64:
		return decodeTNT64(b)
	case extPIP:
		return decodePIP(b)
	case extCBR:
		if len(b) < 4 {
			return Packet{}, ipt.ErrEOS
		}
		return Packet{Type: PktCBR, Size: 4, CBR: b[2]}, nil
	case extTMA:
		if len(b) < 7 {
			return Packet{}, ipt.ErrEOS
		}
		return Packet{
			Type: PktTMA,
			Size: 7,
			TMA: TMA{
				CTC: uint16(readLE(b[2:4])),
				FC:  uint16(b[5]) | uint16(b[6]&0x01)<<8,
			},
		}, nil
	case extVMCS:
		if len(b) < 7 {
			return Packet{}, ipt.ErrEOS
		}
		return Packet{Type: PktVMCS, Size: 7, VMCS: readLE(b[2:7]) << 12}, nil
	case extMNT:
		if len(b) < 3 {
			return Packet{}, ipt.ErrEOS
		}
		if b[2] != ext2MNT {
			return Packet{}, ipt.ErrBadOpc
		}
		if len(b) < 11 {
			return Packet{}, ipt.ErrEOS
		}
		return Packet{Type: PktMNT, Size: 11, MNT: readLE(b[3:11])}, nil
	}
	return Packet{}, ipt.ErrBadOpc
}

func decodeTNT8(hdr byte) (Packet, error) {
	// bit 0 is the opcode; the highest set bit is the stop bit.
	stop := bits.Len8(hdr) - 1
	if stop < 2 {
		return Packet{}, ipt.ErrBadPacket
	}
	size := uint8(stop - 1)
	payload := uint64(hdr>>1) & (uint64(1)<<size - 1)
	return Packet{Type: PktTNT8, Size: 1, TNT: TNT{BitSize: size, Payload: payload}}, nil
}

func decodeTNT64(b []byte) (Packet, error) {
	if len(b) < 8 {
		return Packet{}, ipt.ErrEOS
	}
	raw := readLE(b[2:8])
	if raw == 0 {
		return Packet{}, ipt.ErrBadPacket
	}
	size := uint8(bits.Len64(raw) - 1)
	payload := raw & (uint64(1)<<size - 1)
	return Packet{Type: PktTNT64, Size: 8, TNT: TNT{BitSize: size, Payload: payload}}, nil
}

func decodeIP(b []byte, typ Type) (Packet, error) {
	ipc := IPC(b[0] >> 5)
	n := ipc.Size()
	if n < 0 {
		return Packet{}, ipt.ErrBadPacket
	}
	if len(b) < 1+n {
		return Packet{}, ipt.ErrEOS
	}
	return Packet{
		Type: typ,
		Size: uint8(1 + n),
		IP:   IP{IPC: ipc, IP: readLE(b[1 : 1+n])},
	}, nil
}

func decodeMode(b []byte) (Packet, error) {
	if len(b) < 2 {
		return Packet{}, ipt.ErrEOS
	}
	pl := b[1]
	m := Mode{Leaf: ModeLeaf(pl >> 5)}

	switch m.Leaf {
	case ModeExec:
		m.CSL = pl&0x01 != 0
		m.CSD = pl&0x02 != 0
	case ModeTSX:
		m.InTX = pl&0x01 != 0
		m.Abort = pl&0x02 != 0
	default:
		return Packet{}, ipt.ErrBadPacket
	}
	return Packet{Type: PktMode, Size: 2, Mode: m}, nil
}

func decodePIP(b []byte) (Packet, error) {
	if len(b) < 8 {
		return Packet{}, ipt.ErrEOS
	}
	raw := readLE(b[2:8])
	return Packet{
		Type: PktPIP,
		Size: 8,
		PIP:  PIP{CR3: (raw >> 1) << 5, NR: raw&0x01 != 0},
	}, nil
}

func decodeTSC(b []byte) (Packet, error) {
	if len(b) < 8 {
		return Packet{}, ipt.ErrEOS
	}
	return Packet{Type: PktTSC, Size: 8, TSC: readLE(b[1:8])}, nil
}

func decodeMTC(b []byte) (Packet, error) {
	if len(b) < 2 {
		return Packet{}, ipt.ErrEOS
	}
	return Packet{Type: PktMTC, Size: 2, MTC: b[1]}, nil
}

func decodeCYC(b []byte) (Packet, error) {
	value := uint64(b[0] >> 3)
	ext := b[0]&0x04 != 0
	shift := uint(5)
	size := 1

	for ext {
		if size >= len(b) {
			return Packet{}, ipt.ErrEOS
		}
		if shift >= 64 {
			return Packet{}, ipt.ErrBadPacket
		}
		c := b[size]
		value |= uint64(c>>1) << shift
		ext = c&0x01 != 0
		shift += 7
		size++
	}
	return Packet{Type: PktCYC, Size: uint8(size), CYC: value}, nil
}

// readLE reads up to 8 bytes as a little endian value.
func readLE(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
