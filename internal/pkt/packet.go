// Package pkt decodes an Intel Processor Trace byte stream into packets.
package pkt

// Type is the Intel PT packet type.
type Type int

const (
	PktInvalid Type = iota // not a valid packet

	PktPad    // padding, no-op
	PktPSB    // packet stream boundary; the synchronisation point
	PktPSBEnd // end of the PSB+ status block
	PktFUP    // flow update, source ip of an async event
	PktTIP    // target ip of an indirect branch
	PktTIPPGE // tracing enabled, with target ip
	PktTIPPGD // tracing disabled, with target ip
	PktTNT8   // short taken/not-taken
	PktTNT64  // long taken/not-taken
	PktMode   // execution or transaction mode
	PktPIP    // paging information (cr3)
	PktTSC    // timestamp counter
	PktCBR    // core:bus ratio
	PktTMA    // mini time counter alignment
	PktMTC    // mini time counter
	PktCYC    // cycle count
	PktVMCS   // vmcs base address
	PktOVF    // internal buffer overflow
	PktMNT    // maintenance
	PktStop   // tracing stopped
)

// IPC is the ip compression of an address carrying packet.
type IPC uint8

const (
	IPCSuppressed IPC = 0 // no ip, address intentionally withheld
	IPCUpdate16   IPC = 1 // bits 15:0 replace the last ip
	IPCUpdate32   IPC = 2 // bits 31:0 replace the last ip
	IPCSext48     IPC = 3 // 48 bit ip, sign extended
	IPCUpdate48   IPC = 4 // bits 47:0 replace the last ip
	IPCFull       IPC = 6 // full 64 bit ip
)

// Size returns the number of payload bytes for ipc, or -1 if ipc is reserved.
func (c IPC) Size() int {
	switch c {
	case IPCSuppressed:
		return 0
	case IPCUpdate16:
		return 2
	case IPCUpdate32:
		return 4
	case IPCSext48, IPCUpdate48:
		return 6
	case IPCFull:
		return 8
	default:
		return -1
	}
}

// IP is the payload of TIP, TIP.PGE, TIP.PGD and FUP packets.
//
// IP holds the uncompressed payload bits as they appear in the stream.
type IP struct {
	IPC IPC
	IP  uint64
}

// TNT holds up to 47 taken/not-taken bits; the oldest branch is the most
// significant of the BitSize bits.
type TNT struct {
	BitSize uint8
	Payload uint64
}

// ModeLeaf selects the interpretation of a MODE packet.
type ModeLeaf uint8

const (
	ModeExec ModeLeaf = 0
	ModeTSX  ModeLeaf = 1
)

// Mode is the payload of a MODE packet.
type Mode struct {
	Leaf ModeLeaf

	// ModeExec
	CSL bool
	CSD bool

	// ModeTSX
	InTX  bool
	Abort bool
}

// PIP is the payload of a PIP packet.
type PIP struct {
	CR3 uint64
	NR  bool
}

// TMA is the payload of a TMA packet.
type TMA struct {
	CTC uint16
	FC  uint16
}

// Packet is one decoded trace packet.
//
// Only the payload field that matches Type is meaningful.
type Packet struct {
	Type Type
	Size uint8 // bytes consumed in the trace stream

	IP   IP
	TNT  TNT
	Mode Mode
	PIP  PIP
	TMA  TMA
	TSC  uint64
	CBR  uint8
	MTC  uint8
	CYC  uint64
	VMCS uint64
	MNT  uint64
}

// HasIP reports whether the packet carries an ip payload.
func (p *Packet) HasIP() bool {
	switch p.Type {
	case PktTIP, PktTIPPGE, PktTIPPGD, PktFUP:
		return true
	}
	return false
}
