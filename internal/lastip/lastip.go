// Package lastip reconstructs the last known instruction pointer from the
// compressed ip payloads of TIP, TIP.PGE, TIP.PGD and FUP packets.
package lastip

import (
	"github.com/evenbily/processor-trace/internal/ipt"
	"github.com/evenbily/processor-trace/internal/pkt"
)

// Outcome classifies the result of a query.
type Outcome int

const (
	NoIP       Outcome = iota // no ip has been seen since the last reset
	Suppressed                // the last ip update withheld the address
	Resolved                  // the returned ip is valid
)

func (o Outcome) String() string {
	switch o {
	case NoIP:
		return "no ip"
	case Suppressed:
		return "suppressed"
	case Resolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Tracker holds the last ip state of one synchronisation run.
type Tracker struct {
	ip         uint64
	haveIP     bool
	suppressed bool
}

// New returns an initialised tracker.
func New() *Tracker {
	return &Tracker{}
}

// Init resets the tracker. Call it after every (re)synchronisation.
func (t *Tracker) Init() {
	*t = Tracker{}
}

// Update applies a compressed ip payload.
func (t *Tracker) Update(ip *pkt.IP) error {
	if t == nil || ip == nil {
		return ipt.ErrInvalid
	}

	switch ip.IPC {
	case pkt.IPCSuppressed:
		t.suppressed = true
		return nil
	case pkt.IPCUpdate16:
		t.ip = t.ip&^0xffff | ip.IP&0xffff
	case pkt.IPCUpdate32:
		t.ip = t.ip&^0xffffffff | ip.IP&0xffffffff
	case pkt.IPCUpdate48:
		t.ip = t.ip&^0xffffffffffff | ip.IP&0xffffffffffff
	case pkt.IPCSext48:
		t.ip = pkt.SignExtend(ip.IP, 48)
	case pkt.IPCFull:
		t.ip = ip.IP
	default:
		return ipt.ErrBadPacket
	}

	t.haveIP = true
	t.suppressed = false
	return nil
}

// Query returns the last ip. The ip is only meaningful when the outcome is
// Resolved.
func (t *Tracker) Query() (uint64, Outcome, error) {
	if t == nil {
		return 0, NoIP, ipt.ErrInvalid
	}
	if !t.haveIP {
		return 0, NoIP, nil
	}
	if t.suppressed {
		return 0, Suppressed, nil
	}
	return t.ip, Resolved, nil
}
