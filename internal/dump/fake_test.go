package dump

import (
	"github.com/evenbily/processor-trace/internal/ipt"
	"github.com/evenbily/processor-trace/internal/lastip"
	"github.com/evenbily/processor-trace/internal/pkt"
)

// item is one scripted decoder result.
type item struct {
	sync bool // a synchronisation point starts here
	p    pkt.Packet
	err  error // Next fails with err at this item
}

// fakeDecoder replays a script of packets and errors.
type fakeDecoder struct {
	items     []item
	offsets   []uint64
	idx       int
	synced    bool
	atSync    bool
	offsetErr error
}

func newFakeDecoder(items ...item) *fakeDecoder {
	d := &fakeDecoder{items: items}
	var off uint64
	for _, it := range items {
		d.offsets = append(d.offsets, off)
		if it.err != nil {
			off++
		} else {
			off += uint64(it.p.Size)
		}
	}
	d.offsets = append(d.offsets, off)
	return d
}

// size returns the length of the buffer the script describes.
func (d *fakeDecoder) size() int {
	return int(d.offsets[len(d.offsets)-1])
}

func (d *fakeDecoder) SyncForward() error {
	start := 0
	if d.synced {
		start = d.idx
		if d.atSync {
			start++
		}
	}
	for i := start; i < len(d.items); i++ {
		if d.items[i].sync {
			d.idx = i
			d.synced = true
			d.atSync = true
			return nil
		}
	}
	return ipt.ErrEOS
}

func (d *fakeDecoder) Offset() (uint64, error) {
	if !d.synced {
		return 0, ipt.ErrNoSync
	}
	if d.offsetErr != nil {
		return 0, d.offsetErr
	}
	return d.offsets[d.idx], nil
}

func (d *fakeDecoder) Next() (pkt.Packet, error) {
	if d.idx >= len(d.items) {
		return pkt.Packet{}, ipt.ErrEOS
	}
	it := d.items[d.idx]
	if it.err != nil {
		return pkt.Packet{}, it.err
	}
	d.idx++
	d.atSync = false
	return it.p, nil
}

// fakeTracker returns scripted last ip results.
type fakeTracker struct {
	updateErr error
	ip        uint64
	outcome   lastip.Outcome
	queryErr  error

	inits   int
	updates int
}

func (t *fakeTracker) Init() { t.inits++ }

func (t *fakeTracker) Update(ip *pkt.IP) error {
	t.updates++
	return t.updateErr
}

func (t *fakeTracker) Query() (uint64, lastip.Outcome, error) {
	return t.ip, t.outcome, t.queryErr
}
