package pkt

// StreamBuilder assembles an Intel PT byte stream for tests.
type StreamBuilder struct {
	data []byte
}

func (b *StreamBuilder) Bytes() []byte { return b.data }

func (b *StreamBuilder) AddBytes(v ...byte) {
	b.data = append(b.data, v...)
}

func (b *StreamBuilder) AddPSB() {
	b.AddBytes(psbPattern...)
}

func (b *StreamBuilder) AddPSBEnd() { b.AddBytes(opcExt, extPSBEnd) }
func (b *StreamBuilder) AddPad()    { b.AddBytes(opcPad) }
func (b *StreamBuilder) AddOVF()    { b.AddBytes(opcExt, extOVF) }

func (b *StreamBuilder) AddIP(opc byte, ipc IPC, ip uint64) {
	b.AddBytes(byte(ipc)<<5 | opc)
	b.addLE(ip, ipc.Size())
}

func (b *StreamBuilder) AddTSC(tsc uint64) {
	b.AddBytes(opcTSC)
	b.addLE(tsc, 7)
}

func (b *StreamBuilder) AddModeExec(csl, csd bool) {
	var pl byte
	if csl {
		pl |= 0x01
	}
	if csd {
		pl |= 0x02
	}
	b.AddBytes(opcMode, pl)
}

func (b *StreamBuilder) addLE(v uint64, n int) {
	for i := 0; i < n; i++ {
		b.AddBytes(byte(v >> (8 * i)))
	}
}
