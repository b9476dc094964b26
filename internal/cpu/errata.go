package cpu

// Errata lists the Intel PT errata that affect decoding on a given cpu.
type Errata struct {
	BDM70  bool // Intel PT packets may be dropped after a PSB+ when tracing is disabled.
	BDM64  bool // An incorrect LBR or Intel PT record may follow TSX abort.
	SKD007 bool // Intel PT buffer overflow may result in incorrect packets.
	SKD022 bool // VM entry that clears TraceEn may generate a FUP.
	SKD010 bool // Intel PT FUP may be dropped after OVF.
	SKL014 bool // Intel PT TIP.PGD may not have target IP payload.
}

// Any reports whether at least one erratum applies.
func (e Errata) Any() bool {
	return e != Errata{}
}

// ErrataFor derives the errata that apply to c.
func ErrataFor(c CPU) Errata {
	var e Errata
	if c.Vendor != VendorIntel || c.Family != 6 {
		return e
	}

	switch c.Model {
	case 0x3d, 0x47, 0x4f, 0x56:
		e.BDM70 = true
		e.BDM64 = true
	case 0x4e, 0x5e, 0x8e, 0x9e:
		e.BDM70 = true
		e.SKD007 = true
		e.SKD022 = true
		e.SKD010 = true
		e.SKL014 = true
	}
	return e
}
