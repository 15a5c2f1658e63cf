package entangler

// PhyEdge is one clock's worth of deserializer output: a rising-edge strobe
// plus the fine timestamp valid only on that clock. The real deserializer
// front end is out of scope (spec §1); PhyEdge is the contract a Gater
// consumes from it, and what phystub.go's simulation stand-in produces.
type PhyEdge struct {
	StbRising bool
	FineTS    uint8 // valid only when StbRising, width FineWidth bits
}

// Gater latches at most one signal edge inside a gate window computed from
// the most recent reference edge seen in an attempt; a signal edge is never
// latched before the attempt's first reference edge.
type Gater struct {
	GateStart uint16 // fine units, truncated to TimingFieldWidth bits
	GateStop  uint16

	GotRef   bool
	Triggered bool

	AbsGateStart uint32 // TimestampWidth bits
	AbsGateStop  uint32

	RefTS uint32 // valid once GotRef
	SigTS uint32 // valid once Triggered
}

// SetTiming packs a host GATE_TIMING write. A write of 0/0 disables the
// gate: GateStart is then below MinGateStart only in the degenerate case
// that the host asked for it, which simply never triggers because no
// reference edge plus offset reaches the window before the attempt ends
// that early — no special-case handling is required.
func (g *Gater) SetTiming(start, stop uint32) {
	g.GateStart = uint16(start) & TimingFieldMask
	g.GateStop = uint16(stop) & TimingFieldMask
}

// catTimestamp concatenates a coarse counter value and a fine fraction into
// a single TimestampWidth-bit timestamp: coarse in the high bits, fine in
// the low bits.
func catTimestamp(coarse uint16, fine uint8) uint32 {
	return (uint32(coarse) << FineWidth) | uint32(fine&((1<<FineWidth)-1))
}

// Step advances the gater by one clock. m is the shared cycle-relative
// counter; ref and sig are this clock's deserializer output for the
// reference and signal channels respectively.
//
// AbsGateStart/AbsGateStop/GotRef are registered outputs: triggering is
// computed from their pre-edge values, so a reference edge and a signal edge
// landing in the same clock does not let the freshly computed window gate
// that same clock's signal edge -- the window only becomes visible to
// triggering on the next Step.
func (g *Gater) Step(m uint16, ref, sig PhyEdge, clear bool) {
	tRef := catTimestamp(m, ref.FineTS)
	tSig := catTimestamp(m, sig.FineTS)

	nextGotRef := g.GotRef
	nextRefTS := g.RefTS
	nextAbsGateStart := g.AbsGateStart
	nextAbsGateStop := g.AbsGateStop
	if ref.StbRising {
		nextGotRef = true
		nextRefTS = tRef
		nextAbsGateStart = uint32(g.GateStart) + tRef
		nextAbsGateStop = uint32(g.GateStop) + tRef
	}

	triggering := g.GotRef && tSig >= g.AbsGateStart && tSig <= g.AbsGateStop
	nextTriggered := g.Triggered
	nextSigTS := g.SigTS
	if sig.StbRising && !g.Triggered && triggering {
		nextTriggered = true
		nextSigTS = tSig
	}

	if clear {
		nextGotRef = false
		nextTriggered = false
	}

	g.GotRef = nextGotRef
	g.RefTS = nextRefTS
	g.AbsGateStart = nextAbsGateStart
	g.AbsGateStop = nextAbsGateStop
	g.Triggered = nextTriggered
	g.SigTS = nextSigTS
}
