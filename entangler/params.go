// Package entangler implements the synchronous core of a two-node
// remote-entanglement sequencer: the per-attempt time cursor, output pulse
// sequencers, photon-input gaters, herald comparator, and event counters
// that a register-mapped host interface drives.
package entangler

// Widths are fixed at build time, as in the reference hardware. Changing
// them changes the wire format in regfile and hostbus too.
const (
	// MWidth is the bit width of the global cycle-relative counter m.
	MWidth = 11

	// FineWidth is the number of fractional bits the input deserializer
	// appends below the coarse clock, i.e. 1 fine unit = 1 clock / 2^FineWidth.
	FineWidth = 3

	// NumChannels is the number of sequencer/gater channels. Fixed: no
	// runtime reconfiguration of channel count is supported.
	NumChannels = 4

	// NumPatterns is the number of herald/pattern-counter slots per bank.
	NumPatterns = 4

	// TimestampWidth is the width of a coarse+fine timestamp (m concatenated
	// with a FineWidth-bit fraction).
	TimestampWidth = MWidth + FineWidth

	// MinGateStart is the minimum effective gate_start, in fine units, so
	// that the gate window never starts before the pipeline has produced the
	// reference timestamp (one coarse clock of latency).
	MinGateStart = 1 << FineWidth

	// TimeoutSentinel is the completion-event datum reported when a run
	// finished by timing out rather than by a herald match.
	TimeoutSentinel = 0x3FFF

	// MMax is the largest value the cycle-relative counter m can hold.
	MMax = (1 << MWidth) - 1

	// TimingFieldWidth is the width of the start/stop half of a packed
	// timing register (SEQ_TIMING / GATE_TIMING), per the host truncation
	// rule in spec §4.F / §7.
	TimingFieldWidth = 14
	TimingFieldMask  = (1 << TimingFieldWidth) - 1
)
