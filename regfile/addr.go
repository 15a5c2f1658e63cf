package regfile

// Register addresses, 6 bits wide. The top bit selects write (0) or read (1),
// matching the rtlink address decode in entangler/driver.py.
const (
	AddrConfig  uint8 = 0x00
	AddrRun     uint8 = 0x01
	AddrTCycle  uint8 = 0x02
	AddrHerald  uint8 = 0x03

	AddrSeqTimingBase  uint8 = 0x08 // 0x08-0x0B, one per sequencer channel
	AddrGateTimingBase uint8 = 0x0C // 0x0C-0x0F, one per gater channel

	AddrPatternSetBase uint8 = 0x10 // 0x10-0x13, one per pattern counter

	AddrStatus        uint8 = 0x20
	AddrNCycles       uint8 = 0x21
	AddrTimeRemaining uint8 = 0x22
	AddrNTriggers     uint8 = 0x23

	AddrTimestampSigBase uint8 = 0x28 // 0x28-0x2B
	AddrTimestampRef     uint8 = 0x2C

	AddrCountSingleBase  uint8 = 0x30 // 0x30-0x33
	AddrCountPatternBase uint8 = 0x34 // 0x34-0x37
)

// ReadAddr reports whether addr belongs to the read (MSB=1) group.
func ReadAddr(addr uint8) bool {
	return addr&0x20 != 0
}

// Config register bits, written to address 0x00.
const (
	ConfigEnable     uint32 = 1 << 0
	ConfigIsMaster   uint32 = 1 << 1
	ConfigStandalone uint32 = 1 << 2
)

// Status register bits, read from address 0x20.
const (
	StatusReady   uint32 = 1 << 0
	StatusSuccess uint32 = 1 << 1
	StatusTimeout uint32 = 1 << 2
)

// TimeoutSentinel is the done-event data value reported on a timed-out run.
const TimeoutSentinel uint32 = 0x3FFF

// unpackPatterns extracts four 4-bit patterns and their enable bits from a
// HERALD/PATTERN_SET write, packed the way driver.py's patterns_to_reg does:
// bits[0:16] hold the four patterns, bits[16:20] their enables.
func unpackPatterns(data uint32) (patterns [4]uint8, enables uint8) {
	for i := 0; i < 4; i++ {
		patterns[i] = uint8((data >> uint(4*i)) & 0xF)
	}
	enables = uint8((data >> 16) & 0xF)
	return
}

// unpackTiming splits a timing-register write into its 14-bit start/stop
// fields: value = (stop << 16) | start.
func unpackTiming(data uint32) (start, stop uint32) {
	const mask = 0x3FFF
	return data & mask, (data >> 16) & mask
}
