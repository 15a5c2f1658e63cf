package entangler

// SingleChannelCounter increments whenever a fixed bit of the trigger vector
// is set at cycle end. It is parameterised by that bit's index at
// construction, the way the reference's SingleChannelCounter is parameterised
// by target_idx.
type SingleChannelCounter struct {
	targetBit uint
	Count     uint32
}

// NewSingleChannelCounter builds a counter watching bit index bit (0-based)
// of the trigger vector.
func NewSingleChannelCounter(bit uint) *SingleChannelCounter {
	return &SingleChannelCounter{targetBit: bit}
}

// Step increments Count by one if readStb is asserted and the watched bit is
// set in trigger. It does not saturate, matching the reference; callers that
// need saturation should check for wraparound themselves (see spec §4.D).
func (c *SingleChannelCounter) Step(trigger uint8, readStb bool) {
	if readStb && trigger&(1<<c.targetBit) != 0 {
		c.Count++
	}
}

// Reset zeroes the counter, driven by run_stb per spec §3/§4.D.
func (c *SingleChannelCounter) Reset() { c.Count = 0 }

// PatternCounter increments whenever the trigger vector matches any of its
// configured patterns at cycle end. A pattern repeated across slots still
// counts the cycle once: the match is an OR-reduction, not a sum.
type PatternCounter struct {
	Patterns [NumPatterns]uint8
	Count    uint32
}

// Step increments Count by one if readStb is asserted and trigger equals any
// configured pattern.
func (c *PatternCounter) Step(trigger uint8, readStb bool) {
	if !readStb {
		return
	}
	for _, p := range c.Patterns {
		if trigger == p {
			c.Count++
			return
		}
	}
}

// Reset zeroes the counter and clears no pattern registers: patterns persist
// across runs like any other configuration register, only the accumulator
// resets.
func (c *PatternCounter) Reset() { c.Count = 0 }
