package entangler

// Heralder compares a per-channel trigger vector against up to NumPatterns
// enabled patterns.
type Heralder struct {
	Patterns   [NumPatterns]uint8 // each NumChannels bits wide
	PatternEns uint8              // bit i enables Patterns[i]

	Matches uint8 // bit i = Patterns[i] == last evaluated trigger vector
	Herald  bool
}

// Eval is purely combinational: it does not depend on the clock, only on
// the current trigger vector and the current pattern registers.
func (h *Heralder) Eval(trigger uint8) {
	var matches uint8
	for i, p := range h.Patterns {
		if p == trigger {
			matches |= 1 << uint(i)
		}
	}
	h.Matches = matches
	h.Herald = (h.PatternEns & matches) != 0
}
