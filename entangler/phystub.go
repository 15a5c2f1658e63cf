package entangler

// EdgeSource is a simulation/test stand-in for the deserializer front end
// spec §1 treats as an external black box: it replays a schedule of
// (coarse, fine) events and reports a PhyEdge on whichever clock matches,
// the way entangler/phy.py's MockPhy drives a gater from a single
// fine-absolute event time in the Python test suite.
type EdgeSource struct {
	// Events are fine-absolute times (coarse*2^FineWidth + fine) at which a
	// rising edge should be reported.
	Events []uint32
	next   int
}

// NewEdgeSource builds a source that fires at the given fine-absolute
// times, which must be supplied in non-decreasing order.
func NewEdgeSource(times ...uint32) *EdgeSource {
	return &EdgeSource{Events: times}
}

// Step returns this clock's PhyEdge, consuming the next scheduled event if
// its coarse clock matches m. Multiple events sharing one coarse clock
// collapse to a single strobe carrying the first one's fine offset, since a
// real deserializer reports at most one edge per clock.
func (s *EdgeSource) Step(m uint16) PhyEdge {
	if s.next >= len(s.Events) {
		return PhyEdge{}
	}
	t := s.Events[s.next]
	coarse := uint16(t >> FineWidth)
	if coarse != m {
		return PhyEdge{}
	}
	fine := uint8(t & ((1 << FineWidth) - 1))
	s.next++
	for s.next < len(s.Events) && uint16(s.Events[s.next]>>FineWidth) == m {
		s.next++
	}
	return PhyEdge{StbRising: true, FineTS: fine}
}

// Reset rewinds the source to replay its schedule again, for use across
// multiple attempts in a simulated run.
func (s *EdgeSource) Reset() { s.next = 0 }
