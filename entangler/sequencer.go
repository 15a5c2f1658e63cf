package entangler

// Sequencer pulses Output high between two values of the shared counter m.
//
// MStart/MStop give the values of m (assumed monotonically increasing within
// an attempt) between which Output is active. Clear deasserts Output
// irrespective of the configured edges.
type Sequencer struct {
	MStart uint16 // truncated to TimingFieldWidth bits on write
	MStop  uint16

	Output   bool
	StbStart bool
	StbStop  bool
}

// SetTiming packs a host timing write: both fields are truncated to
// TimingFieldWidth bits, matching the wire encoding of SEQ_TIMING registers.
func (s *Sequencer) SetTiming(start, stop uint32) {
	s.MStart = uint16(start) & TimingFieldMask
	s.MStop = uint16(stop) & TimingFieldMask
}

// Step advances the sequencer by one clock given the current value of m and
// whether clear is asserted this clock. Priority order, per spec §4.A:
// clear, then start-strobe, then stop-strobe. A stop strobe that coincides
// with a start strobe is applied on the following clock, so MStart == MStop
// gives a one-clock pulse.
func (s *Sequencer) Step(m uint16, clear bool) {
	stopPending := s.StbStart && s.StbStop
	s.StbStart = m == s.MStart
	s.StbStop = m == s.MStop

	switch {
	case clear:
		s.Output = false
	case s.StbStart:
		s.Output = true
	case s.StbStop || stopPending:
		s.Output = false
	}
}
