package hostbus

import (
	"time"

	"periph.io/x/periph/conn/physic"
)

// Clock converts between wall-clock durations and the core's coarse clock
// units, the way driver.py's seconds_to_mu/coarse_ref_period does for the
// ARTIQ RTIO timeline.
type Clock struct {
	// CoarseFrequency is the core's system clock rate. The reference design
	// runs at 125MHz (8ns coarse clocks).
	CoarseFrequency physic.Frequency
}

// NewClock returns a Clock at the reference design's 125MHz coarse rate.
func NewClock() Clock {
	return Clock{CoarseFrequency: 125 * physic.MegaHertz}
}

// CoarsePeriod is the duration of one coarse clock.
func (c Clock) CoarsePeriod() time.Duration {
	return c.CoarseFrequency.Duration()
}

// ClocksFor truncates d to a whole number of coarse clocks.
func (c Clock) ClocksFor(d time.Duration) uint32 {
	period := c.CoarsePeriod()
	if period <= 0 {
		return 0
	}
	return uint32(d / period)
}

// Duration returns the wall-clock duration of n coarse clocks.
func (c Clock) Duration(n uint32) time.Duration {
	return time.Duration(n) * c.CoarsePeriod()
}
