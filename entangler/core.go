package entangler

// Core wires components A–E into the per-clock step function the register
// file and host drive. Each field group corresponds to one row of the
// component table in spec §2.
type Core struct {
	SM StateMachine

	Sequencers [NumChannels]Sequencer
	Gaters     [NumChannels]Gater
	Heralder   Heralder

	SingleCounters [NumChannels]SingleChannelCounter
	PatternCounters [NumChannels]PatternCounter

	Enable bool

	// TriggerVector is the latched per-channel Triggered bits, valid after
	// Step; bit i corresponds to Gaters[i].
	TriggerVector uint8
}

// NewCore returns a Core with its single-channel counters wired to the
// channel index they watch, as entangler/core.py's EntanglerCore wires one
// SingleChannelCounter per gater index.
func NewCore() *Core {
	c := &Core{}
	for i := range c.SingleCounters {
		c.SingleCounters[i] = *NewSingleChannelCounter(uint(i))
	}
	return c
}

// Inputs bundles one clock's worth of inputs external to the core: the two
// PhyEdge streams per channel (reference and signal) and the raw
// inter-device link signals.
type Inputs struct {
	Ref [NumChannels]PhyEdge
	Sig [NumChannels]PhyEdge
	Link LinkInputs
}

// Outputs bundles one clock's worth of core outputs that the register
// interface and link buffers need.
type Outputs struct {
	SequencerOutputs [NumChannels]bool
	Link             LinkOutputs
	DoneStb          bool
	Success          bool
	Timeout          bool
}

// Step advances every component by one clock, in the dependency order
// required by spec §5: cycle_starting precedes sequencer/gater updates,
// which precede the herald comparison, which precedes the state machine's
// own transition (which may itself assert a new cycle_starting for the
// *next* clock), which precedes counter updates.
//
// runStb, if true, starts a new run this clock (time_remaining reload,
// counter/cycle reset); it must be pulsed for exactly one Step call.
func (c *Core) Step(in Inputs, runStb bool) Outputs {
	clear := c.SM.State == StateIdle
	m := c.SM.M

	for i := range c.Sequencers {
		c.Sequencers[i].Step(m, clear)
	}
	for i := range c.Gaters {
		c.Gaters[i].Step(m, in.Ref[i], in.Sig[i], clear)
	}

	var trigger uint8
	for i := range c.Gaters {
		if c.Gaters[i].Triggered {
			trigger |= 1 << uint(i)
		}
	}
	c.TriggerVector = trigger
	c.Heralder.Eval(trigger)

	gotRefBefore := c.Gaters[0].GotRef

	c.SM.RunStb = runStb
	c.SM.Step(in.Link, c.Heralder.Herald)

	for i := range c.SingleCounters {
		c.SingleCounters[i].Step(trigger, c.SM.CycleEnding)
	}
	for i := range c.PatternCounters {
		c.PatternCounters[i].Step(trigger, c.SM.CycleEnding)
	}

	if runStb {
		c.SM.TriggersReceived = 0
		for i := range c.SingleCounters {
			c.SingleCounters[i].Reset()
		}
		for i := range c.PatternCounters {
			c.PatternCounters[i].Reset()
		}
	} else if c.SM.CycleEnding && gotRefBefore {
		c.SM.TriggersReceived++
	}

	var out Outputs
	for i := range c.Sequencers {
		out.SequencerOutputs[i] = c.Sequencers[i].Output
	}
	out.Link = LinkOutputs{TriggerOut: c.SM.TriggerOut}
	out.DoneStb = c.SM.DoneStb
	out.Success = c.SM.Success
	out.Timeout = c.SM.Timeout
	return out
}
