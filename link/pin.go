// Package link drives the four inter-device synchronization signals and the
// output passthrough pads described in spec §4.G, over periph.io/x/periph's
// gpio.PinIO abstraction.
package link

import (
	"periph.io/x/periph/conn/gpio"

	"github.com/oxionics/entangler-core/entangler"
)

// SequencerIdx422ps is the output channel index whose passthrough signal is
// additionally OR'd with the slave's copy on the master side, so the shared
// pulsed-laser trigger stays usable for calibration while the core is idle.
const SequencerIdx422ps = 2

// Sync holds the four bidirectional inter-device pads: ready (slave→master)
// and trigger/success/timeout (master→slave). Only one side of each pad
// drives at a time; which side is determined by IsMaster/Standalone exactly
// as spec §4.G describes.
type Sync struct {
	Ready   gpio.PinIO
	Trigger gpio.PinIO
	Success gpio.PinIO
	Timeout gpio.PinIO
}

// Sample reads the pads this device should be listening on and returns them
// as the core's raw (unregistered) link inputs. A standalone device ignores
// its partner entirely and reports a permanently-ready slave.
func (s *Sync) Sample(isMaster, standalone bool) entangler.LinkInputs {
	if standalone {
		return entangler.LinkInputs{SlaveReadyRaw: true}
	}
	if isMaster {
		return entangler.LinkInputs{SlaveReadyRaw: s.Ready.Read() == gpio.High}
	}
	return entangler.LinkInputs{
		TriggerInRaw: s.Trigger.Read() == gpio.High,
		SuccessInRaw: s.Success.Read() == gpio.High,
		TimeoutInRaw: s.Timeout.Read() == gpio.High,
	}
}

// Drive writes this device's role-appropriate side of each pad. A device
// only drives the pads it owns: a slave drives Ready; a master drives
// Trigger/Success/Timeout. A standalone device drives neither, since it has
// no partner.
func (s *Sync) Drive(isMaster, standalone bool, out entangler.LinkOutputs, ready, success, timeout bool) error {
	if standalone {
		return nil
	}
	if isMaster {
		if err := s.Trigger.Out(gpio.Level(out.TriggerOut)); err != nil {
			return err
		}
		if err := s.Success.Out(gpio.Level(success)); err != nil {
			return err
		}
		return s.Timeout.Out(gpio.Level(timeout))
	}
	return s.Ready.Out(gpio.Level(ready))
}

// Passthrough wires the four output pads and the running pad to either the
// core's sequencer outputs (while Enable is high) or their passthrough TTL
// inputs (while disabled), per spec §4.G. OutputPads and PassthroughIns must
// both have length entangler.NumChannels; RunningPad and RunningPassthrough
// carry the fifth, "running", pad pair.
type Passthrough struct {
	OutputPads     [entangler.NumChannels]gpio.PinOut
	PassthroughIns [entangler.NumChannels]gpio.PinIn

	RunningPad         gpio.PinOut
	RunningPassthrough gpio.PinIn

	// Slave422psRaw is the slave's copy of its own SequencerIdx422ps
	// passthrough pad, received over the core link ribbon and OR'd into the
	// master's output for that channel while the core is disabled.
	Slave422psRaw gpio.PinIn
}

// Drive writes all five output pads for one clock. seqOut are the core's
// per-channel sequencer outputs (out.SequencerOutputs from Core.Step);
// running is msm.running.
func (p *Passthrough) Drive(enable, isMaster bool, seqOut [entangler.NumChannels]bool, running bool) error {
	for i, pad := range p.OutputPads {
		level := p.PassthroughIns[i].Read()
		if i == SequencerIdx422ps && isMaster && p.Slave422psRaw != nil {
			level = level || p.Slave422psRaw.Read()
		}
		if enable {
			level = gpio.Level(seqOut[i])
		}
		if err := pad.Out(gpio.Level(level)); err != nil {
			return err
		}
	}

	runLevel := p.RunningPassthrough.Read()
	if running {
		runLevel = gpio.High
	}
	return p.RunningPad.Out(runLevel)
}
