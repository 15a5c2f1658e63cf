// Package regfile implements the register-mapped command/response interface
// (spec component F) that sits between a host and an entangler.Core.
package regfile

import (
	"errors"

	"github.com/oxionics/entangler-core/entangler"
)

// ErrBadAddress is returned by Write/Read for an address outside any of the
// defined groups.
var ErrBadAddress = errors.New("regfile: bad register address")

// InputEvent is one reply the register interface schedules toward the host:
// either the datum requested by a prior read, or a run-completion event.
type InputEvent struct {
	Addr uint8
	Data uint32
	Done bool
}

// pendingWrite is a configuration/timing/herald/pattern write staged by one
// Submit call for application on the next one, so the write is visible
// starting the clock after it was issued, per spec §5.
type pendingWrite struct {
	addr uint8
	data uint32
}

// RegisterFile decodes host output events onto an entangler.Core and
// schedules the input events that result, exactly the mapping described by
// spec §4.F / §6.
type RegisterFile struct {
	Core *entangler.Core

	pending *pendingWrite
	runStb  bool
	runBuf  uint32
}

// NewRegisterFile wraps core, which must not be nil.
func NewRegisterFile(core *entangler.Core) *RegisterFile {
	return &RegisterFile{Core: core}
}

// Write decodes an output event at addr carrying data and applies it to the
// wrapped core immediately. Called directly, the change is visible to the
// very next Step; called through Submit, it is staged and applied a clock
// later (see Submit's doc comment) so it takes effect only after the clock
// it was issued on. A write to a read address, or an unrecognized address,
// returns ErrBadAddress.
func (r *RegisterFile) Write(addr uint8, data uint32) error {
	if ReadAddr(addr) {
		return ErrBadAddress
	}
	switch {
	case addr == AddrConfig:
		r.Core.Enable = data&ConfigEnable != 0
		r.Core.SM.IsMaster = data&ConfigIsMaster != 0
		r.Core.SM.Standalone = data&ConfigStandalone != 0
	case addr == AddrRun:
		r.runStb = true
		r.runBuf = data
	case addr == AddrTCycle:
		r.Core.SM.SetMEnd(data)
	case addr == AddrHerald:
		patterns, enables := unpackPatterns(data)
		r.Core.Heralder.Patterns = patterns
		r.Core.Heralder.PatternEns = enables
	case addr >= AddrSeqTimingBase && addr < AddrSeqTimingBase+entangler.NumChannels:
		start, stop := unpackTiming(data)
		r.Core.Sequencers[addr-AddrSeqTimingBase].SetTiming(start, stop)
	case addr >= AddrGateTimingBase && addr < AddrGateTimingBase+entangler.NumChannels:
		start, stop := unpackTiming(data)
		r.Core.Gaters[addr-AddrGateTimingBase].SetTiming(start, stop)
	case addr >= AddrPatternSetBase && addr < AddrPatternSetBase+entangler.NumChannels:
		patterns, _ := unpackPatterns(data)
		r.Core.PatternCounters[addr-AddrPatternSetBase].Patterns = patterns
	default:
		return ErrBadAddress
	}
	return nil
}

// writeAddrValid reports whether addr names a recognized write register,
// without touching the core -- used by Submit to validate a write before
// staging it, so a bad address is reported immediately rather than a clock
// after the fact.
func writeAddrValid(addr uint8) bool {
	switch {
	case addr == AddrConfig, addr == AddrRun, addr == AddrTCycle, addr == AddrHerald:
		return true
	case addr >= AddrSeqTimingBase && addr < AddrSeqTimingBase+entangler.NumChannels:
		return true
	case addr >= AddrGateTimingBase && addr < AddrGateTimingBase+entangler.NumChannels:
		return true
	case addr >= AddrPatternSetBase && addr < AddrPatternSetBase+entangler.NumChannels:
		return true
	default:
		return false
	}
}

// Read decodes an output event at a read address. It does not mutate the
// core; the returned datum reflects the core's state as of the last
// completed Step.
func (r *RegisterFile) Read(addr uint8) (uint32, error) {
	if !ReadAddr(addr) {
		return 0, ErrBadAddress
	}
	switch {
	case addr == AddrStatus:
		return r.status(), nil
	case addr == AddrNCycles:
		return uint32(r.Core.SM.CyclesCompleted), nil
	case addr == AddrTimeRemaining:
		return r.Core.SM.TimeRemaining, nil
	case addr == AddrNTriggers:
		return uint32(r.Core.SM.TriggersReceived), nil
	case addr >= AddrTimestampSigBase && addr < AddrTimestampSigBase+entangler.NumChannels:
		return r.Core.Gaters[addr-AddrTimestampSigBase].SigTS, nil
	case addr == AddrTimestampRef:
		return r.Core.Gaters[0].RefTS, nil
	case addr >= AddrCountSingleBase && addr < AddrCountSingleBase+entangler.NumChannels:
		return r.Core.SingleCounters[addr-AddrCountSingleBase].Count, nil
	case addr >= AddrCountPatternBase && addr < AddrCountPatternBase+entangler.NumChannels:
		return r.Core.PatternCounters[addr-AddrCountPatternBase].Count, nil
	default:
		return 0, ErrBadAddress
	}
}

func (r *RegisterFile) status() uint32 {
	var s uint32
	if r.Core.SM.Ready {
		s |= StatusReady
	}
	if r.Core.SM.Success {
		s |= StatusSuccess
	}
	if r.Core.SM.Timeout {
		s |= StatusTimeout
	}
	return s
}

// Submit applies one output event (a write, or a read request) and then
// steps the underlying core by one clock, returning any input events the
// core or the read produces this clock. At most one read is accepted per
// clock, matching spec §4.F's "undefined if host does this" note for
// overlapping commands; pass addr=nil for a clock with no host activity.
//
// A configuration/timing/herald/pattern write is staged here and only
// applied at the start of the *next* Submit call, before that call's own
// output event and before its Step -- so it takes effect the clock after it
// was issued, per spec §5, rather than the same clock the host wrote it.
// RUN is a strobe, not a registered value, and is sampled the same clock it
// is asserted, matching the rest of the state machine's strobe inputs.
func (r *RegisterFile) Submit(addr *uint8, data uint32, in entangler.Inputs) ([]InputEvent, error) {
	var events []InputEvent

	if r.pending != nil {
		pw := *r.pending
		r.pending = nil
		if err := r.Write(pw.addr, pw.data); err != nil {
			return nil, err
		}
	}

	if addr != nil {
		switch {
		case ReadAddr(*addr):
			v, err := r.Read(*addr)
			if err != nil {
				return nil, err
			}
			events = append(events, InputEvent{Addr: *addr, Data: v})
		case *addr == AddrRun:
			if err := r.Write(*addr, data); err != nil {
				return nil, err
			}
		default:
			if !writeAddrValid(*addr) {
				return nil, ErrBadAddress
			}
			r.pending = &pendingWrite{addr: *addr, data: data}
		}
	}

	runStb := r.runStb
	if runStb {
		r.Core.SM.TimeRemainingBuf = r.runBuf
	}
	r.runStb = false

	out := r.Core.Step(in, runStb)

	if out.DoneStb && r.Core.Enable {
		var d uint32
		if out.Success {
			d = uint32(r.Core.Heralder.Matches)
		} else {
			d = TimeoutSentinel
		}
		events = append(events, InputEvent{Done: true, Data: d})
	}

	return events, nil
}
