package hostbus

import (
	"encoding/binary"
	"fmt"

	"periph.io/x/periph/conn/mmr"

	"github.com/oxionics/entangler-core/regfile"
)

// Result is the outcome of a completed run, decoded from the completion
// event's data per spec §6.
type Result struct {
	// Matches is the herald pattern-match bitmask on success; zero on
	// timeout.
	Matches uint8
	// TimedOut is true if the run ended by timeout rather than a herald
	// match.
	TimedOut bool
}

// Client drives one entangler device's register interface, grounded on
// entangler/driver.py's Entangler kernel driver: Configure, set timings, set
// cycle length, set heralds, enable, run, await, disable.
type Client struct {
	Dev   mmr.Dev8
	Bus   *Bus
	Clock Clock
}

// NewClient wraps bus in an mmr.Dev8 register client.
func NewClient(bus *Bus) *Client {
	return &Client{
		Dev:   mmr.Dev8{Conn: bus, Order: binary.BigEndian},
		Bus:   bus,
		Clock: NewClock(),
	}
}

// Configure writes the CONFIG register.
func (c *Client) Configure(enable, isMaster, standalone bool) error {
	var v uint32
	if enable {
		v |= regfile.ConfigEnable
	}
	if isMaster {
		v |= regfile.ConfigIsMaster
	}
	if standalone {
		v |= regfile.ConfigStandalone
	}
	return c.Dev.WriteUint32(regfile.AddrConfig, v)
}

// SetSequencerTiming sets output channel ch's start/stop timing, in coarse
// clocks relative to the start of the cycle.
func (c *Client) SetSequencerTiming(ch int, start, stop uint32) error {
	if ch < 0 || ch >= 4 {
		return fmt.Errorf("hostbus: sequencer channel %d out of range", ch)
	}
	return c.Dev.WriteUint32(regfile.AddrSeqTimingBase+uint8(ch), pack14(start, stop))
}

// SetGateTiming sets gater channel ch's window relative to the reference
// edge, in fine units.
func (c *Client) SetGateTiming(ch int, start, stop uint32) error {
	if ch < 0 || ch >= 4 {
		return fmt.Errorf("hostbus: gater channel %d out of range", ch)
	}
	return c.Dev.WriteUint32(regfile.AddrGateTimingBase+uint8(ch), pack14(start, stop))
}

// SetCycleLength sets the entanglement cycle length in coarse clocks.
func (c *Client) SetCycleLength(clocks uint32) error {
	return c.Dev.WriteUint32(regfile.AddrTCycle, clocks)
}

// SetHeralds sets the pattern-match set that ends a run successfully.
// patterns holds up to four 4-bit values; each is enabled.
func (c *Client) SetHeralds(patterns ...uint8) error {
	return c.Dev.WriteUint32(regfile.AddrHerald, packPatterns(patterns))
}

// SetPatternSet configures pattern counter idx's four match patterns.
func (c *Client) SetPatternSet(idx int, patterns ...uint8) error {
	if idx < 0 || idx >= 4 {
		return fmt.Errorf("hostbus: pattern counter %d out of range", idx)
	}
	return c.Dev.WriteUint32(regfile.AddrPatternSetBase+uint8(idx), packPatterns(patterns))
}

// Run strobes a run for up to timeoutClocks clocks and blocks until the core
// completes. budget bounds how many simulated clocks RunAndAwait will spend
// before giving up; pass 0 to use a generous default.
func (c *Client) Run(timeoutClocks uint32, budget uint64) (Result, error) {
	if budget == 0 {
		budget = uint64(timeoutClocks)*2 + 1000
	}
	event, err := c.Bus.RunAndAwait(timeoutClocks, budget)
	if err != nil {
		return Result{}, err
	}
	if event.Data == regfile.TimeoutSentinel {
		return Result{TimedOut: true}, nil
	}
	return Result{Matches: uint8(event.Data)}, nil
}

// Status reads the STATUS register.
func (c *Client) Status() (ready, success, timeout bool, err error) {
	v, err := c.Dev.ReadUint32(regfile.AddrStatus)
	if err != nil {
		return false, false, false, err
	}
	return v&regfile.StatusReady != 0, v&regfile.StatusSuccess != 0, v&regfile.StatusTimeout != 0, nil
}

// NCycles reads the number of attempts completed since the last run.
func (c *Client) NCycles() (uint32, error) { return c.Dev.ReadUint32(regfile.AddrNCycles) }

// NTriggers reads the number of attempts since the last run strobe in which
// gater 0 saw a reference edge (several edges in one attempt count once).
func (c *Client) NTriggers() (uint32, error) { return c.Dev.ReadUint32(regfile.AddrNTriggers) }

// TimeRemaining reads the countdown register.
func (c *Client) TimeRemaining() (uint32, error) { return c.Dev.ReadUint32(regfile.AddrTimeRemaining) }

// SingleCount reads single-channel counter ch.
func (c *Client) SingleCount(ch int) (uint32, error) {
	return c.Dev.ReadUint32(regfile.AddrCountSingleBase + uint8(ch))
}

// PatternCount reads pattern counter idx.
func (c *Client) PatternCount(idx int) (uint32, error) {
	return c.Dev.ReadUint32(regfile.AddrCountPatternBase + uint8(idx))
}

func pack14(start, stop uint32) uint32 {
	const mask = 0x3FFF
	return ((stop & mask) << 16) | (start & mask)
}

func packPatterns(patterns []uint8) uint32 {
	var v uint32
	for i, p := range patterns {
		if i >= 4 {
			break
		}
		v |= uint32(p&0xF) << uint(4*i)
		v |= 1 << uint(16+i)
	}
	return v
}
