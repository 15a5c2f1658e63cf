// Package hostbus exposes an entangler.Core, through a regfile.RegisterFile,
// as a periph.io/x/periph conn.Conn register bus, the way the reference
// design's host sees the core over RTIO.
package hostbus

import (
	"encoding/binary"
	"errors"
	"fmt"

	"periph.io/x/periph/conn"

	"github.com/oxionics/entangler-core/entangler"
	"github.com/oxionics/entangler-core/regfile"
)

// ErrTimeout is returned by Bus.RunAndAwait if no completion event arrives
// within the simulated clock budget. Real hardware has no such bound and
// would simply hang; this guards the in-process simulation against a
// misconfigured run (e.g. enable left low) looping forever.
var ErrTimeout = errors.New("hostbus: timed out waiting for completion event")

// InputSource supplies one clock's worth of phy/link inputs to the core. It
// is consulted once per simulated clock, including clocks with no host
// activity. m is the core's current attempt-relative coarse counter
// (entangler.StateMachine.M), the same value an entangler.EdgeSource needs
// to decide whether to fire on this clock.
type InputSource func(clock uint64, m uint16) entangler.Inputs

// Bus is an in-process loopback conn.Conn onto a regfile.RegisterFile: every
// Tx simulates exactly one clock of the wrapped core.
type Bus struct {
	RF     *regfile.RegisterFile
	Inputs InputSource

	clock uint64
}

// NewBus wraps core in a fresh register file and bus. A nil src drives the
// core with zero phy/link inputs every clock, appropriate for exercising the
// host interface and timeout behavior without a physical stimulus.
func NewBus(core *entangler.Core, src InputSource) *Bus {
	if src == nil {
		src = func(uint64, uint16) entangler.Inputs { return entangler.Inputs{} }
	}
	return &Bus{RF: regfile.NewRegisterFile(core), Inputs: src}
}

// String implements conn.Conn.
func (b *Bus) String() string { return "hostbus.Bus" }

// Duplex implements conn.Conn: each Tx is one write-then-read transaction.
func (b *Bus) Duplex() conn.Duplex { return conn.Half }

// Tx implements conn.Conn. w is [addr] for a read (len(r) > 0) or
// [addr, data(4 bytes, big-endian)] for a write. Each call advances the
// simulated core by exactly one clock.
func (b *Bus) Tx(w, r []byte) error {
	if len(w) == 0 {
		return errors.New("hostbus: empty write buffer")
	}
	addr := w[0]

	var data uint32
	if len(r) == 0 {
		if len(w) != 5 {
			return fmt.Errorf("hostbus: write to addr 0x%02x needs 4 data bytes, got %d", addr, len(w)-1)
		}
		data = binary.BigEndian.Uint32(w[1:5])
	} else if len(w) != 1 {
		return fmt.Errorf("hostbus: read from addr 0x%02x must not carry data bytes", addr)
	}

	events, err := b.step(&addr, data)
	if err != nil {
		return err
	}

	if len(r) == 0 {
		return nil
	}
	if len(r) != 4 {
		return fmt.Errorf("hostbus: read buffer must be 4 bytes, got %d", len(r))
	}
	for _, e := range events {
		if !e.Done && e.Addr == addr {
			binary.BigEndian.PutUint32(r, e.Data)
			return nil
		}
	}
	return fmt.Errorf("hostbus: no reply for read of addr 0x%02x", addr)
}

// RunAndAwait strobes the RUN register with timeoutClocks and blocks,
// stepping the simulated clock, until the completion event arrives. budget
// caps how many clocks are simulated in total before giving up with
// ErrTimeout.
func (b *Bus) RunAndAwait(timeoutClocks uint32, budget uint64) (regfile.InputEvent, error) {
	addr := regfile.AddrRun
	if _, err := b.step(&addr, timeoutClocks); err != nil {
		return regfile.InputEvent{}, err
	}

	for i := uint64(0); i < budget; i++ {
		events, err := b.step(nil, 0)
		if err != nil {
			return regfile.InputEvent{}, err
		}
		for _, e := range events {
			if e.Done {
				return e, nil
			}
		}
	}
	return regfile.InputEvent{}, ErrTimeout
}

func (b *Bus) step(addr *uint8, data uint32) ([]regfile.InputEvent, error) {
	in := b.Inputs(b.clock, b.RF.Core.SM.M)
	b.clock++
	return b.RF.Submit(addr, data, in)
}
