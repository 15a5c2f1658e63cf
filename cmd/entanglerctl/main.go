package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/oxionics/entangler-core/entangler"
	"github.com/oxionics/entangler-core/hostbus"
)

func main() {
	standalone := flag.Bool("standalone", true, "run without a partner device")
	isMaster := flag.Bool("master", true, "act as the sync master (ignored if -standalone)")
	cycleLen := flag.Uint("cycle", 20, "attempt length, in coarse clocks")
	timeout := flag.Uint("timeout", 200, "run timeout, in coarse clocks")
	herald := flag.Uint("herald", 0, "4-bit herald pattern to match (0 disables heralding)")
	gateStart := flag.Uint("gate-start", 0, "channel 0 gate window start, fine units")
	gateStop := flag.Uint("gate-stop", 0, "channel 0 gate window stop, fine units")
	sim := flag.Bool("sim", false, "drive a synthetic reference/signal edge pair instead of idle phy inputs")
	simRef := flag.Uint("sim-ref", 0, "fine-absolute reference edge time, used with -sim")
	simSig := flag.Uint("sim-sig", 0, "fine-absolute channel 0 signal edge time, used with -sim")
	flag.Parse()

	core := entangler.NewCore()
	bus := hostbus.NewBus(core, simInputs(*sim, uint32(*simRef), uint32(*simSig)))
	c := hostbus.NewClient(bus)

	if err := run(c, *standalone, *isMaster, uint32(*cycleLen), uint32(*timeout), uint8(*herald), uint32(*gateStart), uint32(*gateStop)); err != nil {
		fmt.Fprintln(os.Stderr, "entanglerctl:", err)
		os.Exit(1)
	}
}

// simInputs builds a hostbus.InputSource stepping a pair of entangler.EdgeSource
// stand-ins, the way entangler/phy.py's MockPhy drives a gater from a single
// fine-absolute event time in the Python test suite. A nil InputSource (when
// sim is false) leaves the core's phy inputs idle every clock.
func simInputs(sim bool, refTime, sigTime uint32) hostbus.InputSource {
	if !sim {
		return nil
	}
	ref := entangler.NewEdgeSource(refTime)
	sig := entangler.NewEdgeSource(sigTime)
	var lastM uint16
	return func(_ uint64, m uint16) entangler.Inputs {
		if m < lastM {
			ref.Reset()
			sig.Reset()
		}
		lastM = m

		var in entangler.Inputs
		r := ref.Step(m)
		for i := range in.Ref {
			in.Ref[i] = r
		}
		in.Sig[0] = sig.Step(m)
		return in
	}
}

func run(c *hostbus.Client, standalone, isMaster bool, cycleLen, timeout uint32, herald uint8, gateStart, gateStop uint32) error {
	if err := c.Configure(true, isMaster, standalone); err != nil {
		return fmt.Errorf("configure: %w", err)
	}
	if err := c.SetCycleLength(cycleLen); err != nil {
		return fmt.Errorf("set cycle length: %w", err)
	}
	if err := c.SetGateTiming(0, gateStart, gateStop); err != nil {
		return fmt.Errorf("set gate timing: %w", err)
	}
	if herald != 0 {
		if err := c.SetHeralds(herald); err != nil {
			return fmt.Errorf("set heralds: %w", err)
		}
	}

	res, err := c.Run(timeout, 0)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	if res.TimedOut {
		fmt.Println("result: timeout")
	} else {
		fmt.Printf("result: success, matches=%04b\n", res.Matches)
	}

	ncycles, err := c.NCycles()
	if err != nil {
		return fmt.Errorf("ncycles: %w", err)
	}
	ntriggers, err := c.NTriggers()
	if err != nil {
		return fmt.Errorf("ntriggers: %w", err)
	}
	fmt.Printf("cycles completed: %d, triggers received: %d\n", ncycles, ntriggers)
	return nil
}
