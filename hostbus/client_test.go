package hostbus_test

import (
	"testing"

	"github.com/oxionics/entangler-core/entangler"
	"github.com/oxionics/entangler-core/hostbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientStandaloneTimeoutRun(t *testing.T) {
	core := entangler.NewCore()
	bus := hostbus.NewBus(core, nil)
	c := hostbus.NewClient(bus)

	require.NoError(t, c.Configure(true, false, true))
	require.NoError(t, c.SetCycleLength(5))

	res, err := c.Run(4, 0)
	require.NoError(t, err)
	assert.True(t, res.TimedOut)

	ready, success, timeout, err := c.Status()
	require.NoError(t, err)
	assert.False(t, ready)
	assert.False(t, success)
	assert.True(t, timeout)
}

func TestClientDisabledRunNeverCompletesTheInterface(t *testing.T) {
	core := entangler.NewCore()
	bus := hostbus.NewBus(core, nil)
	c := hostbus.NewClient(bus)

	require.NoError(t, c.Configure(false, false, true))
	require.NoError(t, c.SetCycleLength(3))

	_, err := c.Run(3, 200)
	assert.ErrorIs(t, err, hostbus.ErrTimeout)
}

func TestClientHeraldRunWithoutEdgesTimesOut(t *testing.T) {
	core := entangler.NewCore()
	bus := hostbus.NewBus(core, nil)
	c := hostbus.NewClient(bus)

	require.NoError(t, c.Configure(true, false, true))
	require.NoError(t, c.SetCycleLength(3))
	// sequencer/gater channel 0 pulses the whole attempt; with no phy edges
	// ever arriving, the gater never triggers, so this run should time out --
	// exercising the wiring of SetSequencerTiming/SetGateTiming without
	// requiring a stateful edge source.
	require.NoError(t, c.SetSequencerTiming(0, 0, 3))
	require.NoError(t, c.SetGateTiming(0, 0, 100))
	require.NoError(t, c.SetHeralds(0b0001))

	res, err := c.Run(10, 0)
	require.NoError(t, err)
	assert.True(t, res.TimedOut)
}

func TestClientCountersStartAtZero(t *testing.T) {
	core := entangler.NewCore()
	bus := hostbus.NewBus(core, nil)
	c := hostbus.NewClient(bus)

	n, err := c.SingleCount(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), n)

	p, err := c.PatternCount(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), p)
}
