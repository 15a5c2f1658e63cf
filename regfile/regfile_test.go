package regfile_test

import (
	"testing"

	"github.com/oxionics/entangler-core/entangler"
	"github.com/oxionics/entangler-core/regfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addr(a uint8) *uint8 { return &a }

func TestWriteConfigSetsCoreFields(t *testing.T) {
	rf := regfile.NewRegisterFile(entangler.NewCore())
	err := rf.Write(regfile.AddrConfig, regfile.ConfigEnable|regfile.ConfigStandalone)
	require.NoError(t, err)
	assert.True(t, rf.Core.Enable)
	assert.True(t, rf.Core.SM.Standalone)
	assert.False(t, rf.Core.SM.IsMaster)
}

func TestWriteToReadAddressIsRejected(t *testing.T) {
	rf := regfile.NewRegisterFile(entangler.NewCore())
	err := rf.Write(regfile.AddrStatus, 0)
	assert.ErrorIs(t, err, regfile.ErrBadAddress)
}

func TestReadFromWriteAddressIsRejected(t *testing.T) {
	rf := regfile.NewRegisterFile(entangler.NewCore())
	_, err := rf.Read(regfile.AddrConfig)
	assert.ErrorIs(t, err, regfile.ErrBadAddress)
}

func TestSeqTimingWriteUnpacksStartStop(t *testing.T) {
	rf := regfile.NewRegisterFile(entangler.NewCore())
	require.NoError(t, rf.Write(regfile.AddrSeqTimingBase+1, (uint32(9)<<16)|5))
	assert.Equal(t, uint16(5), rf.Core.Sequencers[1].MStart)
	assert.Equal(t, uint16(9), rf.Core.Sequencers[1].MStop)
}

func TestHeraldWriteUnpacksPatternsAndEnables(t *testing.T) {
	rf := regfile.NewRegisterFile(entangler.NewCore())
	data := uint32(0b0101) | uint32(0b0001)<<16
	require.NoError(t, rf.Write(regfile.AddrHerald, data))
	assert.Equal(t, uint8(0b0101), rf.Core.Heralder.Patterns[0])
	assert.Equal(t, uint8(0b0001), rf.Core.Heralder.PatternEns)
}

func TestRunAddressStrobesRunOnSubmit(t *testing.T) {
	rf := regfile.NewRegisterFile(entangler.NewCore())
	require.NoError(t, rf.Write(regfile.AddrConfig, regfile.ConfigEnable|regfile.ConfigStandalone))
	require.NoError(t, rf.Write(regfile.AddrTCycle, 3))

	events, err := rf.Submit(addr(regfile.AddrRun), 1000, entangler.Inputs{})
	require.NoError(t, err)
	assert.Empty(t, events, "run_stb clock itself produces no event")
	assert.True(t, rf.Core.SM.Running)
}

func TestReadStatusProducesOneInputEvent(t *testing.T) {
	rf := regfile.NewRegisterFile(entangler.NewCore())
	events, err := rf.Submit(addr(regfile.AddrStatus), 0, entangler.Inputs{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, regfile.AddrStatus, events[0].Addr)
	assert.False(t, events[0].Done)
}

func TestDisabledRunEmitsNoCompletionEvent(t *testing.T) {
	rf := regfile.NewRegisterFile(entangler.NewCore())
	require.NoError(t, rf.Write(regfile.AddrConfig, regfile.ConfigStandalone)) // enable left off
	require.NoError(t, rf.Write(regfile.AddrTCycle, 2))
	_, err := rf.Submit(addr(regfile.AddrRun), 2, entangler.Inputs{})
	require.NoError(t, err)

	sawDone := false
	for i := 0; i < 30; i++ {
		events, err := rf.Submit(nil, 0, entangler.Inputs{})
		require.NoError(t, err)
		for _, e := range events {
			if e.Done {
				sawDone = true
			}
		}
	}
	assert.False(t, sawDone)
	assert.False(t, rf.Core.Enable)
}

func TestConfigWriteViaSubmitTakesEffectNextClockNotSameClock(t *testing.T) {
	rf := regfile.NewRegisterFile(entangler.NewCore())
	_, err := rf.Submit(addr(regfile.AddrConfig), regfile.ConfigEnable|regfile.ConfigStandalone, entangler.Inputs{})
	require.NoError(t, err)
	assert.False(t, rf.Core.Enable, "a write submitted as an output event must not be visible to its own clock's Step")

	_, err = rf.Submit(nil, 0, entangler.Inputs{})
	require.NoError(t, err)
	assert.True(t, rf.Core.Enable, "the write takes effect starting the clock after it was issued")
}

func TestSubmitRejectsBadWriteAddressImmediately(t *testing.T) {
	rf := regfile.NewRegisterFile(entangler.NewCore())
	_, err := rf.Submit(addr(0x07), 0, entangler.Inputs{})
	assert.ErrorIs(t, err, regfile.ErrBadAddress)
}

func TestTimeoutDoneEventCarriesSentinel(t *testing.T) {
	rf := regfile.NewRegisterFile(entangler.NewCore())
	require.NoError(t, rf.Write(regfile.AddrConfig, regfile.ConfigEnable|regfile.ConfigStandalone))
	require.NoError(t, rf.Write(regfile.AddrTCycle, 3))
	_, err := rf.Submit(addr(regfile.AddrRun), 2, entangler.Inputs{})
	require.NoError(t, err)

	var doneData uint32
	found := false
	for i := 0; i < 30 && !found; i++ {
		events, err := rf.Submit(nil, 0, entangler.Inputs{})
		require.NoError(t, err)
		for _, e := range events {
			if e.Done {
				doneData = e.Data
				found = true
			}
		}
	}
	require.True(t, found)
	assert.Equal(t, regfile.TimeoutSentinel, doneData)
}
