package abi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardlet/hal"
)

func TestEncodeErrorIsNegative(t *testing.T) {
	for _, e := range []*hal.Error{
		hal.ErrUser(hal.CodeGeneric),
		hal.ErrUser(hal.CodeInvalidState),
		hal.ErrWorld(hal.CodeNotImplemented),
		hal.ErrInternal(hal.CodeGeneric),
	} {
		r := EncodeError(e)
		require.Less(t, int32(r), int32(0), "%v", e)

		_, err := r.Decode()
		assert.ErrorIs(t, err, e)
	}
	assert.Equal(t, Reply(^int32(int32(hal.SpaceUser)<<16|int32(hal.CodeInvalidState))), EncodeError(hal.ErrUser(hal.CodeInvalidState)))
}

func TestOkRange(t *testing.T) {
	v, err := Ok(MaxValue).Decode()
	require.NoError(t, err)
	assert.Equal(t, uint32(MaxValue), v)

	_, err = Ok(MaxValue + 1).Decode()
	assert.Equal(t, hal.SpaceInternal, hal.ErrorOf(err).Space)
}

func TestParamsDecoders(t *testing.T) {
	_, err := Params{0, 2}.Bool(1)
	assert.ErrorIs(t, err, hal.ErrInvalidArgument)

	ts, err := Params{3, 1, 250}.TimerStart()
	require.NoError(t, err)
	assert.Equal(t, TimerStart{Timer: 3, Mode: hal.TimerPeriodic, Millis: 250}, ts)

	_, err = Params{0, 2, 0, 0}.UARTListener()
	assert.ErrorIs(t, err, hal.ErrInvalidArgument)
	ul, err := Params{1, 1, 7, 9}.UARTListener()
	require.NoError(t, err)
	assert.Equal(t, hal.DirWrite, ul.Direction)
	assert.Equal(t, Listener{Fn: 7, Data: 9}, ul.Listener)

	_, err = Params{0, 0, 3}.GPIOConfigure()
	assert.ErrorIs(t, err, hal.ErrInvalidArgument)

	_, err = Params{9}.HashAlg(0)
	assert.ErrorIs(t, err, hal.ErrInvalidArgument)
}

func TestOpNames(t *testing.T) {
	assert.Equal(t, "led_set", OpLEDSet.String())
	assert.True(t, OpVendorUnregister.Known())
	assert.False(t, Op(9).Known())
	assert.Equal(t, "unknown", Op(9).String())
}
