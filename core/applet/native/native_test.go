package native

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardlet/core/abi"
	"boardlet/core/applet"
	"boardlet/hal"
)

type hostFunc func(op uint32, p [4]uint32) (int32, error)

func (f hostFunc) Syscall(op uint32, p [4]uint32) (int32, error) { return f(op, p) }

func TestAlloc(t *testing.T) {
	m := New(nil, 64, nil)

	p, err := m.Alloc(3, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), p, "address 0 stays reserved")

	p, err = m.Alloc(8, 8)
	require.NoError(t, err)
	assert.Equal(t, uint32(16), p)

	p, err = m.Alloc(64, 1)
	require.NoError(t, err)
	assert.Zero(t, p, "out of memory")
}

func TestSyscallErrorsUnwind(t *testing.T) {
	stop := &applet.Termination{Reason: applet.ReasonAbort}
	var seen []abi.Op
	host := hostFunc(func(op uint32, _ [4]uint32) (int32, error) {
		seen = append(seen, abi.Op(op))
		if abi.Op(op) == abi.OpAbort {
			return 0, stop
		}
		return int32(abi.EncodeError(hal.ErrInvalidState)), nil
	})

	after := false
	m := New(host, 256, func(sys *Sys) {
		_, err := sys.Do(abi.OpLEDSet, 0, 1)
		assert.ErrorIs(t, err, hal.ErrInvalidState)
		sys.Call(abi.OpAbort)
		after = true
	})
	err := m.Main(context.Background())
	assert.Same(t, stop, err)
	assert.False(t, after)
	assert.Equal(t, []abi.Op{abi.OpLEDSet, abi.OpAbort}, seen)
}

func TestCallback(t *testing.T) {
	m := New(nil, 256, nil)
	var got []uint32
	fn := m.sys.Func(func(data uint32, args ...uint32) { got = append(append(got, data), args...) })

	require.NoError(t, m.Callback(fn, 9, 1, 2))
	assert.Equal(t, []uint32{9, 1, 2}, got)

	var trap *applet.Trap
	assert.True(t, errors.As(m.Callback(0, 0), &trap))
	assert.True(t, errors.As(m.Callback(fn+1, 0), &trap))

	boom := m.sys.Func(func(uint32, ...uint32) { panic("boom") })
	err := m.Callback(boom, 0)
	require.True(t, errors.As(err, &trap))
	assert.Contains(t, trap.Msg, "boom")
}

func TestPutAndRead(t *testing.T) {
	m := New(nil, 256, nil)
	p := m.sys.Put([]byte{1, 0, 0, 0, 2, 0, 0, 0})
	assert.Equal(t, uint32(1), m.sys.U32(p))
	assert.Equal(t, uint64(2)<<32|1, m.sys.U64(p))
	assert.Equal(t, []byte{2, 0}, m.sys.Bytes(p+4, 2))
}
