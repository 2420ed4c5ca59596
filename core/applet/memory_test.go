package applet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModule struct {
	mem   []byte
	alloc func(size, align uint32) uint32
	calls int
}

func (m *fakeModule) Memory() []byte { return m.mem }

func (m *fakeModule) Alloc(size, align uint32) (uint32, error) {
	m.calls++
	return m.alloc(size, align), nil
}

func (m *fakeModule) Main(context.Context) error { return nil }

func (m *fakeModule) Callback(uint32, uint32, ...uint32) error { return nil }

func newFake(size int) *fakeModule {
	return &fakeModule{mem: make([]byte, size), alloc: func(uint32, uint32) uint32 { return 0 }}
}

func requireTrap(t *testing.T, err error) {
	t.Helper()
	var trap *Trap
	require.True(t, errors.As(err, &trap), "want trap, got %v", err)
}

func TestMemoryBounds(t *testing.T) {
	const m = 64
	mem := NewMemory(newFake(m))

	tests := []struct {
		ptr, n uint32
		ok     bool
	}{
		{0, 0, true},
		{0, m, true},
		{m, 0, true},
		{m - 1, 1, true},
		{m - 1, 2, false},
		{m, 1, false},
		{m + 1, 0, false},
		{0, m + 1, false},
		{1, 0xFFFFFFFF, false},
		{0xFFFFFFFF, 1, false},
		{0xFFFFFFFF, 0xFFFFFFFF, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d+%d", tt.ptr, tt.n), func(t *testing.T) {
			b, err := mem.Get(tt.ptr, tt.n)
			if tt.ok {
				require.NoError(t, err)
				assert.Len(t, b, int(tt.n))
				assert.Equal(t, int(tt.n), cap(b), "view must not reach past its range")
			} else {
				requireTrap(t, err)
				assert.Nil(t, b)
			}
			_, err = mem.GetMut(tt.ptr, tt.n)
			assert.Equal(t, tt.ok, err == nil)
		})
	}
}

func TestMemoryLastBytePlusOne(t *testing.T) {
	mod := newFake(16)
	for i := range mod.mem {
		mod.mem[i] = 0xAA
	}
	before := bytes.Clone(mod.mem)
	mem := NewMemory(mod)

	_, err := mem.Get(15, 2)
	requireTrap(t, err)
	assert.ErrorContains(t, err, "invalid length")

	requireTrap(t, mem.WriteU32(14, 0))
	requireTrap(t, mem.WriteU64(12, 0))
	assert.Equal(t, before, mod.mem, "failed writes must leave memory untouched")
}

func TestMemoryLittleEndian(t *testing.T) {
	mod := newFake(16)
	mem := NewMemory(mod)

	require.NoError(t, mem.WriteU32(0, 0x01020304))
	assert.Equal(t, []byte{4, 3, 2, 1}, mod.mem[:4])
	v, err := mem.ReadU32(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x01020304), v)

	require.NoError(t, mem.WriteU64(8, 0x1122334455667788))
	assert.Equal(t, []byte{0x88, 0x77, 0x66, 0x55, 0x44, 0x33, 0x22, 0x11}, mod.mem[8:16])
}

func TestMemoryGetOpt(t *testing.T) {
	mem := NewMemory(newFake(8))

	b, err := mem.GetOpt(0, 100)
	require.NoError(t, err)
	assert.Nil(t, b)

	_, err = mem.GetOpt(4, 100)
	requireTrap(t, err)
}

func TestMemoryStr(t *testing.T) {
	mod := newFake(16)
	copy(mod.mem, "héllo")
	mod.mem[10] = 0xFF
	mem := NewMemory(mod)

	s, err := mem.Str(0, 6)
	require.NoError(t, err)
	assert.Equal(t, "héllo", s)

	_, err = mem.Str(10, 1)
	requireTrap(t, err)
	assert.ErrorContains(t, err, "utf-8")

	// Cutting a multi-byte rune in half is invalid too.
	_, err = mem.Str(0, 2)
	requireTrap(t, err)
}

func TestMemoryAlloc(t *testing.T) {
	t.Run("zero length skips the module", func(t *testing.T) {
		mod := newFake(32)
		ptr, err := NewMemory(mod).Alloc(0, 4)
		require.NoError(t, err)
		assert.Zero(t, ptr)
		assert.Zero(t, mod.calls)
	})

	t.Run("null pointer", func(t *testing.T) {
		_, err := NewMemory(newFake(32)).Alloc(4, 4)
		requireTrap(t, err)
	})

	t.Run("misaligned", func(t *testing.T) {
		mod := newFake(32)
		mod.alloc = func(uint32, uint32) uint32 { return 6 }
		_, err := NewMemory(mod).Alloc(4, 4)
		requireTrap(t, err)
	})

	t.Run("outside memory", func(t *testing.T) {
		mod := newFake(32)
		mod.alloc = func(uint32, uint32) uint32 { return 28 }
		_, err := NewMemory(mod).Alloc(8, 4)
		requireTrap(t, err)
	})

	t.Run("memory grows", func(t *testing.T) {
		mod := newFake(16)
		mod.alloc = func(size, _ uint32) uint32 {
			mod.mem = append(mod.mem, make([]byte, 16)...)
			return 16
		}
		mem := NewMemory(mod)
		ptr, err := mem.Alloc(16, 8)
		require.NoError(t, err)
		assert.Equal(t, uint32(16), ptr)
		assert.Equal(t, 32, mem.Len())
	})
}

func TestMemoryAllocCopy(t *testing.T) {
	mod := newFake(64)
	mod.alloc = func(uint32, uint32) uint32 { return 32 }
	mem := NewMemory(mod)

	n, err := mem.AllocCopy(4, []byte("serial"))
	require.NoError(t, err)
	assert.Equal(t, uint32(6), n)
	ptr, err := mem.ReadU32(4)
	require.NoError(t, err)
	assert.Equal(t, uint32(32), ptr)
	assert.Equal(t, []byte("serial"), mod.mem[32:38])

	calls := mod.calls
	_, err = mem.AllocCopy(62, []byte("x"))
	requireTrap(t, err)
	assert.Equal(t, calls, mod.calls, "a bad out pointer traps before allocating")
}

func TestTerminationOf(t *testing.T) {
	assert.Nil(t, TerminationOf(nil))

	exit := &Termination{Reason: ReasonExit, Code: 3}
	assert.Same(t, exit, TerminationOf(fmt.Errorf("main: %w", exit)))

	assert.Equal(t, ReasonKill, TerminationOf(context.Canceled).Reason)
	assert.Equal(t, ReasonTrap, TerminationOf(Trapf("bad")).Reason)
	assert.Equal(t, ReasonTrap, TerminationOf(errors.New("engine failure")).Reason)
	assert.Equal(t, "applet exited with code 3", exit.Error())
}
