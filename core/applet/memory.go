package applet

import (
	"encoding/binary"
	"math/bits"
	"unicode/utf8"
)

// Memory is the checked view of a module's linear memory for one call.
//
// Every accessor validates (ptr, n) with 64-bit arithmetic before touching
// the buffer and fails with a Trap. A failed check never writes.
type Memory struct {
	mod Module
	buf []byte
}

// NewMemory snapshots the module's current memory.
func NewMemory(mod Module) *Memory {
	return &Memory{mod: mod, buf: mod.Memory()}
}

// Len is the size of the memory in bytes.
func (m *Memory) Len() int { return len(m.buf) }

func (m *Memory) check(ptr, n uint32) error {
	if uint64(ptr)+uint64(n) > uint64(len(m.buf)) {
		return Trapf("invalid length: [%d, %d+%d) outside memory of %d bytes", ptr, ptr, n, len(m.buf))
	}
	return nil
}

// Get returns the n bytes at ptr for reading.
func (m *Memory) Get(ptr, n uint32) ([]byte, error) {
	if err := m.check(ptr, n); err != nil {
		return nil, err
	}
	lo := uint64(ptr)
	hi := lo + uint64(n)
	return m.buf[lo:hi:hi], nil
}

// GetMut returns the n bytes at ptr for writing.
func (m *Memory) GetMut(ptr, n uint32) ([]byte, error) {
	return m.Get(ptr, n)
}

// GetOpt is Get where ptr 0 means absent and yields nil.
func (m *Memory) GetOpt(ptr, n uint32) ([]byte, error) {
	if ptr == 0 {
		return nil, nil
	}
	return m.Get(ptr, n)
}

// Str returns the UTF-8 string at ptr.
func (m *Memory) Str(ptr, n uint32) (string, error) {
	b, err := m.Get(ptr, n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", Trapf("invalid utf-8 at %d", ptr)
	}
	return string(b), nil
}

func (m *Memory) ReadU32(ptr uint32) (uint32, error) {
	b, err := m.Get(ptr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (m *Memory) WriteU32(ptr, v uint32) error {
	b, err := m.GetMut(ptr, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, v)
	return nil
}

func (m *Memory) WriteU64(ptr uint32, v uint64) error {
	b, err := m.GetMut(ptr, 8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b, v)
	return nil
}

// Alloc asks the module for memory and checks what it returns. Views
// obtained before Alloc must not be used afterwards since memory may grow.
// A zero-length request returns 0 without calling the module.
func (m *Memory) Alloc(n, align uint32) (uint32, error) {
	if n == 0 {
		return 0, nil
	}
	if align == 0 || bits.OnesCount32(align) != 1 {
		align = 1
	}
	ptr, err := m.mod.Alloc(n, align)
	if err != nil {
		return 0, err
	}
	m.buf = m.mod.Memory()
	if ptr == 0 {
		return 0, Trapf("alloc of %d bytes failed", n)
	}
	if ptr%align != 0 {
		return 0, Trapf("alloc returned %d, not aligned to %d", ptr, align)
	}
	if err := m.check(ptr, n); err != nil {
		return 0, err
	}
	return ptr, nil
}

// AllocCopy allocates room for data, copies it in and stores the pointer
// at ptrPtr. It returns the length written.
func (m *Memory) AllocCopy(ptrPtr uint32, data []byte) (uint32, error) {
	// Check the out pointer first so a bad one traps before the module
	// allocates anything.
	if err := m.check(ptrPtr, 4); err != nil {
		return 0, err
	}
	ptr, err := m.Alloc(uint32(len(data)), 1)
	if err != nil {
		return 0, err
	}
	if len(data) > 0 {
		dst, err := m.GetMut(ptr, uint32(len(data)))
		if err != nil {
			return 0, err
		}
		copy(dst, data)
	}
	if err := m.WriteU32(ptrPtr, ptr); err != nil {
		return 0, err
	}
	return uint32(len(data)), nil
}
