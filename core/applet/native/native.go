// Package native runs Go functions as applets.
//
// The applet owns a fixed arena that stands in for linear memory and a
// table of Go closures that stand in for exported functions. It is used on
// microcontrollers, where no WebAssembly engine fits, and in tests.
package native

import (
	"context"
	"encoding/binary"
	"fmt"

	"boardlet/core/abi"
	"boardlet/core/applet"
)

// Func is an applet function reachable through a callback.
type Func func(data uint32, args ...uint32)

// Module is a native applet instance.
type Module struct {
	host  applet.Host
	main  func(*Sys)
	arena []byte
	brk   uint32
	funcs []Func
	sys   *Sys
	// exit is the termination raised by the syscall that unwound the applet.
	exit error
}

// New builds a module with memSize bytes of memory. Address 0 is reserved
// so that 0 can mean "no pointer".
func New(host applet.Host, memSize int, main func(*Sys)) *Module {
	m := &Module{
		host:  host,
		main:  main,
		arena: make([]byte, memSize),
		brk:   8,
		funcs: []Func{nil},
	}
	m.sys = &Sys{m: m}
	return m
}

func (m *Module) Memory() []byte { return m.arena }

// Alloc is a bump allocator; freed memory is never reused.
func (m *Module) Alloc(size, align uint32) (uint32, error) {
	if align == 0 {
		align = 1
	}
	start := (uint64(m.brk) + uint64(align) - 1) &^ (uint64(align) - 1)
	end := start + uint64(size)
	if end > uint64(len(m.arena)) {
		return 0, nil
	}
	m.brk = uint32(end)
	return uint32(start), nil
}

func (m *Module) Main(ctx context.Context) error {
	return m.run(func() { m.main(m.sys) })
}

func (m *Module) Callback(fn, data uint32, args ...uint32) error {
	if fn == 0 || int(fn) >= len(m.funcs) {
		return applet.Trapf("callback to unknown function %d", fn)
	}
	f := m.funcs[fn]
	return m.run(func() { f(data, args...) })
}

// unwind carries a termination up through applet code.
type unwind struct{}

// run executes applet code. A terminating syscall panics with unwind so the
// applet stops at that call, the way a WebAssembly trap would stop it.
func (m *Module) run(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(unwind); ok {
				err = m.exit
				return
			}
			err = applet.Trapf("applet panic: %v", r)
		}
	}()
	f()
	return nil
}

// Sys is the applet's view of the platform.
type Sys struct {
	m *Module
}

// Call issues a raw syscall and returns the reply word. A terminating
// error stops the applet.
func (s *Sys) Call(op abi.Op, x ...uint32) abi.Reply {
	var p [4]uint32
	copy(p[:], x)
	r, err := s.m.host.Syscall(uint32(op), p)
	if err != nil {
		s.m.exit = err
		panic(unwind{})
	}
	return abi.Reply(r)
}

// Do issues a syscall and decodes the reply.
func (s *Sys) Do(op abi.Op, x ...uint32) (uint32, error) {
	return s.Call(op, x...).Decode()
}

// Must is Do for calls the applet cannot recover from; a failure aborts.
func (s *Sys) Must(op abi.Op, x ...uint32) uint32 {
	v, err := s.Do(op, x...)
	if err != nil {
		s.Println(fmt.Sprintf("%v: %v", op, err))
		s.Call(abi.OpAbort)
	}
	return v
}

// Func registers f and returns its table index for use as a callback.
func (s *Sys) Func(f Func) uint32 {
	s.m.funcs = append(s.m.funcs, f)
	return uint32(len(s.m.funcs) - 1)
}

// Put copies b into fresh memory and returns its address.
func (s *Sys) Put(b []byte) uint32 {
	ptr, _ := s.m.Alloc(uint32(len(b)), 8)
	if ptr == 0 && len(b) > 0 {
		panic("native: arena exhausted")
	}
	copy(s.m.arena[ptr:], b)
	return ptr
}

// Reserve allocates n zeroed bytes.
func (s *Sys) Reserve(n uint32) uint32 { return s.Put(make([]byte, n)) }

// Bytes returns the n bytes at ptr.
func (s *Sys) Bytes(ptr, n uint32) []byte { return s.m.arena[ptr : ptr+n] }

func (s *Sys) U32(ptr uint32) uint32 { return binary.LittleEndian.Uint32(s.m.arena[ptr:]) }
func (s *Sys) U64(ptr uint32) uint64 { return binary.LittleEndian.Uint64(s.m.arena[ptr:]) }

// Println prints through debug_println.
func (s *Sys) Println(msg string) {
	ptr := s.Put([]byte(msg))
	s.Call(abi.OpDebugPrintln, ptr, uint32(len(msg)))
}

// Wait blocks in wait_for_callback.
func (s *Sys) Wait() { s.Call(abi.OpWaitForCallback) }
