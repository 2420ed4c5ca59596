// Package wasmer runs WebAssembly applets on the wasmer engine.
//
// An applet module imports one function, env.syscall(op, x1, x2, x3, x4)
// -> i32, and exports memory, main(), alloc(size, align) -> ptr and the
// optional callback trampolines cb0..cb4(fn, data, args...).
//
// wasmer-go cannot interrupt a running instance. Cancelling the run's
// context stops an applet at its next syscall; one that spins without
// calling into the host runs until it does.
package wasmer

import (
	"context"
	"fmt"

	"github.com/wasmerio/wasmer-go/wasmer"

	"boardlet/core/applet"
)

const maxCallbackArgs = 4

// Module is an instantiated WebAssembly applet.
type Module struct {
	instance *wasmer.Instance
	memory   *wasmer.Memory
	main     wasmer.NativeFunction
	alloc    wasmer.NativeFunction
	cbs      [maxCallbackArgs + 1]wasmer.NativeFunction

	// exit holds the error a syscall returned; wasmer only keeps its text.
	exit error
}

// Load compiles code and binds its syscall import to host.
func Load(code []byte, host applet.Host) (*Module, error) {
	engine := wasmer.NewEngine()
	store := wasmer.NewStore(engine)
	module, err := wasmer.NewModule(store, code)
	if err != nil {
		return nil, fmt.Errorf("wasmer: compile: %w", err)
	}

	m := &Module{}
	i32 := wasmer.I32
	syscallType := wasmer.NewFunctionType(
		wasmer.NewValueTypes(i32, i32, i32, i32, i32),
		wasmer.NewValueTypes(i32),
	)
	syscall := wasmer.NewFunction(store, syscallType, func(args []wasmer.Value) ([]wasmer.Value, error) {
		var p [4]uint32
		for i := range p {
			p[i] = uint32(args[i+1].I32())
		}
		r, err := host.Syscall(uint32(args[0].I32()), p)
		if err != nil {
			m.exit = err
			return nil, err
		}
		return []wasmer.Value{wasmer.NewI32(r)}, nil
	})

	imports := wasmer.NewImportObject()
	imports.Register("env", map[string]wasmer.IntoExtern{
		"syscall": syscall,
	})
	instance, err := wasmer.NewInstance(module, imports)
	if err != nil {
		return nil, fmt.Errorf("wasmer: instantiate: %w", err)
	}
	m.instance = instance

	if m.memory, err = instance.Exports.GetMemory("memory"); err != nil {
		return nil, fmt.Errorf("wasmer: export memory: %w", err)
	}
	if m.main, err = instance.Exports.GetFunction("main"); err != nil {
		return nil, fmt.Errorf("wasmer: export main: %w", err)
	}
	if m.alloc, err = instance.Exports.GetFunction("alloc"); err != nil {
		return nil, fmt.Errorf("wasmer: export alloc: %w", err)
	}
	// Trampolines are optional; an applet without listeners needs none.
	for n := range m.cbs {
		m.cbs[n], _ = instance.Exports.GetFunction(fmt.Sprintf("cb%d", n))
	}
	return m, nil
}

func (m *Module) Memory() []byte { return m.memory.Data() }

func (m *Module) Alloc(size, align uint32) (uint32, error) {
	res, err := m.call(m.alloc, int32(size), int32(align))
	if err != nil {
		return 0, err
	}
	ptr, ok := res.(int32)
	if !ok {
		return 0, applet.Trapf("alloc returned %T", res)
	}
	return uint32(ptr), nil
}

func (m *Module) Main(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &applet.Termination{Reason: applet.ReasonKill, Cause: err}
	}
	_, err := m.call(m.main)
	return err
}

func (m *Module) Callback(fn, data uint32, args ...uint32) error {
	if len(args) > maxCallbackArgs {
		return fmt.Errorf("wasmer: %d callback arguments", len(args))
	}
	cb := m.cbs[len(args)]
	if cb == nil {
		return applet.Trapf("applet does not export cb%d", len(args))
	}
	params := make([]interface{}, 0, 2+len(args))
	params = append(params, int32(fn), int32(data))
	for _, a := range args {
		params = append(params, int32(a))
	}
	_, err := m.call(cb, params...)
	return err
}

// call runs an export. When a syscall ended the applet the original
// termination error is returned instead of wasmer's copy of its text.
func (m *Module) call(f wasmer.NativeFunction, args ...interface{}) (interface{}, error) {
	res, err := f(args...)
	if err == nil {
		return res, nil
	}
	if exit := m.exit; exit != nil {
		return nil, exit
	}
	return nil, applet.Trapf("%v", err)
}
