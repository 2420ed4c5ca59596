package abi

import "boardlet/hal"

// Params is the raw parameter block of one syscall.
type Params [4]uint32

// Buffer is a (ptr, len) pair into applet memory.
type Buffer struct {
	Ptr, Len uint32
}

// Listener is a callback registration: the applet function table index
// and an opaque word passed back on every call.
type Listener struct {
	Fn, Data uint32
}

// Indexed pairs a capability index with a buffer.
type Indexed struct {
	Index uint32
	Buffer
}

// IndexedListener registers a listener on one capability instance.
type IndexedListener struct {
	Index uint32
	Listener
}

// UARTListener registers a listener on one direction of a UART.
type UARTListener struct {
	UART      uint32
	Direction hal.Direction
	Listener
}

// TimerStart arms a timer.
type TimerStart struct {
	Timer  uint32
	Mode   hal.TimerMode
	Millis uint32
}

// GPIOConfigure sets a pin's mode and pull.
type GPIOConfigure struct {
	GPIO uint32
	Mode hal.GPIOMode
	Pull hal.GPIOPull
}

func (p Params) Buffer() Buffer     { return Buffer{Ptr: p[0], Len: p[1]} }
func (p Params) Listener() Listener { return Listener{Fn: p[0], Data: p[1]} }

func (p Params) Indexed() Indexed {
	return Indexed{Index: p[0], Buffer: Buffer{Ptr: p[1], Len: p[2]}}
}

func (p Params) IndexedListener() IndexedListener {
	return IndexedListener{Index: p[0], Listener: Listener{Fn: p[1], Data: p[2]}}
}

// UARTListener decodes uart_register.
func (p Params) UARTListener() (UARTListener, error) {
	dir, err := p.Direction(1)
	if err != nil {
		return UARTListener{}, err
	}
	return UARTListener{UART: p[0], Direction: dir, Listener: Listener{Fn: p[2], Data: p[3]}}, nil
}

// TimerStart decodes timer_start.
func (p Params) TimerStart() (TimerStart, error) {
	periodic, err := p.Bool(1)
	if err != nil {
		return TimerStart{}, err
	}
	mode := hal.TimerOneshot
	if periodic {
		mode = hal.TimerPeriodic
	}
	return TimerStart{Timer: p[0], Mode: mode, Millis: p[2]}, nil
}

// GPIOConfigure decodes gpio_configure.
func (p Params) GPIOConfigure() (GPIOConfigure, error) {
	if p[1] > uint32(hal.GPIOModeOutput) {
		return GPIOConfigure{}, hal.Errorf(hal.SpaceUser, hal.CodeInvalidArgument, "gpio mode %d", p[1])
	}
	if p[2] > uint32(hal.GPIOPullDown) {
		return GPIOConfigure{}, hal.Errorf(hal.SpaceUser, hal.CodeInvalidArgument, "gpio pull %d", p[2])
	}
	return GPIOConfigure{GPIO: p[0], Mode: hal.GPIOMode(p[1]), Pull: hal.GPIOPull(p[2])}, nil
}

// Bool decodes parameter i, which must be 0 or 1.
func (p Params) Bool(i int) (bool, error) {
	switch p[i] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, hal.Errorf(hal.SpaceUser, hal.CodeInvalidArgument, "boolean parameter %d is %d", i, p[i])
	}
}

// Direction decodes parameter i as a serial direction.
func (p Params) Direction(i int) (hal.Direction, error) {
	d := hal.Direction(p[i])
	if p[i] > 0xFF || !d.Valid() {
		return 0, hal.Errorf(hal.SpaceUser, hal.CodeInvalidArgument, "direction %d", p[i])
	}
	return d, nil
}

// HashAlg decodes parameter i as a hash algorithm.
func (p Params) HashAlg(i int) (hal.HashAlg, error) {
	if p[i] > uint32(hal.HashBLAKE3) {
		return 0, hal.Errorf(hal.SpaceUser, hal.CodeInvalidArgument, "hash algorithm %d", p[i])
	}
	return hal.HashAlg(p[i]), nil
}
