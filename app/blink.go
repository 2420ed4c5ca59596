// Package app holds the Go-native applets linked into firmware images.
package app

import (
	"strconv"

	"boardlet/core/abi"
	"boardlet/core/applet/native"
)

const minPeriod = 50

// NewBlink returns an applet that toggles LED 0 every periodMs. Pressing
// button 0 halves the period, wrapping back to periodMs below 50 ms.
// Pressing button 1 turns the LED off and exits.
func NewBlink(periodMs uint32) func(*native.Sys) {
	return func(sys *native.Sys) {
		sys.Println("blink: starting")
		if sys.Must(abi.OpLEDCount) == 0 {
			sys.Println("blink: board has no led")
			sys.Call(abi.OpExit, 1)
		}

		period := periodMs
		var on uint32
		timer := sys.Must(abi.OpTimerAllocate, sys.Func(func(uint32, ...uint32) {
			on ^= 1
			sys.Must(abi.OpLEDSet, 0, on)
		}), 0)
		sys.Must(abi.OpTimerStart, timer, 1, period)

		buttons := sys.Must(abi.OpButtonCount)
		if buttons > 0 {
			sys.Must(abi.OpButtonRegister, 0, sys.Func(func(_ uint32, args ...uint32) {
				if args[1] == 0 {
					return
				}
				period /= 2
				if period < minPeriod {
					period = periodMs
				}
				sys.Must(abi.OpTimerStart, timer, 1, period)
				sys.Println("blink: period " + strconv.Itoa(int(period)) + "ms")
			}), 0)
		}
		if buttons > 1 {
			sys.Must(abi.OpButtonRegister, 1, sys.Func(func(_ uint32, args ...uint32) {
				if args[1] == 0 {
					return
				}
				sys.Must(abi.OpTimerFree, timer)
				sys.Must(abi.OpLEDSet, 0, 0)
				sys.Println("blink: bye")
				sys.Call(abi.OpExit, 0)
			}), 0)
		}
		// Returning keeps the listeners alive.
	}
}
