// Package applet is the boundary between the scheduler and an executing
// applet: the executor contract, the checked view of applet memory, and
// the ways an applet run can end.
package applet

import (
	"context"
	"errors"
	"fmt"
)

// Module is an instantiated applet.
type Module interface {
	// Memory returns the current linear memory. The slice is invalidated by
	// any call into the module, including Alloc.
	Memory() []byte
	// Alloc asks the module for size bytes aligned to align.
	Alloc(size, align uint32) (uint32, error)
	// Main runs the applet's entry point.
	Main(ctx context.Context) error
	// Callback invokes the applet function fn with its registration word and
	// up to four event arguments.
	Callback(fn, data uint32, args ...uint32) error
}

// Host receives the applet's syscalls. A non-nil error terminates the
// applet and must be propagated unchanged by the executor.
type Host interface {
	Syscall(op uint32, params [4]uint32) (int32, error)
}

// Trap is a fatal violation by the applet: a bad memory range, invalid
// UTF-8, a call to a disabled capability or an unknown syscall.
type Trap struct {
	Msg string
}

func (t *Trap) Error() string { return "trap: " + t.Msg }

// Trapf builds a Trap with a formatted message.
func Trapf(format string, args ...any) *Trap {
	return &Trap{Msg: fmt.Sprintf(format, args...)}
}

// Reason says why an applet stopped.
type Reason uint8

const (
	ReasonExit Reason = iota
	ReasonAbort
	ReasonTrap
	ReasonKill
	ReasonReboot
)

func (r Reason) String() string {
	switch r {
	case ReasonExit:
		return "exit"
	case ReasonAbort:
		return "abort"
	case ReasonTrap:
		return "trap"
	case ReasonKill:
		return "kill"
	case ReasonReboot:
		return "reboot"
	default:
		return "unknown"
	}
}

// Termination ends an applet run. Syscalls return it to unwind the module;
// Run reports it to the caller.
type Termination struct {
	Reason Reason
	// Code is the exit code for ReasonExit.
	Code  uint32
	Cause error
}

func (t *Termination) Error() string {
	switch {
	case t.Reason == ReasonExit:
		return fmt.Sprintf("applet exited with code %d", t.Code)
	case t.Cause != nil:
		return "applet " + t.Reason.String() + ": " + t.Cause.Error()
	default:
		return "applet " + t.Reason.String()
	}
}

func (t *Termination) Unwrap() error { return t.Cause }

// TerminationOf classifies the error that ended a module call. A Trap, or
// any executor failure, is ReasonTrap; context cancellation is ReasonKill.
func TerminationOf(err error) *Termination {
	if err == nil {
		return nil
	}
	var term *Termination
	if errors.As(err, &term) {
		return term
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Termination{Reason: ReasonKill, Cause: err}
	}
	return &Termination{Reason: ReasonTrap, Cause: err}
}
