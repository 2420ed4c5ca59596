// Package sched is the scheduler core: it dispatches applet syscalls to the
// board, keeps the listener registry and runs the wait-for-callback loop.
//
// A Scheduler drives exactly one applet. All of its state is touched only
// from the applet's thread of control; board producers reach it solely
// through the event queue.
package sched

import (
	"context"
	"errors"
	"hash"
	"io"
	"log/slog"
	"runtime/debug"

	"boardlet/core/abi"
	"boardlet/core/applet"
	"boardlet/hal"
	"boardlet/kernel"
)

// Call is one syscall activation. Its memory view is dropped when the call
// returns.
type Call struct {
	Op     abi.Op
	Params abi.Params
	Mem    *applet.Memory
}

type listener struct {
	fn, data uint32
	// since is the queue sequence at registration; older events are stale.
	since uint64
}

type digest struct {
	h    hash.Hash
	hmac bool
}

// Scheduler runs one applet against one board.
type Scheduler struct {
	board hal.Board
	queue *kernel.Queue
	log   *slog.Logger

	ctx  context.Context
	mod  applet.Module
	perf *kernel.Perf

	listeners map[hal.Key]listener
	timers    []bool
	digests   map[uint32]digest
	nextCtx   uint32
	drops     uint64
}

// New builds a scheduler. The queue must be the sink the board pushes to.
func New(board hal.Board, queue *kernel.Queue, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{
		board:     board,
		queue:     queue,
		log:       logger.With("component", "sched"),
		listeners: make(map[hal.Key]listener),
		digests:   make(map[uint32]digest),
	}
}

// Run executes the applet until it terminates. It returns nil when main
// returns with no listener left, and a *applet.Termination otherwise.
//
// If main returns while listeners are registered the scheduler keeps
// delivering their callbacks.
func (s *Scheduler) Run(ctx context.Context, mod applet.Module) error {
	if s.mod != nil {
		return errors.New("sched: scheduler already ran an applet")
	}
	s.ctx = ctx
	s.mod = mod
	s.perf = kernel.NewPerf(s.now(), s.board.Debug().TimeMax())
	s.log.Info("applet started")

	s.mark(kernel.PhasePlatform)
	err := mod.Main(ctx)
	s.mark(kernel.PhaseApplets)
	for err == nil && len(s.listeners) > 0 {
		err = s.waitForCallback()
	}

	term := applet.TerminationOf(err)
	if term == nil {
		s.log.Info("applet returned")
		return nil
	}
	attrs := []any{"reason", term.Reason.String()}
	if term.Reason == applet.ReasonExit {
		attrs = append(attrs, "code", term.Code)
	}
	if term.Cause != nil {
		attrs = append(attrs, "error", term.Cause)
	}
	if term.Reason == applet.ReasonTrap {
		s.log.Warn("applet stopped", attrs...)
	} else {
		s.log.Info("applet stopped", attrs...)
	}
	return term
}

// Perf returns a snapshot of the time accounting.
func (s *Scheduler) Perf() kernel.Perf {
	if s.perf == nil {
		return kernel.Perf{}
	}
	return *s.perf
}

func (s *Scheduler) now() uint64 {
	if s.board.Debug().TimeMax() == 0 {
		return 0
	}
	return s.board.Debug().Time()
}

func (s *Scheduler) mark(ended kernel.Phase) {
	if s.perf != nil {
		s.perf.Mark(ended, s.now())
	}
}

// Syscall implements applet.Host. Domain errors become reply words; a
// returned error terminates the applet. Once the run's context is done every
// syscall kills the applet, since executors cannot stop applet code between
// syscalls.
func (s *Scheduler) Syscall(op uint32, params [4]uint32) (int32, error) {
	s.mark(kernel.PhaseApplets)
	defer s.mark(kernel.PhasePlatform)

	if s.ctx != nil {
		if err := s.ctx.Err(); err != nil {
			return 0, &applet.Termination{Reason: applet.ReasonKill, Cause: err}
		}
	}

	c := &Call{Op: abi.Op(op), Params: abi.Params(params), Mem: applet.NewMemory(s.mod)}
	v, err := s.call(c)
	if err == nil {
		return int32(abi.Ok(v)), nil
	}

	var trap *applet.Trap
	var term *applet.Termination
	var herr *hal.Error
	switch {
	case errors.As(err, &term):
		return 0, term
	case errors.As(err, &trap):
		s.log.Warn("applet trapped", "op", c.Op.String(), "error", trap.Msg)
		return 0, trap
	case errors.As(err, &herr):
		if herr.Space == hal.SpaceInternal {
			s.log.Error("syscall failed", "op", c.Op.String(), "error", err)
		}
		return int32(abi.EncodeError(herr)), nil
	default:
		s.log.Error("syscall failed", "op", c.Op.String(), "error", err)
		return int32(abi.EncodeError(hal.ErrInternal(hal.CodeGeneric))), nil
	}
}

// call runs one handler. A host panic is logged with its stack and reported
// to the applet as an internal error.
func (s *Scheduler) call(c *Call) (v uint32, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("syscall panicked", "op", c.Op.String(), "panic", r, "stack", string(debug.Stack()))
			v, err = 0, hal.ErrInternal(hal.CodeGeneric)
		}
	}()
	return s.dispatch(c)
}

func (s *Scheduler) dispatch(c *Call) (uint32, error) {
	switch c.Op {
	case abi.OpWaitForCallback:
		return 0, s.waitForCallback()
	case abi.OpNumPendingCallbacks:
		return uint32(s.queue.Len()), nil
	case abi.OpAbort:
		return 0, &applet.Termination{Reason: applet.ReasonAbort}
	case abi.OpExit:
		return 0, &applet.Termination{Reason: applet.ReasonExit, Code: c.Params[0]}

	case abi.OpDebugPrintln:
		return s.debugPrintln(c)
	case abi.OpDebugTime:
		return s.debugTime(c)
	case abi.OpDebugPerf:
		return s.debugPerf(c)

	case abi.OpLEDCount:
		return count(s.board.LED()), nil
	case abi.OpLEDGet:
		return s.ledGet(c)
	case abi.OpLEDSet:
		return s.ledSet(c)

	case abi.OpButtonCount:
		return count(s.board.Button()), nil
	case abi.OpButtonRegister:
		return s.buttonRegister(c)
	case abi.OpButtonUnregister:
		return s.buttonUnregister(c)

	case abi.OpTimerAllocate:
		return s.timerAllocate(c)
	case abi.OpTimerStart:
		return s.timerStart(c)
	case abi.OpTimerStop:
		return s.timerStop(c)
	case abi.OpTimerFree:
		return s.timerFree(c)

	case abi.OpUARTCount:
		return count(s.board.UART()), nil
	case abi.OpUARTSetBaudrate:
		return s.uartSetBaudrate(c)
	case abi.OpUARTStart:
		return s.uartStart(c)
	case abi.OpUARTStop:
		return s.uartStop(c)
	case abi.OpUARTRead:
		return s.uartRead(c)
	case abi.OpUARTWrite:
		return s.uartWrite(c)
	case abi.OpUARTRegister:
		return s.uartRegister(c)
	case abi.OpUARTUnregister:
		return s.uartUnregister(c)

	case abi.OpUSBSerialRead:
		return s.usbRead(c)
	case abi.OpUSBSerialWrite:
		return s.usbWrite(c)
	case abi.OpUSBSerialFlush:
		return s.usbFlush(c)
	case abi.OpUSBSerialRegister:
		return s.usbRegister(c)
	case abi.OpUSBSerialUnregister:
		return s.usbUnregister(c)

	case abi.OpGPIOCount:
		return count(s.board.GPIO()), nil
	case abi.OpGPIOConfigure:
		return s.gpioConfigure(c)
	case abi.OpGPIORead:
		return s.gpioRead(c)
	case abi.OpGPIOWrite:
		return s.gpioWrite(c)
	case abi.OpGPIOLastWrite:
		return s.gpioLastWrite(c)

	case abi.OpRngFillBytes:
		return s.rngFillBytes(c)

	case abi.OpHashSupported:
		return s.hashSupported(c)
	case abi.OpHashInitialize:
		return s.hashInitialize(c)
	case abi.OpHashUpdate:
		return s.digestUpdate(c, false)
	case abi.OpHashFinalize:
		return s.digestFinalize(c, false)
	case abi.OpHMACInitialize:
		return s.hmacInitialize(c)
	case abi.OpHMACUpdate:
		return s.digestUpdate(c, true)
	case abi.OpHMACFinalize:
		return s.digestFinalize(c, true)

	case abi.OpStoreInsert:
		return s.storeInsert(c)
	case abi.OpStoreRemove:
		return s.storeRemove(c)
	case abi.OpStoreFind:
		return s.storeFind(c)

	case abi.OpPlatformSerial:
		return s.platformSerial(c)
	case abi.OpPlatformVersion:
		return s.platformVersion(c)
	case abi.OpPlatformReboot:
		return s.platformReboot(c)
	case abi.OpUpdateChunkSize:
		return s.updateChunkSize(c)
	case abi.OpUpdateStart:
		return s.updateStart(c)
	case abi.OpUpdateErase:
		return s.updateErase(c)
	case abi.OpUpdateWrite:
		return s.updateWrite(c)
	case abi.OpUpdateFinish:
		return s.updateFinish(c)

	case abi.OpProtocolRead:
		return s.protocolRead(c)
	case abi.OpProtocolWrite:
		return s.protocolWrite(c)
	case abi.OpProtocolRegister:
		return s.protocolRegister(c)
	case abi.OpProtocolUnregister:
		return s.protocolUnregister(c)

	case abi.OpRadioRegister:
		return s.radioRegister(c)
	case abi.OpRadioUnregister:
		return s.radioUnregister(c)
	case abi.OpRadioRead:
		return s.radioRead(c)

	case abi.OpVendorSyscall:
		return s.vendorSyscall(c)
	case abi.OpVendorRegister:
		return s.vendorRegister(c)
	case abi.OpVendorUnregister:
		return s.vendorUnregister(c)
	}
	return 0, applet.Trapf("unknown syscall %d", uint32(c.Op))
}

// need traps when the board does not provide cap.
func need(c hal.Capability, name string) error {
	if !c.Supported() {
		return applet.Trapf("%s: capability disabled", name)
	}
	return nil
}

// count answers the *_count syscalls. A missing capability has no
// instances, which applets may probe without trapping.
func count(c interface {
	hal.Capability
	hal.Counted
}) uint32 {
	if !c.Supported() || c.Count() < 0 {
		return 0
	}
	return uint32(c.Count())
}

func boolWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func errorf(code hal.Code, format string, args ...any) error {
	return hal.Errorf(hal.SpaceUser, code, format, args...)
}

var _ applet.Host = (*Scheduler)(nil)
