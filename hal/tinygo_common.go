//go:build tinygo && baremetal && (rp2040 || rp2350)

package hal

import (
	"machine"
	"sync"
	"sync/atomic"
	"time"

	"boardlet/internal/buildinfo"
)

type buttonEdge struct {
	button uint32
	level  bool
}

// pinButton reads active-low buttons. The pin interrupt captures the level
// and hands it to a worker goroutine with a non-blocking send; the worker
// does the Sink push under mu, so nothing is pushed once Disable returns.
type pinButton struct {
	mu      sync.Mutex
	pins    []machine.Pin
	enabled []bool
	sink    Sink
	isrQ    chan buttonEdge
	drops   atomic.Uint32
}

func newPinButton(sink Sink, pins ...machine.Pin) *pinButton {
	b := &pinButton{
		pins:    pins,
		enabled: make([]bool, len(pins)),
		sink:    sink,
		isrQ:    make(chan buttonEdge, 16),
	}
	for _, p := range pins {
		p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	}
	go b.work()
	return b
}

func (b *pinButton) work() {
	for e := range b.isrQ {
		b.mu.Lock()
		if b.enabled[e.button] {
			b.sink.Push(ButtonEvent{Button: e.button, Pressed: !e.level})
		}
		b.mu.Unlock()
	}
}

func (b *pinButton) Supported() bool { return true }
func (b *pinButton) Count() int      { return len(b.pins) }

func (b *pinButton) Enable(id ID[KindButton]) error {
	i := id.Index()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled[i] = true
	err := b.pins[i].SetInterrupt(machine.PinFalling|machine.PinRising, func(p machine.Pin) {
		select {
		case b.isrQ <- buttonEdge{button: i, level: p.Get()}:
		default:
			b.drops.Add(1)
		}
	})
	if err != nil {
		b.enabled[i] = false
		return &Error{Space: SpaceWorld, Code: CodeGeneric, Msg: err.Error()}
	}
	return nil
}

func (b *pinButton) Disable(id ID[KindButton]) error {
	i := id.Index()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled[i] = false
	if err := b.pins[i].SetInterrupt(0, nil); err != nil {
		return &Error{Space: SpaceWorld, Code: CodeGeneric, Msg: err.Error()}
	}
	return nil
}

// tinyGoUART exposes UART0. Start and Stop only gate access since the port
// is always configured for debug output.
type tinyGoUART struct {
	uart    *machine.UART
	started atomic.Bool
	// mu orders read-event pushes against Disable.
	mu      sync.Mutex
	notify  [2]atomic.Bool
	sink    Sink
	polling atomic.Bool
}

func (u *tinyGoUART) Supported() bool { return true }
func (u *tinyGoUART) Count() int      { return 1 }

func (u *tinyGoUART) SetBaudrate(_ ID[KindUART], baud uint32) error {
	if baud == 0 {
		return Errorf(SpaceUser, CodeInvalidArgument, "zero baudrate")
	}
	u.uart.SetBaudRate(baud)
	return nil
}

func (u *tinyGoUART) Start(ID[KindUART]) error {
	u.started.Store(true)
	return nil
}

func (u *tinyGoUART) Stop(ID[KindUART]) error {
	u.started.Store(false)
	return nil
}

func (u *tinyGoUART) Read(_ ID[KindUART], p []byte) (int, error) {
	if !u.started.Load() {
		return 0, Errorf(SpaceUser, CodeInvalidState, "uart not started")
	}
	n := 0
	for n < len(p) && u.uart.Buffered() > 0 {
		c, err := u.uart.ReadByte()
		if err != nil {
			break
		}
		p[n] = c
		n++
	}
	return n, nil
}

func (u *tinyGoUART) Write(_ ID[KindUART], p []byte) (int, error) {
	if !u.started.Load() {
		return 0, Errorf(SpaceUser, CodeInvalidState, "uart not started")
	}
	n, err := u.uart.Write(p)
	if err != nil {
		return n, &Error{Space: SpaceWorld, Code: CodeGeneric, Msg: err.Error()}
	}
	u.mu.Lock()
	if u.notify[DirWrite].Load() {
		u.sink.Push(UARTEvent{Direction: DirWrite})
	}
	u.mu.Unlock()
	return n, nil
}

func (u *tinyGoUART) Enable(_ ID[KindUART], dir Direction) error {
	if !dir.Valid() {
		return Errorf(SpaceUser, CodeInvalidArgument, "direction %d", dir)
	}
	u.notify[dir].Store(true)
	if dir == DirRead && u.polling.CompareAndSwap(false, true) {
		go u.poll()
	}
	return nil
}

func (u *tinyGoUART) Disable(_ ID[KindUART], dir Direction) error {
	if !dir.Valid() {
		return Errorf(SpaceUser, CodeInvalidArgument, "direction %d", dir)
	}
	u.mu.Lock()
	u.notify[dir].Store(false)
	u.mu.Unlock()
	return nil
}

// poll raises a read event whenever bytes are buffered. The machine UART
// buffers from its own interrupt, so polling the count is enough.
func (u *tinyGoUART) poll() {
	for u.notify[DirRead].Load() {
		if u.uart.Buffered() > 0 {
			u.mu.Lock()
			if u.notify[DirRead].Load() {
				u.sink.Push(UARTEvent{Direction: DirRead})
			}
			u.mu.Unlock()
			for u.uart.Buffered() > 0 && u.notify[DirRead].Load() {
				time.Sleep(time.Millisecond)
			}
		}
		time.Sleep(time.Millisecond)
	}
	u.polling.Store(false)
}

type tinyGoRng struct{}

func (tinyGoRng) Supported() bool { return true }

func (tinyGoRng) FillBytes(p []byte) error {
	for i := 0; i < len(p); i += 4 {
		v, err := machine.GetRNG()
		if err != nil {
			return &Error{Space: SpaceWorld, Code: CodeGeneric, Msg: err.Error()}
		}
		for j := 0; j < 4 && i+j < len(p); j++ {
			p[i+j] = byte(v >> (8 * j))
		}
	}
	return nil
}

type picoPlatform struct{}

func (picoPlatform) Supported() bool { return true }

func (picoPlatform) Serial() []byte  { return machine.DeviceID() }
func (picoPlatform) Version() []byte { return []byte(buildinfo.Short()) }

// Reboot arms the watchdog with the shortest timeout and lets it fire.
func (picoPlatform) Reboot() error {
	machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 1})
	if err := machine.Watchdog.Start(); err != nil {
		return &Error{Space: SpaceWorld, Code: CodeGeneric, Msg: err.Error()}
	}
	return nil
}
